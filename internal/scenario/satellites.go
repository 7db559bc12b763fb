package scenario

import (
	"math"
	"math/rand"

	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	SatelliteMassKg = 1000.0

	StressMinAltitudeKm = 200.0
	StressMaxAltitudeKm = 50000.0
	StressMinMassKg     = 1.0
	StressMaxMassKg     = 10000.0

	PairRadiusKm       = 0.001
	PairMassKg         = 1000.0
	PairInnerKm        = 7000.0
	PairSeparation     = 0.0005
	NearMissSeparation = 1.0
	HeadOnLead         = 10.0
)

type testSatellite struct {
	name        string
	norad       uint32
	altitudeKm  float64
	inclination float64 // degrees
}

var testSatellites = []testSatellite{
	{"ISS", 25544, 408, 51.6},
	{"HUBBLE", 20580, 547, 28.5},
	{"GPS BIIR-2", 24876, 20200, 55},
}

// TestSatellites returns ISS, HUBBLE and GPS BIIR-2 on circular orbits. Each
// starts on the +X axis with its velocity tilted by the inclination.
func TestSatellites(body physics.CentralBody) []population.Object {
	objs := make([]population.Object, 0, len(testSatellites))
	for _, s := range testSatellites {
		orbit := physics.CircularOrbit{
			AltitudeKm:  s.altitudeKm,
			Inclination: s.inclination * math.Pi / 180,
		}
		objs = append(objs, population.Object{
			State:   orbit.State(body, SatelliteMassKg),
			Physics: dynamo.NewPhysicsObject(dynamo.Satellite),
			Lineage: dynamo.Original(0),
			Satellite: &dynamo.SatelliteInfo{
				Name:    s.name,
				NoradID: s.norad,
				Active:  true,
			},
		})
	}
	return objs
}

// Stress draws n objects on random circular orbits between 200 and 50000 km
// altitude with masses between 1 and 10000 kg.
func Stress(body physics.CentralBody, rng *rand.Rand, n int) []population.Object {
	objs := make([]population.Object, 0, n)
	for i := 0; i < n; i++ {
		orbit := physics.CircularOrbit{
			AltitudeKm:  uniform(rng, StressMinAltitudeKm, StressMaxAltitudeKm),
			Inclination: rng.Float64() * math.Pi,
			RAAN:        rng.Float64() * 2 * math.Pi,
			ArgPerigee:  rng.Float64() * 2 * math.Pi,
			TrueAnomaly: rng.Float64() * 2 * math.Pi,
		}
		mass := uniform(rng, StressMinMassKg, StressMaxMassKg)
		objs = append(objs, population.Object{
			State:   orbit.State(body, mass),
			Physics: dynamo.NewPhysicsObject(dynamo.Debris),
			Lineage: dynamo.Original(0),
		})
	}
	return objs
}

// Pair returns two 1000 kg objects at (7000,0,0) and (7000+separation,0,0)
// sharing the inner object's circular velocity.
func Pair(body physics.CentralBody, separation float64) []population.Object {
	v := body.CircularSpeed(PairInnerKm)
	objs := make([]population.Object, 2)
	for i := range objs {
		objs[i] = pairObject(r3.Vec{X: PairInnerKm + float64(i)*separation}, r3.Vec{Y: v})
	}
	return objs
}

// HeadOn returns two 1000 kg objects on counter-rotating circular orbits of
// radius 7000 and 7000+separation km that reach the +X axis together after
// lead seconds. With lead 0 they start in the Pair geometry.
func HeadOn(body physics.CentralBody, separation, lead float64) []population.Object {
	objs := make([]population.Object, 2)
	for i, dir := range []float64{1, -1} {
		r := PairInnerKm + float64(i)*separation
		v := body.CircularSpeed(r)
		// start behind the meeting point along the direction of travel
		sin, cos := math.Sincos(-dir * lead * v / r)
		objs[i] = pairObject(
			r3.Vec{X: r * cos, Y: r * sin},
			r3.Vec{X: -dir * v * sin, Y: dir * v * cos},
		)
	}
	return objs
}

func pairObject(pos, vel r3.Vec) population.Object {
	return population.Object{
		State:   dynamo.OrbitalState{Position: pos, Velocity: vel, Mass: PairMassKg},
		Physics: dynamo.PhysicsObject{CollisionRadius: PairRadiusKm, Category: dynamo.Satellite},
		Lineage: dynamo.Original(0),
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
