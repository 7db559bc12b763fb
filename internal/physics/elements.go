package physics

import (
	"math"

	"github.com/kyjohnso/kessler/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// CircularOrbit places an object on a circular orbit. Angles are radians.
type CircularOrbit struct {
	AltitudeKm  float64
	Inclination float64
	RAAN        float64
	ArgPerigee  float64
	TrueAnomaly float64
}

// State converts the orbit to an inertial state for an object of the given
// mass. The in-plane vectors are rotated by the argument of perigee, then
// the inclination, then the right ascension of the ascending node.
func (o CircularOrbit) State(b CentralBody, mass float64) dynamo.OrbitalState {
	r := b.RadiusKm + o.AltitudeKm
	v := b.CircularSpeed(r)
	sinNu, cosNu := math.Sincos(o.TrueAnomaly)

	pos := r3.Vec{X: r * cosNu, Y: r * sinNu}
	vel := r3.Vec{X: -v * sinNu, Y: v * cosNu}

	return dynamo.OrbitalState{
		Position: o.rotate(pos),
		Velocity: o.rotate(vel),
		Mass:     mass,
	}
}

func (o CircularOrbit) rotate(p r3.Vec) r3.Vec {
	p = rotateZ(p, o.ArgPerigee)
	p = rotateX(p, o.Inclination)
	return rotateZ(p, o.RAAN)
}

func rotateZ(p r3.Vec, a float64) r3.Vec {
	s, c := math.Sincos(a)
	return r3.Vec{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c, Z: p.Z}
}

func rotateX(p r3.Vec, a float64) r3.Vec {
	s, c := math.Sincos(a)
	return r3.Vec{X: p.X, Y: p.Y*c - p.Z*s, Z: p.Y*s + p.Z*c}
}
