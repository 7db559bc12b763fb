// Package debris turns confirmed collisions into fragment clouds.
//
// The breakup model is a heuristic, not a conservative collision response:
// fragments keep a tenth of the proportional mass share and receive a random
// velocity kick, so neither mass nor momentum is conserved exactly.
package debris

import (
	"math"
	"math/rand"

	"github.com/kyjohnso/kessler/internal/collision"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/population"
	"gonum.org/v1/gonum/spatial/r3"
)

// Params tunes the breakup heuristic.
type Params struct {
	MinFragments   int
	MaxFragments   int
	MassScale      float64 // kg per unit of the mass term before sqrt
	EnergyScale    float64 // J per unit of the energy term before sqrt
	EnergyTermCap  int
	MassRetention  float64
	KickMin        float64 // fraction of relative speed
	KickMax        float64
	FragmentRadius float64 // km
}

func DefaultParams() Params {
	return Params{
		MinFragments:   2,
		MaxFragments:   50,
		MassScale:      1000,
		EnergyScale:    1e12,
		EnergyTermCap:  10,
		MassRetention:  0.1,
		KickMin:        0.1,
		KickMax:        0.5,
		FragmentRadius: dynamo.DebrisRadiusKm,
	}
}

// Event describes one resolved collision.
type Event struct {
	ID            dynamo.CollisionID `json:"id"`
	Time          float64            `json:"time"`
	A             dynamo.ObjectID    `json:"a"`
	B             dynamo.ObjectID    `json:"b"`
	Point         r3.Vec             `json:"point"`
	Energy        float64            `json:"energy"`         // J
	RelativeSpeed float64            `json:"relative_speed"` // km/s
	TotalMass     float64            `json:"total_mass"`
	Fragments     []dynamo.ObjectID  `json:"fragments"`
}

// FragmentCount applies the fragment-count law for a collision of the given
// total mass (kg) and energy (J).
func FragmentCount(totalMass, energy float64, p Params) int {
	// cap in float64 so huge inputs cannot overflow the int conversion
	massTerm := math.Min(math.Floor(math.Sqrt(math.Max(totalMass, 0)/p.MassScale)), float64(p.MaxFragments))
	energyTerm := math.Min(math.Floor(math.Sqrt(math.Max(energy, 0)/p.EnergyScale)), float64(p.EnergyTermCap))
	n := int(massTerm) + int(energyTerm)
	if n < p.MinFragments {
		return p.MinFragments
	}
	if n > p.MaxFragments {
		return p.MaxFragments
	}
	return n
}

type Generator struct {
	params  Params
	rng     *rand.Rand
	nextID  dynamo.CollisionID
	skipped int
}

// New returns a generator drawing kicks from rng. Pass a seeded source for
// reproducible runs.
func New(params Params, rng *rand.Rand) *Generator {
	return &Generator{params: params, rng: rng, nextID: 1}
}

func (g *Generator) Params() Params { return g.params }

// Skipped reports how many pairs the last Resolve call dropped because a
// participant had already been consumed.
func (g *Generator) Skipped() int { return g.skipped }

// Resolve breaks up every pair, removes both parents and appends one event
// per collision to dst.
func (g *Generator) Resolve(pop *population.Population, pairs []collision.Pair, now float64, dst []Event) []Event {
	g.skipped = 0
	for _, pair := range pairs {
		ev, ok := g.breakup(pop, pair, now)
		if !ok {
			g.skipped++
			continue
		}
		dst = append(dst, ev)
	}
	return dst
}

func (g *Generator) breakup(pop *population.Population, pair collision.Pair, now float64) (Event, bool) {
	if pair.A == pair.B {
		return Event{}, false
	}
	pa, ok := pop.Get(pair.A)
	if !ok {
		return Event{}, false
	}
	pb, ok := pop.Get(pair.B)
	if !ok {
		return Event{}, false
	}
	// copies: the arena moves on Add/Remove
	a, b := *pa, *pb

	point := r3.Scale(0.5, r3.Add(a.State.Position, b.State.Position))
	meanVel := r3.Scale(0.5, r3.Add(a.State.Velocity, b.State.Velocity))
	relSpeed := r3.Norm(r3.Sub(a.State.Velocity, b.State.Velocity))
	totalMass := a.State.Mass + b.State.Mass

	relSpeedMs := relSpeed * dynamo.MetersPerKm
	energy := 0.5 * totalMass * relSpeedMs * relSpeedMs

	n := FragmentCount(totalMass, energy, g.params)
	fragMass := totalMass / float64(n) * g.params.MassRetention

	id := g.nextID
	g.nextID++

	parent := a.Lineage
	if b.Lineage.Generation > parent.Generation {
		parent = b.Lineage
	}
	lineage := dynamo.FromDebris(parent, id, now)

	ev := Event{
		ID:            id,
		Time:          now,
		A:             pair.A,
		B:             pair.B,
		Point:         point,
		Energy:        energy,
		RelativeSpeed: relSpeed,
		TotalMass:     totalMass,
		Fragments:     make([]dynamo.ObjectID, 0, n),
	}

	for i := 0; i < n; i++ {
		frag := population.Object{
			State: dynamo.OrbitalState{
				Position: point,
				Velocity: r3.Add(meanVel, g.kick(relSpeed)),
				Mass:     fragMass,
			},
			Physics: dynamo.PhysicsObject{CollisionRadius: g.params.FragmentRadius, Category: dynamo.Debris},
			Lineage: lineage,
		}
		ev.Fragments = append(ev.Fragments, pop.Add(frag))
	}

	pop.Remove(pair.A)
	pop.Remove(pair.B)
	return ev, true
}

// kick draws a direction from two uniform angles and a magnitude uniform in
// [KickMin, KickMax] times the relative speed.
func (g *Generator) kick(relSpeed float64) r3.Vec {
	theta := g.rng.Float64() * 2 * math.Pi
	phi := g.rng.Float64() * math.Pi
	mag := relSpeed * (g.params.KickMin + g.rng.Float64()*(g.params.KickMax-g.params.KickMin))

	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)
	return r3.Vec{
		X: mag * sinPhi * cosTheta,
		Y: mag * sinPhi * sinTheta,
		Z: mag * cosPhi,
	}
}
