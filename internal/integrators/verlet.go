package integrators

import (
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
)

// Leapfrog is the kick-drift-kick scheme. It costs two field evaluations
// per step and is second order.
type Leapfrog struct {
	body physics.CentralBody
}

func NewLeapfrog(body physics.CentralBody) *Leapfrog {
	return &Leapfrog{body: body}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(objs []population.Object, dt float64, skipped []dynamo.ObjectID) []dynamo.ObjectID {
	return sweep(objs, dt, skipped, l.advance)
}

func (l *Leapfrog) advance(s *dynamo.OrbitalState, dt float64) bool {
	halfDt := dt * 0.5

	ax, ay, az, ok := accel(l.body, s)
	if !ok {
		return false
	}
	s.Velocity.X += ax * halfDt
	s.Velocity.Y += ay * halfDt
	s.Velocity.Z += az * halfDt

	s.Position.X += s.Velocity.X * dt
	s.Position.Y += s.Velocity.Y * dt
	s.Position.Z += s.Velocity.Z * dt

	// the drift can only land on the origin if the object was headed straight at it
	ax, ay, az, ok = accel(l.body, s)
	if !ok {
		return true
	}
	s.Velocity.X += ax * halfDt
	s.Velocity.Y += ay * halfDt
	s.Velocity.Z += az * halfDt
	return true
}
