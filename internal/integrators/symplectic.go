package integrators

import (
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
)

// SymplecticEuler is the semi-implicit Euler scheme: velocity is updated
// from the current position, then position from the new velocity.
type SymplecticEuler struct {
	body physics.CentralBody
}

func NewSymplecticEuler(body physics.CentralBody) *SymplecticEuler {
	return &SymplecticEuler{body: body}
}

func (e *SymplecticEuler) Name() string { return "symplectic_euler" }

func (e *SymplecticEuler) Step(objs []population.Object, dt float64, skipped []dynamo.ObjectID) []dynamo.ObjectID {
	return sweep(objs, dt, skipped, e.advance)
}

func (e *SymplecticEuler) advance(s *dynamo.OrbitalState, dt float64) bool {
	ax, ay, az, ok := accel(e.body, s)
	if !ok {
		return false
	}

	s.Velocity.X += ax * dt
	s.Velocity.Y += ay * dt
	s.Velocity.Z += az * dt

	s.Position.X += s.Velocity.X * dt
	s.Position.Y += s.Velocity.Y * dt
	s.Position.Z += s.Velocity.Z * dt
	return true
}
