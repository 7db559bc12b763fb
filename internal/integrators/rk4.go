package integrators

import (
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
	"gonum.org/v1/gonum/spatial/r3"
)

// RK4 is the classic fourth-order Runge-Kutta scheme applied to (p, v).
// It is not symplectic, so long runs drift secularly, but per-step error is
// far smaller than the Euler family.
type RK4 struct {
	body physics.CentralBody
}

func NewRK4(body physics.CentralBody) *RK4 {
	return &RK4{body: body}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(objs []population.Object, dt float64, skipped []dynamo.ObjectID) []dynamo.ObjectID {
	return sweep(objs, dt, skipped, r.advance)
}

func (r *RK4) advance(s *dynamo.OrbitalState, dt float64) bool {
	p0, v0 := s.Position, s.Velocity
	halfDt := dt * 0.5

	k1a, ok := r.body.Acceleration(p0)
	if !ok {
		return false
	}
	k1v := v0

	p2 := r3.Add(p0, r3.Scale(halfDt, k1v))
	k2a, ok := r.body.Acceleration(p2)
	if !ok {
		return false
	}
	k2v := r3.Add(v0, r3.Scale(halfDt, k1a))

	p3 := r3.Add(p0, r3.Scale(halfDt, k2v))
	k3a, ok := r.body.Acceleration(p3)
	if !ok {
		return false
	}
	k3v := r3.Add(v0, r3.Scale(halfDt, k2a))

	p4 := r3.Add(p0, r3.Scale(dt, k3v))
	k4a, ok := r.body.Acceleration(p4)
	if !ok {
		return false
	}
	k4v := r3.Add(v0, r3.Scale(dt, k3a))

	sixth := dt / 6
	s.Position = r3.Add(p0, r3.Scale(sixth, weighted(k1v, k2v, k3v, k4v)))
	s.Velocity = r3.Add(v0, r3.Scale(sixth, weighted(k1a, k2a, k3a, k4a)))
	return true
}

func weighted(k1, k2, k3, k4 r3.Vec) r3.Vec {
	return r3.Add(r3.Add(k1, k4), r3.Scale(2, r3.Add(k2, k3)))
}
