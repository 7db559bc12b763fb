package integrators

import (
	"sort"

	errorsmod "cosmossdk.io/errors"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
)

// Stepper advances every object by one timestep and returns the IDs it
// skipped, appended to skipped.
type Stepper interface {
	Name() string
	Step(objs []population.Object, dt float64, skipped []dynamo.ObjectID) []dynamo.ObjectID
}

var constructors = map[string]func(physics.CentralBody) Stepper{
	"symplectic_euler": func(b physics.CentralBody) Stepper { return NewSymplecticEuler(b) },
	"leapfrog":         func(b physics.CentralBody) Stepper { return NewLeapfrog(b) },
	"rk4":              func(b physics.CentralBody) Stepper { return NewRK4(b) },
}

// New returns the integrator registered under name.
func New(name string, body physics.CentralBody) (Stepper, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, errorsmod.Wrapf(dynamo.ErrUnknownIntegrator, "%q", name)
	}
	return fn(body), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
