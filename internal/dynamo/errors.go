package dynamo

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

// Codespace groups every registered kessler error code.
const Codespace = "kessler"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a NaN/Inf state, a non-positive mass or a negative radius.
	ErrInvalidState = errorsmod.Register(Codespace, 2, "invalid orbital state")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errorsmod.Register(Codespace, 3, "invalid configuration")

	// ErrUnknownScenario indicates a scenario name with no registered builder.
	ErrUnknownScenario = errorsmod.Register(Codespace, 4, "unknown scenario")

	// ErrUnknownIntegrator indicates an integrator name with no registered constructor.
	ErrUnknownIntegrator = errorsmod.Register(Codespace, 5, "unknown integrator")

	// ErrNotFound indicates a missing run, object or record.
	ErrNotFound = errorsmod.Register(Codespace, 6, "not found")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	ID      ObjectID
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.1fs) object %d: %v", e.Step, e.Time, e.ID, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
