package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrInvalidConfig indicates a parameter rejected at configure time.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrPhysicsInvariant indicates corrupted physical state (NaN force, mass out of bounds, ledger drift).
	ErrPhysicsInvariant = errors.New("dynamo: physics invariant violated")

	// ErrHalted indicates the engine stopped after an invariant violation and needs a reset.
	ErrHalted = errors.New("dynamo: engine halted")

	// ErrInvalidStep indicates a non-positive or non-finite timestep.
	ErrInvalidStep = errors.New("dynamo: invalid timestep")

	// ErrUnknownParam indicates a dotted parameter name with no matching field.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")
)

// ConfigError names the offending field, the violated constraint and the value.
type ConfigError struct {
	Field      string
	Constraint string
	Value      any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: must be %s, got %v", e.Field, e.Constraint, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int64
	Time    float64
	Detail  string
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s: %v", e.Step, e.Time, e.Detail, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
