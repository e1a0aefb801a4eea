package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for solver operations.
var (
	// ErrConfiguration indicates invalid domain, resolution, forcing or controller parameters.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrNumericalInstability indicates an overflow or NaN produced by a solver stage.
	ErrNumericalInstability = errors.New("dynamo: numerical instability (NaN or Inf detected)")

	// ErrInvalidTimestep indicates a zero, negative or non-finite timestep.
	ErrInvalidTimestep = errors.New("dynamo: invalid timestep")

	// ErrDimensionMismatch indicates fields built on different grids.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between fields")
)

// SimulationError wraps an error with the last consistent solver state.
type SimulationError struct {
	Iteration int
	Time      float64
	Dt        float64
	Wrapped   error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("iteration %d (t=%.6e, dt=%.3e): %v", e.Iteration, e.Time, e.Dt, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// Configf returns an ErrConfiguration wrapping a formatted reason.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
