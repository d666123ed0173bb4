package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for solver operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a grid, sweep or tolerance value outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the calculation was interrupted.
	ErrContextCanceled = errors.New("dynamo: calculation canceled by context")

	// ErrDimensionMismatch indicates mismatched position/potential arrays.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between grid and potential")
)

// StepError wraps an error with the step where it occurred. Position is
// the independent variable at that step: a grid position inside an
// integration, a trial energy inside a search.
type StepError struct {
	Step     int
	Position float64
	Wrapped  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (at %g): %v", e.Step, e.Position, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
