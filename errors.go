package immunize

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports a bond or an obligation that cannot be processed
	// (non-positive price or maturity, cash-flow count mismatch...).
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoConvergence reports a yield that Newton-Raphson could not find
	// within the iteration budget.
	ErrNoConvergence = errors.New("no convergence")
	// ErrInfeasible reports that no portfolio of the available bonds matches
	// the obligation duration.
	ErrInfeasible = errors.New("no feasible immunizing portfolio")
	// ErrSolver reports an internal failure of the LP engine.
	ErrSolver = errors.New("solver error")
)

// BondError is the failure of a single bond in a dataset.
type BondError struct {
	Index int // zero based index in the dataset
	Err   error
}

func (e *BondError) Error() string {
	return fmt.Sprintf("bond #%d: %v", e.Index+1, e.Err)
}

func (e *BondError) Unwrap() error { return e.Err }

// invalidf returns an error wrapping ErrInvalidInput.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
