// 14 Oct 2026

package cetsa

import (
	"errors"
	"fmt"

	"github.com/andrew-torda/tmfit/fourpl"
)

// Errors. Compare with errors.Is. Everything which comes out of Fit
// is a *FitError wrapping one of these.
var (
	ErrDivisionByZero    = errors.New("first intensity is zero, cannot normalise")
	ErrInvalidDomain     = fourpl.ErrInvalidDomain
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrFitDivergence     = errors.New("fit diverged")
	ErrIncompleteFit     = errors.New("incomplete fit")
	ErrInvalidSampleSize = errors.New("invalid sample size")
)

// FitError carries enough to decide whether to retry a fit with a
// different starting point.
type FitError struct {
	Label  string        // series label, may be empty
	Params fourpl.Params // parameters when we gave up
	Evals  int           // function evaluations used
	Err    error
}

func (e *FitError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("fit (%v, %d evals): %v", e.Params, e.Evals, e.Err)
	}
	return fmt.Sprintf("fit %s (%v, %d evals): %v", e.Label, e.Params, e.Evals, e.Err)
}

func (e *FitError) Unwrap() error { return e.Err }
