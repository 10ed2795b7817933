// 14 Oct 2026

package cetsa

import (
	"fmt"
	"log/slog"

	"github.com/andrew-torda/tmfit/fourpl"
	"github.com/andrew-torda/tmfit/lmfit"
)

// Method selects the minimiser.
type Method uint8

const (
	MethodLM      Method = iota // Levenberg-Marquardt, the default
	MethodSimplex               // Nelder-Mead, no derivatives
)

func (m Method) String() string {
	switch m {
	case MethodLM:
		return "lm"
	case MethodSimplex:
		return "simplex"
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

// ParseMethod is the inverse of String.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "lm", "":
		return MethodLM, nil
	case "simplex":
		return MethodSimplex, nil
	}
	return MethodLM, fmt.Errorf("unknown fit method %q, want lm or simplex", s)
}

// Defaults for Options.
const (
	DefaultMaxEval      = lmfit.DfltMaxEval
	DefaultTol          = lmfit.DfltTol
	DefaultGradTol      = lmfit.DfltGradTol
	DefaultStepTol      = lmfit.DfltStepTol
	DefaultTau          = lmfit.DfltTau
	DefaultSamplePoints = 300
	DefaultRestarts     = 3
	DefaultScatter      = 0.1
	DefaultSeed         = 1637
)

// Options controls one fit, or one Analyze call. There is no global
// state. Start from DefaultOptions and change what you need.
type Options struct {
	Method  Method
	Initial *fourpl.Params // nil means guess from the data

	MaxEval int     // cap on model evaluations over x
	Tol     float64 // relative change in cost for convergence
	GradTol float64 // LM only, max norm of gradient
	StepTol float64 // LM only, relative step length
	Tau     float64 // LM only, initial damping

	Restarts int     // simplex only
	Scatter  float64 // simplex only, relative spread of first simplex
	Seed     int64   // simplex only, for permuting the first simplex

	SamplePoints int // points per sampled curve in Analyze
	Parallel     int // concurrent fits in Analyze, 0 is one per series

	// AllowNonPositiveSlope accepts fits with b <= 0. Without it,
	// they are reported as ErrFitDivergence.
	AllowNonPositiveSlope bool

	Logger *slog.Logger // nil is silent
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Method:       MethodLM,
		MaxEval:      DefaultMaxEval,
		Tol:          DefaultTol,
		GradTol:      DefaultGradTol,
		StepTol:      DefaultStepTol,
		Tau:          DefaultTau,
		Restarts:     DefaultRestarts,
		Scatter:      DefaultScatter,
		Seed:         DefaultSeed,
		SamplePoints: DefaultSamplePoints,
	}
}

// Validate checks every field once, before any work is done.
func (o Options) Validate() error {
	switch {
	case o.Method != MethodLM && o.Method != MethodSimplex:
		return fmt.Errorf("options: unknown method %v", o.Method)
	case o.MaxEval <= 0:
		return fmt.Errorf("options: max_eval must be positive, got %d", o.MaxEval)
	case !(o.Tol > 0):
		return fmt.Errorf("options: tol must be positive, got %g", o.Tol)
	case o.GradTol < 0 || o.StepTol < 0:
		return fmt.Errorf("options: negative gradient or step tolerance")
	case !(o.Tau > 0):
		return fmt.Errorf("options: tau must be positive, got %g", o.Tau)
	case o.Restarts < 1:
		return fmt.Errorf("options: restarts must be at least 1, got %d", o.Restarts)
	case !(o.Scatter > 0):
		return fmt.Errorf("options: scatter must be positive, got %g", o.Scatter)
	case o.SamplePoints < 2:
		return fmt.Errorf("options: %w: sample_points %d", ErrInvalidSampleSize, o.SamplePoints)
	case o.Parallel < 0:
		return fmt.Errorf("options: parallel must not be negative, got %d", o.Parallel)
	}
	if o.Initial != nil && !o.Initial.IsFinite() {
		return fmt.Errorf("options: initial guess not finite: %v", *o.Initial)
	}
	return nil
}
