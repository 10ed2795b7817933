// 15 Oct 2026

package cetsa

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/andrew-torda/tmfit/fourpl"
	"github.com/andrew-torda/tmfit/lmfit"
	"github.com/andrew-torda/tmfit/simplex"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// flatTol is how small the spread of the fitted curve over the data
// may be, relative to the largest |y|, before we call the fit flat.
const flatTol = 1e-8

// FitResult is what comes back from Fit. Only trust Params if Success
// is set.
type FitResult struct {
	Params     fourpl.Params
	Success    bool
	Evals      int     // model evaluations over all of x
	Iterations int     // accepted steps (LM) or cycles (simplex)
	Cost       float64 // half the sum of squared residuals
	Method     Method
	Reason     string // why the minimiser stopped
}

// Guess is the starting point used when Options.Initial is nil.
// a is the largest y, d the smallest, c the median x and b is 1.
func Guess(x, y []float64) (fourpl.Params, error) {
	if err := (Series{X: x, Y: y}).check(); err != nil {
		return fourpl.Params{}, err
	}
	return fourpl.Params{A: floats.Max(y), B: 1, C: median(x), D: floats.Min(y)}, nil
}

func median(x []float64) float64 {
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Fit fits the 4PL model to the points x, y by least squares.
// y would normally be normalised, but nothing depends on it.
// Errors are returned as a *FitError, together with a result which
// has Success false.
func Fit(x, y []float64, opts Options) (FitResult, error) {
	return fit(x, y, opts, "")
}

// problem carries the data through the residual and Jacobian closures.
type problem struct {
	x, y []float64
	grad []float64
}

func (pb *problem) resid(r, prm []float64) error {
	p := fourpl.Params{A: prm[0], B: prm[1], C: prm[2], D: prm[3]}
	if _, err := fourpl.EvalAll(r, pb.x, p); err != nil {
		return err
	}
	floats.Sub(r, pb.y)
	return nil
}

func (pb *problem) jac(jac *mat.Dense, prm []float64) error {
	p := fourpl.Params{A: prm[0], B: prm[1], C: prm[2], D: prm[3]}
	for i, x := range pb.x {
		if err := fourpl.Grad(pb.grad, x, p); err != nil {
			return err
		}
		jac.SetRow(i, pb.grad)
	}
	return nil
}

// cost is for the simplex. Points where the model is undefined are
// infinitely bad.
func (pb *problem) cost() simplex.CostFun {
	r := make([]float64, len(pb.x))
	return func(prm []float64) (float64, error) {
		if err := pb.resid(r, prm); err != nil {
			return math.Inf(1), nil
		}
		c := floats.Dot(r, r) / 2
		if math.IsNaN(c) {
			return math.Inf(1), nil
		}
		return c, nil
	}
}

func fit(x, y []float64, opts Options, label string) (FitResult, error) {
	res := FitResult{Method: opts.Method}
	fail := func(err error) (FitResult, error) {
		return res, &FitError{Label: label, Params: res.Params, Evals: res.Evals, Err: err}
	}
	if err := opts.Validate(); err != nil {
		return fail(err)
	}
	p0, err := Guess(x, y)
	if err != nil {
		return fail(err)
	}
	if opts.Initial != nil {
		p0 = *opts.Initial
	}
	res.Params = p0
	if _, err := fourpl.EvalAll(nil, x, p0); err != nil {
		return fail(fmt.Errorf("initial guess %v: %w", p0, err))
	}
	pb := &problem{x: x, y: y, grad: make([]float64, fourpl.NParam)}

	var prm []float64
	switch opts.Method {
	case MethodLM:
		ctrl := lmfit.NewLMCtrl(pb.resid, pb.jac, len(x), p0.Slice())
		ctrl.MaxEval(opts.MaxEval)
		ctrl.Tol(opts.Tol)
		ctrl.GradTol(opts.GradTol)
		ctrl.StepTol(opts.StepTol)
		ctrl.Tau(opts.Tau)
		ctrl.Logger(opts.Logger)
		r, err := ctrl.Run()
		prm, res.Evals, res.Iterations, res.Cost = r.BestPrm, r.NEval, r.NIter, r.Cost
		res.Reason = r.Stop.String()
		res.Params, _ = fourpl.FromSlice(prm)
		switch {
		case errors.Is(err, lmfit.ErrMaxEval), errors.Is(err, lmfit.ErrSingular),
			errors.Is(err, lmfit.ErrNonFinite):
			return fail(fmt.Errorf("%w: %w", ErrFitDivergence, err))
		case err != nil:
			return fail(err)
		}
	case MethodSimplex:
		ctrl := simplex.NewSplxCtrl(pb.cost(), p0.Slice(), opts.MaxEval)
		ctrl.MaxEval(opts.MaxEval)
		ctrl.Tol(opts.Tol)
		ctrl.Scatter(opts.Scatter)
		ctrl.Seed(opts.Seed)
		ctrl.Logger(opts.Logger)
		r, err := ctrl.Run(opts.Restarts)
		prm, res.Evals, res.Iterations, res.Cost = r.BestPrm, r.NEval, r.NCycle, r.Cost
		res.Reason = "converged"
		if !r.Converged {
			res.Reason = "cycles"
		}
		res.Params, _ = fourpl.FromSlice(prm)
		switch {
		case errors.Is(err, simplex.ErrMaxEval):
			return fail(fmt.Errorf("%w: %w", ErrFitDivergence, err))
		case err != nil:
			return fail(err)
		}
	}
	if err := checkFit(res.Params, x, y, opts); err != nil {
		return fail(err)
	}
	res.Success = true
	if opts.Logger != nil {
		opts.Logger.Debug("fitted", "label", label, "params", res.Params.String(),
			"evals", res.Evals, "method", res.Method.String(), "stop", res.Reason)
	}
	return res, nil
}

// checkFit looks for converged fits which do not give a usable Tm.
func checkFit(p fourpl.Params, x, y []float64, opts Options) error {
	if !p.IsFinite() {
		return fmt.Errorf("%w: non-finite parameters", ErrFitDivergence)
	}
	if p.B <= 0 && !opts.AllowNonPositiveSlope {
		return fmt.Errorf("%w: slope %g is not positive", ErrFitDivergence, p.B)
	}
	fitted, err := fourpl.EvalAll(nil, x, p)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFitDivergence, err)
	}
	yscale := math.Max(math.Abs(floats.Max(y)), math.Abs(floats.Min(y)))
	if spread := floats.Max(fitted) - floats.Min(fitted); !(spread > flatTol*yscale) {
		return fmt.Errorf("%w: flat fit, no transition over the data", ErrFitDivergence)
	}
	return nil
}
