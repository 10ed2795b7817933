// 13 Oct 2026
// Package lmfit is a Levenberg-Marquardt least squares minimiser.
// It minimises F(x) = 1/2 sum r_i(x)^2 given a residual function and
// its Jacobian.
// The damping follows
// K. Madsen, H.B. Nielsen, O. Tingleff, Methods for non-linear least
// squares problems, IMM, DTU, 2004, algorithm 3.16.
// The damped normal equations are solved by Cholesky factorisation.
// If that fails, the damping goes up until it works or overflows. In
// the second case, we give up and call the system singular.
//
// Points where the residual function returns an error or non-finite
// values are treated like steps which did not improve anything. The
// damping goes up and we try a shorter step. This is how we cope with
// models which are not defined everywhere.
package lmfit

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Errors from Run. The result returned with them holds the last
// accepted point.
var (
	ErrMaxEval   = errors.New("lmfit: too many function evaluations")
	ErrSingular  = errors.New("lmfit: singular system, damping overflowed")
	ErrNonFinite = errors.New("lmfit: non-finite residuals at starting point")
)

// ResidFun puts the residuals at x into r.
type ResidFun func(r, x []float64) error

// JacFun puts the Jacobian at x into jac, one row per residual,
// one column per parameter.
type JacFun func(jac *mat.Dense, x []float64) error

// Defaults
const (
	DfltMaxEval = 50000
	DfltTol     = 1e-10 // relative change in cost
	DfltGradTol = 1e-15 // max norm of gradient
	DfltStepTol = 1e-15 // step length relative to parameter length
	DfltTau     = 1e-3  // initial damping, relative to diag of J^T J
	exactCost   = 1e-30 // cost below this is a perfect fit
)

// Stop says why we stopped.
type Stop uint8

const (
	StopNone  Stop = iota // did not stop properly
	StopCost              // relative change in cost below tolerance
	StopGrad              // gradient is flat
	StopStep              // step became tiny
	StopExact             // cost is zero, within rounding
)

func (s Stop) String() string {
	switch s {
	case StopCost:
		return "cost"
	case StopGrad:
		return "gradient"
	case StopStep:
		return "step"
	case StopExact:
		return "exact"
	}
	return "none"
}

// LMCtrl holds the settings for one minimisation.
type LMCtrl struct {
	resid   ResidFun
	jac     JacFun
	nres    int       // number of residuals
	iniPrm  []float64 // starting point
	maxeval int       // cap on calls to resid
	tol     float64
	gradTol float64
	stepTol float64
	tau     float64
	logger  *slog.Logger
}

// Result is what comes back from Run.
type Result struct {
	BestPrm []float64 // best parameters found
	Cost    float64   // 1/2 sum of squared residuals at BestPrm
	NEval   int       // calls to the residual function
	NIter   int       // accepted steps
	Stop    Stop
}

// NewLMCtrl gives us a control structure with default values.
// nres is the number of residuals. iniPrm is copied.
func NewLMCtrl(resid ResidFun, jac JacFun, nres int, iniPrm []float64) *LMCtrl {
	return &LMCtrl{
		resid:   resid,
		jac:     jac,
		nres:    nres,
		iniPrm:  append([]float64(nil), iniPrm...),
		maxeval: DfltMaxEval,
		tol:     DfltTol,
		gradTol: DfltGradTol,
		stepTol: DfltStepTol,
		tau:     DfltTau,
	}
}

func (c *LMCtrl) MaxEval(i int)          { c.maxeval = i }
func (c *LMCtrl) Tol(f float64)          { c.tol = f }
func (c *LMCtrl) GradTol(f float64)      { c.gradTol = f }
func (c *LMCtrl) StepTol(f float64)      { c.stepTol = f }
func (c *LMCtrl) Tau(f float64)          { c.tau = f }
func (c *LMCtrl) Logger(lg *slog.Logger) { c.logger = lg }

func (c *LMCtrl) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// lmWk holds the scratch space for one run.
type lmWk struct {
	x, xtry []float64     // current and trial points
	r, rtry []float64     // residuals at x and xtry
	jac     *mat.Dense    // Jacobian at x
	jtry    *mat.Dense    // Jacobian at xtry
	a       *mat.SymDense // J^T J
	damped  *mat.SymDense // J^T J + mu I
	g       *mat.VecDense // J^T r
	negG    *mat.VecDense
	h       *mat.VecDense // step
	cost    float64
	mu, nu  float64
	chol    mat.Cholesky
}

func (w *lmWk) init(nres, nprm int, x []float64) {
	w.x = append([]float64(nil), x...)
	w.xtry = make([]float64, nprm)
	w.r = make([]float64, nres)
	w.rtry = make([]float64, nres)
	w.jac = mat.NewDense(nres, nprm, nil)
	w.jtry = mat.NewDense(nres, nprm, nil)
	w.a = mat.NewSymDense(nprm, nil)
	w.damped = mat.NewSymDense(nprm, nil)
	w.g = mat.NewVecDense(nprm, nil)
	w.negG = mat.NewVecDense(nprm, nil)
	w.h = mat.NewVecDense(nprm, nil)
}

// normal recalculates J^T J and J^T r from the current point.
// False if either overflowed.
func (w *lmWk) normal() bool {
	w.a.SymOuterK(1, w.jac.T())
	w.g.MulVec(w.jac.T(), mat.NewVecDense(len(w.r), w.r))
	w.negG.ScaleVec(-1, w.g)
	return allFinite(w.a.RawSymmetric().Data) && allFinite(w.g.RawVector().Data)
}

// raise increases the damping after a failed step.
func (w *lmWk) raise(tau float64) {
	if w.mu == 0 {
		w.mu = tau
	} else {
		w.mu *= w.nu
	}
	w.nu *= 2
}

// solve finds the damped step. False if the factorisation failed.
func (w *lmWk) solve() bool {
	n := w.a.SymmetricDim()
	w.damped.CopySym(w.a)
	for i := 0; i < n; i++ {
		w.damped.SetSym(i, i, w.a.At(i, i)+w.mu)
	}
	if ok := w.chol.Factorize(w.damped); !ok {
		return false
	}
	if err := w.chol.SolveVecTo(w.h, w.negG); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) { // ill conditioned is still a step
			return false
		}
	}
	return allFinite(w.h.RawVector().Data)
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func halfSumSq(r []float64) float64 {
	d := floats.Dot(r, r)
	return d / 2
}

// relChange is the convergence criterion from the simplex code,
// 2|a-b| / (|a| + |b| + tiny)
func relChange(a, b float64) float64 {
	const tiny = 1e-300
	return 2 * math.Abs(a-b) / (math.Abs(a) + math.Abs(b) + tiny)
}

// tryPoint evaluates residuals and Jacobian at xtry. False means the
// point is unusable.
func (c *LMCtrl) tryPoint(w *lmWk) bool {
	if err := c.resid(w.rtry, w.xtry); err != nil {
		c.debug("rejected trial point", "x", w.xtry, "err", err)
		return false
	}
	if !allFinite(w.rtry) {
		return false
	}
	if err := c.jac(w.jtry, w.xtry); err != nil {
		return false
	}
	return allFinite(w.jtry.RawMatrix().Data)
}

// Run does the minimisation.
func (c *LMCtrl) Run() (Result, error) {
	nprm := len(c.iniPrm)
	if nprm == 0 || c.nres == 0 {
		return Result{}, errors.New("lmfit: no parameters or no residuals")
	}
	var w lmWk
	w.init(c.nres, nprm, c.iniPrm)
	res := Result{BestPrm: w.x}

	if err := c.resid(w.r, w.x); err != nil {
		return res, fmt.Errorf("starting point: %w", err)
	}
	res.NEval = 1
	if !allFinite(w.r) {
		return res, ErrNonFinite
	}
	if err := c.jac(w.jac, w.x); err != nil {
		return res, fmt.Errorf("jacobian at starting point: %w", err)
	}
	w.cost = halfSumSq(w.r)
	res.Cost = w.cost
	if !w.normal() {
		return res, ErrSingular
	}
	var maxDiag float64
	for i := 0; i < nprm; i++ {
		maxDiag = math.Max(maxDiag, w.a.At(i, i))
	}
	w.mu = c.tau * maxDiag
	w.nu = 2

	for res.NEval < c.maxeval {
		if w.cost <= exactCost {
			res.Stop = StopExact
			break
		}
		if floats.Norm(w.g.RawVector().Data, math.Inf(1)) <= c.gradTol {
			res.Stop = StopGrad
			break
		}
		if !w.solve() {
			w.raise(c.tau)
			if math.IsInf(w.mu, 1) {
				return res, ErrSingular
			}
			continue
		}
		h := w.h.RawVector().Data
		if floats.Norm(h, 2) <= c.stepTol*(floats.Norm(w.x, 2)+c.stepTol) {
			res.Stop = StopStep
			break
		}
		floats.AddTo(w.xtry, w.x, h)
		res.NEval++
		if !c.tryPoint(&w) {
			w.raise(c.tau)
			if math.IsInf(w.mu, 1) {
				return res, ErrSingular
			}
			continue
		}
		newCost := halfSumSq(w.rtry)
		// predicted reduction 1/2 h^T (mu h - g), positive by construction
		pred := (w.mu*floats.Dot(h, h) - floats.Dot(h, w.g.RawVector().Data)) / 2
		rho := (w.cost - newCost) / pred
		if !(rho > 0) {
			w.raise(c.tau)
			if math.IsInf(w.mu, 1) {
				return res, ErrSingular
			}
			continue
		}
		rtol := relChange(w.cost, newCost)
		copy(w.x, w.xtry)
		w.r, w.rtry = w.rtry, w.r
		w.jac, w.jtry = w.jtry, w.jac
		w.cost = newCost
		if !w.normal() {
			return res, ErrSingular
		}
		w.mu *= math.Max(1./3., 1-math.Pow(2*rho-1, 3))
		w.nu = 2
		res.NIter++
		res.Cost = w.cost
		if w.cost <= exactCost {
			res.Stop = StopExact
			break
		}
		if rtol < c.tol {
			res.Stop = StopCost
			break
		}
	}
	res.Cost = w.cost
	if res.Stop == StopNone {
		return res, fmt.Errorf("%w: %d evaluations", ErrMaxEval, res.NEval)
	}
	c.debug("converged", "cost", w.cost, "evals", res.NEval, "iter", res.NIter, "stop", res.Stop)
	return res, nil
}
