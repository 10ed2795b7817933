// 13 Oct 2026

package lmfit_test

import (
	"errors"
	"math"
	"testing"

	. "github.com/andrew-torda/tmfit/lmfit"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/mat"
)

// line is y = m x + k, fitted to points exactly on a line.
var lineX = []float64{0, 1, 2, 3, 4, 5}

func lineResid(r, prm []float64) error {
	for i, x := range lineX {
		r[i] = prm[0]*x + prm[1] - (2*x + 1)
	}
	return nil
}

func lineJac(jac *mat.Dense, prm []float64) error {
	for i, x := range lineX {
		jac.Set(i, 0, x)
		jac.Set(i, 1, 1)
	}
	return nil
}

func TestLine(t *testing.T) {
	c := NewLMCtrl(lineResid, lineJac, len(lineX), []float64{-3, 7})
	res, err := c.Run()
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 1}
	if diff := cmp.Diff(want, res.BestPrm, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("line fit mismatch (-want +got):\n%s", diff)
	}
	if res.NIter == 0 {
		t.Error("no accepted steps")
	}
}

// rosenbrock residuals, r1 = 10 (y - x^2), r2 = 1 - x, minimum at 1, 1
func rosenResid(r, p []float64) error {
	r[0] = 10 * (p[1] - p[0]*p[0])
	r[1] = 1 - p[0]
	return nil
}

func rosenJac(jac *mat.Dense, p []float64) error {
	jac.Set(0, 0, -20*p[0])
	jac.Set(0, 1, 10)
	jac.Set(1, 0, -1)
	jac.Set(1, 1, 0)
	return nil
}

func TestRosenbrock(t *testing.T) {
	c := NewLMCtrl(rosenResid, rosenJac, 2, []float64{-1.2, 1})
	res, err := c.Run()
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range res.BestPrm {
		if math.Abs(v-1) > 1e-6 {
			t.Errorf("param %d got %g wanted 1", i, v)
		}
	}
	if res.Stop == StopNone {
		t.Error("stop reason not set")
	}
}

func TestMaxEval(t *testing.T) {
	c := NewLMCtrl(rosenResid, rosenJac, 2, []float64{-1.2, 1})
	c.MaxEval(3)
	res, err := c.Run()
	if !errors.Is(err, ErrMaxEval) {
		t.Fatalf("wanted ErrMaxEval, got %v", err)
	}
	if res.NEval > 3 {
		t.Errorf("used %d evaluations with a cap of 3", res.NEval)
	}
}

// TestNowhereDefined has a residual function which only works at the
// starting point. Every step is rejected and the damping goes up until
// the step is too short to matter. We must not move.
func TestNowhereDefined(t *testing.T) {
	start := []float64{3, 4}
	resid := func(r, p []float64) error {
		if p[0] != start[0] || p[1] != start[1] {
			return errors.New("undefined")
		}
		r[0], r[1] = 1, 1
		return nil
	}
	jac := func(jac *mat.Dense, p []float64) error {
		jac.Set(0, 0, 1)
		jac.Set(1, 1, 1)
		return nil
	}
	res, err := NewLMCtrl(resid, jac, 2, start).Run()
	if err != nil && !errors.Is(err, ErrSingular) {
		t.Fatalf("unexpected error %v", err)
	}
	if diff := cmp.Diff(start, res.BestPrm); diff != "" {
		t.Errorf("moved (-want +got):\n%s", diff)
	}
	if res.NIter != 0 {
		t.Errorf("%d steps accepted, wanted none", res.NIter)
	}
}

// TestOverflow has a Jacobian whose square overflows.
func TestOverflow(t *testing.T) {
	resid := func(r, p []float64) error {
		r[0] = 1
		return nil
	}
	jac := func(jac *mat.Dense, p []float64) error {
		jac.Set(0, 0, 1e200)
		return nil
	}
	_, err := NewLMCtrl(resid, jac, 1, []float64{1}).Run()
	if !errors.Is(err, ErrSingular) {
		t.Errorf("wanted ErrSingular got %v", err)
	}
}

func TestBadStart(t *testing.T) {
	resid := func(r, p []float64) error {
		r[0] = math.NaN()
		return nil
	}
	_, err := NewLMCtrl(resid, lineJac, 1, []float64{1}).Run()
	if !errors.Is(err, ErrNonFinite) {
		t.Errorf("wanted ErrNonFinite got %v", err)
	}
	if _, err := NewLMCtrl(resid, lineJac, 1, nil).Run(); err == nil {
		t.Error("no parameters should fail")
	}
}

// TestFlat has zero gradient at the start.
func TestFlat(t *testing.T) {
	resid := func(r, p []float64) error {
		r[0] = 1
		return nil
	}
	jac := func(jac *mat.Dense, p []float64) error {
		jac.Set(0, 0, 0)
		return nil
	}
	res, err := NewLMCtrl(resid, jac, 1, []float64{5}).Run()
	if err != nil {
		t.Fatal(err)
	}
	if res.Stop != StopGrad {
		t.Errorf("stopped because of %v, wanted gradient", res.Stop)
	}
	if res.BestPrm[0] != 5 {
		t.Errorf("flat surface moved to %v", res.BestPrm)
	}
}
