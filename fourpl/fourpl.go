// 12 Oct 2026
// Package fourpl evaluates the four-parameter logistic
//
//	y = d + (a - d) / (1 + (x/c)^b)
//
// and its partial derivatives with respect to the parameters.
// a is the upper asymptote (x -> 0+ for b > 0), d the lower asymptote
// (x -> inf), c the inflection point and b the slope.
// For a thermal shift curve, c is the apparent melting temperature.
package fourpl

import (
	"errors"
	"fmt"
	"math"
)

// NParam is the number of model parameters.
const NParam = 4

// ErrInvalidDomain is returned when the model is not defined at a point.
var ErrInvalidDomain = errors.New("4pl: invalid domain")

// Params holds the four model parameters.
type Params struct {
	A float64 // upper asymptote
	B float64 // slope
	C float64 // inflection point
	D float64 // lower asymptote
}

// Slice returns the parameters in the order a, b, c, d.
func (p Params) Slice() []float64 { return []float64{p.A, p.B, p.C, p.D} }

// FromSlice is the inverse of Slice.
func FromSlice(v []float64) (Params, error) {
	if len(v) != NParam {
		return Params{}, fmt.Errorf("4pl: want %d parameters, got %d", NParam, len(v))
	}
	return Params{A: v[0], B: v[1], C: v[2], D: v[3]}, nil
}

// IsFinite is true if none of the parameters is NaN or infinite.
func (p Params) IsFinite() bool {
	for _, v := range p.Slice() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p Params) String() string {
	return fmt.Sprintf("a=%g b=%g c=%g d=%g", p.A, p.B, p.C, p.D)
}

// isIntegral is true for whole numbers. A negative base is only
// allowed with these as exponents.
func isIntegral(b float64) bool {
	return !math.IsInf(b, 0) && b == math.Trunc(b)
}

// checkDomain rejects c == 0, and x/c <= 0 when b is not a whole number.
func checkDomain(x, b, c float64) error {
	if c == 0 {
		return fmt.Errorf("%w: c is zero", ErrInvalidDomain)
	}
	if x/c <= 0 && !isIntegral(b) {
		return fmt.Errorf("%w: x/c = %g with non-integral b = %g", ErrInvalidDomain, x/c, b)
	}
	return nil
}

// Eval returns the model value at x.
func Eval(x float64, p Params) (float64, error) {
	if err := checkDomain(x, p.B, p.C); err != nil {
		return 0, err
	}
	u := math.Pow(x/p.C, p.B)
	return p.D + (p.A-p.D)/(1+u), nil
}

// EvalAll evaluates the model at every element of x. The result goes
// into dst if it is big enough, otherwise a new slice is allocated.
// It stops at the first point outside the domain.
func EvalAll(dst, x []float64, p Params) ([]float64, error) {
	dst = resize(dst, len(x))
	for i, xi := range x {
		y, err := Eval(xi, p)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		dst[i] = y
	}
	return dst, nil
}

// Grad puts the partial derivatives dy/da, dy/db, dy/dc, dy/dd at x
// into dst, which must have length NParam.
// Everything is written in terms of s = 1/(1+u), u = (x/c)^b so that
// u overflowing to +Inf gives s = 0 and zero derivatives rather than NaN.
func Grad(dst []float64, x float64, p Params) error {
	if len(dst) != NParam {
		return fmt.Errorf("4pl: gradient needs %d elements, got %d", NParam, len(dst))
	}
	if err := checkDomain(x, p.B, p.C); err != nil {
		return err
	}
	r := x / p.C
	if r < 0 {
		return fmt.Errorf("%w: log of x/c = %g", ErrInvalidDomain, r)
	}
	u := math.Pow(r, p.B)
	s := 1 / (1 + u)
	q := s * (1 - s) // u/(1+u)^2, without overflow
	dst[0] = s
	dst[3] = 1 - s
	if q == 0 {
		dst[1], dst[2] = 0, 0
		return nil
	}
	amd := p.A - p.D
	dst[1] = -amd * q * math.Log(r)
	dst[2] = amd * q * p.B / p.C
	return nil
}

// resize returns a slice of length n, reusing x if possible.
func resize(x []float64, n int) []float64 {
	if cap(x) >= n {
		return x[:n]
	}
	return make([]float64, n)
}
