// 14 Oct 2026

package cetsa

import "fmt"

// Series is one set of measurements, temperature in X and intensity
// in Y. The engine never writes to it.
type Series struct {
	X []float64
	Y []float64
}

func (s Series) check() error {
	if len(s.X) != len(s.Y) {
		return fmt.Errorf("%w: %d x values, %d y values", ErrShapeMismatch, len(s.X), len(s.Y))
	}
	if len(s.Y) == 0 {
		return fmt.Errorf("%w: empty series", ErrShapeMismatch)
	}
	return nil
}

// Normalize divides every intensity by the first one, so the result
// starts at exactly 1. X is copied unchanged.
func Normalize(s Series) (Series, error) {
	if err := s.check(); err != nil {
		return Series{}, err
	}
	y0 := s.Y[0]
	if y0 == 0 {
		return Series{}, ErrDivisionByZero
	}
	out := Series{
		X: append([]float64(nil), s.X...),
		Y: make([]float64, len(s.Y)),
	}
	for i, y := range s.Y {
		out.Y[i] = y / y0
	}
	out.Y[0] = 1
	return out, nil
}
