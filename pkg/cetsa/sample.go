// 15 Oct 2026

package cetsa

import (
	"fmt"
	"math"

	"github.com/andrew-torda/tmfit/fourpl"
	"gonum.org/v1/gonum/floats"
)

// SampledCurve is a fitted curve evaluated at evenly spaced points.
type SampledCurve struct {
	X []float64 `yaml:"x"`
	Y []float64 `yaml:"y"`
}

// Sample evaluates the model at n evenly spaced points from xmin to
// xmax, both included.
func Sample(p fourpl.Params, xmin, xmax float64, n int) (SampledCurve, error) {
	if n < 2 {
		return SampledCurve{}, fmt.Errorf("%w: %d points, need at least 2", ErrInvalidSampleSize, n)
	}
	if math.IsNaN(xmin) || math.IsNaN(xmax) || math.IsInf(xmin, 0) || math.IsInf(xmax, 0) || xmin > xmax {
		return SampledCurve{}, fmt.Errorf("%w: range %g to %g", ErrInvalidSampleSize, xmin, xmax)
	}
	x := floats.Span(make([]float64, n), xmin, xmax)
	y, err := fourpl.EvalAll(nil, x, p)
	if err != nil {
		return SampledCurve{}, fmt.Errorf("sampling %v: %w", p, err)
	}
	return SampledCurve{X: x, Y: y}, nil
}

// SampleSeries samples over the temperature range of s.
func SampleSeries(p fourpl.Params, s Series, n int) (SampledCurve, error) {
	if err := s.check(); err != nil {
		return SampledCurve{}, err
	}
	return Sample(p, floats.Min(s.X), floats.Max(s.X), n)
}
