// 15 Oct 2026

package cetsa

import (
	"fmt"

	"github.com/andrew-torda/matrix"
)

// CurveTable packs sampled curves into one matrix, ready for something
// which draws them. Column 0 is x, taken from the first label, and
// column i is the y of labels[i-1]. Every curve must have the same
// number of points. Single precision is plenty for drawing.
func CurveTable(curves map[string]SampledCurve, labels []string) (*matrix.FMatrix2d, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no labels for curve table", ErrShapeMismatch)
	}
	first, ok := curves[labels[0]]
	if !ok {
		return nil, fmt.Errorf("%w: no curve for %q", ErrShapeMismatch, labels[0])
	}
	nrow := len(first.X)
	tbl := matrix.NewFMatrix2d(nrow, len(labels)+1)
	for i, x := range first.X {
		tbl.Mat[i][0] = float32(x)
	}
	for j, l := range labels {
		c, ok := curves[l]
		if !ok {
			return nil, fmt.Errorf("%w: no curve for %q", ErrShapeMismatch, l)
		}
		if len(c.X) != nrow || len(c.Y) != nrow {
			return nil, fmt.Errorf("%w: curve %q has %d points, want %d", ErrShapeMismatch, l, len(c.Y), nrow)
		}
		for i, y := range c.Y {
			tbl.Mat[i][j+1] = float32(y)
		}
	}
	return tbl, nil
}
