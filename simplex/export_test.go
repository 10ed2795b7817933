// 3 jan 2020, 15 Oct 2026
// The problem with a normal test of the simplex is that you will
// never see small mistakes. The method will probably converge, just
// inefficiently.
// I want to test some specific parts.

package simplex

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// SplxFromSlice makes a simplex with rows from x.
func SplxFromSlice(nparam int, x []float64) splx {
	return splx{mat.NewDense(nparam+1, nparam, append([]float64(nil), x...))}
}

// Flat reports whether the vertices of a simplex have no volume.
func Flat(nparam int, x []float64) bool {
	return flat(SplxFromSlice(nparam, x), 1)
}

// IniPoints returns the first simplex as a matrix.
func (s *SplxCtrl) IniPoints(seed int64) *mat.Dense {
	n := len(s.iniPrm)
	sp := splx{mat.NewDense(n+1, n, nil)}
	s.iniPoints(sp, s.iniPrm, 1, rand.New(rand.NewSource(seed)))
	return sp.Dense
}

// Amo1 does one reflection of the worst point and returns it, along
// with its new cost.
func Amo1(nparam int, x []float64, cost CostFun) ([]float64, float64) {
	sp := SplxFromSlice(nparam, x)
	var w sWk
	w.init(nparam, cost)
	if err := w.setupFirstStep(sp); err != nil {
		panic("cost function should not fail in testing")
	}
	w.sortRank()
	w.centroid(sp)
	ihi := w.rank[0]
	if _, err := amotry(sp, alpha, &w); err != nil {
		panic("cost function should not fail in testing")
	}
	return sp.RawRowView(ihi), w.y[ihi]
}

// Contract does a general contraction and returns the simplex.
func Contract(nparam int, x []float64, cost CostFun) *mat.Dense {
	sp := SplxFromSlice(nparam, x)
	var w sWk
	w.init(nparam, cost)
	if err := w.setupFirstStep(sp); err != nil {
		panic("cost function should not fail in testing")
	}
	w.sortRank()
	contract(sp, &w)
	return sp.Dense
}
