package lmfit_test

import (
	"fmt"
	"math"

	"github.com/andrew-torda/tmfit/lmfit"
	"gonum.org/v1/gonum/mat"
)

// Fit y = exp(k x) to points generated with k = 0.5.
func Example() {
	x := []float64{0, 0.5, 1, 1.5, 2}
	resid := func(r, p []float64) error {
		for i, xi := range x {
			r[i] = math.Exp(p[0]*xi) - math.Exp(0.5*xi)
		}
		return nil
	}
	jac := func(jac *mat.Dense, p []float64) error {
		for i, xi := range x {
			jac.Set(i, 0, xi*math.Exp(p[0]*xi))
		}
		return nil
	}
	res, err := lmfit.NewLMCtrl(resid, jac, len(x), []float64{0.1}).Run()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("k = %.4f\n", res.BestPrm[0])
	// Output: k = 0.5000
}
