package cetsa_test

import (
	"fmt"

	"github.com/andrew-torda/tmfit/fourpl"
	"github.com/andrew-torda/tmfit/pkg/cetsa"
)

// Fit a curve made from known parameters and read off the melting
// temperature.
func ExampleFit() {
	x := []float64{38, 40, 43, 45, 47, 54, 57, 59, 60}
	y, _ := fourpl.EvalAll(nil, x, fourpl.Params{A: 1, B: 5, C: 50, D: 0.1})
	res, err := cetsa.Fit(x, y, cetsa.DefaultOptions())
	if err != nil {
		fmt.Println(err)
		return
	}
	_, tm, _ := cetsa.ExtractTm(res, "demo")
	fmt.Printf("Tm %.2f\n", tm)
	// Output: Tm 50.00
}
