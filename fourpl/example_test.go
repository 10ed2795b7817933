package fourpl_test

import (
	"fmt"

	"github.com/andrew-torda/tmfit/fourpl"
)

// At the inflection point the curve is half way between the asymptotes.
func ExampleEval() {
	p := fourpl.Params{A: 1, B: 5, C: 50, D: 0.1}
	y, err := fourpl.Eval(50, p)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%.2f\n", y)
	// Output: 0.55
}
