// 31 July 2020, assays 16 Oct 2026

// Package randassay writes made up thermal shift assays. The curves
// come from a known 4PL, so they are good for testing fits.
package randassay

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/andrew-torda/tmfit/fourpl"
	"github.com/andrew-torda/tmfit/pkg/assay"
)

// Args is the set of arguments passed to Write
type Args struct {
	Iseed   int64     // random number seed
	Wrtr    io.Writer // where we write to
	Label   string    // series are called Label1, Label2, ...
	Nseries int       // number of series
	Temps   []float64
	Params  fourpl.Params // the curve before scaling and noise
	Jitter  float64       // spread of Tm between series, in degrees
	Noise   float64       // relative spread of each intensity
	Scale   float64       // multiply the curve by this
	MkErr   bool          // Add an error, by making a series too short
}

// getSeries returns the intensities for one series with its own Tm.
func getSeries(args *Args, rnd *rand.Rand) ([]float64, error) {
	p := args.Params
	p.C += (rnd.Float64() - 0.5) * args.Jitter
	y, err := fourpl.EvalAll(nil, args.Temps, p)
	if err != nil {
		return nil, err
	}
	for i := range y {
		y[i] *= args.Scale * (1 + args.Noise*(rnd.Float64()-0.5))
	}
	return y, nil
}

// Make builds the assay. The first series is the control.
func Make(args *Args) (*assay.Assay, error) {
	if args.Nseries < 1 || len(args.Temps) == 0 {
		return nil, fmt.Errorf("randassay: need at least one series and one temperature")
	}
	rnd := rand.New(rand.NewSource(args.Iseed))
	width := len(fmt.Sprintf("%d", args.Nseries))
	a := assay.New()
	a.Temps = append([]float64(nil), args.Temps...)
	for i := 1; i <= args.Nseries; i++ {
		y, err := getSeries(args, rnd)
		if err != nil {
			return nil, fmt.Errorf("randassay: %w", err)
		}
		a.Series = append(a.Series, assay.Series{Label: fmt.Sprintf("%s%0*d", args.Label, width, i), Raw: y})
	}
	a.Control = a.Series[0].Label
	if args.MkErr {
		last := &a.Series[len(a.Series)-1]
		last.Raw = last.Raw[:len(last.Raw)-1]
	}
	return a, nil
}

// Write makes an assay and writes it as yaml.
func Write(args *Args) error {
	a, err := Make(args)
	if err != nil {
		return err
	}
	return assay.Write(args.Wrtr, a)
}
