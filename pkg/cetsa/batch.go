// 15 Oct 2026

package cetsa

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Analysis holds everything Analyze found. The maps are keyed by
// label. A label appears in Errors if anything went wrong with it,
// and then maybe not in the other maps.
type Analysis struct {
	Results    map[string]FitResult
	Curves     map[string]SampledCurve
	Normalized map[string]Series
	Tm         TmReport // nil unless every series was fitted
	Errors     map[string]error
}

// Labels returns the labels which were analysed, sorted.
func (a Analysis) Labels() []string {
	seen := make(map[string]bool)
	for l := range a.Normalized {
		seen[l] = true
	}
	for l := range a.Errors {
		seen[l] = true
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// slot is where one worker puts its results.
type slot struct {
	label string
	norm  Series
	res   FitResult
	curve SampledCurve
	err   error
	fitOK bool // res is valid, even if the fit failed
}

func analyzeOne(raw Series, opts Options, sl *slot) {
	norm, err := Normalize(raw)
	if err != nil {
		sl.err = fmt.Errorf("normalising %s: %w", sl.label, err)
		return
	}
	sl.norm = norm
	sl.res, sl.err = fit(norm.X, norm.Y, opts, sl.label)
	sl.fitOK = true
	if sl.err != nil {
		return
	}
	sl.curve, sl.err = SampleSeries(sl.res.Params, norm, opts.SamplePoints)
}

// Analyze normalises and fits every series in raw, with temps as the
// x values for all of them, samples the fitted curves and builds the
// Tm report. Series are fitted concurrently and independently. If any
// of them fails, the error wraps ErrIncompleteFit, but the Analysis
// still holds everything which worked.
func Analyze(ctx context.Context, temps []float64, raw map[string][]float64, opts Options) (Analysis, error) {
	if err := opts.Validate(); err != nil {
		return Analysis{}, err
	}
	if len(raw) == 0 {
		return Analysis{}, fmt.Errorf("%w: no series", ErrShapeMismatch)
	}
	slots := make([]slot, 0, len(raw))
	for label := range raw {
		slots = append(slots, slot{label: label})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].label < slots[j].label })

	g, ctx := errgroup.WithContext(ctx)
	limit := opts.Parallel
	if limit == 0 {
		limit = len(slots)
	}
	g.SetLimit(limit)
	for i := range slots {
		sl := &slots[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			analyzeOne(Series{X: temps, Y: raw[sl.label]}, opts, sl)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Analysis{}, err
	}

	an := Analysis{
		Results:    make(map[string]FitResult),
		Curves:     make(map[string]SampledCurve),
		Normalized: make(map[string]Series),
		Errors:     make(map[string]error),
	}
	var failed []string
	for _, sl := range slots {
		if sl.norm.Y != nil {
			an.Normalized[sl.label] = sl.norm
		}
		if sl.fitOK {
			an.Results[sl.label] = sl.res
		}
		if sl.err != nil {
			an.Errors[sl.label] = sl.err
			failed = append(failed, sl.label)
			if opts.Logger != nil {
				opts.Logger.Warn("series failed", "label", sl.label, "err", sl.err)
			}
			continue
		}
		an.Curves[sl.label] = sl.curve
	}
	if len(failed) > 0 {
		return an, fmt.Errorf("%w: %s", ErrIncompleteFit, strings.Join(failed, ", "))
	}
	tm, err := ExtractAll(an.Results)
	if err != nil {
		return an, err
	}
	an.Tm = tm
	return an, nil
}
