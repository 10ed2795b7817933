// 15 Oct 2026

package cetsa

import (
	"fmt"
	"sort"
	"strings"
)

// TmReport maps a series label to its melting temperature.
type TmReport map[string]float64

// Labels returns the labels in sorted order.
func (r TmReport) Labels() []string {
	labels := make([]string, 0, len(r))
	for l := range r {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Shift is Tm(treated) - Tm(control).
func (r TmReport) Shift(control, treated string) (float64, error) {
	c, ok := r[control]
	if !ok {
		return 0, fmt.Errorf("%w: no Tm for %q", ErrIncompleteFit, control)
	}
	t, ok := r[treated]
	if !ok {
		return 0, fmt.Errorf("%w: no Tm for %q", ErrIncompleteFit, treated)
	}
	return t - c, nil
}

// ExtractTm returns the label and the inflection point of a fit.
func ExtractTm(r FitResult, label string) (string, float64, error) {
	if !r.Success {
		return label, 0, fmt.Errorf("%w: %q", ErrIncompleteFit, label)
	}
	return label, r.Params.C, nil
}

// ExtractAll builds a report from every result, or fails naming
// every result which did not succeed.
func ExtractAll(rs map[string]FitResult) (TmReport, error) {
	var failed []string
	rpt := make(TmReport, len(rs))
	for label, r := range rs {
		l, tm, err := ExtractTm(r, label)
		if err != nil {
			failed = append(failed, label)
			continue
		}
		rpt[l] = tm
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return nil, fmt.Errorf("%w: %s", ErrIncompleteFit, strings.Join(failed, ", "))
	}
	return rpt, nil
}
