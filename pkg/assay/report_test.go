package assay_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/andrew-torda/tmfit/fourpl"
	"github.com/andrew-torda/tmfit/pkg/assay"
	"github.com/andrew-torda/tmfit/pkg/cetsa"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/common/expfmt"
	"gopkg.in/yaml.v3"
)

// fakeAnalysis has CON and MET fitted and BAD failed.
func fakeAnalysis() (*assay.Assay, cetsa.Analysis) {
	a := &assay.Assay{
		Temps:   []float64{40, 50},
		Control: "CON",
		Series:  []assay.Series{{Label: "MET"}, {Label: "CON"}, {Label: "BAD"}},
	}
	ok := func(c float64) cetsa.FitResult {
		return cetsa.FitResult{
			Params:  fourpl.Params{A: 1, B: 20, C: c, D: 0.1},
			Success: true, Evals: 30, Iterations: 20, Method: cetsa.MethodLM, Reason: "cost",
		}
	}
	curve := cetsa.SampledCurve{X: []float64{40, 50}, Y: []float64{1, 0.1}}
	an := cetsa.Analysis{
		Results: map[string]cetsa.FitResult{
			"CON": ok(44), "MET": ok(46.5),
			"BAD": {Evals: 50000, Method: cetsa.MethodLM},
		},
		Curves: map[string]cetsa.SampledCurve{"CON": curve, "MET": curve},
		Errors: map[string]error{"BAD": errors.New("fit diverged")},
	}
	return a, an
}

func TestNewReport(t *testing.T) {
	a, an := fakeAnalysis()
	rpt := assay.NewReport(a, an, true)
	if diff := cmp.Diff([]string{"BAD"}, rpt.Failed()); diff != "" {
		t.Errorf("failed (-want +got):\n%s", diff)
	}
	want := []assay.Shift{{Control: "CON", Treated: "MET", DeltaTm: 2.5}}
	if diff := cmp.Diff(want, rpt.Shifts); diff != "" {
		t.Errorf("shifts (-want +got):\n%s", diff)
	}
	if rpt.Series[0].Label != "MET" || rpt.Series[0].Curve == nil {
		t.Errorf("first series %+v", rpt.Series[0])
	}
	if bad := rpt.Series[2]; bad.Error == "" || bad.Params != nil || bad.Curve != nil {
		t.Errorf("failed series %+v", bad)
	}
	if rpt := assay.NewReport(a, an, false); rpt.Series[0].Curve != nil {
		t.Error("curve without asking")
	}
}

func TestWriteYAML(t *testing.T) {
	a, an := fakeAnalysis()
	var buf bytes.Buffer
	if err := assay.WriteYAML(&buf, assay.NewReport(a, an, false)); err != nil {
		t.Fatal(err)
	}
	var back assay.Report
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(assay.NewReport(a, an, false), back); diff != "" {
		t.Errorf("read back (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "delta_tm: 2.5") {
		t.Errorf("no shift in\n%s", buf.String())
	}
}

func TestWritePrometheus(t *testing.T) {
	a, an := fakeAnalysis()
	var buf bytes.Buffer
	if err := assay.WritePrometheus(&buf, assay.NewReport(a, an, false)); err != nil {
		t.Fatal(err)
	}
	var parser expfmt.TextParser
	fams, err := parser.TextToMetricFamilies(&buf)
	if err != nil {
		t.Fatal(err)
	}
	tm := map[string]float64{}
	for _, m := range fams[assay.MetricTm].GetMetric() {
		tm[m.GetLabel()[0].GetValue()] = m.GetGauge().GetValue()
	}
	if diff := cmp.Diff(map[string]float64{"CON": 44, "MET": 46.5}, tm); diff != "" {
		t.Errorf("tm (-want +got):\n%s", diff)
	}
	if n := len(fams[assay.MetricParam].GetMetric()); n != 8 {
		t.Errorf("%d parameter samples, want 8", n)
	}
	if n := len(fams[assay.MetricEvals].GetMetric()); n != 3 {
		t.Errorf("%d evaluation samples, want 3", n)
	}
	shift := fams[assay.MetricShift].GetMetric()
	if len(shift) != 1 || shift[0].GetGauge().GetValue() != 2.5 {
		t.Errorf("shift %v", shift)
	}
}
