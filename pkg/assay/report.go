// 15 Oct 2026

package assay

import (
	"fmt"
	"io"

	"github.com/andrew-torda/tmfit/pkg/cetsa"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// Report is what we tell the user about one assay.
type Report struct {
	Control string         `yaml:"control,omitempty"`
	Series  []SeriesReport `yaml:"series"`
	Shifts  []Shift        `yaml:"shifts,omitempty"`
}

// SeriesReport is the outcome for one label. If Error is set, only
// the label and maybe the evaluations mean anything.
type SeriesReport struct {
	Label      string              `yaml:"label"`
	Success    bool                `yaml:"success"`
	Tm         float64             `yaml:"tm,omitempty"`
	Params     *Params             `yaml:"params,omitempty"`
	Method     string              `yaml:"method,omitempty"`
	Evals      int                 `yaml:"evals,omitempty"`
	Iterations int                 `yaml:"iterations,omitempty"`
	Cost       float64             `yaml:"cost,omitempty"`
	Stop       string              `yaml:"stop,omitempty"`
	Error      string              `yaml:"error,omitempty"`
	Curve      *cetsa.SampledCurve `yaml:"curve,omitempty"`
}

// Shift is Tm(treated) - Tm(control).
type Shift struct {
	Control string  `yaml:"control"`
	Treated string  `yaml:"treated"`
	DeltaTm float64 `yaml:"delta_tm"`
}

// NewReport puts the results of an analysis in the order of the assay
// file. Shifts are given for every series which was fitted, as long as
// the control was fitted too.
func NewReport(a *Assay, an cetsa.Analysis, curves bool) Report {
	rpt := Report{Control: a.Control}
	tms := make(cetsa.TmReport)
	for _, label := range a.Labels() {
		sr := SeriesReport{Label: label}
		if res, ok := an.Results[label]; ok {
			sr.Method = res.Method.String()
			sr.Evals = res.Evals
			sr.Iterations = res.Iterations
			sr.Stop = res.Reason
			if _, tm, err := cetsa.ExtractTm(res, label); err == nil {
				p := res.Params
				sr.Success, sr.Tm, sr.Cost = true, tm, res.Cost
				sr.Params = &Params{A: p.A, B: p.B, C: p.C, D: p.D}
				tms[label] = tm
			}
		}
		if err := an.Errors[label]; err != nil {
			sr.Success = false
			sr.Error = err.Error()
		}
		if c, ok := an.Curves[label]; ok && curves && sr.Success {
			sr.Curve = &c
		}
		rpt.Series = append(rpt.Series, sr)
	}
	if a.Control == "" {
		return rpt
	}
	for _, label := range a.Labels() {
		if label == a.Control {
			continue
		}
		if d, err := tms.Shift(a.Control, label); err == nil {
			rpt.Shifts = append(rpt.Shifts, Shift{Control: a.Control, Treated: label, DeltaTm: d})
		}
	}
	return rpt
}

// Failed returns the labels which did not give a Tm.
func (r Report) Failed() []string {
	var failed []string
	for _, s := range r.Series {
		if !s.Success {
			failed = append(failed, s.Label)
		}
	}
	return failed
}

// WriteYAML writes the report as a yaml document.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return enc.Close()
}

// Metric names in the prometheus output.
const (
	MetricTm     = "tmfit_tm_celsius"
	MetricParam  = "tmfit_fit_param"
	MetricEvals  = "tmfit_fit_evals"
	MetricShift  = "tmfit_tm_shift_celsius"
	paramLabel   = "param"
	seriesLabel  = "label"
	controlLabel = "control"
	treatedLabel = "treated"
)

func gauge(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

// addGauge appends a sample. Label names and values come in pairs.
func addGauge(mf *dto.MetricFamily, v float64, kv ...string) {
	m := &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(v)}}
	for i := 0; i+1 < len(kv); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{Name: proto.String(kv[i]), Value: proto.String(kv[i+1])})
	}
	mf.Metric = append(mf.Metric, m)
}

// WritePrometheus writes the report in the prometheus text format, so
// it can be dropped into a node exporter textfile directory.
func WritePrometheus(w io.Writer, r Report) error {
	tm := gauge(MetricTm, "Fitted melting temperature (4PL inflection point).")
	prm := gauge(MetricParam, "Fitted 4PL parameters.")
	evals := gauge(MetricEvals, "Model evaluations used by the fit.")
	shift := gauge(MetricShift, "Tm of treated minus Tm of control.")
	for _, s := range r.Series {
		if s.Evals > 0 {
			addGauge(evals, float64(s.Evals), seriesLabel, s.Label)
		}
		if !s.Success || s.Params == nil {
			continue
		}
		addGauge(tm, s.Tm, seriesLabel, s.Label)
		p := s.Params
		for _, kv := range []struct {
			name string
			v    float64
		}{{"a", p.A}, {"b", p.B}, {"c", p.C}, {"d", p.D}} {
			addGauge(prm, kv.v, seriesLabel, s.Label, paramLabel, kv.name)
		}
	}
	for _, sh := range r.Shifts {
		addGauge(shift, sh.DeltaTm, controlLabel, sh.Control, treatedLabel, sh.Treated)
	}
	for _, mf := range []*dto.MetricFamily{tm, prm, evals, shift} {
		if len(mf.Metric) == 0 { // expfmt will not write an empty family
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	return nil
}
