// 15 Oct 2026

// Package assay reads the description of a thermal shift assay from
// YAML and writes the results back out.
package assay

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/andrew-torda/tmfit/fourpl"
	"github.com/andrew-torda/tmfit/pkg/cetsa"
	"github.com/andrew-torda/tmfit/pkg/zwrap"
	"github.com/edsrzf/mmap-go"
	"gopkg.in/yaml.v3"
)

// Assay is one experiment. Every series is measured at the same
// temperatures.
type Assay struct {
	Temps []float64 `yaml:"temps"`

	// Control is the reference series for Tm shifts. Optional.
	Control string   `yaml:"control,omitempty"`
	Series  []Series `yaml:"series"`
	Fit     Fit      `yaml:"fit"`
}

// Series is one labelled set of raw intensities.
type Series struct {
	Label string    `yaml:"label"`
	Raw   []float64 `yaml:"raw"`
}

// Fit maps onto cetsa.Options. Absent fields take the cetsa defaults.
type Fit struct {
	Method   string  `yaml:"method"` // lm | simplex
	MaxEval  int     `yaml:"max_eval"`
	Tol      float64 `yaml:"tol"`
	GradTol  float64 `yaml:"grad_tol"`
	StepTol  float64 `yaml:"step_tol"`
	Tau      float64 `yaml:"tau"`
	Restarts int     `yaml:"restarts"`
	Scatter  float64 `yaml:"scatter"`
	Seed     int64   `yaml:"seed"`

	SamplePoints          int  `yaml:"sample_points"`
	Parallel              int  `yaml:"parallel"`
	AllowNonPositiveSlope bool `yaml:"allow_nonpositive_slope"`

	// Initial is the starting point for every series. Nil means each
	// series gets a guess from its own data.
	Initial *Params `yaml:"initial,omitempty"`
}

// Params is fourpl.Params with yaml names.
type Params struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
	D float64 `yaml:"d"`
}

// defaults returns an Assay with the fit section filled in.
func defaults() *Assay {
	o := cetsa.DefaultOptions()
	return &Assay{
		Fit: Fit{
			Method:       o.Method.String(),
			MaxEval:      o.MaxEval,
			Tol:          o.Tol,
			GradTol:      o.GradTol,
			StepTol:      o.StepTol,
			Tau:          o.Tau,
			Restarts:     o.Restarts,
			Scatter:      o.Scatter,
			Seed:         o.Seed,
			SamplePoints: o.SamplePoints,
			Parallel:     o.Parallel,
		},
	}
}

// New returns an assay with nothing in it but the default fit settings.
func New() *Assay { return defaults() }

// validate checks the structure. Options are checked by cetsa.
func validate(a *Assay) error {
	if len(a.Temps) == 0 {
		return fmt.Errorf("temps is required")
	}
	if len(a.Series) == 0 {
		return fmt.Errorf("no series")
	}
	seen := make(map[string]bool, len(a.Series))
	for i, s := range a.Series {
		if s.Label == "" {
			return fmt.Errorf("series[%d]: label is required", i)
		}
		if seen[s.Label] {
			return fmt.Errorf("series[%d]: duplicate label %q", i, s.Label)
		}
		seen[s.Label] = true
		if len(s.Raw) != len(a.Temps) {
			return fmt.Errorf("series[%d] %q: %w: %d values for %d temperatures",
				i, s.Label, cetsa.ErrShapeMismatch, len(s.Raw), len(a.Temps))
		}
	}
	if a.Control != "" && !seen[a.Control] {
		return fmt.Errorf("control %q is not a series label", a.Control)
	}
	if _, err := a.Options(); err != nil {
		return err
	}
	return nil
}

// Options converts the fit section.
func (a *Assay) Options() (cetsa.Options, error) {
	f := a.Fit
	m, err := cetsa.ParseMethod(f.Method)
	if err != nil {
		return cetsa.Options{}, fmt.Errorf("fit.method: %w", err)
	}
	o := cetsa.Options{
		Method:                m,
		MaxEval:               f.MaxEval,
		Tol:                   f.Tol,
		GradTol:               f.GradTol,
		StepTol:               f.StepTol,
		Tau:                   f.Tau,
		Restarts:              f.Restarts,
		Scatter:               f.Scatter,
		Seed:                  f.Seed,
		SamplePoints:          f.SamplePoints,
		Parallel:              f.Parallel,
		AllowNonPositiveSlope: f.AllowNonPositiveSlope,
	}
	if p := f.Initial; p != nil {
		o.Initial = &fourpl.Params{A: p.A, B: p.B, C: p.C, D: p.D}
	}
	if err := o.Validate(); err != nil {
		return cetsa.Options{}, fmt.Errorf("fit: %w", err)
	}
	return o, nil
}

// Raw returns the series keyed by label, as cetsa.Analyze wants them.
func (a *Assay) Raw() map[string][]float64 {
	m := make(map[string][]float64, len(a.Series))
	for _, s := range a.Series {
		m[s.Label] = s.Raw
	}
	return m
}

// Labels returns the labels in file order.
func (a *Assay) Labels() []string {
	l := make([]string, len(a.Series))
	for i, s := range a.Series {
		l[i] = s.Label
	}
	return l
}

// Parse decodes and checks an assay.
func Parse(data []byte) (*Assay, error) {
	a := defaults()
	if err := yaml.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("assay: parse yaml: %w", err)
	}
	if err := validate(a); err != nil {
		return nil, fmt.Errorf("assay: %w", err)
	}
	return a, nil
}

// Read slurps r and parses it.
func Read(r io.Reader) (*Assay, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("assay: read: %w", err)
	}
	return Parse(data)
}

// Write encodes a as yaml. It is not checked.
func Write(w io.Writer, a *Assay) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("assay: %w", err)
	}
	return enc.Close()
}

// Load maps the file at path into memory and parses it. The file may
// be gzipped.
func Load(path string) (*Assay, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("assay: %w", err)
	}
	defer fp.Close()
	fi, err := fp.Stat()
	if err != nil {
		return nil, fmt.Errorf("assay: %w", err)
	}
	if fi.Size() == 0 { // cannot map an empty file
		return Parse(nil)
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("assay: mmap %s: %w", path, err)
	}
	defer mm.Unmap()
	if zwrap.IsGzip(mm) {
		zr, err := zwrap.Wrap(io.NopCloser(bytes.NewReader(mm)))
		if err != nil {
			return nil, fmt.Errorf("assay: %s: %w", path, err)
		}
		defer zr.Close()
		return Read(zr)
	}
	return Parse(mm)
}
