package assay_test

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/tmfit/brokenio"
	"github.com/andrew-torda/tmfit/fourpl"
	"github.com/andrew-torda/tmfit/pkg/assay"
	"github.com/andrew-torda/tmfit/pkg/cetsa"
	"github.com/andrew-torda/tmfit/pkg/common"
	"github.com/google/go-cmp/cmp"
)

const minimal = `
temps: [1, 2, 3]
series:
  - label: A
    raw: [3, 2, 1]
`

func TestLoad(t *testing.T) {
	a, err := assay.Load(filepath.Join("testdata", "cetsa.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"CON", "MET"}, a.Labels()); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	if a.Control != "CON" || len(a.Temps) != 9 || a.Fit.Parallel != 2 {
		t.Errorf("read wrong values %+v", a)
	}
	if got := a.Raw()["MET"][0]; got != 240820 {
		t.Errorf("first MET value %g", got)
	}
}

func TestLoadGzip(t *testing.T) {
	plain, err := os.ReadFile(filepath.Join("testdata", "cetsa.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	name := filepath.Join(t.TempDir(), "cetsa.yaml.gz")
	fp, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(fp)
	if _, err := zw.Write(plain); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := fp.Close(); err != nil {
		t.Fatal(err)
	}
	a, err := assay.Load(name)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := assay.Load(filepath.Join("testdata", "cetsa.yaml"))
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("gzipped file differs (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := assay.Load(filepath.Join(dir, "nothing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file gave %v", err)
	}
	empty, err := common.WrtTemp(dir, "empty*.yaml", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := assay.Load(empty); err == nil || !strings.Contains(err.Error(), "temps") {
		t.Errorf("empty file gave %v", err)
	}
}

func TestDefaults(t *testing.T) {
	a, err := assay.Read(strings.NewReader(minimal))
	if err != nil {
		t.Fatal(err)
	}
	got, err := a.Options()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cetsa.DefaultOptions(), got); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}
}

func TestOptions(t *testing.T) {
	src := minimal + `
fit:
  method: simplex
  max_eval: 100
  restarts: 5
  seed: 42
  allow_nonpositive_slope: true
  initial: {a: 1, b: 50, c: 45, d: 0.1}
`
	a, err := assay.Read(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	o, err := a.Options()
	if err != nil {
		t.Fatal(err)
	}
	want := cetsa.DefaultOptions()
	want.Method = cetsa.MethodSimplex
	want.MaxEval = 100
	want.Restarts = 5
	want.Seed = 42
	want.AllowNonPositiveSlope = true
	want.Initial = &fourpl.Params{A: 1, B: 50, C: 45, D: 0.1}
	if diff := cmp.Diff(want, o); diff != "" {
		t.Errorf("options (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no temps", "series: [{label: A, raw: [1]}]", "temps"},
		{"no series", "temps: [1]", "no series"},
		{"no label", "temps: [1]\nseries: [{raw: [1]}]", "label is required"},
		{"duplicate", "temps: [1]\nseries: [{label: A, raw: [1]}, {label: A, raw: [2]}]", "duplicate"},
		{"length", "temps: [1, 2]\nseries: [{label: A, raw: [1]}]", "shape mismatch"},
		{"control", "temps: [1]\ncontrol: B\nseries: [{label: A, raw: [1]}]", "control"},
		{"method", minimal + "fit: {method: newton}", "fit.method"},
		{"samples", minimal + "fit: {sample_points: 1}", "sample"},
		{"max eval", minimal + "fit: {max_eval: -1}", "max_eval"},
		{"bad yaml", "temps: [1, 2", "parse yaml"},
		{"wrong type", "temps: hot", "parse yaml"},
	}
	for _, tt := range tests {
		_, err := assay.Read(strings.NewReader(tt.src))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: got %v, wanted something about %q", tt.name, err, tt.want)
		}
	}
}

// TestBrokenReader makes sure read errors are not mistaken for a
// short file.
func TestBrokenReader(t *testing.T) {
	fp, err := os.Open(filepath.Join("testdata", "cetsa.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	rdr := brokenio.NewReader(fp, 7)
	defer rdr.Close()
	rdr.SetProbFail(1)
	rdr.SetFracFail(0.3)
	if _, err := assay.Read(rdr); err == nil || !strings.Contains(err.Error(), "read") {
		t.Errorf("broken reader gave %v", err)
	}

	rdr = brokenio.NewReader(io.NopCloser(strings.NewReader(minimal)), 7)
	rdr.SetProbZeroFile(1)
	if _, err := assay.Read(rdr); err == nil {
		t.Error("zero length file accepted")
	}
}

// TestEndToEnd fits the measured assay and checks the report.
func TestEndToEnd(t *testing.T) {
	a, err := assay.Load(filepath.Join("testdata", "cetsa.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	opts, err := a.Options()
	if err != nil {
		t.Fatal(err)
	}
	an, err := cetsa.Analyze(context.Background(), a.Temps, a.Raw(), opts)
	if err != nil {
		t.Fatal(err)
	}
	rpt := assay.NewReport(a, an, false)
	if len(rpt.Failed()) != 0 {
		t.Fatalf("failures %v", rpt.Failed())
	}
	for _, s := range rpt.Series {
		if !(s.Tm > 43 && s.Tm < 47) || s.Curve != nil {
			t.Errorf("%s: Tm %g curve %v", s.Label, s.Tm, s.Curve != nil)
		}
	}
	if len(rpt.Shifts) != 1 || rpt.Shifts[0].Treated != "MET" {
		t.Errorf("shifts %+v", rpt.Shifts)
	}
}
