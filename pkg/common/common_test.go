package common_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/tmfit/pkg/common"
)

func TestWrtTemp(t *testing.T) {
	dir := t.TempDir()
	name, err := common.WrtTemp(dir, "assay*.yaml", "temps: [1]\n")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(name) != dir || !strings.HasSuffix(name, ".yaml") {
		t.Errorf("file %s not in %s with suffix", name, dir)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "temps: [1]\n" {
		t.Errorf("read back %q", b)
	}
	if _, err := common.WrtTemp(filepath.Join(dir, "missing"), "x", ""); err == nil {
		t.Error("no error for missing directory")
	}
}
