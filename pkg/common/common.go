// 29 Apr 2020, 15 Oct 2026

// Package common has the bits shared by the command and the tests.
package common

import (
	"fmt"
	"io"
	"os"
)

// Exit codes from the tmfit command
const (
	ExitSuccess = iota
	ExitFailure
	ExitUsageError
)

// WrtTemp writes a string to a temporary file in dir and returns
// the filename. It is used all over the place in testing. pattern is
// as for os.CreateTemp, so "*.yaml" keeps the suffix.
func WrtTemp(dir, pattern, s string) (string, error) {
	fTmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("tempfile fail: %w", err)
	}
	defer fTmp.Close()
	if _, err := io.WriteString(fTmp, s); err != nil {
		return "", fmt.Errorf("writing string to temp file %v: %w", fTmp.Name(), err)
	}
	return fTmp.Name(), nil
}
