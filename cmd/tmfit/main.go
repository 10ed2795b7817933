// 16 Oct 2026

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/andrew-torda/tmfit/pkg/common"
)

// usageError marks errors which are the user's fault on the command line.
type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

// exitCode maps an error to what the shell sees.
func exitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return common.ExitSuccess
	case errors.As(err, &ue):
		return common.ExitUsageError
	}
	return common.ExitFailure
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tmfit:", err)
		os.Exit(exitCode(err))
	}
}
