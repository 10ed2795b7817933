// 16 Oct 2026

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// app carries what the subcommands share.
type app struct {
	logLevel string
	logJSON  bool
	logger   *slog.Logger
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return lvl, fmt.Errorf("log level %q: want debug, info, warn or error", s)
	}
	return lvl, nil
}

// setupLogger builds the logger once the flags are known.
func (a *app) setupLogger(cmd *cobra.Command, _ []string) error {
	lvl, err := parseLevel(a.logLevel)
	if err != nil {
		return usageError{err}
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	if a.logJSON {
		a.logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), hopts))
	} else {
		a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), hopts))
	}
	return nil
}

// exactArgs is cobra.ExactArgs, but a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tmfit",
		Short: "Fit 4PL curves to thermal shift assays and report Tm",
		Long: "tmfit normalises each series of a thermal shift assay, fits a four\n" +
			"parameter logistic and reports the melting temperature (inflection point).",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setupLogger,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&a.logLevel, "log-level", "warn", "debug, info, warn or error")
	f.BoolVar(&a.logJSON, "log-json", false, "log as json instead of text")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(a.fitCmd())
	root.AddCommand(a.curveCmd())
	root.AddCommand(a.evalCmd())
	root.AddCommand(a.synthCmd())
	return root
}
