// 16 Oct 2026

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/andrew-torda/tmfit/pkg/assay"
	"github.com/andrew-torda/tmfit/pkg/cetsa"
	"github.com/spf13/cobra"
)

var fitFlags struct {
	out    string
	format string
	curves bool
}

func (a *app) fitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit assay.yaml",
		Short: "Fit every series in an assay and report Tm",
		Args:  exactArgs(1),
		RunE:  a.runFit,
	}
	f := cmd.Flags()
	f.StringVarP(&fitFlags.out, "out", "o", "", "output file, default standard output")
	f.StringVar(&fitFlags.format, "format", "yaml", "yaml or prom")
	f.BoolVar(&fitFlags.curves, "curves", false, "include sampled curves in yaml output")
	return cmd
}

// writeReport sends the report to the right place in the right format.
func writeReport(w io.Writer, rpt assay.Report, format string) error {
	switch format {
	case "yaml":
		return assay.WriteYAML(w, rpt)
	case "prom":
		return assay.WritePrometheus(w, rpt)
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeFile(name string, rpt assay.Report, format string) error {
	fp, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := writeReport(fp, rpt, format); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

func (a *app) runFit(cmd *cobra.Command, args []string) error {
	if fitFlags.format != "yaml" && fitFlags.format != "prom" {
		return usageError{fmt.Errorf("unknown format %q, want yaml or prom", fitFlags.format)}
	}
	as, err := assay.Load(args[0])
	if err != nil {
		return err
	}
	opts, err := as.Options()
	if err != nil {
		return err
	}
	opts.Logger = a.logger
	a.logger.Info("fitting", "file", args[0], "series", len(as.Series), "method", opts.Method.String())

	an, fitErr := cetsa.Analyze(cmd.Context(), as.Temps, as.Raw(), opts)
	if fitErr != nil && !errors.Is(fitErr, cetsa.ErrIncompleteFit) {
		return fitErr
	}
	rpt := assay.NewReport(as, an, fitFlags.curves)

	if fitFlags.out == "" {
		if err := writeReport(cmd.OutOrStdout(), rpt, fitFlags.format); err != nil {
			return err
		}
	} else if err := writeFile(fitFlags.out, rpt, fitFlags.format); err != nil {
		return err
	}
	for _, s := range rpt.Shifts {
		a.logger.Info("tm shift", "control", s.Control, "treated", s.Treated, "delta", s.DeltaTm)
	}
	return fitErr
}
