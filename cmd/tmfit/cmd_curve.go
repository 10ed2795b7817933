// 16 Oct 2026

package main

import (
	"fmt"

	"github.com/andrew-torda/tmfit/pkg/assay"
	"github.com/andrew-torda/tmfit/pkg/cetsa"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var curveFlags struct {
	label string
	n     int
}

func (a *app) curveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve --label L assay.yaml",
		Short: "Fit one series and print the sampled curve",
		Args:  exactArgs(1),
		RunE:  a.runCurve,
	}
	f := cmd.Flags()
	f.StringVarP(&curveFlags.label, "label", "l", "", "series to fit (required)")
	f.IntVarP(&curveFlags.n, "npoints", "n", 0, "points on the curve, default from the assay")
	return cmd
}

func (a *app) runCurve(cmd *cobra.Command, args []string) error {
	if curveFlags.label == "" {
		return usageError{fmt.Errorf("--label is required")}
	}
	as, err := assay.Load(args[0])
	if err != nil {
		return err
	}
	raw, ok := as.Raw()[curveFlags.label]
	if !ok {
		return usageError{fmt.Errorf("no series %q in %s", curveFlags.label, args[0])}
	}
	opts, err := as.Options()
	if err != nil {
		return err
	}
	opts.Logger = a.logger
	n := opts.SamplePoints
	if cmd.Flags().Changed("npoints") {
		n = curveFlags.n
	}
	s, err := cetsa.Normalize(cetsa.Series{X: as.Temps, Y: raw})
	if err != nil {
		return fmt.Errorf("%s: %w", curveFlags.label, err)
	}
	res, err := cetsa.Fit(s.X, s.Y, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", curveFlags.label, err)
	}
	c, err := cetsa.SampleSeries(res.Params, s, n)
	if err != nil {
		return err
	}
	a.logger.Debug("sampled", "label", curveFlags.label, "tm", res.Params.C, "points", n)
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
