// 16 Oct 2026

package main

import (
	"fmt"
	"os"

	"github.com/andrew-torda/tmfit/pkg/randassay"
	"github.com/spf13/cobra"
)

var synthFlags struct {
	args randassay.Args
	out  string
}

func (a *app) synthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth [flags]",
		Short: "Write a made up assay with known curves",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		RunE: a.runSynth,
	}
	sa := &synthFlags.args
	f := cmd.Flags()
	f.Int64Var(&sa.Iseed, "seed", 1637, "random number seed")
	f.IntVarP(&sa.Nseries, "nseries", "n", 2, "number of series")
	f.StringVar(&sa.Label, "label", "S", "series label prefix")
	f.Float64SliceVar(&sa.Temps, "temps", []float64{38, 40, 43, 45, 47, 54, 57, 59, 60}, "temperatures")
	f.Float64Var(&sa.Params.A, "a", 1, "upper asymptote")
	f.Float64Var(&sa.Params.B, "b", 20, "slope")
	f.Float64Var(&sa.Params.C, "c", 48, "inflection point, Tm")
	f.Float64Var(&sa.Params.D, "d", 0.1, "lower asymptote")
	f.Float64Var(&sa.Jitter, "jitter", 4, "spread of Tm between series")
	f.Float64Var(&sa.Noise, "noise", 0.05, "relative noise on intensities")
	f.Float64Var(&sa.Scale, "scale", 300000, "intensity scale")
	f.BoolVar(&sa.MkErr, "mkerr", false, "make the last series too short")
	f.StringVarP(&synthFlags.out, "out", "o", "", "output file, default standard output")
	return cmd
}

func (a *app) runSynth(cmd *cobra.Command, _ []string) error {
	sa := synthFlags.args
	if sa.Nseries < 1 {
		return usageError{fmt.Errorf("need at least one series")}
	}
	a.logger.Debug("synth", "series", sa.Nseries, "seed", sa.Iseed)
	sa.Wrtr = cmd.OutOrStdout()
	if synthFlags.out != "" {
		fp, err := os.Create(synthFlags.out)
		if err != nil {
			return err
		}
		sa.Wrtr = fp
		if err := randassay.Write(&sa); err != nil {
			fp.Close()
			return err
		}
		return fp.Close()
	}
	return randassay.Write(&sa)
}
