// 16 Oct 2026

package main

import (
	"fmt"
	"strconv"

	"github.com/andrew-torda/tmfit/fourpl"
	"github.com/spf13/cobra"
)

var evalFlags fourpl.Params

func (a *app) evalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval --a A --b B --c C --d D x [x ...]",
		Short: "Evaluate the 4PL model at the given temperatures",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		RunE: a.runEval,
	}
	f := cmd.Flags()
	f.Float64Var(&evalFlags.A, "a", 1, "upper asymptote")
	f.Float64Var(&evalFlags.B, "b", 1, "slope")
	f.Float64Var(&evalFlags.C, "c", 50, "inflection point, Tm")
	f.Float64Var(&evalFlags.D, "d", 0, "lower asymptote")
	return cmd
}

// runEval prints x and y, tab separated, one per line.
func (a *app) runEval(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, s := range args {
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return usageError{fmt.Errorf("temperature %q: %w", s, err)}
		}
		y, err := fourpl.Eval(x, evalFlags)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%.6g\t%.6g\n", x, y)
	}
	return nil
}
