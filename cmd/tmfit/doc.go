// 16 Oct 2026

/*
Tmfit fits four parameter logistic curves to thermal shift (CETSA)
measurements and reports the melting temperature, Tm, of each series.

The assay file is yaml. It lists the temperatures, the raw intensity of
each labelled series at those temperatures, optionally the label of
the control series and optionally settings for the fit.

	temps: [38, 40, 43, 45, 47, 54, 57, 59, 60]
	control: CON
	series:
	  - label: CON
	    raw: [293580, 280040, 259618, 47553, 34466, 37239, 41036, 31975, 31000]
	fit:
	  method: lm

Each series is divided by its first value, then fitted.

Usage:

	tmfit fit [flags] assay.yaml
	tmfit curve --label L [-n npoints] assay.yaml
	tmfit eval --a A --b B --c C --d D x [x ...]
	tmfit synth [-n nseries] [--seed N] [--noise F] [-o file]

The flags for fit are:

	-o filename
		Write the report here instead of standard output
	--format yaml|prom
		yaml is the default. prom is the prometheus text format, for
		a node exporter textfile collector.
	--curves
		Include the sampled fitted curves in a yaml report

synth writes an assay with curves made from a known 4PL, scaled and
with noise added, for trying out the fits.

Global flags are --log-level (debug, info, warn, error) and --log-json.
Logging goes to standard error.

The exit status is 0 on success, 1 if anything failed, including a
single series which could not be fitted, and 2 for usage errors.
*/
package main
