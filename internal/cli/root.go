// Package cli wires the fewzfit command line to the fitting pipeline.
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/fewzfit/internal/config"
	"github.com/HamletTheHamster/fewzfit/internal/fit"
	"github.com/HamletTheHamster/fewzfit/internal/pipeline"
	"github.com/HamletTheHamster/fewzfit/internal/report"
	_ "github.com/HamletTheHamster/fewzfit/internal/report/gnuplot"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd(cfg, pipeline.OpenROOT).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(
	cfg config.Config,
	open pipeline.Opener,
) (
	*cobra.Command,
) {

	cmd := &cobra.Command{
		Use:   "fewzfit",
		Short: "Fit background shapes to FEWZ dimuon mass spectra",
		Long: `fewzfit fits a Breit-Wigner mixture or a double exponential to the
dimuon invariant-mass histogram of each event category in a ROOT file,
prints the fitted parameters with chi-square per degree of freedom and
writes a linear and a log-scale plot per category.

Examples:
  fewzfit                                   # all categories, double exponential
  fewzfit --function bw --categories Wide   # Breit-Wigner mixture on one category
  fewzfit --method chi2 --renderer gnuplot  # least squares, gnuplot output (-tags gnuplot)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, open)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.InputPath, "input", "i", cfg.InputPath, "ROOT file holding histos/fewz_dimu_mass_<category>")
	flags.StringSliceVarP(&cfg.Categories, "categories", "c", cfg.Categories, "categories to fit, in order")
	flags.StringVarP(&cfg.Function, "function", "f", cfg.Function, "model: breit-wigner-mixture (bw) or double-exponential (exp)")
	flags.StringVarP(&cfg.Method, "method", "m", cfg.Method, "fit method: likelihood or chi2")
	flags.StringVar(&cfg.Renderer, "renderer", cfg.Renderer, "plot backend: gonum, or gnuplot when built with -tags gnuplot")
	flags.StringVarP(&cfg.OutputDir, "outdir", "o", cfg.OutputDir, "directory for the plot images")
	flags.BoolVar(&cfg.Strict, "strict", cfg.Strict, "treat a fit that did not converge as an error")
	flags.BoolVar(&cfg.ContinueOnError, "continue", cfg.ContinueOnError, "log a failing category and go on with the next")

	return cmd
}

func run(
	cmd *cobra.Command,
	cfg config.Config,
	open pipeline.Opener,
) (
	error,
) {

	if err := cfg.Validate(); err != nil {
		return err
	}
	kind, err := cfg.Kind()
	if err != nil {
		return err
	}
	fitter, err := fit.New(cfg.Method)
	if err != nil {
		return err
	}
	renderer, err := report.NewRenderer(cfg.Renderer)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "program is running ...")

	r := &pipeline.Runner{
		Open:   open,
		Input:  cfg.InputPath,
		Kind:   kind,
		Fitter: fitter,
		Reporter: &report.Reporter{
			Console:  &report.Console{W: out},
			Renderer: renderer,
			OutDir:   cfg.OutputDir,
		},
		Strict:          cfg.Strict,
		ContinueOnError: cfg.ContinueOnError,
		Log:             log.New(cmd.ErrOrStderr(), "fewzfit: ", log.LstdFlags),
	}
	return r.Run(cfg.Categories)
}
