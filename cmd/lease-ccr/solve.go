package main

import (
	"errors"
	"fmt"

	"github.com/Kiel1mcc/lease-ccr-loop/internal/config"
	"github.com/Kiel1mcc/lease-ccr-loop/internal/solver"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/constants"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/output"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// errNotConverged is returned when a solve ends without matching the target.
var errNotConverged = errors.New("loop failed to converge")

type solveOptions struct {
	*rootOptions
	configPath   string
	lease        config.LeaseConfig
	solver       config.SolverConfig
	gain         float64
	outputFormat string
	history      bool
}

func newSolveCmd(root *rootOptions) *cobra.Command {
	opts := &solveOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve for the CCR that matches the target cash",
		Long: `Solve runs the selected search strategy against the payment evaluator.

Lease values come from --config when given; any lease or solver flag set on the
command line overrides the file. Without --config the flag defaults describe the
worksheet example and solve to a CCR of $492.90.

Exit status is 1 for invalid input and 2 when the search does not converge.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML configuration file")

	flags.Float64Var(&opts.lease.TargetCash, "target-cash", constants.DefaultTargetCash, "cash the customer brings to signing")
	flags.Float64Var(&opts.lease.TaxableFees, "taxable-fees", constants.DefaultTaxableFees, "capitalized taxable fees (doc + acquisition)")
	flags.Float64Var(&opts.lease.NonTaxableFee, "non-taxable-fee", constants.DefaultNonTaxableFee, "non-taxable LTR fee added to the first payment")
	flags.Float64Var(&opts.lease.TaxRate, "tax-rate", constants.DefaultTaxRate, "sales tax rate as a fraction")
	flags.Float64Var(&opts.lease.MoneyFactor, "money-factor", constants.DefaultMoneyFactor, "lease money factor")
	flags.IntVar(&opts.lease.TermMonths, "term", constants.DefaultTermMonths, "lease term in months")
	flags.Float64Var(&opts.lease.CapCostBase, "selling-price", constants.DefaultCapCostBase, "selling price (cap cost before fees)")
	flags.Float64Var(&opts.lease.Residual, "residual", constants.DefaultResidual, "residual value")
	flags.Float64Var(&opts.lease.LTRFeeConstant, "ltr-fee-constant", constants.DefaultLTRFeeConstant, "base of the flat LTR tax add-on")

	flags.StringVarP(&opts.solver.Strategy, "strategy", "s", constants.DefaultStrategy, "search strategy (linear, hybrid, bisection, hillclimb)")
	flags.Float64Var(&opts.solver.Tolerance, "tolerance", constants.DefaultTolerance, "accepted distance between total and target cash (0 selects the default; below 0.005 requires an exact match)")
	flags.IntVar(&opts.solver.MaxIterations, "max-iterations", constants.DefaultMaxIterations, "evaluator call budget")
	flags.Float64Var(&opts.solver.Step, "step", 0, "scan step, or minimum payment move for hillclimb (0 selects the strategy default)")
	flags.Float64Var(&opts.solver.Threshold, "threshold", 0, "hybrid switch threshold (0 selects 1.5 x step)")
	flags.Float64Var(&opts.gain, "gain", constants.DefaultHillClimbGain, "hillclimb error gain")
	flags.Float64Var(&opts.solver.UpperBound, "upper-bound", 0, "bisection upper bound (0 selects selling price - residual)")
	flags.StringVar(&opts.solver.Rounding, "rounding", constants.DefaultRounding, "tax rounding policy (unrounded, rounded)")

	flags.StringVarP(&opts.outputFormat, "output-format", "o", "", "output format override (pretty, csv, json)")
	flags.BoolVar(&opts.history, "history", false, "include the iteration history in pretty output")

	return cmd
}

func runSolve(cmd *cobra.Command, opts *solveOptions) error {
	conf := config.Defaults()
	if opts.configPath != "" {
		loaded, err := config.LoadConfiguration(opts.configPath)
		if err != nil {
			return &exitError{code: 1, err: fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)}
		}
		conf = loaded
	}
	opts.applyFlags(cmd.Flags(), conf)

	logger, err := initializeLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return &exitError{code: 1, err: fmt.Errorf("failed to initialize logger: %w", err)}
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return &exitError{code: 1, err: err}
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.solve"),
		)
	}

	solverOpts, err := conf.Options()
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	outcome := solver.NewSolver(logger, nil).Solve(conf.Parameters(), solverOpts)
	if err := output.Write(cmd.OutOrStdout(), outputFormat, outcome, conf.Output.History); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	switch outcome.Status {
	case solver.StatusConverged:
		return nil
	case solver.StatusInvalidInput:
		return &exitError{code: 1, err: outcome.Err}
	default:
		return &exitError{code: 2, err: fmt.Errorf("%w: %s", errNotConverged, outcome.Status)}
	}
}

// applyFlags copies flag values into conf. Without a config file every lease
// and solver flag applies; with one, only flags set on the command line do.
func (o *solveOptions) applyFlags(flags *pflag.FlagSet, conf *config.Configuration) {
	use := func(name string) bool {
		return o.configPath == "" || flags.Changed(name)
	}

	floatFlags := []struct {
		name string
		dst  *float64
		src  float64
	}{
		{"target-cash", &conf.Lease.TargetCash, o.lease.TargetCash},
		{"taxable-fees", &conf.Lease.TaxableFees, o.lease.TaxableFees},
		{"non-taxable-fee", &conf.Lease.NonTaxableFee, o.lease.NonTaxableFee},
		{"tax-rate", &conf.Lease.TaxRate, o.lease.TaxRate},
		{"money-factor", &conf.Lease.MoneyFactor, o.lease.MoneyFactor},
		{"selling-price", &conf.Lease.CapCostBase, o.lease.CapCostBase},
		{"residual", &conf.Lease.Residual, o.lease.Residual},
		{"ltr-fee-constant", &conf.Lease.LTRFeeConstant, o.lease.LTRFeeConstant},
		{"tolerance", &conf.Solver.Tolerance, o.solver.Tolerance},
		{"step", &conf.Solver.Step, o.solver.Step},
		{"threshold", &conf.Solver.Threshold, o.solver.Threshold},
		{"upper-bound", &conf.Solver.UpperBound, o.solver.UpperBound},
	}
	for _, f := range floatFlags {
		if use(f.name) {
			*f.dst = f.src
		}
	}

	if use("term") {
		conf.Lease.TermMonths = o.lease.TermMonths
	}
	if use("strategy") {
		conf.Solver.Strategy = o.solver.Strategy
	}
	if use("max-iterations") {
		conf.Solver.MaxIterations = o.solver.MaxIterations
	}
	if use("rounding") {
		conf.Solver.Rounding = o.solver.Rounding
	}
	if flags.Changed("gain") {
		gain := o.gain
		conf.Solver.Gain = &gain
	}

	if flags.Changed("output-format") {
		conf.Output.Format = o.outputFormat
	}
	if flags.Changed("history") {
		conf.Output.History = o.history
	}
}
