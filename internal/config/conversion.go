// Package config defines conversion utilities for configuration objects.
package config

import (
	"fmt"

	"github.com/Kiel1mcc/lease-ccr-loop/internal/lease"
	"github.com/Kiel1mcc/lease-ccr-loop/internal/solver"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/constants"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/validation"
)

// Parameters converts the lease section into evaluator parameters.
func (c *Configuration) Parameters() lease.Parameters {
	return lease.Parameters{
		TargetCash:     c.Lease.TargetCash,
		TaxableFees:    c.Lease.TaxableFees,
		NonTaxableFee:  c.Lease.NonTaxableFee,
		TaxRate:        c.Lease.TaxRate,
		MoneyFactor:    c.Lease.MoneyFactor,
		TermMonths:     c.Lease.TermMonths,
		CapCostBase:    c.Lease.CapCostBase,
		Residual:       c.Lease.Residual,
		LTRFeeConstant: c.Lease.LTRFeeConstant,
	}
}

// Options converts the solver section into solver options.
func (c *Configuration) Options() (solver.Options, error) {
	kind, err := solver.ParseKind(c.Solver.Strategy)
	if err != nil {
		return solver.Options{}, err
	}
	rounding, err := lease.ParseRoundingPolicy(c.Solver.Rounding)
	if err != nil {
		return solver.Options{}, err
	}

	var gain *float64
	if c.Solver.Gain != nil {
		g := *c.Solver.Gain
		gain = &g
	}

	opts := solver.Options{
		Strategy:      kind,
		Tolerance:     c.Solver.Tolerance,
		MaxIterations: c.Solver.MaxIterations,
		Step:          c.Solver.Step,
		Threshold:     c.Solver.Threshold,
		Gain:          gain,
		UpperBound:    c.Solver.UpperBound,
		Rounding:      rounding,
	}
	if err := opts.Validate(); err != nil {
		return solver.Options{}, fmt.Errorf("solver section: %w", err)
	}
	return opts, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard errors are left to the solver.
func (c *Configuration) ValidateConfiguration() []string {
	params := c.Parameters()
	_, admissibleHigh := lease.AdmissibleRange(params)

	step := c.Solver.Step
	if step <= 0 {
		step = defaultStep(c.Solver.Strategy)
	}

	kind, err := solver.ParseKind(c.Solver.Strategy)
	if err != nil {
		return []string{err.Error()}
	}

	validator := validation.ConfigValidator{
		Strategy:       string(kind),
		TargetCash:     params.TargetCash,
		TaxRate:        params.TaxRate,
		AdmissibleHigh: admissibleHigh,
		Step:           step,
		UpperBound:     c.Solver.UpperBound,
		MaxIterations:  c.Solver.MaxIterations,
	}
	return validator.ValidateAll()
}

func defaultStep(strategy string) float64 {
	kind, _ := solver.ParseKind(strategy)
	switch kind {
	case solver.KindLinear:
		return constants.DefaultLinearStep
	case solver.KindHybrid:
		return constants.DefaultHybridStep
	case solver.KindHillClimb:
		return constants.DefaultHillClimbStep
	}
	return 0
}
