// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/Kiel1mcc/lease-ccr-loop/internal/lease"
	"github.com/Kiel1mcc/lease-ccr-loop/internal/solver"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/constants"
)

// WorksheetParameters returns the dealer worksheet example, which converges
// to a CCR of 492.90.
func WorksheetParameters() lease.Parameters {
	return lease.Parameters{
		TargetCash:     constants.DefaultTargetCash,
		TaxableFees:    constants.DefaultTaxableFees,
		NonTaxableFee:  constants.DefaultNonTaxableFee,
		TaxRate:        constants.DefaultTaxRate,
		MoneyFactor:    constants.DefaultMoneyFactor,
		TermMonths:     constants.DefaultTermMonths,
		CapCostBase:    constants.DefaultCapCostBase,
		Residual:       constants.DefaultResidual,
		LTRFeeConstant: constants.DefaultLTRFeeConstant,
	}
}

// FindStep finds the history entry evaluated at guess.
// Returns a pointer to the step if found, nil otherwise.
func FindStep(history []solver.Step, guess float64) *solver.Step {
	for i := range history {
		if history[i].CCRGuess == guess {
			return &history[i]
		}
	}
	return nil
}
