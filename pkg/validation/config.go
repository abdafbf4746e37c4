// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"math"

	"github.com/Kiel1mcc/lease-ccr-loop/pkg/mathutil"
)

// ValidateLinearReach warns when a downward scan from start with the given step
// cannot reach zero within the iteration budget.
func ValidateLinearReach(strategy string, start, step float64, maxIterations int) string {
	if step <= 0 || maxIterations <= 0 {
		return ""
	}
	needed := math.Ceil(start / step)
	if needed > float64(maxIterations) {
		return fmt.Sprintf("%s scan from %.2f with step %.2f needs up to %.0f iterations but the budget is %d - the search may stop before covering the range",
			strategy, start, step, needed, maxIterations)
	}
	return ""
}

// ValidateTargetCash warns when the target cash exceeds the largest admissible CCR,
// in which case scans start at the top of the admissible range instead.
func ValidateTargetCash(targetCash, admissibleHigh float64) string {
	if targetCash > admissibleHigh {
		return fmt.Sprintf("target cash %.2f exceeds the admissible CCR range [0, %.2f] - scans start at %.2f",
			targetCash, admissibleHigh, admissibleHigh)
	}
	return ""
}

// ValidateUpperBound warns when a bisection upper bound leaves the admissible range.
func ValidateUpperBound(upper, admissibleHigh float64) string {
	if upper > admissibleHigh {
		return fmt.Sprintf("bisection upper bound %.2f exceeds the admissible CCR %.2f - adjusted cap cost falls below residual",
			upper, admissibleHigh)
	}
	return ""
}

// ValidateTaxRate warns when a tax rate looks like a percentage instead of a fraction.
func ValidateTaxRate(rate float64) string {
	if rate >= 1 {
		return fmt.Sprintf("tax rate %.4f is not a fraction - did you mean %.4f?", rate, rate/100)
	}
	return ""
}

// ConfigValidator collects the values needed to produce configuration warnings.
type ConfigValidator struct {
	Strategy       string
	TargetCash     float64
	TaxRate        float64
	AdmissibleHigh float64
	Step           float64
	UpperBound     float64
	MaxIterations  int
}

// ValidateAll returns every configuration warning. Warnings never stop a solve.
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if w := ValidateTaxRate(cv.TaxRate); w != "" {
		warnings = append(warnings, w)
	}

	if w := ValidateTargetCash(cv.TargetCash, cv.AdmissibleHigh); w != "" {
		warnings = append(warnings, w)
	}

	switch cv.Strategy {
	case "linear":
		start := mathutil.Min(cv.TargetCash, cv.AdmissibleHigh)
		if w := ValidateLinearReach(cv.Strategy, start, cv.Step, cv.MaxIterations); w != "" {
			warnings = append(warnings, w)
		}
	case "bisection":
		if cv.UpperBound > 0 {
			if w := ValidateUpperBound(cv.UpperBound, cv.AdmissibleHigh); w != "" {
				warnings = append(warnings, w)
			}
		}
	}

	return warnings
}
