// Package lease evaluates the due-at-signing amounts of a lease for a given
// capitalized cost reduction (CCR).
package lease

import (
	"fmt"
	"strings"

	"github.com/Kiel1mcc/lease-ccr-loop/pkg/mathutil"
)

// Parameters holds the financial inputs of a single solve request.
type Parameters struct {
	TargetCash     float64 `json:"targetCash" validate:"finite"`     // C
	TaxableFees    float64 `json:"taxableFees" validate:"finite"`    // M, doc + acquisition
	NonTaxableFee  float64 `json:"nonTaxableFee" validate:"finite"`  // Q, LTR fee
	TaxRate        float64 `json:"taxRate" validate:"finite"`        // T
	MoneyFactor    float64 `json:"moneyFactor" validate:"finite"`    // F
	TermMonths     int     `json:"termMonths" validate:"gt=0"`       // N
	CapCostBase    float64 `json:"capCostBase" validate:"finite"`    // S
	Residual       float64 `json:"residual" validate:"finite"`       // R
	LTRFeeConstant float64 `json:"ltrFeeConstant" validate:"finite"` // q
}

// RoundingPolicy selects when the base payment is rounded relative to taxing it.
type RoundingPolicy int

const (
	// TaxUnroundedBase taxes the unrounded base payment.
	TaxUnroundedBase RoundingPolicy = iota
	// TaxRoundedBase rounds the base payment to cents before taxing it.
	TaxRoundedBase
)

// String returns the configuration name of the policy.
func (p RoundingPolicy) String() string {
	switch p {
	case TaxUnroundedBase:
		return "unrounded"
	case TaxRoundedBase:
		return "rounded"
	default:
		return fmt.Sprintf("RoundingPolicy(%d)", int(p))
	}
}

// ParseRoundingPolicy maps a configuration value onto a RoundingPolicy.
func ParseRoundingPolicy(value string) (RoundingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "unrounded", "unrounded-base", "unrounded_base":
		return TaxUnroundedBase, nil
	case "rounded", "rounded-base", "rounded_base":
		return TaxRoundedBase, nil
	default:
		return TaxUnroundedBase, fmt.Errorf("rounding policy %q is not supported", value)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p RoundingPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *RoundingPolicy) UnmarshalText(text []byte) error {
	policy, err := ParseRoundingPolicy(string(text))
	if err != nil {
		return err
	}
	*p = policy
	return nil
}

// PaymentPoint is the result of evaluating the lease at one CCR guess.
type PaymentPoint struct {
	CCRGuess     float64 `json:"ccrGuess"`
	CapCost      float64 `json:"capCost"`
	AdjCapCost   float64 `json:"adjCapCost"`
	Depreciation float64 `json:"depreciation"`
	RentCharge   float64 `json:"rentCharge"`
	BasePayment  float64 `json:"basePayment"`
	MonthlyTax   float64 `json:"monthlyTax"`
	LTRTax       float64 `json:"ltrTax"`
	CCRTax       float64 `json:"ccrTax"`
	FirstPayment float64 `json:"firstPayment"`
	Total        float64 `json:"total"`
}

// CapCost returns the cap cost before any reduction: S + M.
func CapCost(p Parameters) float64 {
	return p.CapCostBase + p.TaxableFees
}

// AdmissibleRange returns the CCR interval that keeps the adjusted cap cost at
// or above the residual.
func AdmissibleRange(p Parameters) (float64, float64) {
	return 0, CapCost(p) - p.Residual
}

// LTRTax returns the flat tax add-on for the LTR fee. It does not depend on the
// CCR guess and is constant for a solve.
func LTRTax(p Parameters) float64 {
	return mathutil.Round(p.LTRFeeConstant * p.TaxRate)
}

// Evaluate computes the first payment, the CCR tax and the due-at-signing total
// for ccrGuess. Callers must validate p first; Evaluate does not check for a
// zero term.
func Evaluate(p Parameters, ccrGuess float64, policy RoundingPolicy) PaymentPoint {
	capCost := CapCost(p)
	adjCapCost := capCost - ccrGuess

	depreciation := (adjCapCost - p.Residual) / float64(p.TermMonths)
	rentCharge := (adjCapCost + p.Residual) * p.MoneyFactor

	basePayment := depreciation + rentCharge
	if policy == TaxRoundedBase {
		basePayment = mathutil.Round(basePayment)
	}
	monthlyTax := mathutil.Round(basePayment * p.TaxRate)
	ltrTax := LTRTax(p)

	firstPayment := mathutil.Round(basePayment + monthlyTax + p.NonTaxableFee + ltrTax)
	ccrTax := mathutil.Round(ccrGuess * p.TaxRate)
	total := mathutil.Round(ccrGuess + ccrTax + firstPayment)

	return PaymentPoint{
		CCRGuess:     ccrGuess,
		CapCost:      capCost,
		AdjCapCost:   adjCapCost,
		Depreciation: depreciation,
		RentCharge:   rentCharge,
		BasePayment:  basePayment,
		MonthlyTax:   monthlyTax,
		LTRTax:       ltrTax,
		CCRTax:       ccrTax,
		FirstPayment: firstPayment,
		Total:        total,
	}
}

// Reconciles reports whether total, ccr tax and first payment tie back to the
// guess to the cent.
func (pp PaymentPoint) Reconciles(taxRate float64) bool {
	ccrTax := mathutil.Round(pp.CCRGuess * taxRate)
	return ccrTax == pp.CCRTax && mathutil.Round(pp.CCRGuess+ccrTax+pp.FirstPayment) == pp.Total
}
