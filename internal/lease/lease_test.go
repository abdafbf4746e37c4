package lease

import (
	"errors"
	"math"
	"testing"

	"github.com/Kiel1mcc/lease-ccr-loop/pkg/mathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// worksheetParams are the defaults of the dealer worksheet.
func worksheetParams() Parameters {
	return Parameters{
		TargetCash:     1000.00,
		TaxableFees:    900.00,
		NonTaxableFee:  62.50,
		TaxRate:        0.0725,
		MoneyFactor:    0.00293,
		TermMonths:     36,
		CapCostBase:    25040.00,
		Residual:       16276.00,
		LTRFeeConstant: 62.50,
	}
}

func TestEvaluateKnownPoints(t *testing.T) {
	p := worksheetParams()

	tests := []struct {
		name         string
		ccr          float64
		ccrTax       float64
		firstPayment float64
		total        float64
	}{
		{"zero CCR", 0, 0, 487.60, 487.60},
		{"tax stored below half cent", 2.00, 0.14, 487.54, 489.68},
		{"tax stored below half cent at 10.00", 10.00, 0.72, 487.27, 497.99},
		{"solution", 492.90, 35.74, 471.36, 1000.00},
		{"full cash", 1000, 72.50, 454.66, 1527.16},
		{"bisection upper bound", 8764, 635.39, 198.96, 9598.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point := Evaluate(p, tt.ccr, TaxUnroundedBase)
			assert.Equal(t, tt.ccrTax, point.CCRTax)
			assert.Equal(t, tt.firstPayment, point.FirstPayment)
			assert.Equal(t, tt.total, point.Total)
			assert.True(t, point.Reconciles(p.TaxRate))
		})
	}
}

func TestEvaluateBreakdown(t *testing.T) {
	p := worksheetParams()
	point := Evaluate(p, 0, TaxUnroundedBase)

	assert.Equal(t, 25940.0, point.CapCost)
	assert.Equal(t, 25940.0, point.AdjCapCost)
	assert.InDelta(t, 9664.0/36, point.Depreciation, 1e-9)
	assert.InDelta(t, 42216*0.00293, point.RentCharge, 1e-9)
	assert.Equal(t, 28.43, point.MonthlyTax)
	assert.Equal(t, 4.53, point.LTRTax)
}

func TestFirstPaymentIdentity(t *testing.T) {
	p := worksheetParams()
	for _, ccr := range []float64{0, 123.45, 492.9, 2500, 9000} {
		point := Evaluate(p, ccr, TaxUnroundedBase)
		expected := mathutil.Round(point.BasePayment + point.MonthlyTax + p.NonTaxableFee + point.LTRTax)
		assert.Equal(t, expected, point.FirstPayment, "ccr %.2f", ccr)
		assert.Equal(t, LTRTax(p), point.LTRTax, "LTR tax must not depend on the guess")
	}
}

func TestFirstPaymentMonotonic(t *testing.T) {
	cases := map[string]Parameters{
		"worksheet": worksheetParams(),
		"short term high factor": func() Parameters {
			p := worksheetParams()
			p.TermMonths = 24
			p.MoneyFactor = 0.0041
			return p
		}(),
		"no tax": func() Parameters {
			p := worksheetParams()
			p.TaxRate = 0
			return p
		}(),
	}

	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, hi := AdmissibleRange(p)
			for _, policy := range []RoundingPolicy{TaxUnroundedBase, TaxRoundedBase} {
				previous := math.Inf(1)
				const samples = 25
				for i := 0; i <= samples; i++ {
					ccr := hi * float64(i) / samples
					point := Evaluate(p, ccr, policy)
					assert.LessOrEqual(t, point.FirstPayment, previous, "policy %s ccr %.2f", policy, ccr)
					previous = point.FirstPayment
				}
			}
		})
	}
}

func TestRoundingPoliciesDiffer(t *testing.T) {
	p := worksheetParams()

	unrounded := Evaluate(p, 9664, TaxUnroundedBase)
	rounded := Evaluate(p, 9664, TaxRoundedBase)

	assert.Equal(t, 169.32, unrounded.FirstPayment)
	assert.Equal(t, 169.33, rounded.FirstPayment)
	assert.True(t, unrounded.Reconciles(p.TaxRate))
	assert.True(t, rounded.Reconciles(p.TaxRate))
}

func TestEvaluateIsPure(t *testing.T) {
	p := worksheetParams()
	first := Evaluate(p, 777.77, TaxRoundedBase)
	second := Evaluate(p, 777.77, TaxRoundedBase)
	assert.Equal(t, first, second)
}

func TestAdmissibleRange(t *testing.T) {
	lo, hi := AdmissibleRange(worksheetParams())
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 9664.0, hi)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(worksheetParams()))

	tests := []struct {
		name   string
		mutate func(*Parameters)
	}{
		{"zero term", func(p *Parameters) { p.TermMonths = 0 }},
		{"negative term", func(p *Parameters) { p.TermMonths = -12 }},
		{"residual equals cap cost", func(p *Parameters) { p.Residual = p.CapCostBase + p.TaxableFees }},
		{"residual above cap cost", func(p *Parameters) { p.Residual = 30000 }},
		{"NaN money factor", func(p *Parameters) { p.MoneyFactor = math.NaN() }},
		{"infinite target", func(p *Parameters) { p.TargetCash = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := worksheetParams()
			tt.mutate(&p)
			err := Validate(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameters))
		})
	}
}

func TestValidateAllowsImplausibleValues(t *testing.T) {
	p := worksheetParams()
	p.Residual = -500
	p.TaxRate = 1.5
	assert.NoError(t, Validate(p))
}

func TestParseRoundingPolicy(t *testing.T) {
	policy, err := ParseRoundingPolicy("")
	require.NoError(t, err)
	assert.Equal(t, TaxUnroundedBase, policy)

	policy, err = ParseRoundingPolicy(" Rounded ")
	require.NoError(t, err)
	assert.Equal(t, TaxRoundedBase, policy)
	assert.Equal(t, "rounded", policy.String())

	_, err = ParseRoundingPolicy("banker")
	assert.Error(t, err)
}
