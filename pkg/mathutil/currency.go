// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"
	"math/big"

	"github.com/Kiel1mcc/lease-ccr-loop/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// The exact binary value of val is rounded, with exact ties going to the even
// cent, so 1.005 (stored just below 1.005) gives 1.00 and 0.125 gives 0.12.
func Round(val float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	rounded, _ := exactDecimal(val).RoundBank(constants.DecimalPlaces).Float64()
	if rounded == 0 {
		// normalize -0
		return 0
	}
	return rounded
}

// exactDecimal returns the exact value of a finite float64 as mant·2^exp
// rewritten over a power of ten.
func exactDecimal(val float64) decimal.Decimal {
	frac, exp := math.Frexp(val)
	mant := int64(frac * (1 << 53))
	exp -= 53
	if mant == 0 {
		return decimal.Zero
	}
	for mant&1 == 0 {
		mant >>= 1
		exp++
	}
	if exp >= 0 {
		return decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(mant), uint(exp)), 0)
	}
	// mant/2^k == mant·5^k/10^k
	scaled := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-exp)), nil)
	return decimal.NewFromBigInt(scaled.Mul(scaled, big.NewInt(mant)), int32(exp))
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Sign returns -1, 0 or 1 according to the sign of val.
func Sign(val float64) int {
	switch {
	case val > 0:
		return 1
	case val < 0:
		return -1
	default:
		return 0
	}
}

// Clamp limits value to the closed interval [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}
