// Package format renders currency amounts for display.
package format

import (
	"math"

	"github.com/Kiel1mcc/lease-ccr-loop/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := NumericCurrency(math.Abs(amount))
	if mathutil.Round(amount) < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return printer.Sprintf("%.2f", mathutil.Round(amount))
}

// OptionalCurrency formats a possibly absent amount, rendering nil as "n/a".
func OptionalCurrency(amount *float64) string {
	if amount == nil {
		return "n/a"
	}
	return Currency(*amount)
}
