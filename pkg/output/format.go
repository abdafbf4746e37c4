// Package output provides utilities for formatting and displaying solve results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Kiel1mcc/lease-ccr-loop/internal/solver"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/constants"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders outcome to w in the named format.
func Write(w io.Writer, outputFormat string, outcome solver.Outcome, withHistory bool) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CsvFormat(w, outcome)
	case constants.OutputFormatJSON:
		return JSONFormat(w, outcome)
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, outcome, withHistory)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable summary, optionally followed by the
// iteration table.
func PrettyFormat(w io.Writer, outcome solver.Outcome, withHistory bool) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "--- Lease CCR solve (%s) ---\n", outcome.Strategy)
	switch outcome.Status {
	case solver.StatusConverged:
		b.WriteString("Loop completed!\n")
	case solver.StatusInvalidInput:
		b.WriteString("Invalid input, nothing was evaluated\n")
	default:
		fmt.Fprintf(&b, "Loop failed to converge (%s)\n", outcome.Status)
	}

	fmt.Fprintf(&b, "Cash Down:     %s\n", format.Currency(outcome.TargetCash))
	if outcome.Converged() {
		fmt.Fprintf(&b, "CCR:           %s\n", format.OptionalCurrency(outcome.CCR))
	} else if outcome.Best != nil {
		fmt.Fprintf(&b, "Best CCR:      %s\n", format.Currency(outcome.Best.CCRGuess))
	}
	if outcome.Best != nil {
		fmt.Fprintf(&b, "CCR Tax:       %s\n", format.OptionalCurrency(outcome.CCRTax))
		fmt.Fprintf(&b, "First Payment: %s\n", format.OptionalCurrency(outcome.FirstPayment))
		fmt.Fprintf(&b, "Total:         %s\n", format.OptionalCurrency(outcome.Total))
	}
	_, _ = p.Fprintf(&b, "Iterations:    %d\n", outcome.Iterations)
	for _, note := range outcome.Notes {
		fmt.Fprintf(&b, "Note: %s\n", note)
	}

	if withHistory && len(outcome.History) > 0 {
		b.WriteString("\nIter | CCR Guess | CCR Tax | First Payment | Total | Error\n")
		b.WriteString("____ | _________ | _______ | _____________ | _____ | _____\n")
		for _, step := range outcome.History {
			_, _ = p.Fprintf(&b, "%d | $%.2f | $%.2f | $%.2f | $%.2f | %.2f\n",
				step.Iteration, step.CCRGuess, step.CCRTax, step.FirstPayment, step.Total, step.Error)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvFormat outputs the iteration history in comma-separated value format.
func CsvFormat(w io.Writer, outcome solver.Outcome) error {
	var b strings.Builder
	b.WriteString(`"iteration","ccrGuess","ccrTax","firstPayment","total","error"`)
	b.WriteString("\n")
	for _, step := range outcome.History {
		fmt.Fprintf(&b, `"%d","%.2f","%.2f","%.2f","%.2f","%.2f"`,
			step.Iteration, step.CCRGuess, step.CCRTax, step.FirstPayment, step.Total, step.Error)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// JSONFormat outputs the full outcome as indented JSON.
func JSONFormat(w io.Writer, outcome solver.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outcome)
}
