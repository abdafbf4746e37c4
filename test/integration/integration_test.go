package integration

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/Kiel1mcc/lease-ccr-loop/internal/config"
	"github.com/Kiel1mcc/lease-ccr-loop/internal/lease"
	"github.com/Kiel1mcc/lease-ccr-loop/internal/solver"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/output"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/testutil"
	"go.uber.org/zap"
)

// TestExampleConfigBaseline loads the shipped example configuration the way
// the CLI does and checks the worksheet answer for every converging strategy.
func TestExampleConfigBaseline(t *testing.T) {
	conf, err := config.LoadConfiguration("../../config.yaml.example")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("example configuration has warnings: %v", warnings)
	}

	s := solver.NewSolver(zap.NewNop(), nil)

	expected := map[solver.Kind]int{
		solver.KindBisection: 22,
		solver.KindHybrid:    22,
		solver.KindHillClimb: 5,
	}

	for kind, iterations := range expected {
		t.Run(string(kind), func(t *testing.T) {
			conf.Solver.Strategy = string(kind)
			opts, err := conf.Options()
			if err != nil {
				t.Fatalf("Options() error = %v", err)
			}

			outcome := s.Solve(conf.Parameters(), opts)
			if outcome.Status != solver.StatusConverged {
				t.Fatalf("Status = %s, notes %v", outcome.Status, outcome.Notes)
			}
			if *outcome.CCR != 492.90 || *outcome.CCRTax != 35.74 || *outcome.FirstPayment != 471.36 {
				t.Errorf("got ccr %.2f tax %.2f first %.2f, want 492.90 35.74 471.36",
					*outcome.CCR, *outcome.CCRTax, *outcome.FirstPayment)
			}
			if outcome.Iterations != iterations {
				t.Errorf("Iterations = %d, want %d", outcome.Iterations, iterations)
			}
			if math.Abs(*outcome.Total-conf.Lease.TargetCash) > opts.Tolerance {
				t.Errorf("Total = %.2f is not within tolerance of %.2f", *outcome.Total, conf.Lease.TargetCash)
			}

			converged := testutil.FindStep(outcome.History, 492.90)
			if converged == nil || converged.Iteration != outcome.Iterations {
				t.Errorf("converged step not last in history: %+v", converged)
			}
		})
	}
}

// TestEveryStepReconciles checks the bookkeeping identity on every history
// entry for every strategy and rounding policy.
func TestEveryStepReconciles(t *testing.T) {
	p := testutil.WorksheetParameters()

	for _, kind := range solver.Kinds {
		for _, rounding := range []lease.RoundingPolicy{lease.TaxUnroundedBase, lease.TaxRoundedBase} {
			t.Run(string(kind)+"/"+rounding.String(), func(t *testing.T) {
				outcome := solver.Solve(p, solver.Options{Strategy: kind, Rounding: rounding, Step: linearStep(kind)})
				if len(outcome.History) != outcome.Iterations {
					t.Fatalf("Iterations = %d, history has %d", outcome.Iterations, len(outcome.History))
				}
				for _, step := range outcome.History {
					point := lease.Evaluate(p, step.CCRGuess, rounding)
					if !point.Reconciles(p.TaxRate) {
						t.Errorf("iteration %d at %.2f does not reconcile", step.Iteration, step.CCRGuess)
					}
					if point.Total != step.Total || point.FirstPayment != step.FirstPayment {
						t.Errorf("iteration %d differs from a fresh evaluation", step.Iteration)
					}
				}
			})
		}
	}
}

// TestCsvMatchesHistory renders the example solve and checks one CSV row per
// evaluator call.
func TestCsvMatchesHistory(t *testing.T) {
	outcome := solver.Solve(testutil.WorksheetParameters(), solver.Options{})

	var buf bytes.Buffer
	if err := output.CsvFormat(&buf, outcome); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != outcome.Iterations+1 {
		t.Errorf("CSV has %d rows, want %d", len(lines)-1, outcome.Iterations)
	}
	if !strings.HasPrefix(lines[len(lines)-1], `"22","492.90"`) {
		t.Errorf("last CSV row = %s", lines[len(lines)-1])
	}
}

func linearStep(kind solver.Kind) float64 {
	if kind == solver.KindLinear {
		return 5
	}
	return 0
}
