package integration

import (
	"testing"

	"github.com/Kiel1mcc/lease-ccr-loop/internal/lease"
	"github.com/Kiel1mcc/lease-ccr-loop/internal/solver"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/testutil"
)

func BenchmarkEvaluate(b *testing.B) {
	p := testutil.WorksheetParameters()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = lease.Evaluate(p, 492.90, lease.TaxUnroundedBase)
	}
}

func BenchmarkSolve(b *testing.B) {
	p := testutil.WorksheetParameters()

	for _, kind := range []solver.Kind{solver.KindBisection, solver.KindHybrid, solver.KindHillClimb} {
		b.Run(string(kind), func(b *testing.B) {
			opts := solver.Options{Strategy: kind}
			for i := 0; i < b.N; i++ {
				if outcome := solver.Solve(p, opts); !outcome.Converged() {
					b.Fatalf("%s did not converge: %v", kind, outcome.Notes)
				}
			}
		})
	}
}
