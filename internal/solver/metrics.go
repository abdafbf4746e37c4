package solver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments solves. A nil *Metrics records nothing.
type Metrics struct {
	solves     *prometheus.CounterVec
	iterations *prometheus.HistogramVec
}

// NewMetrics creates the solver collectors and registers them with reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaseccr",
			Name:      "solves_total",
			Help:      "Number of CCR solves by strategy and outcome status.",
		}, []string{"strategy", "status"}),
		iterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leaseccr",
			Name:      "solve_iterations",
			Help:      "Evaluator calls per CCR solve.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"strategy"}),
	}
	if reg != nil {
		reg.MustRegister(m.solves, m.iterations)
	}
	return m
}

func (m *Metrics) observe(outcome Outcome) {
	if m == nil {
		return
	}
	strategy := string(outcome.Strategy)
	m.solves.WithLabelValues(strategy, string(outcome.Status)).Inc()
	if outcome.Status != StatusInvalidInput {
		m.iterations.WithLabelValues(strategy).Observe(float64(outcome.Iterations))
	}
}
