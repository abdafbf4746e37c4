// Package solver finds the capitalized cost reduction whose due-at-signing
// total matches a target cash amount.
package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/Kiel1mcc/lease-ccr-loop/internal/lease"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/constants"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/mathutil"
	"go.uber.org/zap"
)

// Status reports how a solve ended.
type Status string

const (
	// StatusConverged means a guess matched the target within tolerance.
	StatusConverged Status = "converged"
	// StatusNotConverged means the budget or range ran out; Best holds the closest guess.
	StatusNotConverged Status = "not_converged"
	// StatusInvalidInput means the parameters or options were rejected before searching.
	StatusInvalidInput Status = "invalid_input"
	// StatusNoValidBracket means the bracket ends did not straddle the target.
	StatusNoValidBracket Status = "no_valid_bracket"
)

// Options tunes a solve. Zero values select the defaults.
type Options struct {
	Strategy      Kind                 `json:"strategy"`
	// Tolerance of zero selects constants.DefaultTolerance. Totals are whole
	// cents, so any value below 0.005 asks for an exact match.
	Tolerance     float64              `json:"tolerance" validate:"gte=0"`
	MaxIterations int                  `json:"maxIterations" validate:"gte=0"`
	Step          float64              `json:"step,omitempty" validate:"gte=0"`
	Threshold     float64              `json:"threshold,omitempty" validate:"gte=0"`
	Gain          *float64             `json:"gain,omitempty" validate:"omitempty,gte=0"`
	UpperBound    float64              `json:"upperBound,omitempty" validate:"gte=0"`
	Rounding      lease.RoundingPolicy `json:"rounding"`
}

// WithDefaults returns a copy of o with unset fields filled in.
func (o Options) WithDefaults() Options {
	if kind, err := ParseKind(string(o.Strategy)); err == nil {
		o.Strategy = kind
	}
	if o.Tolerance == 0 {
		o.Tolerance = constants.DefaultTolerance
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = constants.DefaultMaxIterations
	}
	return o
}

// Validate rejects negative tunables and unknown strategies.
func (o Options) Validate() error {
	if err := lease.Validator().Struct(o); err != nil {
		return fmt.Errorf("invalid solver options: %w", err)
	}
	if _, err := ParseKind(string(o.Strategy)); err != nil {
		return fmt.Errorf("invalid solver options: %w", err)
	}
	return nil
}

// Outcome is the result of one solve. CCR is set only when Status is
// StatusConverged; otherwise CCRTax, FirstPayment and Total describe Best.
type Outcome struct {
	Status       Status   `json:"status"`
	Strategy     Kind     `json:"strategy"`
	TargetCash   float64  `json:"targetCash"`
	Tolerance    float64  `json:"tolerance"`
	CCR          *float64 `json:"ccr"`
	CCRTax       *float64 `json:"ccrTax"`
	FirstPayment *float64 `json:"firstPayment"`
	Total        *float64 `json:"total"`
	Best         *Step    `json:"best,omitempty"`
	Iterations   int      `json:"iterations"`
	History      []Step   `json:"history"`
	Notes        []string `json:"notes,omitempty"`
	Err          error    `json:"-"`
}

// Converged reports whether the outcome is an exact match within tolerance.
func (o Outcome) Converged() bool {
	return o.Status == StatusConverged
}

// bestGuess is the running closest guess, folded over the history.
type bestGuess struct {
	step Step
	ok   bool
}

func (b bestGuess) consider(step Step) bestGuess {
	if !b.ok || math.Abs(step.Error) < math.Abs(b.step.Error) {
		return bestGuess{step: step, ok: true}
	}
	return b
}

// Solver runs searches and reports them to the logger and metrics.
type Solver struct {
	logger  *zap.Logger
	metrics *Metrics
}

// NewSolver constructs a Solver. Both arguments may be nil.
func NewSolver(logger *zap.Logger, metrics *Metrics) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{logger: logger, metrics: metrics}
}

// Solve runs a solve with a silent Solver.
func Solve(params lease.Parameters, opts Options) Outcome {
	return NewSolver(nil, nil).Solve(params, opts)
}

// Solve searches for the CCR that makes the due-at-signing total equal
// params.TargetCash. It never returns an error; failures are reported through
// Outcome.Status.
func (s *Solver) Solve(params lease.Parameters, opts Options) Outcome {
	opts = opts.WithDefaults()
	outcome := s.search(params, opts)
	s.metrics.observe(outcome)

	fields := []zap.Field{
		zap.String("op", "solver.Solve"),
		zap.String("strategy", string(outcome.Strategy)),
		zap.String("status", string(outcome.Status)),
		zap.Float64("targetCash", params.TargetCash),
		zap.Int("iterations", outcome.Iterations),
	}
	if outcome.Best != nil {
		fields = append(fields,
			zap.Float64("ccr", outcome.Best.CCRGuess),
			zap.Float64("total", outcome.Best.Total),
		)
	}
	if outcome.Err != nil {
		fields = append(fields, zap.Error(outcome.Err))
	}
	s.logger.Info("lease ccr solve finished", fields...)

	return outcome
}

func (s *Solver) search(params lease.Parameters, opts Options) Outcome {
	outcome := Outcome{
		Strategy:   opts.Strategy,
		TargetCash: params.TargetCash,
		Tolerance:  opts.Tolerance,
		History:    []Step{},
	}

	if err := lease.Validate(params); err != nil {
		return invalid(outcome, err)
	}
	if err := opts.Validate(); err != nil {
		return invalid(outcome, err)
	}
	strategy, err := NewStrategy(params, opts)
	if err != nil {
		return invalid(outcome, err)
	}

	var (
		best    bestGuess
		bracket Bracket
		status  = StatusNotConverged
	)

	for len(outcome.History) < opts.MaxIterations {
		proposal := strategy.Propose(outcome.History, bracket)
		if proposal.Err != nil {
			if errors.Is(proposal.Err, ErrNoValidBracket) {
				status = StatusNoValidBracket
			}
			outcome.Err = proposal.Err
			outcome.Notes = append(outcome.Notes, proposal.Err.Error())
			break
		}
		if proposal.Done {
			outcome.Notes = append(outcome.Notes, proposal.Reason)
			break
		}

		point := lease.Evaluate(params, proposal.Guess, opts.Rounding)
		step := Step{
			Iteration:    len(outcome.History) + 1,
			CCRGuess:     point.CCRGuess,
			CCRTax:       point.CCRTax,
			FirstPayment: point.FirstPayment,
			Total:        point.Total,
			Error:        point.Total - params.TargetCash,
		}
		outcome.History = append(outcome.History, step)
		best = best.consider(step)
		bracket = bracket.Observe(step)

		s.logger.Debug("ccr iteration",
			zap.String("op", "solver.search"),
			zap.Int("iteration", step.Iteration),
			zap.Float64("ccrGuess", step.CCRGuess),
			zap.Float64("ccrTax", step.CCRTax),
			zap.Float64("firstPayment", step.FirstPayment),
			zap.Float64("total", step.Total),
		)

		if mathutil.WithinTolerance(step.Total, params.TargetCash, opts.Tolerance) {
			status = StatusConverged
			break
		}
	}

	if status == StatusNotConverged && len(outcome.Notes) == 0 {
		// strategies are stateless, so asking once more costs no evaluator call
		if proposal := strategy.Propose(outcome.History, bracket); errors.Is(proposal.Err, ErrNoValidBracket) {
			status = StatusNoValidBracket
			outcome.Err = proposal.Err
			outcome.Notes = append(outcome.Notes, proposal.Err.Error())
		} else {
			outcome.Notes = append(outcome.Notes, fmt.Sprintf("iteration budget of %d exhausted", opts.MaxIterations))
		}
	}

	outcome.Status = status
	outcome.Iterations = len(outcome.History)
	if best.ok {
		b := best.step
		outcome.Best = &b
		outcome.CCRTax = &b.CCRTax
		outcome.FirstPayment = &b.FirstPayment
		outcome.Total = &b.Total
		if status == StatusConverged {
			outcome.CCR = &b.CCRGuess
		} else {
			outcome.Notes = append(outcome.Notes, fmt.Sprintf(
				"best guess %.2f gives total %.2f, %.2f from target %.2f",
				b.CCRGuess, b.Total, math.Abs(b.Error), params.TargetCash))
		}
	}
	return outcome
}

func invalid(outcome Outcome, err error) Outcome {
	outcome.Status = StatusInvalidInput
	outcome.Err = err
	outcome.Notes = append(outcome.Notes, err.Error())
	return outcome
}
