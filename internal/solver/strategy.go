package solver

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Kiel1mcc/lease-ccr-loop/internal/lease"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/constants"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/mathutil"
)

// ErrNoValidBracket is reported when the bracket ends do not straddle the target.
var ErrNoValidBracket = errors.New("no valid bracket")

// Kind identifies a search strategy.
type Kind string

const (
	// KindLinear steps the CCR down from the target by a fixed amount.
	KindLinear Kind = "linear"
	// KindHybrid steps the CCR until the target is bracketed, then bisects.
	KindHybrid Kind = "hybrid"
	// KindBisection halves a bracket whose ends straddle the target.
	KindBisection Kind = "bisection"
	// KindHillClimb adjusts the first payment in proportion to the error.
	KindHillClimb Kind = "hillclimb"
)

// Kinds lists every supported strategy.
var Kinds = []Kind{KindLinear, KindHybrid, KindBisection, KindHillClimb}

// ParseKind maps a configuration value onto a strategy Kind.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return Kind(constants.DefaultStrategy), nil
	case "linear", "linear-scan", "downward":
		return KindLinear, nil
	case "hybrid", "linear-bisection":
		return KindHybrid, nil
	case "bisection", "binary":
		return KindBisection, nil
	case "hillclimb", "hill-climb", "proportional":
		return KindHillClimb, nil
	default:
		return "", fmt.Errorf("strategy %q is not supported", value)
	}
}

// Step is one evaluator call recorded in the history.
type Step struct {
	Iteration    int     `json:"iteration"`
	CCRGuess     float64 `json:"ccrGuess"`
	CCRTax       float64 `json:"ccrTax"`
	FirstPayment float64 `json:"firstPayment"`
	Total        float64 `json:"total"`
	Error        float64 `json:"error"`
}

// Bracket tracks the guesses closest to the target from either side: Lo is the
// highest guess whose total fell short, Hi the lowest guess whose total overshot.
type Bracket struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	HasLo bool    `json:"hasLo"`
	HasHi bool    `json:"hasHi"`
}

// Closed reports whether both sides of the target have been observed.
func (b Bracket) Closed() bool {
	return b.HasLo && b.HasHi
}

// Valid reports whether the bracket is closed and ordered the way an
// increasing total requires.
func (b Bracket) Valid() bool {
	return b.Closed() && b.Lo < b.Hi
}

// Observe returns the bracket narrowed by step.
func (b Bracket) Observe(step Step) Bracket {
	switch {
	case step.Error > 0:
		if !b.HasHi || step.CCRGuess < b.Hi {
			b.Hi = step.CCRGuess
			b.HasHi = true
		}
	case step.Error < 0:
		if !b.HasLo || step.CCRGuess > b.Lo {
			b.Lo = step.CCRGuess
			b.HasLo = true
		}
	}
	return b
}

// Proposal is a strategy's answer to "what should be evaluated next".
type Proposal struct {
	Guess  float64
	Done   bool
	Reason string
	Err    error
}

func next(guess float64) Proposal {
	return Proposal{Guess: guess}
}

func done(reason string) Proposal {
	return Proposal{Done: true, Reason: reason}
}

// Strategy proposes CCR guesses. Implementations are stateless: everything they
// need is derived from the history and bracket the driver passes in.
type Strategy interface {
	Kind() Kind
	Propose(history []Step, bracket Bracket) Proposal
}

// LinearScan walks down from Start by Step until a match or until the guess
// goes negative.
type LinearScan struct {
	Start float64
	Step  float64
}

func (LinearScan) Kind() Kind { return KindLinear }

func (s LinearScan) Propose(history []Step, _ Bracket) Proposal {
	if len(history) == 0 {
		return next(s.Start)
	}
	last := history[len(history)-1].CCRGuess
	guess := mathutil.Round(last - s.Step)
	if guess < 0 {
		return done("guess left the admissible range below zero")
	}
	if guess == last {
		return done(fmt.Sprintf("step %.4f is below one cent", s.Step))
	}
	return next(guess)
}

// Hybrid scans with a coarse step toward the target and bisects once the
// target is bracketed. Within Threshold of the target it tries one threshold
// past the last guess to close the bracket early.
type Hybrid struct {
	Start     float64
	Step      float64
	Threshold float64
	Min       float64
	Max       float64
}

func (Hybrid) Kind() Kind { return KindHybrid }

func (s Hybrid) Propose(history []Step, bracket Bracket) Proposal {
	if len(history) == 0 {
		return next(s.Start)
	}
	if bracket.Closed() {
		if !bracket.Valid() {
			return Proposal{Err: decreasing(bracket)}
		}
		return bisect(bracket)
	}

	last := history[len(history)-1]
	move := s.Step
	if math.Abs(last.Error) <= s.Threshold {
		move = s.Threshold
	}
	guess := mathutil.Round(last.CCRGuess - float64(mathutil.Sign(last.Error))*move)
	guess = mathutil.Clamp(guess, s.Min, s.Max)
	if guess == last.CCRGuess {
		return done("guess left the admissible range")
	}
	return next(guess)
}

// Bisection evaluates both ends of [Lo, Hi] and then halves the bracket.
type Bisection struct {
	Lo float64
	Hi float64
}

func (Bisection) Kind() Kind { return KindBisection }

func (s Bisection) Propose(history []Step, bracket Bracket) Proposal {
	switch len(history) {
	case 0:
		return next(s.Lo)
	case 1:
		return next(s.Hi)
	}
	if bracket.Closed() && !bracket.Valid() {
		return Proposal{Err: decreasing(bracket)}
	}
	if !bracket.Valid() {
		lo, hi := history[0], history[1]
		return Proposal{Err: fmt.Errorf("%w: totals %.2f at %.2f and %.2f at %.2f do not straddle the target",
			ErrNoValidBracket, lo.Total, lo.CCRGuess, hi.Total, hi.CCRGuess)}
	}
	return bisect(bracket)
}

// decreasing reports an inverted bracket: a guess overshot below a guess that fell short.
func decreasing(bracket Bracket) error {
	return fmt.Errorf("%w: total decreases between %.2f and %.2f", ErrNoValidBracket, bracket.Hi, bracket.Lo)
}

func bisect(bracket Bracket) Proposal {
	mid := mathutil.Round((bracket.Lo + bracket.Hi) / 2)
	if mid <= bracket.Lo || mid >= bracket.Hi {
		return done(fmt.Sprintf("bracket [%.2f, %.2f] cannot be split below one cent", bracket.Lo, bracket.Hi))
	}
	return next(mid)
}

// HillClimb searches on the first payment instead of the CCR. The first call
// evaluates a zero CCR to get the base payment estimate; afterwards the payment
// moves by sign(error)·max(Step, Gain·|error|) and the guess is C − payment.
// Its error is not assumed monotonic, so the driver's best-seen guess matters.
type HillClimb struct {
	Target float64
	Step   float64
	Gain   float64
	Min    float64
	Max    float64
}

func (HillClimb) Kind() Kind { return KindHillClimb }

func (s HillClimb) Propose(history []Step, _ Bracket) Proposal {
	if len(history) == 0 {
		return next(s.Min)
	}

	payment := s.payment(history)
	guess := mathutil.Clamp(mathutil.Round(s.Target-payment), s.Min, s.Max)
	if len(history) > 1 && guess == history[len(history)-1].CCRGuess {
		return done(fmt.Sprintf("payment search stalled at %.2f", guess))
	}
	return next(guess)
}

// payment replays the payment variable over the history.
func (s HillClimb) payment(history []Step) float64 {
	payment := history[0].FirstPayment
	for _, step := range history[1:] {
		move := mathutil.Max(s.Step, s.Gain*math.Abs(step.Error))
		payment = mathutil.Round(payment + float64(mathutil.Sign(step.Error))*move)
	}
	return payment
}

// NewStrategy builds the strategy selected by opts for params. opts must have
// defaults applied.
func NewStrategy(params lease.Parameters, opts Options) (Strategy, error) {
	lo, hi := lease.AdmissibleRange(params)
	start := mathutil.Clamp(mathutil.Round(params.TargetCash), lo, hi)

	switch opts.Strategy {
	case KindLinear:
		return LinearScan{Start: start, Step: stepOrDefault(opts.Step, constants.DefaultLinearStep)}, nil
	case KindHybrid:
		step := stepOrDefault(opts.Step, constants.DefaultHybridStep)
		threshold := opts.Threshold
		if threshold <= 0 {
			threshold = constants.HybridThresholdFactor * step
		}
		return Hybrid{Start: start, Step: step, Threshold: threshold, Min: lo, Max: hi}, nil
	case KindBisection:
		upper := opts.UpperBound
		if upper <= 0 {
			upper = params.CapCostBase - params.Residual
			if upper <= 0 {
				upper = hi
			}
		}
		return Bisection{Lo: lo, Hi: mathutil.Round(upper)}, nil
	case KindHillClimb:
		gain := constants.DefaultHillClimbGain
		if opts.Gain != nil {
			gain = *opts.Gain
		}
		return HillClimb{
			Target: params.TargetCash,
			Step:   stepOrDefault(opts.Step, constants.DefaultHillClimbStep),
			Gain:   gain,
			Min:    lo,
			Max:    hi,
		}, nil
	default:
		return nil, fmt.Errorf("strategy %q is not supported", opts.Strategy)
	}
}

func stepOrDefault(step, fallback float64) float64 {
	if step > 0 {
		return step
	}
	return fallback
}
