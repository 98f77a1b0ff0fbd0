// Package sleep implements the deep-sleep admissibility gate that couples
// stack-wide power management to outstanding protocol obligations.
//
// The Gate owns no obligations of its own: it is a pure function over the
// registered ObligationSources (the commissioning manager, pending protocol
// timers) plus the single "sleep previously entered" flag, which the wake
// path clears exactly once.
//
// The gate assumes the host clock does not advance while the stack is
// suspended (tick-driven hosts); elapsed sleep time is accounted explicitly
// through WakeupAndResync.
package sleep

import (
	"errors"
	"math"
	"time"

	"github.com/pion/logging"
)

var (
	// ErrAlreadySleeping is returned by EnterSleep while sleep is in effect.
	ErrAlreadySleeping = errors.New("sleep: stack already sleeping")

	// ErrSleepNotPossible is returned by EnterSleep when an obligation
	// makes sleep currently unsafe.
	ErrSleepNotPossible = errors.New("sleep: obligations prevent sleep")
)

// Unbounded is the sleep budget reported when no obligation exists.
const Unbounded = time.Duration(math.MaxInt64)

// ObligationSource exposes a component's outstanding protocol obligations
// to the gate. The gate only reads budgets; arming and clearing deadlines
// stays with the source.
type ObligationSource interface {
	// SleepBudget returns the longest the stack may sleep before the
	// source misses an obligation; zero means sleep is not possible right
	// now. The second return is false when the source holds no obligation.
	SleepBudget() (time.Duration, bool)

	// ElapseTime accounts for d of stack-suspended time on the source's
	// deadlines.
	ElapseTime(d time.Duration)
}

// Outcome is the result of WakeupAndResync.
type Outcome int

const (
	// OutcomeRestarted indicates deadlines were advanced by the elapsed
	// time and normal operation resumed.
	OutcomeRestarted Outcome = iota

	// OutcomeContinueSleeping indicates the elapsed time was shorter than
	// the smallest outstanding deadline; the caller may re-enter sleep for
	// the returned remainder.
	OutcomeContinueSleeping

	// OutcomeAlreadyActive indicates sleep was not in effect when the wake
	// path ran. This is a state error, not a timing decision.
	OutcomeAlreadyActive
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeRestarted:
		return "Restarted"
	case OutcomeContinueSleeping:
		return "ContinueSleeping"
	case OutcomeAlreadyActive:
		return "AlreadyActive"
	default:
		return "Unknown"
	}
}

// GateConfig configures the Gate.
type GateConfig struct {
	// Sources are the obligation sources consulted on every query.
	Sources []ObligationSource

	// MaxSleep caps the budget reported when obligations allow longer
	// sleep (or none exist). Defaults to Unbounded.
	MaxSleep time.Duration

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Gate is the process-wide deep-sleep arbiter.
//
// Like the rest of the stack it runs on the host's single thread of
// control; EnterSleep and WakeupAndResync model an externally triggered
// suspend/resume of the whole stack, not per-operation blocking.
type Gate struct {
	sources  []ObligationSource
	maxSleep time.Duration
	sleeping bool
	log      logging.LeveledLogger
}

// NewGate creates a Gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	g := &Gate{
		sources:  config.Sources,
		maxSleep: config.MaxSleep,
	}
	if g.maxSleep == 0 {
		g.maxSleep = Unbounded
	}
	if config.LoggerFactory != nil {
		g.log = config.LoggerFactory.NewLogger("sleep")
	}
	return g
}

// AddSource registers an additional obligation source.
func (g *Gate) AddSource(s ObligationSource) {
	g.sources = append(g.sources, s)
}

// Sleeping reports whether sleep is currently in effect.
func (g *Gate) Sleeping() bool {
	return g.sleeping
}

// CheckSleepPossibility returns the largest duration the stack may sleep
// without missing an obligation. Zero means no sleep is possible right
// now.
func (g *Gate) CheckSleepPossibility() time.Duration {
	budget := g.maxSleep
	for _, s := range g.sources {
		b, ok := s.SleepBudget()
		if !ok {
			continue
		}
		if b == 0 {
			return 0
		}
		if b < budget {
			budget = b
		}
	}
	return budget
}

// EnterSleep transitions the stack to the suspended state. It fails when
// sleep is already in effect or when the possibility check reports zero.
func (g *Gate) EnterSleep() error {
	if g.sleeping {
		return ErrAlreadySleeping
	}
	if g.CheckSleepPossibility() == 0 {
		return ErrSleepNotPossible
	}
	g.sleeping = true
	if g.log != nil {
		g.log.Info("stack entering deep sleep")
	}
	return nil
}

// WakeupAndResync restarts the stack after sleeping for elapsed and
// reconciles all deadlines. When elapsed is shorter than the smallest
// outstanding budget it returns OutcomeContinueSleeping with the
// remainder and sleep stays in effect; otherwise OutcomeRestarted and the
// sleeping flag is cleared. Calling it while the stack is awake yields
// OutcomeAlreadyActive and changes nothing.
func (g *Gate) WakeupAndResync(elapsed time.Duration) (Outcome, time.Duration) {
	if !g.sleeping {
		return OutcomeAlreadyActive, 0
	}

	smallest := g.maxSleep
	hasObligation := false
	for _, s := range g.sources {
		b, ok := s.SleepBudget()
		if !ok {
			continue
		}
		hasObligation = true
		if b < smallest {
			smallest = b
		}
	}

	for _, s := range g.sources {
		s.ElapseTime(elapsed)
	}

	if hasObligation && elapsed < smallest {
		if g.log != nil {
			g.log.Debugf("slept %v, %v of budget left", elapsed, smallest-elapsed)
		}
		return OutcomeContinueSleeping, smallest - elapsed
	}

	g.sleeping = false
	if g.log != nil {
		g.log.Infof("stack restarted after %v of sleep", elapsed)
	}
	return OutcomeRestarted, 0
}
