package decision

import (
	"time"

	"github.com/cory-johannsen/castbot/internal/clock"
)

// ActionKind selects the inter-action delay applied before an action.
type ActionKind int

const (
	// Cast covers spells, item use and every non-melee action.
	Cast ActionKind = iota
	// Melee uses the shorter melee delay.
	Melee
)

// Pacer enforces the shared minimum delay between consecutive actions of one
// character. It is owned by a single session and not safe for concurrent use.
type Pacer struct {
	clock   clock.Clock
	melee   time.Duration
	cast    time.Duration
	last    time.Time
	actions int
}

// NewPacer creates a Pacer. Both delays are clamped to [min, max].
//
// Precondition: clk must not be nil; min <= max.
// Postcondition: the first Wait returns without sleeping.
func NewPacer(clk clock.Clock, melee, cast, min, max time.Duration) *Pacer {
	if clk == nil {
		panic("decision.NewPacer: clock must not be nil")
	}
	return &Pacer{clock: clk, melee: clamp(melee, min, max), cast: clamp(cast, min, max)}
}

func clamp(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if max > 0 && d > max {
		return max
	}
	return d
}

// Delay returns the configured delay for kind.
func (p *Pacer) Delay(kind ActionKind) time.Duration {
	if kind == Melee {
		return p.melee
	}
	return p.cast
}

// Wait sleeps until the delay for kind has passed since the last action.
func (p *Pacer) Wait(kind ActionKind) {
	if p.last.IsZero() {
		return
	}
	p.clock.Sleep(p.Delay(kind) - p.clock.Now().Sub(p.last))
}

// Mark records that an action was performed now.
func (p *Pacer) Mark() {
	p.last = p.clock.Now()
	p.actions++
}

// Actions returns the number of actions marked so far.
func (p *Pacer) Actions() int { return p.actions }
