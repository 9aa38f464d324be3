// Package agent drives compiled behavior chains: one Runner per character,
// ticking its chain on an interval, and a Fleet running several characters
// side by side.
package agent

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/clock"
	"github.com/cory-johannsen/castbot/internal/game/decision"
)

// Runner ticks one character's chain. Each tick evaluates the chain once and
// so performs at most one action.
//
// Invariant: ticks of one Runner never overlap.
type Runner struct {
	Name string

	chain  decision.Rule
	pacer  *decision.Pacer
	clock  clock.Clock
	logger *zap.Logger

	// Before, when set, runs at the start of every tick. The replay driver
	// uses it to apply the next scenario frame.
	Before func(tick int)
	// Limit, when positive, stops Run after that many ticks.
	Limit int

	mu    sync.Mutex
	ticks int
	acted int
}

// NewRunner creates a Runner.
//
// Precondition: chain, pacer, clk and logger must not be nil.
func NewRunner(name string, chain decision.Rule, pacer *decision.Pacer, clk clock.Clock, logger *zap.Logger) *Runner {
	if chain == nil || pacer == nil || clk == nil || logger == nil {
		panic("agent.NewRunner: chain, pacer, clock and logger must not be nil")
	}
	return &Runner{
		Name:   name,
		chain:  chain,
		pacer:  pacer,
		clock:  clk,
		logger: logger.With(zap.String("character", name)),
	}
}

// Tick evaluates the chain once and reports whether an action was taken.
func (r *Runner) Tick() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Before != nil {
		r.Before(r.ticks)
	}
	r.ticks++
	acted := r.chain()
	if acted {
		r.acted++
	}
	r.logger.Debug("tick",
		zap.Int("tick", r.ticks),
		zap.Bool("acted", acted),
		zap.Time("at", r.clock.Now()),
	)
	return acted
}

// Run ticks every interval until ctx is cancelled or Limit ticks have run.
//
// Precondition: interval must be > 0.
// Postcondition: returns nil once ctx is done or the limit is reached.
func (r *Runner) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		panic("agent.Runner.Run: interval must be > 0")
	}
	r.logger.Info("runner started", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			ticks, acted := r.Stats()
			r.logger.Info("runner stopped", zap.Int("ticks", ticks), zap.Int("actions", acted))
			return nil
		case <-ticker.C:
			r.Tick()
			if ticks, acted := r.Stats(); r.Limit > 0 && ticks >= r.Limit {
				r.logger.Info("runner finished", zap.Int("ticks", ticks), zap.Int("actions", acted))
				return nil
			}
		}
	}
}

// Steps runs n ticks back to back, advancing clk by interval after each one.
// It is the deterministic counterpart of Run for replays on a manual clock.
func (r *Runner) Steps(n int, clk *clock.Manual, interval time.Duration) int {
	acted := 0
	for i := 0; i < n; i++ {
		if r.Tick() {
			acted++
		}
		clk.Advance(interval)
	}
	return acted
}

// Stats returns the number of ticks run and actions taken.
func (r *Runner) Stats() (ticks, actions int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks, r.acted
}

// Pacer returns the runner's action pacer.
func (r *Runner) Pacer() *decision.Pacer { return r.pacer }
