package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Fleet runs one Runner per character, each on its own goroutine. Characters
// share nothing, so runners never synchronize with each other.
type Fleet struct {
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	runners map[string]*Runner
}

// NewFleet returns a Fleet ticking every interval.
//
// Precondition: interval must be > 0; logger must be non-nil.
func NewFleet(interval time.Duration, logger *zap.Logger) *Fleet {
	if interval <= 0 {
		panic("agent.NewFleet: interval must be > 0")
	}
	return &Fleet{interval: interval, logger: logger, runners: make(map[string]*Runner)}
}

// Add registers r.
//
// Postcondition: returns error if a runner with the same name exists.
func (f *Fleet) Add(r *Runner) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.runners[r.Name]; dup {
		return fmt.Errorf("agent.Fleet: runner %q already registered", r.Name)
	}
	f.runners[r.Name] = r
	return nil
}

// Names returns the registered runner names, sorted.
func (f *Fleet) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.runners))
	for n := range f.runners {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Run starts every registered runner and blocks until ctx is cancelled and
// all of them have stopped.
func (f *Fleet) Run(ctx context.Context) error {
	f.mu.Lock()
	runners := make([]*Runner, 0, len(f.runners))
	for _, r := range f.runners {
		runners = append(runners, r)
	}
	f.mu.Unlock()

	f.logger.Info("fleet starting", zap.Int("runners", len(runners)), zap.Duration("interval", f.interval))
	g, ctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		r := r
		g.Go(func() error { return r.Run(ctx, f.interval) })
	}
	return g.Wait()
}
