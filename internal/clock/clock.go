// Package clock provides the time abstraction used by trackers and pacing so
// that automation timing can be driven deterministically in tests and replays.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time and blocks for a duration.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time
	// Sleep blocks the caller for d. Non-positive d returns immediately.
	Sleep(d time.Duration)
}

type systemClock struct{}

// NewSystem returns a Clock backed by the time package.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	time.Sleep(d)
}

// Manual is a Clock whose time only moves when Advance or Sleep is called.
// Sleep advances the clock instead of blocking.
//
// It is safe for concurrent use.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	slept time.Duration
}

// NewManual returns a Manual clock positioned at start.
//
// Postcondition: Now() == start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the clock's current instant.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
//
// Precondition: d >= 0.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Sleep advances the clock by d and records the total time slept.
func (m *Manual) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	m.slept += d
}

// Slept returns the cumulative duration passed to Sleep.
func (m *Manual) Slept() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slept
}
