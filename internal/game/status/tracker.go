// Package status decides whether an ability's effect is currently active on
// its target, reconciling the locally owned cast timer with the free-text
// effects readout of the game client.
//
// The readout lags the server by more than one read cycle, so every policy
// masks a short window after each cast attempt, and buffs additionally require
// several consecutive negative readings before they are reported gone.
package status

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/castbot/internal/clock"
	"github.com/cory-johannsen/castbot/internal/game/ability"
	"github.com/cory-johannsen/castbot/internal/game/priority"
)

const (
	// CastCooldown is the window after a cast attempt during which the
	// readout is not trusted.
	CastCooldown = time.Second
	// BuffHysteresis is the number of consecutive negative readings after
	// which a buff is reported inactive.
	BuffHysteresis = 3
	// RecastMargin is added to a rage level's recharge delay to form the
	// window in which the next level may be cast.
	RecastMargin = time.Second
)

// Policy selects how a Tracker combines its signals.
type Policy int

const (
	// Buff is active while cooling down or listed, with hysteresis on misses.
	Buff Policy = iota
	// Debuff is active only when listed and not cooling down.
	Debuff
	// AlwaysInactive is never active; the ability is attempted every tick.
	AlwaysInactive
	// Rage is a stacking Buff that also gates casting the next level.
	Rage
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Buff:
		return "buff"
	case Debuff:
		return "debuff"
	case AlwaysInactive:
		return "always_inactive"
	case Rage:
		return "rage"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// PolicyFor maps a profile tracking policy to a Policy. It returns false for
// entries that carry no tracker.
func PolicyFor(t ability.Tracking) (Policy, bool) {
	switch t {
	case ability.TrackBuff:
		return Buff, true
	case ability.TrackDebuff:
		return Debuff, true
	case ability.TrackAlwaysInactive:
		return AlwaysInactive, true
	case ability.TrackRage:
		return Rage, true
	}
	return 0, false
}

// Feed supplies the live active-effects readout.
type Feed interface {
	Effects() string
}

// Tracker reports whether one ability's effect is active.
//
// A Tracker belongs to a single character session and is not safe for
// concurrent use.
type Tracker struct {
	policy Policy
	names  []string
	feed   Feed
	clock  clock.Clock

	lastCast time.Time
	misses   int
	lastMiss time.Time

	levels []*priority.Resolved
	level  int
	pool   func() int
}

// New creates a Buff, Debuff or AlwaysInactive tracker watching names.
//
// Precondition: feed and clk must not be nil; policy must not be Rage.
// Postcondition: IsCoolingDown() is false until ResetTimer is called.
func New(policy Policy, names []string, feed Feed, clk clock.Clock) *Tracker {
	if feed == nil || clk == nil {
		panic("status.New: feed and clock must not be nil")
	}
	if policy == Rage {
		panic("status.New: use NewRage for rage trackers")
	}
	return &Tracker{policy: policy, names: append([]string(nil), names...), feed: feed, clock: clk}
}

// NewRage creates a stacking tracker over the resolved levels. pool reports
// the character's maximum resource, which caps the usable level.
//
// Precondition: levels must be non-empty with no nil elements; feed, clk and
// pool must not be nil.
func NewRage(levels []*priority.Resolved, feed Feed, clk clock.Clock, pool func() int) *Tracker {
	if len(levels) == 0 {
		panic("status.NewRage: levels must not be empty")
	}
	if feed == nil || clk == nil || pool == nil {
		panic("status.NewRage: feed, clock and pool must not be nil")
	}
	var names []string
	for _, l := range levels {
		names = append(names, l.Names...)
	}
	return &Tracker{
		policy: Rage,
		names:  names,
		feed:   feed,
		clock:  clk,
		levels: append([]*priority.Resolved(nil), levels...),
		pool:   pool,
	}
}

// Policy returns the tracker's policy.
func (t *Tracker) Policy() Policy { return t.policy }

// Names returns the effect names the tracker looks for.
func (t *Tracker) Names() []string { return append([]string(nil), t.names...) }

// ResetTimer records now as the time of the last cast attempt and clears the
// buff miss counter.
func (t *Tracker) ResetTimer() {
	t.lastCast = t.clock.Now()
	t.clearMisses()
}

func (t *Tracker) clearMisses() {
	t.misses = 0
	t.lastMiss = time.Time{}
}

// IsCoolingDown reports whether the last cast attempt was at most
// CastCooldown ago.
func (t *Tracker) IsCoolingDown() bool {
	if t.lastCast.IsZero() {
		return false
	}
	return t.clock.Now().Sub(t.lastCast) <= CastCooldown
}

// IsListed reports whether the feed currently lists any watched name.
func (t *Tracker) IsListed() bool {
	return Listed(t.feed.Effects(), t.watched())
}

// IsActive evaluates the tracker's policy. Buff and Rage trackers count a
// negative reading at most once per clock instant, so several rules reading
// the same tracker within one tick spend a single miss.
func (t *Tracker) IsActive() bool {
	switch t.policy {
	case AlwaysInactive:
		return false
	case Debuff:
		return !t.IsCoolingDown() && t.IsListed()
	case Rage:
		return t.rageActive()
	default:
		active, _ := t.buffActive()
		return active
	}
}

// buffActive applies the buff rule and also reports whether the feed listed
// the effect on this reading.
func (t *Tracker) buffActive() (active, listed bool) {
	if t.IsCoolingDown() {
		return true, false
	}
	if t.IsListed() {
		t.clearMisses()
		return true, true
	}
	if now := t.clock.Now(); t.misses < BuffHysteresis && !now.Equal(t.lastMiss) {
		t.misses++
		t.lastMiss = now
	}
	return t.misses < BuffHysteresis, false
}

func (t *Tracker) rageActive() bool {
	if t.IsCoolingDown() {
		return true
	}
	active, listed := t.buffActive()
	if !active {
		t.level = 0
		return false
	}
	if !listed || t.level == 0 {
		return true
	}
	if t.level >= t.MaxLevel() {
		return true
	}
	window := t.levels[t.level-1].Recharge() + RecastMargin
	return t.Remaining() > window
}

func (t *Tracker) watched() []string {
	if t.policy == Rage && t.level > 0 {
		return t.levels[t.level-1].Names
	}
	return t.names
}

// Level returns the current rage level; zero when no level is up.
func (t *Tracker) Level() int { return t.level }

// Advance records a successful cast of the next rage level.
//
// Postcondition: Level() increases by one, capped at the number of levels.
func (t *Tracker) Advance() {
	if t.level < len(t.levels) {
		t.level++
	}
}

// MaxLevel returns the highest level whose cost, and the cost of every level
// below it, fits in the character's maximum resource pool.
func (t *Tracker) MaxLevel() int {
	if t.pool == nil {
		return 0
	}
	max := t.pool()
	n := 0
	for _, l := range t.levels {
		if l.Cost > max {
			break
		}
		n++
	}
	return n
}

// Next returns the level to cast next, or nil when the stack is at its cap.
func (t *Tracker) Next() *priority.Resolved {
	if t.level >= t.MaxLevel() {
		return nil
	}
	return t.levels[t.level]
}

// Remaining returns the time left on the current rage level as reported by
// the numeric suffix after its name in the feed. It returns zero when no
// level is up or the suffix cannot be parsed.
func (t *Tracker) Remaining() time.Duration {
	if t.level == 0 {
		return 0
	}
	secs, ok := Suffix(t.feed.Effects(), t.levels[t.level-1].Names)
	if !ok {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
