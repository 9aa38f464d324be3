// Package session builds the per-character state the decision engine runs
// on: every profile entry resolved once against the character's owned
// abilities and items, and the status trackers for those that resolved.
package session

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/client"
	"github.com/cory-johannsen/castbot/internal/clock"
	"github.com/cory-johannsen/castbot/internal/game/ability"
	"github.com/cory-johannsen/castbot/internal/game/priority"
	"github.com/cory-johannsen/castbot/internal/game/status"
)

// Bound is one profile entry as resolved for this character. Ability and
// Tracker return nil when no candidate was owned.
type Bound struct {
	entry   *ability.Entry
	ability *priority.Resolved
	tracker *status.Tracker
	sess    *Session
}

// Entry returns the profile entry.
func (b *Bound) Entry() *ability.Entry {
	if b == nil {
		return nil
	}
	return b.entry
}

// Ability returns the resolved ability, or nil when absent.
func (b *Bound) Ability() *priority.Resolved {
	if b == nil {
		return nil
	}
	return b.ability
}

// Tracker returns the entry's tracker, or nil when the ability is absent.
func (b *Bound) Tracker() *status.Tracker {
	if b == nil {
		return nil
	}
	return b.tracker
}

// Consumed records one use of a consumable. When the stack is exhausted the
// entry is re-resolved against the character's current items so the next
// smallest stack is picked up; the tracker and its timer are kept.
func (b *Bound) Consumed() {
	if b == nil || b.ability == nil || !b.entry.Consumable {
		return
	}
	if b.ability.Quantity > 1 {
		b.ability.Quantity--
		return
	}
	b.sess.logger.Debug("consumable stack exhausted",
		zap.String("entry", b.entry.ID),
		zap.String("slot", b.ability.Slot),
	)
	b.ability = priority.ResolveEntry(b.entry, b.sess.self.Abilities(), excludeSlot(b.sess.self.Items(), b.ability.Slot))
}

func excludeSlot(items []client.Owned, slot string) []client.Owned {
	out := items[:0:0]
	for _, it := range items {
		if it.Slot != slot {
			out = append(out, it)
		}
	}
	return out
}

type targetKey struct {
	entry  string
	target uuid.UUID
}

// Session holds one character's resolved abilities and trackers. It is owned
// by the character's tick loop and is not safe for concurrent use.
type Session struct {
	ID      uuid.UUID
	Name    string
	profile *ability.Profile
	self    client.Snapshot
	clock   clock.Clock
	logger  *zap.Logger

	order    []string
	bindings map[string]*Bound
	targets  map[targetKey]*status.Tracker
}

// New resolves every entry of profile against self's owned abilities and
// items and builds trackers for the entries that resolved. Resolution misses
// are logged and leave the entry permanently unavailable.
//
// Precondition: profile, self, clk and logger must not be nil.
// Postcondition: Binding(id) is non-nil for every entry ID in profile.
func New(name string, profile *ability.Profile, self client.Snapshot, clk clock.Clock, logger *zap.Logger) *Session {
	if profile == nil || self == nil || clk == nil || logger == nil {
		panic("session.New: profile, self, clock and logger must not be nil")
	}
	s := &Session{
		ID:       uuid.New(),
		Name:     name,
		profile:  profile,
		self:     self,
		clock:    clk,
		logger:   logger.With(zap.String("character", name), zap.String("class", profile.Class)),
		bindings: make(map[string]*Bound, len(profile.Entries)),
		targets:  make(map[targetKey]*status.Tracker),
	}
	abilities, items := self.Abilities(), self.Items()
	for _, e := range profile.Entries {
		s.order = append(s.order, e.ID)
		s.bindings[e.ID] = s.bind(e, abilities, items)
	}
	return s
}

func (s *Session) bind(e *ability.Entry, abilities, items []client.Owned) *Bound {
	b := &Bound{entry: e, sess: s}
	if e.Tracker == ability.TrackRage {
		levels := priority.ResolveLevels(e, abilities, items)
		if len(levels) == 0 {
			s.logger.Info("ability unavailable", zap.String("entry", e.ID))
			return b
		}
		b.ability = levels[0]
		b.tracker = status.NewRage(levels, s.self, s.clock, s.pool)
		s.logger.Info("ability resolved",
			zap.String("entry", e.ID),
			zap.Int("levels", len(levels)),
			zap.String("slot", levels[0].Slot),
		)
		return b
	}
	b.ability = priority.ResolveEntry(e, abilities, items)
	if b.ability == nil {
		s.logger.Info("ability unavailable", zap.String("entry", e.ID))
		return b
	}
	b.tracker = s.newTracker(e, b.ability, s.self)
	s.logger.Info("ability resolved",
		zap.String("entry", e.ID),
		zap.String("name", b.ability.Name()),
		zap.String("slot", b.ability.Slot),
		zap.Int("rank", b.ability.Rank),
	)
	return b
}

// newTracker builds the entry's tracker over feed. Entries without a policy
// get an always-inactive tracker so rules can still use its cast timer.
func (s *Session) newTracker(e *ability.Entry, ab *priority.Resolved, feed status.Feed) *status.Tracker {
	policy, ok := status.PolicyFor(e.Tracker)
	if !ok {
		policy = status.AlwaysInactive
	}
	names := e.Tracks
	if len(names) == 0 {
		names = ab.Names
	}
	return status.New(policy, names, feed, s.clock)
}

func (s *Session) pool() int {
	return s.self.Max(s.profile.Resource)
}

// Profile returns the class profile the session was built from.
func (s *Session) Profile() *ability.Profile { return s.profile }

// Self returns the character's snapshot.
func (s *Session) Self() client.Snapshot { return s.self }

// Clock returns the session clock.
func (s *Session) Clock() clock.Clock { return s.clock }

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger { return s.logger }

// Binding returns the bound entry for id, or nil if the profile has no such
// entry.
func (s *Session) Binding(id string) *Bound {
	return s.bindings[id]
}

// Bindings returns every bound entry in profile order.
func (s *Session) Bindings() []*Bound {
	out := make([]*Bound, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.bindings[id])
	}
	return out
}

// Rebuild re-resolves entry id against the character's current abilities
// and items, replacing its tracker.
//
// Postcondition: returns false if the profile has no entry id.
func (s *Session) Rebuild(id string) bool {
	b, ok := s.bindings[id]
	if !ok {
		return false
	}
	s.bindings[id] = s.bind(b.entry, s.self.Abilities(), s.self.Items())
	for k := range s.targets {
		if k.entry == id {
			delete(s.targets, k)
		}
	}
	return true
}

// AllyTrackers returns a lookup creating, per local ally, a tracker for entry
// id over that ally's own readout. The character itself, recognized by name
// when listed as an ally, shares the entry's own tracker. It returns nil
// trackers when the entry is absent or the ally is remote.
func (s *Session) AllyTrackers(id string) func(*client.Ally) *status.Tracker {
	return func(a *client.Ally) *status.Tracker {
		if a == nil || !a.Local() {
			return nil
		}
		if a.Name == s.Name {
			return s.bindings[id].Tracker()
		}
		return s.targetTracker(id, a.ID, a.Snapshot)
	}
}

// HostileTrackers returns a lookup creating, per hostile, a tracker for entry
// id over that hostile's observed effects.
func (s *Session) HostileTrackers(id string) func(*client.Hostile) *status.Tracker {
	return func(h *client.Hostile) *status.Tracker {
		if h == nil {
			return nil
		}
		return s.targetTracker(id, h.ID, h)
	}
}

func (s *Session) targetTracker(id string, target uuid.UUID, feed status.Feed) *status.Tracker {
	b := s.bindings[id]
	if b.Ability() == nil || b.entry.Tracker == ability.TrackRage {
		return nil
	}
	k := targetKey{entry: id, target: target}
	if tr, ok := s.targets[k]; ok {
		return tr
	}
	tr := s.newTracker(b.entry, b.ability, feed)
	s.targets[k] = tr
	return tr
}

// Forget drops the per-target trackers of a target that left the roster.
func (s *Session) Forget(target uuid.UUID) {
	for k := range s.targets {
		if k.target == target {
			delete(s.targets, k)
		}
	}
}
