package decision

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/client"
	"github.com/cory-johannsen/castbot/internal/game/priority"
	"github.com/cory-johannsen/castbot/internal/game/status"
)

// Binding pairs a resolved ability with its tracker. Ability returns nil when
// the character owns no candidate; every rule built on such a binding is
// permanently ineligible.
type Binding interface {
	Ability() *priority.Resolved
	Tracker() *status.Tracker
}

// Consumer is a Binding whose stock is used up, such as a potion stack.
type Consumer interface {
	Binding
	// Consumed records one use and re-resolves the binding when its stack
	// runs out.
	Consumed()
}

// Actor is the acting character: its own snapshot, the resource that pays
// ability costs, and the input path to the game client.
type Actor struct {
	Self     client.Snapshot
	Resource client.Resource
	Injector client.Injector
	Pacer    *Pacer
	Logger   *zap.Logger
}

func bound(b Binding) (*priority.Resolved, *status.Tracker, bool) {
	if b == nil {
		return nil, nil, false
	}
	ab := b.Ability()
	if ab == nil {
		return nil, nil, false
	}
	return ab, b.Tracker(), true
}

// Affords reports whether the actor's resource covers ab's cost.
func (a *Actor) Affords(ab *priority.Resolved) bool {
	return a.Self.Current(a.Resource) >= ab.Cost
}

// Perform waits for the pacer, sends keys and records the action.
func (a *Actor) Perform(kind ActionKind, what string, keys ...string) {
	a.Pacer.Wait(kind)
	a.Injector.Send(keys...)
	a.Pacer.Mark()
	a.Logger.Debug("action performed", zap.String("ability", what), zap.Strings("keys", keys))
}

func targetKeys(selectKey, slot string) []string {
	if selectKey == "" {
		return []string{slot}
	}
	return []string{selectKey, slot}
}

// Buff casts b on the actor when its tracker reports inactive and the cost
// is affordable.
func Buff(a *Actor, b Binding) Rule {
	return func() bool {
		ab, tr, ok := bound(b)
		if !ok || tr == nil {
			return false
		}
		if tr.IsActive() || !a.Affords(ab) {
			return false
		}
		a.Perform(Cast, ab.Name(), ab.Slot)
		tr.ResetTimer()
		return true
	}
}

// Toggle is Buff for abilities tracked as always inactive, such as a stealth
// toggle that must be re-sent every tick.
func Toggle(a *Actor, b Binding) Rule {
	return Buff(a, b)
}

// Cure casts b on the actor while its tracker reports the harmful effect.
func Cure(a *Actor, b Binding) Rule {
	return func() bool {
		ab, tr, ok := bound(b)
		if !ok || tr == nil {
			return false
		}
		if !tr.IsActive() || !a.Affords(ab) {
			return false
		}
		a.Perform(Cast, ab.Name(), ab.Slot)
		tr.ResetTimer()
		return true
	}
}

// AllyTrackers returns the tracker watching an ally's own readout. It is
// only called for local allies.
type AllyTrackers func(ally *client.Ally) *status.Tracker

// BuffAlly casts b on local allies whose tracker reports inactive. Remote
// allies are skipped because their buffs cannot be observed.
func BuffAlly(a *Actor, b Binding, trackers AllyTrackers) TargetRule[*client.Ally] {
	return func(ally *client.Ally) bool {
		ab, _, ok := bound(b)
		if !ok || !ally.Local() {
			return false
		}
		tr := trackers(ally)
		if tr == nil || tr.IsActive() || !a.Affords(ab) {
			return false
		}
		a.Perform(Cast, ab.Name(), targetKeys(ally.SelectKey, ab.Slot)...)
		tr.ResetTimer()
		return true
	}
}

// CureAlly casts b on an ally carrying the harmful effect. Local allies are
// checked through their tracker; remote allies through the externally
// tracked flag, which is cleared after the cure is sent.
func CureAlly(a *Actor, b Binding, trackers AllyTrackers, flag string) TargetRule[*client.Ally] {
	return func(ally *client.Ally) bool {
		ab, _, ok := bound(b)
		if !ok {
			return false
		}
		var tr *status.Tracker
		if ally.Local() {
			tr = trackers(ally)
			if tr == nil || !tr.IsActive() {
				return false
			}
		} else if !ally.Flag(flag) {
			return false
		}
		if !a.Affords(ab) {
			return false
		}
		a.Perform(Cast, ab.Name(), targetKeys(ally.SelectKey, ab.Slot)...)
		if tr != nil {
			tr.ResetTimer()
		} else {
			ally.SetFlag(flag, false)
		}
		return true
	}
}

// Heal casts b on an ally missing at least the heal's restore amount of
// health. When belowPct is positive the ally's health percentage must also
// be under it. The binding's cast timer masks the lag before health updates.
func Heal(a *Actor, b Binding, belowPct int) TargetRule[*client.Ally] {
	return func(ally *client.Ally) bool {
		ab, tr, ok := bound(b)
		if !ok {
			return false
		}
		if tr != nil && tr.IsCoolingDown() {
			return false
		}
		cur, max := ally.Health()
		if max <= 0 || max-cur < ab.Restore {
			return false
		}
		if belowPct > 0 && cur*100/max >= belowPct {
			return false
		}
		if !a.Affords(ab) {
			return false
		}
		a.Perform(Cast, ab.Name(), targetKeys(ally.SelectKey, ab.Slot)...)
		if tr != nil {
			tr.ResetTimer()
		}
		return true
	}
}

// Restore uses consumable b when the actor's resource r is under belowPct
// percent and at least the item's restore amount is missing.
func Restore(a *Actor, b Consumer, r client.Resource, belowPct int) Rule {
	return func() bool {
		ab, tr, ok := bound(b)
		if !ok {
			return false
		}
		if tr != nil && tr.IsCoolingDown() {
			return false
		}
		if client.Percent(a.Self, r) >= belowPct || client.Missing(a.Self, r) < ab.Restore {
			return false
		}
		a.Perform(Cast, ab.Name(), ab.Slot)
		if tr != nil {
			tr.ResetTimer()
		}
		b.Consumed()
		return true
	}
}

// HostileTrackers returns the tracker watching a hostile's readout for one
// ability, creating it on first use.
type HostileTrackers func(h *client.Hostile) *status.Tracker

// Debuff casts b on a hostile whose tracker reports the effect inactive.
func Debuff(a *Actor, b Binding, trackers HostileTrackers) TargetRule[*client.Hostile] {
	return func(h *client.Hostile) bool {
		ab, _, ok := bound(b)
		if !ok {
			return false
		}
		tr := trackers(h)
		if tr == nil || tr.IsActive() || !a.Affords(ab) {
			return false
		}
		a.Perform(Cast, ab.Name(), targetKeys(h.SelectKey, ab.Slot)...)
		tr.ResetTimer()
		return true
	}
}

// Attack uses b against a hostile when the cost is affordable, paced as a
// melee action.
func Attack(a *Actor, b Binding) TargetRule[*client.Hostile] {
	return func(h *client.Hostile) bool {
		ab, tr, ok := bound(b)
		if !ok || !a.Affords(ab) {
			return false
		}
		a.Perform(Melee, ab.Name(), targetKeys(h.SelectKey, ab.Slot)...)
		if tr != nil {
			tr.ResetTimer()
		}
		return true
	}
}

// RageUp casts the next level of a stacking ability when its tracker reports
// the re-cast window open and the level's cost is affordable.
func RageUp(a *Actor, b Binding) Rule {
	return func() bool {
		_, tr, ok := bound(b)
		if !ok || tr == nil || tr.Policy() != status.Rage {
			return false
		}
		if tr.IsActive() {
			return false
		}
		next := tr.Next()
		if next == nil || !a.Affords(next) {
			return false
		}
		a.Perform(Cast, next.Name(), next.Slot)
		tr.Advance()
		tr.ResetTimer()
		return true
	}
}
