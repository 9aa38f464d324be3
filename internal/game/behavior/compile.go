package behavior

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/client"
	"github.com/cory-johannsen/castbot/internal/game/decision"
	"github.com/cory-johannsen/castbot/internal/game/priority"
	"github.com/cory-johannsen/castbot/internal/game/session"
	"github.com/cory-johannsen/castbot/internal/game/status"
)

// PreconditionChecker evaluates a rule precondition for a character.
type PreconditionChecker interface {
	// Holds calls hook in key's script VM with the character name and reports
	// whether it returned true. Missing or failing hooks hold false.
	Holds(key, hook, character string) bool
}

// live looks its binding up on every call so compiled rules follow
// Session.Rebuild.
type live struct {
	sess *session.Session
	id   string
}

func (l live) Ability() *priority.Resolved { return l.sess.Binding(l.id).Ability() }
func (l live) Tracker() *status.Tracker    { return l.sess.Binding(l.id).Tracker() }
func (l live) Consumed()                   { l.sess.Binding(l.id).Consumed() }

// Compile turns d into one chain for the character of s. The chain performs
// at most one action per evaluation: the first eligible rule in declaration
// order. Preconditions are checked with hooks under key d.ID; a nil hooks
// makes every rule with a precondition ineligible.
//
// Precondition: d, s, roster and actor must not be nil.
// Postcondition: returns error if d does not fit s's profile.
func Compile(d *Domain, s *session.Session, roster *client.Roster, actor *decision.Actor, hooks PreconditionChecker) (decision.Rule, error) {
	if d == nil || s == nil || roster == nil || actor == nil {
		panic("behavior.Compile: domain, session, roster and actor must not be nil")
	}
	if err := d.CheckProfile(s.Profile()); err != nil {
		return nil, fmt.Errorf("behavior.Compile: %w", err)
	}
	allies := func() []*client.Ally { return roster.Allies }
	hostiles := roster.Hostiles

	rules := make([]decision.Rule, 0, len(d.Rules))
	for _, r := range d.Rules {
		b := live{sess: s, id: r.Ability}
		var leaf decision.Rule
		switch r.Action {
		case ActBuff:
			if r.target() == TargetGroup {
				leaf = decision.Over(allies, decision.BuffAlly(actor, b, s.AllyTrackers(r.Ability)))
			} else {
				leaf = decision.Buff(actor, b)
			}
		case ActCure:
			if r.target() == TargetGroup {
				leaf = decision.Over(allies, decision.CureAlly(actor, b, s.AllyTrackers(r.Ability), r.flag()))
			} else {
				leaf = decision.Cure(actor, b)
			}
		case ActHeal:
			leaf = decision.Over(allies, decision.Heal(actor, b, r.Threshold))
		case ActRestore:
			leaf = decision.Restore(actor, b, r.resource(), r.Threshold)
		case ActDebuff:
			leaf = decision.OverReverse[*client.Hostile](hostiles, decision.Debuff(actor, b, s.HostileTrackers(r.Ability)))
		case ActAttack:
			leaf = decision.OverReverse[*client.Hostile](hostiles, decision.Attack(actor, b))
		case ActToggle:
			leaf = decision.Toggle(actor, b)
		case ActRage:
			leaf = decision.RageUp(actor, b)
		default:
			return nil, fmt.Errorf("behavior.Compile: rule %q: unknown action %q", r.ID, r.Action)
		}
		rules = append(rules, guard(d.ID, r, s, hooks, leaf))
	}
	return decision.First(rules...), nil
}

func guard(key string, r *Rule, s *session.Session, hooks PreconditionChecker, leaf decision.Rule) decision.Rule {
	id, hook := r.ID, r.Precondition
	return func() bool {
		if hook != "" && (hooks == nil || !hooks.Holds(key, hook, s.Name)) {
			return false
		}
		if !leaf() {
			return false
		}
		s.Logger().Debug("rule fired", zap.String("rule", id))
		return true
	}
}
