// Package priority resolves a ranked list of aliased candidates against the
// abilities and items a character actually owns.
//
// Candidate order is the only preference signal: the first candidate with any
// owned match wins. The winner keeps the candidate's configured attributes
// and takes the owned entry's slot, because live-read names and costs are
// unreliable while slots are not.
package priority

import (
	"github.com/cory-johannsen/castbot/internal/client"
	"github.com/cory-johannsen/castbot/internal/game/ability"
)

// Resolved is a candidate bound to the slot that triggers it on this
// character. A nil *Resolved means no candidate was owned.
type Resolved struct {
	*ability.Aliased
	// Slot is the key or inventory slot of the matching owned entry.
	Slot string
	// Quantity is the stack size for items; zero for abilities.
	Quantity int
	// MatchedName is the owned entry's display name.
	MatchedName string
	// Rank is the winning candidate's index in the candidate list.
	Rank int
}

// Resolve returns the first candidate whose names exactly match (after
// normalization) any owned entry, or nil.
//
// Postcondition: when two candidates i < j are both owned, the result derives
// from candidate i.
func Resolve(candidates []*ability.Aliased, owned []client.Owned) *Resolved {
	return resolve(candidates, owned, false, false)
}

// ResolveContains is Resolve with containment matching, for items and mounts
// whose display names carry decorations.
func ResolveContains(candidates []*ability.Aliased, owned []client.Owned) *Resolved {
	return resolve(candidates, owned, true, false)
}

// ResolveConsumable is ResolveContains, except that among owned stacks matching
// the winning candidate the one with the lowest quantity is chosen, so that
// partial stacks are used up before fresh ones. Ties keep the first listed.
func ResolveConsumable(candidates []*ability.Aliased, owned []client.Owned) *Resolved {
	return resolve(candidates, owned, true, true)
}

func resolve(candidates []*ability.Aliased, owned []client.Owned, contains, lowestQty bool) *Resolved {
	if len(owned) == 0 {
		return nil
	}
	for rank, c := range candidates {
		if c == nil {
			continue
		}
		best := -1
		for i, o := range owned {
			if !ability.Matches(o.Name, c.Names, contains) {
				continue
			}
			if !lowestQty {
				best = i
				break
			}
			if best < 0 || o.Quantity < owned[best].Quantity {
				best = i
			}
		}
		if best >= 0 {
			o := owned[best]
			return &Resolved{Aliased: c, Slot: o.Slot, Quantity: o.Quantity, MatchedName: o.Name, Rank: rank}
		}
	}
	return nil
}

// ResolveEntry resolves a profile entry against the character's owned
// abilities and items, choosing the list and match mode from the entry kind.
// Rage entries resolve their first level; use ResolveLevels for the rest.
func ResolveEntry(e *ability.Entry, abilities, items []client.Owned) *Resolved {
	candidates := e.Candidates
	if e.Tracker == ability.TrackRage && len(e.Levels) > 0 {
		candidates = e.Levels[0].Candidates
	}
	return resolveKind(e, candidates, abilities, items)
}

// ResolveLevels resolves each level of a rage entry in order and stops at the
// first level the character does not own.
//
// Postcondition: every element of the result is non-nil; len(result) <= len(e.Levels).
func ResolveLevels(e *ability.Entry, abilities, items []client.Owned) []*Resolved {
	var out []*Resolved
	for _, l := range e.Levels {
		r := resolveKind(e, l.Candidates, abilities, items)
		if r == nil {
			break
		}
		out = append(out, r)
	}
	return out
}

func resolveKind(e *ability.Entry, candidates []*ability.Aliased, abilities, items []client.Owned) *Resolved {
	switch {
	case e.Kind == ability.Spell:
		return Resolve(candidates, abilities)
	case e.Consumable:
		return ResolveConsumable(candidates, items)
	default:
		return ResolveContains(candidates, items)
	}
}
