// Package client defines the collaborators the decision engine consumes from
// the game client: the character snapshot, the input injector and the
// group/target roster. Reading process memory and delivering keystrokes live
// behind these interfaces.
package client

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Resource names a depletable character attribute.
type Resource string

const (
	Health Resource = "health"
	Mana   Resource = "mana"
	Energy Resource = "energy"
)

// Valid reports whether r is one of the known resources.
func (r Resource) Valid() bool {
	switch r {
	case Health, Mana, Energy:
		return true
	}
	return false
}

// Owned is an ability or item the character possesses, with the slot used to
// trigger it. Quantity is zero for abilities.
type Owned struct {
	Name     string `yaml:"name"`
	Slot     string `yaml:"slot"`
	Quantity int    `yaml:"quantity"`
}

// Snapshot is the character state read from the game client.
//
// Effects returns the free-text active-effects readout; it may be empty.
type Snapshot interface {
	Current(r Resource) int
	Max(r Resource) int
	Effects() string
	Abilities() []Owned
	Items() []Owned
}

// Injector delivers input to the game client. Send is fire-and-forget.
type Injector interface {
	Send(keys ...string)
}

// Percent returns current/max of r as a percentage in [0, 100].
// A zero or negative maximum reports 0.
func Percent(s Snapshot, r Resource) int {
	max := s.Max(r)
	if max <= 0 {
		return 0
	}
	cur := s.Current(r)
	if cur < 0 {
		cur = 0
	}
	if cur > max {
		cur = max
	}
	return cur * 100 / max
}

// Missing returns max-current of r, never negative.
func Missing(s Snapshot, r Resource) int {
	m := s.Max(r) - s.Current(r)
	if m < 0 {
		return 0
	}
	return m
}

// Ally is a group member the character may act on.
//
// Local allies run on this machine and expose their own Snapshot; remote allies
// have Snapshot == nil and their effect state is tracked through Flags, which
// are set by whoever observes them (chat parsing, party frames).
type Ally struct {
	ID        uuid.UUID
	Name      string
	SelectKey string
	Snapshot  Snapshot

	mu        sync.Mutex
	health    int
	maxHealth int
	flags     map[string]bool
}

// NewAlly creates a remote ally with the given target-selection key.
//
// Postcondition: Local() is false and no flags are set.
func NewAlly(name, selectKey string) *Ally {
	return &Ally{ID: uuid.New(), Name: name, SelectKey: selectKey, flags: make(map[string]bool)}
}

// NewLocalAlly creates an ally whose state is read from snap.
//
// Precondition: snap must not be nil.
func NewLocalAlly(name, selectKey string, snap Snapshot) *Ally {
	if snap == nil {
		panic("client.NewLocalAlly: snap must not be nil")
	}
	a := NewAlly(name, selectKey)
	a.Snapshot = snap
	return a
}

// Local reports whether the ally's own snapshot is readable.
func (a *Ally) Local() bool { return a.Snapshot != nil }

// SetHealth records externally observed health for a remote ally.
func (a *Ally) SetHealth(cur, max int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.health, a.maxHealth = cur, max
}

// Health returns the ally's current and maximum health.
func (a *Ally) Health() (int, int) {
	if a.Snapshot != nil {
		return a.Snapshot.Current(Health), a.Snapshot.Max(Health)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.health, a.maxHealth
}

// SetFlag marks the effect key as observed on a remote ally.
func (a *Ally) SetFlag(key string, on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if on {
		if a.flags == nil {
			a.flags = make(map[string]bool)
		}
		a.flags[key] = true
		return
	}
	delete(a.flags, key)
}

// Flag reports whether the effect key is marked on the ally.
func (a *Ally) Flag(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flags[key]
}

// Hostile is an NPC or enemy player in observable range. Its effects readout
// is set by the roster observer when the hostile is inspected.
type Hostile struct {
	ID        uuid.UUID
	Name      string
	SelectKey string

	effects string
}

// NewHostile creates a hostile with a fresh ID.
func NewHostile(name, selectKey string) *Hostile {
	return &Hostile{ID: uuid.New(), Name: name, SelectKey: selectKey}
}

// SetEffects records the hostile's observed active effects.
func (h *Hostile) SetEffects(effects string) { h.effects = effects }

// Effects returns the hostile's last observed active effects.
func (h *Hostile) Effects() string { return h.effects }

// HostileList is the ordered set of hostiles currently in range, in arrival
// order: the most recently engaged hostile is last, so reverse scans visit it
// first. Entries are removed when they leave range.
//
// It is not safe for concurrent use; the tick loop owns it.
type HostileList struct {
	entries []*Hostile
}

// NewHostileList returns a list holding hs in order.
func NewHostileList(hs ...*Hostile) *HostileList {
	return &HostileList{entries: append([]*Hostile(nil), hs...)}
}

// Len returns the number of hostiles in range.
func (l *HostileList) Len() int { return len(l.entries) }

// At returns the hostile at index i.
//
// Precondition: 0 <= i < Len().
func (l *HostileList) At(i int) *Hostile { return l.entries[i] }

// Add appends h to the list.
func (l *HostileList) Add(h *Hostile) { l.entries = append(l.entries, h) }

// Remove deletes the hostile with id. It is a no-op when id is absent.
func (l *HostileList) Remove(id uuid.UUID) {
	for i, h := range l.entries {
		if h.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

// Roster groups the character's allies and hostiles for one session.
// Local allies precede remote allies in Allies.
type Roster struct {
	Allies   []*Ally
	Hostiles *HostileList
}

// NewRoster builds a roster, ordering local allies before remote ones while
// preserving relative order within each group.
func NewRoster(allies []*Ally, hostiles *HostileList) *Roster {
	ordered := make([]*Ally, 0, len(allies))
	for _, a := range allies {
		if a.Local() {
			ordered = append(ordered, a)
		}
	}
	for _, a := range allies {
		if !a.Local() {
			ordered = append(ordered, a)
		}
	}
	if hostiles == nil {
		hostiles = NewHostileList()
	}
	return &Roster{Allies: ordered, Hostiles: hostiles}
}

// String renders an ally for logs.
func (a *Ally) String() string {
	kind := "remote"
	if a.Local() {
		kind = "local"
	}
	return fmt.Sprintf("%s(%s)", a.Name, kind)
}
