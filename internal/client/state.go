package client

import "sync"

// State is an in-memory Snapshot whose fields are set by the caller. The replay
// driver and tests use it in place of a live process reader.
//
// It is safe for concurrent use.
type State struct {
	mu        sync.RWMutex
	current   map[Resource]int
	max       map[Resource]int
	effects   string
	abilities []Owned
	items     []Owned
}

// NewState returns an empty State.
func NewState() *State {
	return &State{current: make(map[Resource]int), max: make(map[Resource]int)}
}

// SetResource sets the current and maximum value of r.
func (s *State) SetResource(r Resource, cur, max int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[r] = cur
	s.max[r] = max
}

// SetEffects replaces the active-effects readout.
func (s *State) SetEffects(effects string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effects = effects
}

// SetAbilities replaces the owned-ability list.
func (s *State) SetAbilities(owned []Owned) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abilities = append([]Owned(nil), owned...)
}

// SetItems replaces the owned-item list.
func (s *State) SetItems(owned []Owned) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]Owned(nil), owned...)
}

func (s *State) Current(r Resource) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current[r]
}

func (s *State) Max(r Resource) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.max[r]
}

func (s *State) Effects() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effects
}

func (s *State) Abilities() []Owned {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Owned(nil), s.abilities...)
}

func (s *State) Items() []Owned {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Owned(nil), s.items...)
}
