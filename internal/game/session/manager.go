package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Manager tracks the character sessions of one bot process.
// All methods are safe for concurrent use; the sessions themselves are not.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session)}
}

// Add registers s.
//
// Precondition: s must not be nil.
// Postcondition: returns an error if a session with the same ID or character
// name is already registered.
func (m *Manager) Add(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("session %s already registered", s.ID)
	}
	for _, other := range m.sessions {
		if other.Name == s.Name {
			return fmt.Errorf("character %q already has a session", s.Name)
		}
	}
	m.sessions[s.ID] = s
	return nil
}

// Remove ends the session with id.
//
// Postcondition: returns an error if no such session exists.
func (m *Manager) Remove(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return fmt.Errorf("session %s not found", id)
	}
	delete(m.sessions, id)
	return nil
}

// Get returns the session with id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// ByName returns the session for the named character.
func (m *Manager) ByName(name string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// All returns every session sorted by character name.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
