package agent

import (
	"sync"

	"github.com/cory-johannsen/castbot/internal/client"
	"github.com/cory-johannsen/castbot/internal/scripting"
)

// Directory maps character names to their readable state so Lua
// preconditions can look characters up by name.
//
// It is safe for concurrent use.
type Directory struct {
	mu    sync.RWMutex
	chars map[string]dirEntry
}

type dirEntry struct {
	snap   client.Snapshot
	roster *client.Roster
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{chars: make(map[string]dirEntry)}
}

// Add registers name with its snapshot and the roster of its group.
func (d *Directory) Add(name string, snap client.Snapshot, roster *client.Roster) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chars[name] = dirEntry{snap: snap, roster: roster}
}

// Snapshot returns name's snapshot, or nil when unknown.
func (d *Directory) Snapshot(name string) client.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.chars[name].snap
}

// Hostiles returns the number of hostiles in range of name's group.
func (d *Directory) Hostiles(name string) int {
	d.mu.RLock()
	e, ok := d.chars[name]
	d.mu.RUnlock()
	if !ok || e.roster == nil {
		return 0
	}
	return e.roster.Hostiles.Len()
}

// Attach points m's bot.* callbacks at d.
func (d *Directory) Attach(m *scripting.Manager) {
	m.Character = d.Snapshot
	m.HostileCount = d.Hostiles
}
