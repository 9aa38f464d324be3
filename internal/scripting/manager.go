package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/client"
)

// globalKey is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no behavior VM is found.
const globalKey = "__global__"

// Manager owns one sandboxed LState per behavior and exposes hook dispatch.
//
// Each LState is single-threaded; the mutex serializes calls so that
// characters ticking on separate goroutines can share a Manager.
type Manager struct {
	mu        sync.Mutex
	states    map[string]*lua.LState
	instLimit int
	logger    *zap.Logger

	// Injected after construction. nil = the bot.* functions return nil.
	Character    func(name string) client.Snapshot
	HostileCount func(name string) int
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil; instLimit >= 0, 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil Manager with no VMs loaded.
func NewManager(logger *zap.Logger, instLimit int) *Manager {
	return &Manager{
		states:    make(map[string]*lua.LState),
		instLimit: instLimit,
		logger:    logger,
	}
}

// Load creates a sandboxed VM for key, registers the bot module, then
// executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: key must be non-empty; scriptDir must be a readable directory.
// Postcondition: VM is registered under key, replacing any previous one.
func (m *Manager) Load(key, scriptDir string) error {
	L := NewSandboxedState()
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(files)

	for _, path := range files {
		release := Budget(L, m.instLimit)
		err := L.DoFile(path)
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.states[key]; ok {
		old.Close()
	}
	m.states[key] = L
	m.mu.Unlock()
	m.logger.Debug("scripts loaded", zap.String("key", key), zap.Int("files", len(files)))
	return nil
}

// LoadGlobal loads scriptDir into the shared VM consulted when a key has no
// VM of its own.
func (m *Manager) LoadGlobal(scriptDir string) error {
	return m.Load(globalKey, scriptDir)
}

// CallHook calls the named Lua global function in key's VM, falling back to
// the global VM. Returns (LNil, nil) if the hook is not defined or no VM
// exists. Lua runtime errors, including an exhausted instruction budget, are
// logged at Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(key, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L, ok := m.states[key]
	if !ok {
		L = m.states[globalKey]
	}
	if L == nil {
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	release := Budget(L, m.instLimit)
	defer release()
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("key", key),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Holds calls hook with the character name and reports whether it returned
// Lua true. A missing or failing hook holds false.
func (m *Manager) Holds(key, hook, character string) bool {
	v, err := m.CallHook(key, hook, lua.LString(character))
	return err == nil && v == lua.LTrue
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, L := range m.states {
		L.Close()
		delete(m.states, k)
	}
}
