// Package scripting provides a sandboxed GopherLua environment for behavior
// preconditions. It has no dependency on game packages; character state is
// injected through Manager callback fields.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// script load or hook call when no override is configured.
const DefaultInstructionLimit = 100_000

// countingContext is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua's mainLoopWithContext calls Done() once
// per opcode, making this an exact instruction-count limit.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done().
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{Context: base, cancel: cancel, remaining: rem}, cancel
}

// NewSandboxedState creates a GopherLua LState with:
//   - Only safe stdlib loaded: base, table, string, math
//   - Dangerous globals removed: dofile, loadfile, load, collectgarbage, require
//
// Postcondition: Returns a non-nil LState with no instruction budget attached;
// use Budget around each execution. The caller must call L.Close() when done.
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// Budget attaches a fresh instruction budget of limit opcodes to L and
// returns a release function that detaches it.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit.
func Budget(L *lua.LState, limit int) func() {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := newCountingContext(limit)
	L.SetContext(ctx)
	return func() {
		L.RemoveContext()
		cancel()
	}
}
