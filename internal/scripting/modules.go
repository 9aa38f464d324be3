package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/client"
	"github.com/cory-johannsen/castbot/internal/game/status"
)

// RegisterModules registers the read-only bot.* table into L:
//
//	bot.resource(char, res)   current value of res ("health", "mana", "energy")
//	bot.max(char, res)        maximum value of res
//	bot.percent(char, res)    current/max as an integer percentage
//	bot.has_effect(char, n)   whether the effects readout lists n
//	bot.hostiles(char)        number of hostiles in range
//	bot.log(msg)              debug log line
//
// Precondition: L must be from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState) {
	bot := L.NewTable()
	L.SetField(bot, "resource", L.NewFunction(m.resourceFn(func(s client.Snapshot, r client.Resource) int { return s.Current(r) })))
	L.SetField(bot, "max", L.NewFunction(m.resourceFn(func(s client.Snapshot, r client.Resource) int { return s.Max(r) })))
	L.SetField(bot, "percent", L.NewFunction(m.resourceFn(client.Percent)))
	L.SetField(bot, "has_effect", L.NewFunction(func(L *lua.LState) int {
		snap := m.character(L.CheckString(1))
		if snap == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LBool(status.Listed(snap.Effects(), []string{L.CheckString(2)})))
		return 1
	}))
	L.SetField(bot, "hostiles", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if m.HostileCount == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(m.HostileCount(name)))
		return 1
	}))
	L.SetField(bot, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Debug("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetGlobal("bot", bot)
}

func (m *Manager) character(name string) client.Snapshot {
	if m.Character == nil {
		return nil
	}
	return m.Character(name)
}

func (m *Manager) resourceFn(read func(client.Snapshot, client.Resource) int) lua.LGFunction {
	return func(L *lua.LState) int {
		snap := m.character(L.CheckString(1))
		res := client.Resource(L.CheckString(2))
		if snap == nil || !res.Valid() {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(read(snap, res)))
		return 1
	}
}
