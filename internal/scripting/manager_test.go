package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/castbot/internal/client"
	"github.com/cory-johannsen/castbot/internal/scripting"
)

func writeScripts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestCallHook_NoVMReturnsNil(t *testing.T) {
	m := scripting.NewManager(zap.NewNop(), 0)
	defer m.Close()
	v, err := m.CallHook("healer", "anything")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, v)
}

func TestCallHook_FallsBackToGlobal(t *testing.T) {
	m := scripting.NewManager(zap.NewNop(), 0)
	defer m.Close()
	require.NoError(t, m.LoadGlobal(writeScripts(t, map[string]string{
		"a.lua": `function shared(n) return n .. "!" end`,
	})))
	v, err := m.CallHook("healer", "shared", lua.LString("hi"))
	require.NoError(t, err)
	assert.Equal(t, lua.LString("hi!"), v)
}

func TestCallHook_KeyVMShadowsGlobal(t *testing.T) {
	m := scripting.NewManager(zap.NewNop(), 0)
	defer m.Close()
	require.NoError(t, m.LoadGlobal(writeScripts(t, map[string]string{"g.lua": `function who() return "global" end`})))
	require.NoError(t, m.Load("rogue", writeScripts(t, map[string]string{"r.lua": `function who() return "rogue" end`})))
	v, _ := m.CallHook("rogue", "who")
	assert.Equal(t, lua.LString("rogue"), v)
	v, _ = m.CallHook("healer", "who")
	assert.Equal(t, lua.LString("global"), v)
}

func TestLoad_FilesRunInOrder(t *testing.T) {
	m := scripting.NewManager(zap.NewNop(), 0)
	defer m.Close()
	require.NoError(t, m.Load("k", writeScripts(t, map[string]string{
		"01_base.lua":  `order = "a"`,
		"02_after.lua": `order = order .. "b"; function get() return order end`,
		"notes.txt":    `this is not lua`,
	})))
	v, _ := m.CallHook("k", "get")
	assert.Equal(t, lua.LString("ab"), v)
}

func TestLoad_SyntaxErrorFails(t *testing.T) {
	m := scripting.NewManager(zap.NewNop(), 0)
	defer m.Close()
	err := m.Load("k", writeScripts(t, map[string]string{"bad.lua": `function (`}))
	assert.Error(t, err)
	assert.Error(t, m.Load("k", filepath.Join(t.TempDir(), "missing")))
}

func TestCallHook_RuntimeErrorLoggedAndSwallowed(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := scripting.NewManager(zap.New(core), 50)
	defer m.Close()
	require.NoError(t, m.Load("k", writeScripts(t, map[string]string{"x.lua": `
		function boom() error("nope") end
		function spin() while true do end end
	`})))
	v, err := m.CallHook("k", "boom")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, v)
	v, err = m.CallHook("k", "spin")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, v)
	assert.Equal(t, 2, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestHolds_OnlyLuaTrue(t *testing.T) {
	m := scripting.NewManager(zap.NewNop(), 0)
	defer m.Close()
	require.NoError(t, m.Load("k", writeScripts(t, map[string]string{"x.lua": `
		function yes(name) return name == "Aelin" end
		function one() return 1 end
	`})))
	assert.True(t, m.Holds("k", "yes", "Aelin"))
	assert.False(t, m.Holds("k", "yes", "Bree"))
	assert.False(t, m.Holds("k", "one", "Aelin"))
	assert.False(t, m.Holds("k", "undefined", "Aelin"))
}

func TestModules_BotTableReadsInjectedState(t *testing.T) {
	st := client.NewState()
	st.SetResource(client.Mana, 250, 1000)
	st.SetEffects("Spirit Armour, Poisoned")

	m := scripting.NewManager(zap.NewNop(), 0)
	defer m.Close()
	m.Character = func(name string) client.Snapshot {
		if name == "Aelin" {
			return st
		}
		return nil
	}
	m.HostileCount = func(string) int { return 3 }
	require.NoError(t, m.Load("k", writeScripts(t, map[string]string{"x.lua": `
		function mana(n) return bot.resource(n, "mana") end
		function mana_max(n) return bot.max(n, "mana") end
		function mana_pct(n) return bot.percent(n, "mana") end
		function poisoned(n) return bot.has_effect(n, "Poison") end
		function crowded(n) return bot.hostiles(n) >= 3 end
		function bogus(n) return bot.resource(n, "rage") end
		function chatty(n) bot.log("hello " .. n) return true end
	`})))

	v, _ := m.CallHook("k", "mana", lua.LString("Aelin"))
	assert.Equal(t, lua.LNumber(250), v)
	v, _ = m.CallHook("k", "mana_max", lua.LString("Aelin"))
	assert.Equal(t, lua.LNumber(1000), v)
	v, _ = m.CallHook("k", "mana_pct", lua.LString("Aelin"))
	assert.Equal(t, lua.LNumber(25), v)
	assert.True(t, m.Holds("k", "poisoned", "Aelin"))
	assert.True(t, m.Holds("k", "crowded", "Aelin"))
	assert.True(t, m.Holds("k", "chatty", "Aelin"))

	v, _ = m.CallHook("k", "bogus", lua.LString("Aelin"))
	assert.Equal(t, lua.LNil, v)
	v, _ = m.CallHook("k", "mana", lua.LString("Nobody"))
	assert.Equal(t, lua.LNil, v)
}
