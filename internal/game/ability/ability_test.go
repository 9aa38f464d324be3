package ability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/castbot/internal/game/ability"
)

func TestNormalize_FoldsCaseAndApostrophes(t *testing.T) {
	assert.Equal(t, ability.Normalize("ancestors touch"), ability.Normalize("Ancestor's Touch"))
	assert.Equal(t, ability.Normalize("ANCESTORS TOUCH"), ability.Normalize("Ancestor’s Touch"))
	assert.Equal(t, "heal", ability.Normalize("  Heal "))
}

func TestMatches_ExactForSpells(t *testing.T) {
	names := []string{"Heal"}
	assert.True(t, ability.Matches("heal", names, false))
	assert.False(t, ability.Matches("Greater Heal", names, false))
}

func TestMatches_ContainsForItems(t *testing.T) {
	names := []string{"Mana Potion"}
	assert.True(t, ability.Matches("Mana Potion (x5)", names, true))
	assert.True(t, ability.Matches("mana potion", names, true))
	assert.False(t, ability.Matches("Healing Potion", names, true))
}

func TestMatches_EmptyInputs(t *testing.T) {
	assert.False(t, ability.Matches("", []string{"Heal"}, true))
	assert.False(t, ability.Matches("Heal", []string{""}, true))
	assert.False(t, ability.Matches("Heal", nil, false))
}

func TestAliased_Timing(t *testing.T) {
	a := &ability.Aliased{Names: []string{"Rage I"}, DurationSecs: 20, RechargeSecs: 4.5}
	assert.Equal(t, 20*time.Second, a.Duration())
	assert.Equal(t, 4500*time.Millisecond, a.Recharge())
	assert.Equal(t, "Rage I", a.Name())
	assert.Empty(t, (&ability.Aliased{}).Name())
}

func TestKind_Contains(t *testing.T) {
	assert.False(t, ability.Spell.Contains())
	assert.True(t, ability.Item.Contains())
	assert.True(t, ability.Mount.Contains())
	assert.False(t, ability.Kind("weapon").Valid())
}

func TestPropertyNormalize_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		once := ability.Normalize(s)
		assert.Equal(t, once, ability.Normalize(once))
	})
}

func TestPropertyMatches_SelfMatch(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[A-Za-z][A-Za-z' ]{0,20}[A-Za-z]`).Draw(t, "name")
		assert.True(t, ability.Matches(name, []string{name}, false))
		assert.True(t, ability.Matches("Fine "+name+" (3)", []string{name}, true))
	})
}
