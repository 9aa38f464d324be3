package behavior_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/castbot/internal/game/ability"
	"github.com/cory-johannsen/castbot/internal/game/behavior"
)

var contentDir = filepath.Join("..", "..", "..", "content")

func minimal() *behavior.Domain {
	return &behavior.Domain{
		ID:    "d",
		Class: "healer",
		Rules: []*behavior.Rule{{ID: "r1", Action: behavior.ActBuff, Ability: "spirit_armor"}},
	}
}

func TestDomain_Validate_RejectsEmpty(t *testing.T) {
	assert.Error(t, (&behavior.Domain{}).Validate())
	assert.Error(t, (&behavior.Domain{ID: "d"}).Validate())
	assert.Error(t, (&behavior.Domain{ID: "d", Class: "healer"}).Validate())
}

func TestDomain_Validate_AcceptsMinimal(t *testing.T) {
	require.NoError(t, minimal().Validate())
}

func TestDomain_Validate_ReportsEveryViolation(t *testing.T) {
	d := minimal()
	d.Rules = append(d.Rules,
		&behavior.Rule{ID: "r1", Action: behavior.ActBuff, Ability: "x"},
		&behavior.Rule{ID: "r2", Action: "dance", Ability: "x"},
		&behavior.Rule{ID: "r3", Action: behavior.ActHeal, Ability: "heal", Targets: behavior.TargetHostiles},
		&behavior.Rule{ID: "r4", Action: behavior.ActRestore, Ability: "mana_potion"},
		&behavior.Rule{ID: "r5", Action: behavior.ActHeal, Ability: "heal", Threshold: 140},
		&behavior.Rule{ID: "r6", Action: behavior.ActAttack},
	)
	err := d.Validate()
	require.Error(t, err)
	for _, want := range []string{
		`duplicate rule ID "r1"`,
		`unknown action "dance"`,
		`does not accept targets "hostiles"`,
		"restore requires a threshold",
		"threshold 140",
		`rule "r6": ability must not be empty`,
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDomain_CheckProfile(t *testing.T) {
	reg, err := ability.LoadDirectory(filepath.Join(contentDir, "profiles"))
	require.NoError(t, err)
	healer, _ := reg.Profile("healer")
	berserker, _ := reg.Profile("berserker")

	require.NoError(t, minimal().CheckProfile(healer))
	assert.ErrorContains(t, minimal().CheckProfile(berserker), "written for class")

	d := minimal()
	d.Rules = []*behavior.Rule{
		{ID: "missing", Action: behavior.ActBuff, Ability: "no_such"},
		{ID: "restore_spell", Action: behavior.ActRestore, Ability: "heal", Threshold: 50},
		{ID: "rage_buff", Action: behavior.ActRage, Ability: "spirit_armor"},
	}
	err = d.CheckProfile(healer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile has no entry "no_such"`)
	assert.Contains(t, err.Error(), "restore needs a consumable")
	assert.Contains(t, err.Error(), "does not fit entry")
}

func TestLoadDomains_ShippedContentFitsProfiles(t *testing.T) {
	reg, err := ability.LoadDirectory(filepath.Join(contentDir, "profiles"))
	require.NoError(t, err)
	domains, err := behavior.LoadDomains(filepath.Join(contentDir, "behaviors"))
	require.NoError(t, err)
	require.Len(t, domains, 3)
	for _, d := range domains {
		p, ok := reg.Profile(d.Class)
		require.True(t, ok, "domain %s: no profile for %s", d.ID, d.Class)
		assert.NoError(t, d.CheckProfile(p))
		if d.Scripts != "" {
			info, err := os.Stat(d.Scripts)
			require.NoError(t, err, "domain %s scripts", d.ID)
			assert.True(t, info.IsDir())
		}
	}
}

func TestLoadDomains_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte(`
domain:
  id: x
  class: healer
  rules:
    - id: r
      action: buff
      ability: spirit_armor
      cooldown: 3
`), 0o644))
	_, err := behavior.LoadDomains(dir)
	assert.Error(t, err)
}

func TestLoadDomains_MissingKeyAndDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("other: {}\n"), 0o644))
	_, err := behavior.LoadDomains(dir)
	assert.ErrorContains(t, err, "missing top-level 'domain' key")

	_, err = behavior.LoadDomains(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}

func TestRegistry_RejectsDuplicateClass(t *testing.T) {
	a, b := minimal(), minimal()
	b.ID = "other"
	_, err := behavior.NewRegistry(a, b)
	assert.ErrorContains(t, err, "already has domain")

	r, err := behavior.NewRegistry(a)
	require.NoError(t, err)
	got, ok := r.DomainFor("healer")
	require.True(t, ok)
	assert.Same(t, a, got)
	_, ok = r.DomainFor("rogue")
	assert.False(t, ok)
}

func TestPropertyValidate_ThresholdRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		th := rapid.IntRange(-50, 200).Draw(rt, "threshold")
		d := minimal()
		d.Rules = []*behavior.Rule{{ID: "h", Action: behavior.ActHeal, Ability: "heal", Threshold: th}}
		err := d.Validate()
		if th < 0 || th > 100 {
			if err == nil {
				rt.Fatalf("threshold %d accepted", th)
			}
		} else if err != nil {
			rt.Fatalf("threshold %d rejected: %v", th, err)
		}
	})
}
