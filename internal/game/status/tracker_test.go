package status_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/castbot/internal/clock"
	"github.com/cory-johannsen/castbot/internal/game/ability"
	"github.com/cory-johannsen/castbot/internal/game/priority"
	"github.com/cory-johannsen/castbot/internal/game/status"
)

type feed struct{ text string }

func (f *feed) Effects() string { return f.text }

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

const tick = 500 * time.Millisecond

func newTracker(p status.Policy, f *feed) (*status.Tracker, *clock.Manual) {
	clk := clock.NewManual(epoch)
	return status.New(p, []string{"Spirit Armor", "Spirit Armour"}, f, clk), clk
}

// reader returns a func taking one reading per tick.
func reader(tr *status.Tracker, clk *clock.Manual) func() bool {
	return func() bool {
		clk.Advance(tick)
		return tr.IsActive()
	}
}

func TestBuff_ListedIsActive(t *testing.T) {
	tr, _ := newTracker(status.Buff, &feed{text: "Regeneration, spirit armour"})
	assert.True(t, tr.IsActive())
}

func TestBuff_CooldownMasksFeed(t *testing.T) {
	f := &feed{}
	tr, clk := newTracker(status.Buff, f)
	tr.ResetTimer()
	for i := 0; i < 5; i++ {
		assert.True(t, tr.IsActive(), "reading %d inside cooldown", i)
	}
	clk.Advance(status.CastCooldown)
	assert.True(t, tr.IsCoolingDown(), "cooldown window is inclusive")
	clk.Advance(time.Millisecond)
	assert.False(t, tr.IsCoolingDown())
}

func TestBuff_HysteresisNeedsThreeMisses(t *testing.T) {
	f := &feed{}
	read := reader(newTracker(status.Buff, f))
	assert.True(t, read())
	assert.True(t, read())
	assert.False(t, read())
	assert.False(t, read())
}

func TestBuff_ReadingsInOneInstantCountOnce(t *testing.T) {
	f := &feed{}
	tr, clk := newTracker(status.Buff, f)
	for n := 1; n <= 2; n++ {
		for i := 0; i < 4; i++ {
			assert.True(t, tr.IsActive(), "tick %d reading %d", n, i)
		}
		clk.Advance(tick)
	}
	assert.False(t, tr.IsActive(), "third tick is the third miss")
}

func TestBuff_PositiveReadingResetsMisses(t *testing.T) {
	f := &feed{}
	read := reader(newTracker(status.Buff, f))
	assert.True(t, read())
	assert.True(t, read())
	f.text = "Spirit Armor"
	assert.True(t, read())
	f.text = ""
	assert.True(t, read())
	assert.True(t, read())
	assert.False(t, read())
}

func TestBuff_ResetTimerClearsMisses(t *testing.T) {
	f := &feed{}
	tr, clk := newTracker(status.Buff, f)
	read := reader(tr, clk)
	read()
	read()
	tr.ResetTimer()
	clk.Advance(2 * status.CastCooldown)
	assert.True(t, tr.IsActive())
	assert.True(t, read())
	assert.False(t, read())
}

func TestDebuff_Immediacy(t *testing.T) {
	f := &feed{text: "Poison"}
	clk := clock.NewManual(epoch)
	tr := status.New(status.Debuff, []string{"Poison", "Venom"}, f, clk)
	assert.True(t, tr.IsActive())
	f.text = ""
	assert.False(t, tr.IsActive())
}

func TestDebuff_CooldownReportsInactive(t *testing.T) {
	f := &feed{text: "Venom"}
	clk := clock.NewManual(epoch)
	tr := status.New(status.Debuff, []string{"Poison", "Venom"}, f, clk)
	tr.ResetTimer()
	assert.False(t, tr.IsActive())
	clk.Advance(status.CastCooldown + time.Millisecond)
	assert.True(t, tr.IsActive())
}

func TestAlwaysInactive(t *testing.T) {
	tr, _ := newTracker(status.AlwaysInactive, &feed{text: "Spirit Armor"})
	tr.ResetTimer()
	assert.False(t, tr.IsActive())
}

func TestNew_PanicsOnNilFeed(t *testing.T) {
	assert.Panics(t, func() { status.New(status.Buff, nil, nil, clock.NewManual(epoch)) })
	assert.Panics(t, func() { status.New(status.Rage, nil, &feed{}, clock.NewManual(epoch)) })
}

func TestPolicyFor(t *testing.T) {
	p, ok := status.PolicyFor(ability.TrackDebuff)
	require.True(t, ok)
	assert.Equal(t, status.Debuff, p)
	assert.Equal(t, "debuff", p.String())
	_, ok = status.PolicyFor(ability.TrackNone)
	assert.False(t, ok)
	_, ok = status.PolicyFor("")
	assert.False(t, ok)
}

func TestPropertyBuff_ActiveUntilThirdConsecutiveMiss(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := &feed{}
		read := reader(newTracker(status.Buff, f))
		readings := rapid.SliceOf(rapid.Bool()).Draw(t, "listed")
		misses := 0
		for _, listed := range readings {
			if listed {
				f.text = "Spirit Armor"
				misses = 0
			} else {
				f.text = "Haste"
				misses++
			}
			assert.Equal(t, misses < status.BuffHysteresis, read())
		}
	})
}

func TestPropertyCooldown_MasksAnyFeed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		policy := rapid.SampledFrom([]status.Policy{status.Buff, status.Rage}).Draw(t, "policy")
		f := &feed{text: rapid.String().Draw(t, "feed")}
		clk := clock.NewManual(epoch)
		var tr *status.Tracker
		if policy == status.Rage {
			tr = status.NewRage(rageLevels(), f, clk, func() int { return 1000 })
		} else {
			tr = status.New(policy, []string{"Spirit Armor"}, f, clk)
		}
		tr.ResetTimer()
		clk.Advance(time.Duration(rapid.Int64Range(0, int64(status.CastCooldown)).Draw(t, "elapsed")))
		assert.True(t, tr.IsActive())
	})
}

func rageLevels() []*priority.Resolved {
	mk := func(name string, cost int, dur, rech float64) *priority.Resolved {
		return &priority.Resolved{
			Aliased: &ability.Aliased{Names: []string{name}, Cost: cost, DurationSecs: dur, RechargeSecs: rech},
			Slot:    name,
		}
	}
	return []*priority.Resolved{
		mk("Rage I", 20, 20, 4),
		mk("Rage II", 40, 18, 4),
		mk("Rage III", 60, 15, 5),
	}
}

func TestRage_StartsInactiveAfterHysteresis(t *testing.T) {
	f := &feed{}
	clk := clock.NewManual(epoch)
	tr := status.NewRage(rageLevels(), f, clk, func() int { return 100 })
	read := reader(tr, clk)
	assert.True(t, read())
	assert.True(t, read())
	assert.False(t, read())
	assert.Equal(t, 0, tr.Level())
	require.NotNil(t, tr.Next())
	assert.Equal(t, "Rage I", tr.Next().Name())
}

func TestRage_SuppressedUntilRecastWindow(t *testing.T) {
	f := &feed{}
	clk := clock.NewManual(epoch)
	tr := status.NewRage(rageLevels(), f, clk, func() int { return 100 })
	tr.ResetTimer()
	tr.Advance()
	clk.Advance(2 * time.Second)

	f.text = "Rage I 15"
	assert.True(t, tr.IsActive(), "15s left is outside the 5s window")
	assert.Equal(t, 15*time.Second, tr.Remaining())

	f.text = "Rage I 5"
	assert.False(t, tr.IsActive(), "5s left is inside the recharge+margin window")
	require.NotNil(t, tr.Next())
	assert.Equal(t, "Rage II", tr.Next().Name())
}

func TestRage_UnparseableRemainingIsZero(t *testing.T) {
	f := &feed{text: "Rage I"}
	clk := clock.NewManual(epoch)
	tr := status.NewRage(rageLevels(), f, clk, func() int { return 100 })
	tr.Advance()
	assert.Equal(t, time.Duration(0), tr.Remaining())
	assert.False(t, tr.IsActive())
}

func TestRage_CappedByResourcePool(t *testing.T) {
	f := &feed{text: "Rage II 2"}
	clk := clock.NewManual(epoch)
	tr := status.NewRage(rageLevels(), f, clk, func() int { return 50 })
	assert.Equal(t, 2, tr.MaxLevel())
	tr.Advance()
	tr.Advance()
	assert.Nil(t, tr.Next())
	assert.True(t, tr.IsActive(), "at the cap the stack is left to run")
}

func TestRage_ExpiryResetsLevel(t *testing.T) {
	f := &feed{text: "Rage II 3"}
	clk := clock.NewManual(epoch)
	tr := status.NewRage(rageLevels(), f, clk, func() int { return 100 })
	tr.Advance()
	tr.Advance()
	f.text = ""
	read := reader(tr, clk)
	assert.True(t, read())
	assert.True(t, read())
	assert.False(t, read())
	assert.Equal(t, 0, tr.Level())
}

func TestRage_AdvanceCapped(t *testing.T) {
	tr := status.NewRage(rageLevels(), &feed{}, clock.NewManual(epoch), func() int { return 1000 })
	for i := 0; i < 10; i++ {
		tr.Advance()
	}
	assert.Equal(t, 3, tr.Level())
}
