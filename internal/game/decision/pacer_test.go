package decision_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/castbot/internal/clock"
	"github.com/cory-johannsen/castbot/internal/game/decision"
)

func TestPacer_ClampsDelays(t *testing.T) {
	p := decision.NewPacer(clock.NewManual(epoch), 10*time.Millisecond, 5*time.Second, 100*time.Millisecond, 2*time.Second)
	assert.Equal(t, 100*time.Millisecond, p.Delay(decision.Melee))
	assert.Equal(t, 2*time.Second, p.Delay(decision.Cast))
}

func TestPacer_FirstWaitDoesNotSleep(t *testing.T) {
	clk := clock.NewManual(epoch)
	p := decision.NewPacer(clk, 250*time.Millisecond, 500*time.Millisecond, 0, 0)
	p.Wait(decision.Cast)
	assert.Zero(t, clk.Slept())
}

func TestPacer_WaitsOnlyForRemainder(t *testing.T) {
	clk := clock.NewManual(epoch)
	p := decision.NewPacer(clk, 250*time.Millisecond, 500*time.Millisecond, 0, 0)
	p.Mark()
	clk.Advance(200 * time.Millisecond)
	p.Wait(decision.Cast)
	assert.Equal(t, 300*time.Millisecond, clk.Slept())
}

func TestNewPacer_NilClockPanics(t *testing.T) {
	assert.Panics(t, func() { decision.NewPacer(nil, 0, 0, 0, 0) })
}

func TestPropertyPacer_ActionsNeverCloserThanDelay(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clk := clock.NewManual(epoch)
		p := decision.NewPacer(clk, 250*time.Millisecond, 500*time.Millisecond, 100*time.Millisecond, time.Second)
		var last time.Time
		for i, gap := range rapid.SliceOfN(rapid.Int64Range(0, int64(time.Second)), 1, 20).Draw(t, "gaps") {
			clk.Advance(time.Duration(gap))
			kind := decision.ActionKind(rapid.IntRange(0, 1).Draw(t, "kind"))
			p.Wait(kind)
			now := clk.Now()
			if i > 0 {
				assert.GreaterOrEqual(t, now.Sub(last), p.Delay(kind))
			}
			p.Mark()
			last = now
		}
	})
}
