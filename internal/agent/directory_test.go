package agent_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/agent"
	"github.com/cory-johannsen/castbot/internal/client"
	"github.com/cory-johannsen/castbot/internal/client/replay"
	"github.com/cory-johannsen/castbot/internal/clock"
)

func TestDirectory_LookupsByName(t *testing.T) {
	d := agent.NewDirectory()
	st := client.NewState()
	roster := client.NewRoster(nil, client.NewHostileList(client.NewHostile("Ogre", "TAB")))
	d.Add("Aelin", st, roster)

	assert.Same(t, st, d.Snapshot("Aelin"))
	assert.Nil(t, d.Snapshot("Nobody"))
	assert.Equal(t, 1, d.Hostiles("Aelin"))
	assert.Zero(t, d.Hostiles("Nobody"))
}

func TestPrepare_PlaysInRealTimeOnFleet(t *testing.T) {
	content := loadContent(t)
	dir := agent.NewDirectory()
	dir.Attach(content.Scripts)
	clk := clock.NewSystem()
	fast := agent.Timing{Melee: time.Millisecond, Cast: time.Millisecond, Min: time.Millisecond, Max: 10 * time.Millisecond}

	fleet := agent.NewFleet(5*time.Millisecond, zap.NewNop())
	var recs []*replay.Recorder
	for _, file := range []string{"rogue_ambush.yaml", "berserker_rage.yaml"} {
		sc, err := replay.Load(filepath.Join(contentDir, "scenarios", file))
		require.NoError(t, err)
		pb, err := agent.Prepare(sc, content, fast, clk, dir, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, fleet.Add(pb.Character.Runner))
		recs = append(recs, pb.Recorder)
	}
	assert.Equal(t, []string{"Torg", "Vex"}, fleet.Names())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, fleet.Run(ctx))
	require.NoError(t, ctx.Err(), "every runner stopped at its tick limit")
	for _, r := range recs {
		assert.NotEmpty(t, r.Sent())
	}
}
