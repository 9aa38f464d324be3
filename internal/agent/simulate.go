package agent

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/client/replay"
	"github.com/cory-johannsen/castbot/internal/clock"
	"github.com/cory-johannsen/castbot/internal/game/ability"
	"github.com/cory-johannsen/castbot/internal/game/behavior"
	"github.com/cory-johannsen/castbot/internal/scripting"
)

// Content is the static data a run is assembled from.
type Content struct {
	Profiles  *ability.Registry
	Behaviors *behavior.Registry
	Scripts   *scripting.Manager
}

// Playback is a scenario wired to an assembled character.
type Playback struct {
	Scenario  *replay.Scenario
	Driver    *replay.Driver
	Recorder  *replay.Recorder
	Character *Character
}

// Prepare assembles sc's character on clk. Every tick first applies the
// scenario's due frames. The character and its local allies are added to dir.
//
// Precondition: content.Profiles, content.Behaviors and dir must not be nil.
func Prepare(sc *replay.Scenario, content Content, timing Timing, clk clock.Clock, dir *Directory, logger *zap.Logger) (*Playback, error) {
	profile, ok := content.Profiles.Profile(sc.Class)
	if !ok {
		return nil, fmt.Errorf("agent.Prepare %q: no profile for class %q", sc.Name, sc.Class)
	}
	domain, ok := content.Behaviors.DomainFor(sc.Class)
	if !ok {
		return nil, fmt.Errorf("agent.Prepare %q: no behavior for class %q", sc.Name, sc.Class)
	}

	driver := replay.NewDriver(sc, logger)
	rec := replay.NewRecorder(logger.With(zap.String("character", sc.Character)))
	dir.Add(sc.Character, driver.Self, driver.Roster)
	for _, a := range sc.Allies {
		if a.Local {
			dir.Add(a.Name, driver.State(a.Name), driver.Roster)
		}
	}

	var hooks behavior.PreconditionChecker
	if content.Scripts != nil {
		hooks = content.Scripts
	}
	ch, err := NewCharacter(Spec{
		Name:     sc.Character,
		Profile:  profile,
		Domain:   domain,
		Self:     driver.Self,
		Roster:   driver.Roster,
		Injector: rec,
	}, timing, clk, hooks, logger)
	if err != nil {
		return nil, err
	}
	driver.OnLeave = ch.Session.Forget
	ch.Runner.Before = func(tick int) {
		driver.Apply(tick)
		rec.SetTick(tick)
	}
	ch.Runner.Limit = sc.Ticks
	return &Playback{Scenario: sc, Driver: driver, Recorder: rec, Character: ch}, nil
}

// Result is the outcome of a simulated scenario.
type Result struct {
	Ticks   int
	Actions int
	Sent    []replay.Sent
}

// Simulate plays sc on a manual clock and returns every recorded send. When
// sc carries expectations they are checked and a mismatch is returned as an
// error alongside the result.
func Simulate(sc *replay.Scenario, content Content, timing Timing, logger *zap.Logger) (*Result, error) {
	dir := NewDirectory()
	if content.Scripts != nil {
		dir.Attach(content.Scripts)
	}
	clk := clock.NewManual(replay.Epoch)
	pb, err := Prepare(sc, content, timing, clk, dir, logger)
	if err != nil {
		return nil, err
	}

	acted := pb.Character.Runner.Steps(sc.Ticks, clk, sc.Step())
	res := &Result{Ticks: sc.Ticks, Actions: acted, Sent: pb.Recorder.Sent()}
	logger.Info("scenario complete",
		zap.String("scenario", sc.Name),
		zap.Int("ticks", res.Ticks),
		zap.Int("actions", res.Actions),
	)
	if err := pb.Recorder.Check(sc.Expect); err != nil {
		return res, fmt.Errorf("agent.Simulate %q: %w", sc.Name, err)
	}
	return res, nil
}
