package agent

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/client"
	"github.com/cory-johannsen/castbot/internal/clock"
	"github.com/cory-johannsen/castbot/internal/game/ability"
	"github.com/cory-johannsen/castbot/internal/game/behavior"
	"github.com/cory-johannsen/castbot/internal/game/decision"
	"github.com/cory-johannsen/castbot/internal/game/session"
)

// Timing is the pacing configuration shared by every character.
type Timing struct {
	Melee time.Duration
	Cast  time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Spec describes one character to automate.
type Spec struct {
	Name     string
	Profile  *ability.Profile
	Domain   *behavior.Domain
	Self     client.Snapshot
	Roster   *client.Roster
	Injector client.Injector
}

// Character is an assembled character: its session, the actor its rules
// act through and the runner ticking its chain.
type Character struct {
	Session *session.Session
	Actor   *decision.Actor
	Runner  *Runner
}

// NewCharacter resolves spec's profile into a session, compiles its domain
// and wraps the chain in a Runner.
//
// Precondition: every Spec field must be set; clk and logger must be non-nil.
// Postcondition: returns error if the domain does not fit the profile.
func NewCharacter(spec Spec, timing Timing, clk clock.Clock, hooks behavior.PreconditionChecker, logger *zap.Logger) (*Character, error) {
	sess := session.New(spec.Name, spec.Profile, spec.Self, clk, logger)
	pacer := decision.NewPacer(clk, timing.Melee, timing.Cast, timing.Min, timing.Max)
	actor := &decision.Actor{
		Self:     spec.Self,
		Resource: spec.Profile.Resource,
		Injector: spec.Injector,
		Pacer:    pacer,
		Logger:   sess.Logger(),
	}
	chain, err := behavior.Compile(spec.Domain, sess, spec.Roster, actor, hooks)
	if err != nil {
		return nil, fmt.Errorf("agent.NewCharacter %q: %w", spec.Name, err)
	}
	return &Character{
		Session: sess,
		Actor:   actor,
		Runner:  NewRunner(spec.Name, chain, pacer, clk, logger),
	}, nil
}
