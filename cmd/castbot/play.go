package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/agent"
	"github.com/cory-johannsen/castbot/internal/clock"
	"github.com/cory-johannsen/castbot/internal/game/session"
	"github.com/cory-johannsen/castbot/internal/lifecycle"
)

func newPlayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "play [scenario files or directories...]",
		Short: "Run scenarios side by side in real time",
		Long: `Runs one character per scenario concurrently on the wall clock, each
ticking at automation.tick_interval, until every scenario has run its ticks
or the process is interrupted. Expectations are reported but not enforced,
since real-time pacing may shift inputs across ticks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := a.loadScenarios(args)
			if err != nil {
				return err
			}
			content, err := a.loadContent()
			if err != nil {
				return err
			}
			defer content.Close()

			dir := agent.NewDirectory()
			if content.Scripts != nil {
				dir.Attach(content.Scripts)
			}
			clk := clock.NewSystem()
			fleet := agent.NewFleet(a.cfg.Automation.TickInterval, a.logger)
			sessions := session.NewManager()
			playbacks := make([]*agent.Playback, 0, len(scenarios))
			for _, sc := range scenarios {
				pb, err := agent.Prepare(sc, content, a.timing(), clk, dir, a.logger.With(zap.String("scenario", sc.Name)))
				if err != nil {
					return err
				}
				if err := sessions.Add(pb.Character.Session); err != nil {
					return err
				}
				if err := fleet.Add(pb.Character.Runner); err != nil {
					return err
				}
				playbacks = append(playbacks, pb)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			lc := lifecycle.New(a.logger)
			lc.Add("fleet", lifecycle.ContextService(ctx, fleet.Run))
			if err := lc.Run(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, pb := range playbacks {
				_, acted := pb.Character.Runner.Stats()
				report(out, pb.Scenario, pb.Recorder.Sent(), acted, pb.Recorder.Check(pb.Scenario.Expect))
			}
			return nil
		},
	}
}
