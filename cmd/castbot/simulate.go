package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/agent"
	"github.com/cory-johannsen/castbot/internal/client/replay"
)

func newSimulateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate [scenario files or directories...]",
		Short: "Replay scenarios on a simulated clock and check their expected inputs",
		Long: `Replays each scenario tick by tick on a manual clock, printing every
input the character would have sent. Scenarios carrying an expect list are
checked against the recorded inputs; any mismatch fails the command.`,
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

			out := cmd.OutOrStdout()
			failed := 0
			for _, sc := range scenarios {
				res, err := agent.Simulate(sc, content, a.timing(), a.logger.With(zap.String("scenario", sc.Name)))
				if res == nil {
					return err
				}
				report(out, sc, res.Sent, res.Actions, err)
				if err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(scenarios))
			}
			return nil
		},
	}
}

func report(out io.Writer, sc *replay.Scenario, sent []replay.Sent, actions int, err error) {
	verdict := "PASS"
	switch {
	case err != nil:
		verdict = "FAIL"
	case len(sc.Expect) == 0:
		verdict = "DONE"
	}
	fmt.Fprintf(out, "%s %s (%s, %d ticks, %d actions)\n", verdict, sc.Name, sc.Class, sc.Ticks, actions)
	for _, s := range sent {
		fmt.Fprintf(out, "  %s\n", s)
	}
	if err != nil {
		fmt.Fprintf(out, "  %v\n", err)
	}
}
