package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/castbot/internal/client/replay"
	"github.com/cory-johannsen/castbot/internal/clock"
	"github.com/cory-johannsen/castbot/internal/game/ability"
	"github.com/cory-johannsen/castbot/internal/game/session"
)

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <scenario file>...",
		Short: "Show how a scenario character's owned abilities bind to its class profile",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := ability.LoadDirectory(a.cfg.Content.Profiles)
			if err != nil {
				return err
			}
			scenarios, err := a.loadScenarios(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, sc := range scenarios {
				p, ok := profiles.Profile(sc.Class)
				if !ok {
					return fmt.Errorf("scenario %q: no profile for class %q", sc.Name, sc.Class)
				}
				driver := replay.NewDriver(sc, a.logger)
				driver.Apply(0)
				sess := session.New(sc.Character, p, driver.Self, clock.NewManual(replay.Epoch), a.logger)

				fmt.Fprintf(out, "%s (%s)\n", sc.Character, sc.Class)
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "  ENTRY\tNAME\tSLOT\tRANK\tTRACKER")
				for _, b := range sess.Bindings() {
					ab := b.Ability()
					if ab == nil {
						fmt.Fprintf(tw, "  %s\t-\t-\t-\tunavailable\n", b.Entry().ID)
						continue
					}
					fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%s\n", b.Entry().ID, ab.MatchedName, ab.Slot, ab.Rank, b.Tracker().Policy())
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
