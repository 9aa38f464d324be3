package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scenario files or directories...]",
		Short: "Check configuration, content and scenarios without running anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := a.loadContent()
			if err != nil {
				return err
			}
			defer content.Close()
			scenarios, err := a.loadScenarios(args)
			if err != nil {
				return err
			}
			var errs []error
			for _, sc := range scenarios {
				if _, ok := content.Profiles.Profile(sc.Class); !ok {
					errs = append(errs, fmt.Errorf("scenario %q: no profile for class %q", sc.Name, sc.Class))
				}
				if _, ok := content.Behaviors.DomainFor(sc.Class); !ok {
					errs = append(errs, fmt.Errorf("scenario %q: no behavior for class %q", sc.Name, sc.Class))
				}
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d classes, %d behaviors, %d scenarios\n",
				len(content.Profiles.Classes()), len(content.Behaviors.Domains()), len(scenarios))
			return nil
		},
	}
}
