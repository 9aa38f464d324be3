package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castbot/internal/agent"
	"github.com/cory-johannsen/castbot/internal/client/replay"
	"github.com/cory-johannsen/castbot/internal/config"
	"github.com/cory-johannsen/castbot/internal/observability"
)

var (
	// Version is injected via ldflags at build time.
	Version = "dev"
	// Commit is injected via ldflags at build time.
	Commit = "none"
)

// app carries what every subcommand needs once the root command has loaded
// configuration.
type app struct {
	configPath string
	cfg        config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "castbot",
		Short:        "Rule-driven ability automation for MMO characters",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "configs/dev.yaml", "path to configuration file; empty uses defaults and CASTBOT_* variables")

	root.AddCommand(
		newSimulateCmd(a),
		newPlayCmd(a),
		newValidateCmd(a),
		newResolveCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) timing() agent.Timing {
	return agent.Timing{
		Melee: a.cfg.Automation.MeleeDelay,
		Cast:  a.cfg.Automation.DefaultDelay,
		Min:   a.cfg.Automation.MinDelay,
		Max:   a.cfg.Automation.MaxDelay,
	}
}

func (a *app) loadContent() (agent.Content, error) {
	return agent.LoadContent(agent.Dirs{
		Profiles:  a.cfg.Content.Profiles,
		Behaviors: a.cfg.Content.Behaviors,
		Scripts:   a.cfg.Content.Scripts,
	}, a.cfg.Scripting.InstructionLimit, a.logger)
}

// scenarioFiles expands args into scenario file paths. Directories yield
// their *.yaml files in name order; no args means the configured directory.
func (a *app) scenarioFiles(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{a.cfg.Content.Scenarios}
	}
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("scenario path: %w", err)
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.yaml"))
		if err != nil {
			return nil, fmt.Errorf("scenario path %s: %w", arg, err)
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no scenario files found in %v", args)
	}
	return out, nil
}

func (a *app) loadScenarios(args []string) ([]*replay.Scenario, error) {
	files, err := a.scenarioFiles(args)
	if err != nil {
		return nil, err
	}
	out := make([]*replay.Scenario, 0, len(files))
	for _, f := range files {
		sc, err := replay.Load(f)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the castbot version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "castbot %s (%s) %s/%s\n", Version, Commit, runtime.GOOS, runtime.GOARCH)
		},
	}
}
