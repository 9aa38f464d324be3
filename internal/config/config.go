// Package config provides Viper-based configuration loading for castbot.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path. Simulation reports go to
	// stdout, so logs default to stderr.
	Output string `mapstructure:"output"`
}

// ContentConfig locates the static data loaded at startup.
type ContentConfig struct {
	// Profiles is the directory of class profile YAML files.
	Profiles string `mapstructure:"profiles"`
	// Behaviors is the directory of behavior domain YAML files.
	Behaviors string `mapstructure:"behaviors"`
	// Scripts is the directory of shared Lua preconditions; empty disables scripting.
	Scripts string `mapstructure:"scripts"`
	// Scenarios is the default directory searched by the simulate command.
	Scenarios string `mapstructure:"scenarios"`
}

// AutomationConfig holds the pacing of the tick loop.
type AutomationConfig struct {
	// MeleeDelay is the minimum gap before a melee action.
	MeleeDelay time.Duration `mapstructure:"melee_delay"`
	// DefaultDelay is the minimum gap before any other action.
	DefaultDelay time.Duration `mapstructure:"default_delay"`
	// MinDelay and MaxDelay bound both delays.
	MinDelay time.Duration `mapstructure:"min_delay"`
	MaxDelay time.Duration `mapstructure:"max_delay"`
	// TickInterval is the time between chain evaluations.
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// ScriptingConfig holds Lua sandbox settings.
type ScriptingConfig struct {
	// InstructionLimit caps the opcodes of one script load or hook call;
	// 0 uses the sandbox default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Content    ContentConfig    `mapstructure:"content"`
	Automation AutomationConfig `mapstructure:"automation"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAutomation(c.Automation); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Profiles == "" {
		errs = append(errs, "content.profiles must not be empty")
	}
	if c.Behaviors == "" {
		errs = append(errs, "content.behaviors must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAutomation(a AutomationConfig) error {
	var errs []string
	if a.MinDelay < 0 {
		errs = append(errs, "automation.min_delay must not be negative")
	}
	if a.MaxDelay <= 0 {
		errs = append(errs, fmt.Sprintf("automation.max_delay must be > 0, got %s", a.MaxDelay))
	}
	if a.MinDelay > a.MaxDelay {
		errs = append(errs, "automation.min_delay must not exceed automation.max_delay")
	}
	if a.MeleeDelay < 0 || a.DefaultDelay < 0 {
		errs = append(errs, "automation.melee_delay and automation.default_delay must not be negative")
	}
	if a.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("automation.tick_interval must be > 0, got %s", a.TickInterval))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path loads defaults and
// environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with CASTBOT_ prefix
	v.SetEnvPrefix("CASTBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("content.profiles", "content/profiles")
	v.SetDefault("content.behaviors", "content/behaviors")
	v.SetDefault("content.scripts", "content/scripts")
	v.SetDefault("content.scenarios", "content/scenarios")

	v.SetDefault("automation.melee_delay", "300ms")
	v.SetDefault("automation.default_delay", "600ms")
	v.SetDefault("automation.min_delay", "100ms")
	v.SetDefault("automation.max_delay", "2s")
	v.SetDefault("automation.tick_interval", "500ms")

	v.SetDefault("scripting.instruction_limit", 0)
}
