// Package config provides configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/safedep/authgate/core/security"
)

// ColorMode represents the color output mode.
type ColorMode string

const (
	// ColorAuto automatically detects terminal support.
	ColorAuto ColorMode = "auto"
	// ColorAlways always uses colors.
	ColorAlways ColorMode = "always"
	// ColorNever never uses colors.
	ColorNever ColorMode = "never"
)

// Config holds all configuration values.
type Config struct {
	Subsystem   SubsystemConfig   `mapstructure:"subsystem"`
	Policy      PolicyConfig      `mapstructure:"policy"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Display     DisplayConfig     `mapstructure:"display"`
}

// SubsystemConfig selects and configures the kernel subsystem backend.
type SubsystemConfig struct {
	Backend    string   `mapstructure:"backend"`
	WatchPaths []string `mapstructure:"watch_paths"`
}

// PolicyConfig holds the ruleset.
type PolicyConfig struct {
	DefaultDecision string       `mapstructure:"default_decision"`
	Rules           []RuleConfig `mapstructure:"rules"`
}

// RuleConfig is one policy rule as written in the config file.
type RuleConfig struct {
	Name   string `mapstructure:"name" yaml:"name,omitempty"`
	Action string `mapstructure:"action" yaml:"action"`
	Match  string `mapstructure:"match" yaml:"match,omitempty"`
	Path   string `mapstructure:"path" yaml:"path"`
	Actor  string `mapstructure:"actor" yaml:"actor,omitempty"`
}

// DiagnosticsConfig controls what ends up in our own logs.
type DiagnosticsConfig struct {
	PathMaxChars int  `mapstructure:"path_max_chars"`
	LogAllowed   bool `mapstructure:"log_allowed"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// DisplayConfig holds display-related settings.
type DisplayConfig struct {
	Colors ColorMode `mapstructure:"colors"`
}

// Paths holds resolved filesystem paths.
type Paths struct {
	ConfigFile       string
	ConfigDir        string
	SystemConfigFile string
}

// Load loads configuration from the given path or default locations.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		paths := ResolvePaths()

		v.SetConfigName("config")
		v.AddConfigPath(paths.ConfigDir)
		v.AddConfigPath(filepath.Dir(paths.SystemConfigFile))
	}

	v.SetEnvPrefix("AUTHGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a Config with all default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)

	return &cfg
}

// ResolvePaths returns the resolved filesystem paths for the current platform.
func ResolvePaths() *Paths {
	configDir := getConfigDir()

	return &Paths{
		ConfigFile:       filepath.Join(configDir, "config.yaml"),
		ConfigDir:        configDir,
		SystemConfigFile: filepath.Join(systemConfigDir, "config.yaml"),
	}
}

// RuleSpecs converts the configured rules to policy rule specs.
func (c *Config) RuleSpecs() []security.RuleSpec {
	specs := make([]security.RuleSpec, 0, len(c.Policy.Rules))
	for _, r := range c.Policy.Rules {
		specs = append(specs, security.RuleSpec{
			Name:   r.Name,
			Action: r.Action,
			Match:  r.Match,
			Path:   r.Path,
			Actor:  r.Actor,
		})
	}
	return specs
}

// Evaluator builds the immutable policy evaluator from the configured rules.
func (c *Config) Evaluator() (*security.Evaluator, error) {
	decision, err := security.ParseDecision(c.Policy.DefaultDecision)
	if err != nil {
		return nil, fmt.Errorf("policy.default_decision: %w", err)
	}

	return security.NewFromSpecs(&security.Config{DefaultDecision: decision}, c.RuleSpecs())
}

// ShouldUseColors returns true if colors should be used based on config and terminal.
func (c *Config) ShouldUseColors() bool {
	switch c.Display.Colors {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		// Auto: check if stdout is a terminal
		fileInfo, _ := os.Stdout.Stat()
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
}
