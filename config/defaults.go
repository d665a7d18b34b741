package config

import (
	"github.com/spf13/viper"

	"github.com/safedep/authgate/subsystem"
)

const (
	defaultPathMaxChars  = 256
	defaultMetricsListen = "127.0.0.1:9464"
)

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// Subsystem defaults
	v.SetDefault("subsystem.backend", subsystem.BackendFanotify)
	v.SetDefault("subsystem.watch_paths", []string{"/"})

	// Policy defaults
	v.SetDefault("policy.default_decision", "allow")
	v.SetDefault("policy.rules", defaultRules())

	// Diagnostics defaults
	v.SetDefault("diagnostics.path_max_chars", defaultPathMaxChars)
	v.SetDefault("diagnostics.log_allowed", false)

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", defaultMetricsListen)

	// Display defaults
	v.SetDefault("display.colors", "auto")
}

// defaultRules returns the blocklist shipped out of the box.
func defaultRules() []RuleConfig {
	return []RuleConfig{
		{
			Name:   "block-passwd",
			Action: "deny",
			Match:  "exact",
			Path:   "/etc/passwd",
		},
	}
}
