package config

import (
	"fmt"
	"net"
	"path/filepath"

	"github.com/safedep/authgate/subsystem"
)

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	// Validate backend
	switch cfg.Subsystem.Backend {
	case subsystem.BackendFanotify:
		if len(cfg.Subsystem.WatchPaths) == 0 {
			return fmt.Errorf("subsystem.watch_paths must not be empty for the %s backend", cfg.Subsystem.Backend)
		}
	case subsystem.BackendMemory:
	default:
		return fmt.Errorf("invalid subsystem.backend: %s (must be fanotify or memory)", cfg.Subsystem.Backend)
	}

	for i, p := range cfg.Subsystem.WatchPaths {
		if !filepath.IsAbs(p) {
			return fmt.Errorf("subsystem.watch_paths[%d]: %q is not absolute", i, p)
		}
	}

	// Validate the ruleset by building it
	if _, err := cfg.Evaluator(); err != nil {
		return err
	}

	if cfg.Diagnostics.PathMaxChars <= 0 {
		return fmt.Errorf("diagnostics.path_max_chars must be positive")
	}

	if cfg.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Listen); err != nil {
			return fmt.Errorf("invalid metrics.listen %q: %w", cfg.Metrics.Listen, err)
		}
	}

	// Validate color mode
	if !isValidColorMode(cfg.Display.Colors) {
		return fmt.Errorf("invalid display.colors: %s (must be auto, always, or never)", cfg.Display.Colors)
	}

	return nil
}

// isValidColorMode returns true if the given mode is valid.
func isValidColorMode(mode ColorMode) bool {
	switch mode {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}
