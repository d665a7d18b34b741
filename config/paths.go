package config

import (
	"os"
	"path/filepath"
)

// systemConfigDir is searched after the user config directory, for the
// daemon running as root.
const systemConfigDir = "/etc/authgate"

// getConfigDir returns the configuration directory for authgate.
func getConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "authgate")
}
