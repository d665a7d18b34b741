package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewManager_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	mgr, err := NewManager(configFile)
	require.NoError(t, err)
	require.NotNil(t, mgr)

	assert.Equal(t, configFile, mgr.ConfigPath())
	assert.NotNil(t, mgr.AllSettings())
	assert.Equal(t, "fanotify", mgr.Get("subsystem.backend"))
}

func TestNewManager_WithExistingConfig(t *testing.T) {
	configFile := writeConfig(t, `
subsystem:
  backend: memory
diagnostics:
  path_max_chars: 80
`)

	mgr, err := NewManager(configFile)
	require.NoError(t, err)

	assert.Equal(t, "memory", mgr.Get("subsystem.backend"))
	assert.Equal(t, 80, mgr.Get("diagnostics.path_max_chars"))
}

func TestManager_Get_ReturnsDefaults(t *testing.T) {
	mgr, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	tests := []struct {
		key      string
		expected interface{}
	}{
		{"subsystem.backend", "fanotify"},
		{"subsystem.watch_paths", []string{"/"}},
		{"policy.default_decision", "allow"},
		{"policy.rules", defaultRules()},
		{"diagnostics.path_max_chars", 256},
		{"diagnostics.log_allowed", false},
		{"metrics.enabled", false},
		{"metrics.listen", "127.0.0.1:9464"},
		{"display.colors", "auto"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, mgr.Get(tt.key))
		})
	}
}

func TestManager_Set_CreatesCompleteConfigFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "nested", "config.yaml")

	mgr, err := NewManager(configFile)
	require.NoError(t, err)

	require.NoError(t, mgr.Set("metrics.enabled", true))

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)

	var configMap map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &configMap))

	for _, section := range []string{"subsystem", "policy", "diagnostics", "metrics", "display"} {
		assert.Contains(t, configMap, section)
	}

	metrics, ok := configMap["metrics"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, metrics["enabled"])
	assert.Equal(t, "127.0.0.1:9464", metrics["listen"])
}

func TestManager_Set_RoundTripsRules(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")

	mgr, err := NewManager(configFile)
	require.NoError(t, err)
	require.NoError(t, mgr.Set("display.colors", "never"))

	reloaded, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, defaultRules(), reloaded.Policy.Rules)
	assert.Equal(t, ColorNever, reloaded.Display.Colors)
}

func TestManager_Set_RejectsInvalidValue(t *testing.T) {
	configFile := writeConfig(t, "display:\n  colors: always\n")

	mgr, err := NewManager(configFile)
	require.NoError(t, err)

	err = mgr.Set("display.colors", "rainbow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid value for display.colors")

	assert.Equal(t, "always", mgr.Get("display.colors"))

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Equal(t, "display:\n  colors: always\n", string(data))
}

func TestManager_Set_PreservesExistingValues(t *testing.T) {
	configFile := writeConfig(t, `
subsystem:
  backend: memory
diagnostics:
  path_max_chars: 100
`)

	mgr, err := NewManager(configFile)
	require.NoError(t, err)

	require.NoError(t, mgr.Set("display.colors", "always"))

	assert.Equal(t, "memory", mgr.Get("subsystem.backend"))
	assert.Equal(t, 100, mgr.Get("diagnostics.path_max_chars"))
	assert.Equal(t, "always", mgr.Get("display.colors"))

	newMgr, err := NewManager(configFile)
	require.NoError(t, err)
	assert.Equal(t, "always", newMgr.Get("display.colors"))
	assert.Equal(t, "memory", newMgr.Get("subsystem.backend"))
}

func TestManager_Reset_RemovesConfigFile(t *testing.T) {
	configFile := writeConfig(t, "subsystem:\n  backend: memory\n")

	mgr, err := NewManager(configFile)
	require.NoError(t, err)
	assert.Equal(t, "memory", mgr.Get("subsystem.backend"))

	require.NoError(t, mgr.Reset())

	_, err = os.Stat(configFile)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, "fanotify", mgr.Get("subsystem.backend"))
}

func TestManager_Reset_NonExistentFile(t *testing.T) {
	mgr, err := NewManager(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	require.NoError(t, mgr.Reset())
}

func TestManager_HasKey(t *testing.T) {
	mgr, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.True(t, mgr.HasKey("subsystem.backend"))
	assert.False(t, mgr.HasKey("subsystem.nonexistent"))
}

func TestManager_Config(t *testing.T) {
	mgr, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	cfg, err := mgr.Config()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"true", true},
		{"false", false},
		{"512", 512},
		{"memory", "memory"},
		{"[/home, /srv]", []string{"/home", "/srv"}},
		{"[]", []string{}},
		{"127.0.0.1:9464", "127.0.0.1:9464"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseValue(tt.input))
		})
	}
}
