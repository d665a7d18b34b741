package cli_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRules(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("rules")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Default decision: allow")
	assert.Contains(t, stdout, "block-passwd")
	assert.Contains(t, stdout, "/srv/secrets")
	assert.Contains(t, stdout, "prefix")
	assert.Contains(t, stdout, "2 rules, first match wins")
}

func TestRules_JSON(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("rules", "--format", "json")
	require.NoError(t, err)

	var view struct {
		DefaultDecision string `json:"default_decision"`
		Rules           []struct {
			Index  int    `json:"index"`
			Name   string `json:"name"`
			Action string `json:"action"`
			Match  string `json:"match"`
			Path   string `json:"path"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))

	assert.Equal(t, "allow", view.DefaultDecision)
	require.Len(t, view.Rules, 2)
	assert.Equal(t, "block-passwd", view.Rules[0].Name)
	assert.Equal(t, "deny", view.Rules[0].Action)
	assert.Equal(t, "exact", view.Rules[0].Match)
	assert.Equal(t, 1, view.Rules[1].Index)
	assert.Equal(t, "/srv/secrets", view.Rules[1].Path)
}

func TestRules_YAML(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("rules", "--yaml")
	require.NoError(t, err)

	var doc struct {
		Policy struct {
			DefaultDecision string `yaml:"default_decision"`
			Rules           []struct {
				Name   string `yaml:"name"`
				Action string `yaml:"action"`
				Path   string `yaml:"path"`
			} `yaml:"rules"`
		} `yaml:"policy"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))

	assert.Equal(t, "allow", doc.Policy.DefaultDecision)
	require.Len(t, doc.Policy.Rules, 2)
	assert.Equal(t, "/etc/passwd", doc.Policy.Rules[0].Path)
}
