package cli_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "authgate dev")
	assert.Contains(t, stdout, "commit: none")
}

func TestVersion_JSON(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("version", "--format", "json")
	require.NoError(t, err)

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, "dev", view["version"])
	assert.NotEmpty(t, view["go_version"])
}

func TestVersion_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/safedep/authgate/releases/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"tag_name": "v1.4.0", "html_url": "https://github.com/safedep/authgate/releases/tag/v1.4.0"}`))
	}))
	defer srv.Close()
	t.Setenv("AUTHGATE_RELEASE_API", srv.URL)

	env := newTestEnv(t)
	stdout, _, err := env.run("version", "--check")
	require.NoError(t, err)

	// Development builds are never reported as outdated.
	assert.Contains(t, stdout, "authgate is up to date (latest v1.4.0)")
}

func TestVersion_CheckUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	t.Setenv("AUTHGATE_RELEASE_API", srv.URL)

	env := newTestEnv(t)
	stdout, _, err := env.run("version", "--check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "failed to check for updates")
	assert.Contains(t, stdout, "status 503")
}
