package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safedep/authgate/cli"
)

const defaultTestConfig = `subsystem:
  backend: memory
policy:
  default_decision: allow
  rules:
    - name: block-passwd
      action: deny
      match: exact
      path: /etc/passwd
    - name: block-secrets
      action: deny
      match: prefix
      path: /srv/secrets
diagnostics:
  path_max_chars: 256
display:
  colors: never
`

type testEnv struct {
	t          *testing.T
	tmpDir     string
	configPath string
	stdin      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, defaultTestConfig)
}

func newTestEnvWithConfig(t *testing.T, configYAML string) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte(configYAML), 0o600)
	require.NoError(t, err)

	return &testEnv{
		t:          t,
		tmpDir:     tmpDir,
		configPath: configPath,
	}
}

func (env *testEnv) run(args ...string) (stdout, stderr string, err error) {
	env.t.Helper()
	return env.runContext(context.Background(), args...)
}

func (env *testEnv) runContext(ctx context.Context, args ...string) (stdout, stderr string, err error) {
	env.t.Helper()

	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetIn(strings.NewReader(env.stdin))

	fullArgs := append([]string{"--config", env.configPath, "--no-color"}, args...)
	rootCmd.SetArgs(fullArgs)
	err = rootCmd.ExecuteContext(ctx)
	return outBuf.String(), errBuf.String(), err
}

// writeFile creates a file under the test directory and returns its path.
func (env *testEnv) writeFile(name, content string) string {
	env.t.Helper()

	path := filepath.Join(env.tmpDir, name)
	require.NoError(env.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// exitCode is the process exit code err would produce.
func exitCode(err error) int {
	return cli.ExitCodeFor(err)
}
