package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gitpanel.dev/gitpanel/internal/cli"
)

func TestMain(m *testing.M) {
	_ = os.Setenv("GITPANEL_NO_INTERACTIVE", "1")
	os.Exit(m.Run())
}

// cliEnv is an isolated home for one test: its own config, state, log file
// and an empty repository root.
type cliEnv struct {
	t    *testing.T
	dir  string
	root string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("GITPANEL_LOG_FILE", filepath.Join(dir, "logs", "gitpanel.log"))
	t.Setenv("GITPANEL_AUTHOR_NAME", "")
	t.Setenv("GITPANEL_AUTHOR_EMAIL", "")
	t.Setenv("GITPANEL_TRUNK", "")
	t.Setenv("GITPANEL_JOURNAL_ENABLED", "")
	t.Setenv("GITPANEL_JOURNAL_PATH", "")
	t.Setenv("CLICOLOR_FORCE", "")

	root := filepath.Join(dir, "repo")
	require.NoError(t, os.MkdirAll(root, 0o755))
	return &cliEnv{t: t, dir: dir, root: root}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	cmd := cli.NewRootCmd("1.2.3", "abc123", "2026-01-01")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--repo", e.root}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "gitpanel %v\n%s", args, out)
	return out
}

func (e *cliEnv) writeFile(name, content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(filepath.Join(e.root, name), []byte(content), 0o644))
}
