package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	gperrors "gitpanel.dev/gitpanel/internal/errors"
	"gitpanel.dev/gitpanel/testhelpers"
)

func TestInitStatusAndLog(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("status")
	require.Contains(t, out, "No repository in "+env.root)

	out = env.mustRun("init")
	require.Contains(t, out, "Initialized repository in "+env.root)

	out = env.mustRun("status")
	require.Contains(t, out, "On branch main")
	require.Contains(t, out, "* 0 main")

	out = env.mustRun("log")
	require.Contains(t, out, "Initial commit")

	_, err := env.run("init")
	require.ErrorIs(t, err, gperrors.ErrRepositoryExists)
}

func TestRepositoryWithoutCommits(t *testing.T) {
	testhelpers.RequireGit(t)
	env := newCLIEnv(t)
	_, err := testhelpers.NewGitRepo(env.root)
	require.NoError(t, err)

	out := env.mustRun("status")
	require.Contains(t, out, "On branch main")
	require.Contains(t, out, "No commits yet.")

	_, err = env.run("init")
	require.ErrorIs(t, err, gperrors.ErrRepositoryExists)

	env.writeFile("a.txt", "a\n")
	env.mustRun("commit", "-m", "first")
	out = env.mustRun("branches")
	require.Contains(t, out, "* 0 main")
}

func TestCommandsNeedRepository(t *testing.T) {
	env := newCLIEnv(t)

	for _, args := range [][]string{
		{"log"},
		{"branches"},
		{"commit", "-m", "x"},
		{"checkout", "0"},
		{"branch", "create", "feature"},
	} {
		_, err := env.run(args...)
		require.ErrorIs(t, err, gperrors.ErrNoRepository, "gitpanel %v", args)
	}
}

func TestCommitBranchCheckoutDelete(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("init")

	env.writeFile("README.md", "# demo\n")
	out := env.mustRun("commit", "-m", "add readme")
	require.Contains(t, out, "add readme")
	require.Contains(t, env.mustRun("log"), "add readme")

	env.mustRun("branch", "create", "feature")
	out = env.mustRun("branches")
	require.Contains(t, out, "* 0 main")
	require.Contains(t, out, "  1 feature")

	out = env.mustRun("checkout", "1")
	require.Contains(t, out, "Switched to branch feature")
	require.Contains(t, env.mustRun("status"), "On branch feature")

	env.mustRun("checkout", "main")
	out = env.mustRun("branch", "delete", "feature")
	require.Contains(t, out, "Deleted branch feature")
	require.NotContains(t, env.mustRun("branches"), "feature")
}

func TestCommitRequiresMessage(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("init")

	_, err := env.run("commit")
	require.Error(t, err)
	require.Equal(t, "Commit message must not be empty.", gperrors.UserMessage(err))
}

func TestDeleteCurrentBranchIsRefused(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("init")
	env.mustRun("branch", "create", "feature")

	_, err := env.run("branch", "delete", "main")
	require.Error(t, err)
	require.Equal(t, "Current Branch must not be the branch to delete.", gperrors.UserMessage(err))

	_, err = env.run("branch", "delete", "nope")
	require.Equal(t, "Branch not in Repository", gperrors.UserMessage(err))

	out := env.mustRun("branches")
	require.Contains(t, out, "main")
	require.Contains(t, out, "feature")
}

func TestCheckoutOutOfRange(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("init")

	_, err := env.run("checkout", "5")
	require.ErrorIs(t, err, gperrors.ErrIndexOutOfRange)
	require.Contains(t, env.mustRun("status"), "On branch main")

	_, err = env.run("checkout")
	require.Error(t, err)
}

func TestMergeFastForward(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("init")

	out := env.mustRun("branch", "create", "--checkout", "feature")
	require.Contains(t, out, "Switched to branch feature")
	env.writeFile("feature.txt", "feature\n")
	env.mustRun("commit", "-m", "feature work")

	env.mustRun("checkout", "main")
	require.NotContains(t, env.mustRun("log"), "feature work")

	out = env.mustRun("branch", "merge", "feature")
	require.Contains(t, out, "Merged feature into main")
	require.Contains(t, env.mustRun("log"), "feature work")

	_, err := env.run("branch", "merge", "missing")
	require.ErrorIs(t, err, gperrors.ErrBranchNotFound)
}

func TestLogSteps(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("init")
	env.mustRun("commit", "-m", "second")
	env.mustRun("commit", "-m", "third")

	out := env.mustRun("log", "-n", "1")
	require.Contains(t, out, "third")
	require.NotContains(t, out, "second")
}

func TestHistory(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("history")
	require.Contains(t, out, "No operations recorded.")

	env.mustRun("init")
	env.mustRun("commit", "-m", "tracked")
	_, err := env.run("branch", "delete", "main")
	require.Error(t, err)

	out = env.mustRun("history")
	require.Contains(t, out, "OP")
	require.Contains(t, out, "init")
	require.Contains(t, out, "tracked")

	out = env.mustRun("history", "--failed")
	require.Contains(t, out, "delete-branch")
	require.Contains(t, out, "validation")
	require.NotContains(t, out, "tracked")

	out = env.mustRun("history", "prune", "--older-than", "1h")
	require.Contains(t, out, "Removed 0 operations.")
}

func TestHistoryDisabled(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("GITPANEL_JOURNAL_ENABLED", "false")

	_, err := env.run("history")
	require.ErrorContains(t, err, "journal is disabled")
}

func TestConfigCommands(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("config", "path")
	require.Equal(t, filepath.Join(env.dir, "config", "gitpanel", "config.yaml"), strings.TrimSpace(out))

	require.Equal(t, "User\n", env.mustRun("config", "get", "author.name"))

	env.mustRun("config", "set", "author.name", "Alice")
	require.Equal(t, "Alice\n", env.mustRun("config", "get", "author.name"))

	_, err := env.run("config", "set", "log.limit", "many")
	require.Error(t, err)

	_, err = env.run("config", "get", "nope")
	require.ErrorContains(t, err, "unknown config key")

	env.mustRun("init")
	env.mustRun("config", "set", "--local", "editor.style", "dracula")
	_, err = os.Stat(filepath.Join(env.root, ".git", "gitpanel.yaml"))
	require.NoError(t, err)

	out = env.mustRun("config", "list")
	require.Contains(t, out, "editor.style")
	require.Contains(t, out, "dracula")
}

func TestCommitUsesConfiguredAuthor(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("config", "set", "author.name", "Alice")
	env.mustRun("init")
	env.mustRun("commit", "-m", "by alice")

	require.Contains(t, env.mustRun("log"), "Alice")
}

func TestShowAndEdit(t *testing.T) {
	env := newCLIEnv(t)
	env.writeFile("main.go", "package main\n")

	out := env.mustRun("edit", "main.go", "--at", "0", "--insert", "// demo\n")
	require.Contains(t, out, "Saved")

	data, err := os.ReadFile(filepath.Join(env.root, "main.go"))
	require.NoError(t, err)
	require.Equal(t, "// demo\npackage main\n", string(data))

	require.Equal(t, "// demo\npackage main\n", env.mustRun("show", "main.go"))

	env.mustRun("edit", "main.go", "--at", "0", "--delete-to", "8")
	require.Equal(t, "package main\n", env.mustRun("show", "main.go"))

	env.mustRun("edit", "notes.md", "--set", "fresh\n")
	require.Equal(t, "fresh\n", env.mustRun("show", "notes.md"))

	_, err = env.run("edit", "main.go", "--at", "99", "--insert", "x")
	require.Error(t, err)

	_, err = env.run("edit", "main.go")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	require.Equal(t, "gitpanel 1.2.3 (commit abc123, built 2026-01-01)\n", env.mustRun("version"))
}

func TestPanelNeedsTerminal(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run("panel")
	require.ErrorContains(t, err, "interactive terminal")
}
