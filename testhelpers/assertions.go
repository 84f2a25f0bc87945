// Package testhelpers provides testing utilities for gitpanel: throwaway
// repositories driven through the git CLI and assertions over them.
package testhelpers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must panics if err is not nil, otherwise returns val. Useful in test setup
// where errors are not expected.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts that the repository has exactly the expected branches,
// ignoring order.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	branches, err := repo.ListBranches()
	require.NoError(t, err, "Failed to list branches")

	want := append([]string(nil), expected...)
	sort.Strings(want)
	sort.Strings(branches)
	require.Equal(t, want, branches, "Branches do not match")
}

// ExpectCommits asserts that the newest commits on the current branch have
// the expected subjects.
func ExpectCommits(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	messages, err := repo.ListCurrentBranchCommitMessages()
	require.NoError(t, err, "Failed to list commits")
	if len(messages) < len(expected) {
		require.Fail(t, "Not enough commits", "Expected %d commits, got %d", len(expected), len(messages))
		return
	}
	require.Equal(t, expected, messages[:len(expected)], "Commits do not match")
}
