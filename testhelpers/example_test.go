package testhelpers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gitpanel.dev/gitpanel/testhelpers"
)

func TestGitRepoBasicOperations(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

	branch, err := scene.Repo.CurrentBranchName()
	require.NoError(t, err)
	require.Equal(t, "main", branch)

	require.NoError(t, scene.Repo.CreateChangeAndCommit("second", "2"))
	testhelpers.ExpectCommits(t, scene.Repo, []string{"second", "1"})

	clean, err := scene.Repo.IsClean()
	require.NoError(t, err)
	require.True(t, clean)
}

func TestExpectBranches(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

	require.NoError(t, scene.Repo.CreateBranch("feature"))
	testhelpers.ExpectBranches(t, scene.Repo, []string{"main", "feature"})
}
