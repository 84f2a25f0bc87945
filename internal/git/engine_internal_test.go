package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func TestInitRemovesRepositoryWhenInitialCommitFails(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(Options{})
	l.initialCommit = func(*gogit.Worktree, *object.Signature) error {
		return errors.New("disk full")
	}

	_, err := l.Init(context.Background(), dir, Author{Name: "a", Email: "a@x"})
	require.ErrorContains(t, err, "disk full")

	_, statErr := os.Stat(filepath.Join(dir, ".git"))
	require.True(t, os.IsNotExist(statErr), "partial .git left behind")
	require.False(t, l.HasRepository(dir))

	l.initialCommit = commitInitial
	h, err := l.Init(context.Background(), dir, Author{Name: "a", Email: "a@x"})
	require.NoError(t, err)
	require.NoError(t, h.Destroy())
}
