package journal_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	gperrors "gitpanel.dev/gitpanel/internal/errors"
	"gitpanel.dev/gitpanel/internal/git"
	"gitpanel.dev/gitpanel/internal/git/gittest"
	"gitpanel.dev/gitpanel/internal/journal"
	"gitpanel.dev/gitpanel/internal/session"
)

func openStore(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "nested", "journal.db"), journal.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func entry(op session.OpKind, arg string, err error, started time.Time) session.Entry {
	return session.Entry{
		ID:       uuid.NewString(),
		Path:     "/repo",
		Op:       op,
		Arg:      arg,
		Err:      err,
		Started:  started,
		Duration: 15 * time.Millisecond,
	}
}

func TestAppendAndList(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.Append(ctx, entry(session.OpInit, "/repo", nil, base)))
	require.NoError(t, store.Append(ctx, entry(session.OpDeleteBranch, "main",
		gperrors.NewValidationError("delete-branch", gperrors.ErrCurrentBranch, "main"), base.Add(time.Second))))
	require.NoError(t, store.Append(ctx, entry(session.OpCommit, "msg",
		gperrors.NewEngineError("commit", errors.New("disk full")), base.Add(2*time.Second))))

	records, err := store.List(ctx, journal.Query{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, "commit", records[0].Op)
	require.Equal(t, "engine", records[0].Outcome)
	require.Contains(t, records[0].Error, "disk full")
	require.Equal(t, 15*time.Millisecond, records[0].Duration())

	require.Equal(t, "validation", records[1].Outcome)
	require.True(t, records[2].Succeeded())
	require.Equal(t, "/repo", records[2].Arg)
}

func TestListFilters(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now()

	other := entry(session.OpCommit, "x", nil, now)
	other.Path = "/other"
	require.NoError(t, store.Append(ctx, other))
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, entry(session.OpRefresh, "", nil, now.Add(time.Duration(i)*time.Second))))
	}
	require.NoError(t, store.Append(ctx, entry(session.OpMergeBranch, "nope",
		gperrors.NewValidationError("merge-branch", gperrors.NewBranchNotFoundError("nope"), ""), now)))

	records, err := store.List(ctx, journal.Query{RepoPath: "/repo", Limit: 3})
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		require.Equal(t, "/repo", r.RepoPath)
	}

	failed, err := store.List(ctx, journal.Query{FailedOnly: true})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, "nope", failed[0].Arg)
}

func TestPrune(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Append(ctx, entry(session.OpCommit, "old", nil, now.Add(-48*time.Hour))))
	require.NoError(t, store.Append(ctx, entry(session.OpCommit, "new", nil, now)))

	removed, err := store.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	records, err := store.List(ctx, journal.Query{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "new", records[0].Arg)
}

func TestStoreRecordsControllerOperations(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	ctrl := session.New(gittest.New(), git.Author{Name: "a", Email: "a@x"}, session.WithRecorder(store))
	require.NoError(t, ctrl.Init(ctx, "/repo"))
	require.NoError(t, ctrl.CreateBranch(ctx, "feature"))
	require.Error(t, ctrl.DeleteBranch(ctx, "main"))
	require.NoError(t, ctrl.Destroy(ctx))

	records, err := store.List(ctx, journal.Query{RepoPath: "/repo"})
	require.NoError(t, err)

	var ops []string
	for _, r := range records {
		ops = append(ops, r.Op)
	}
	require.ElementsMatch(t, []string{"init", "create-branch", "delete-branch", "destroy"}, ops)
}

func TestOpenRejectsCorruptFileWithoutLeaking(t *testing.T) {
	if _, err := os.Stat("/proc/self/fd"); err != nil {
		t.Skip("no /proc/self/fd on this platform")
	}
	path := filepath.Join(t.TempDir(), "journal.db")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a database ", 512)), 0o600))

	_, err := journal.Open(path, journal.Options{})
	require.Error(t, err)

	fds, err := os.ReadDir("/proc/self/fd")
	require.NoError(t, err)
	for _, fd := range fds {
		target, err := os.Readlink(filepath.Join("/proc/self/fd", fd.Name()))
		if err != nil {
			continue
		}
		require.NotEqual(t, path, target, "journal file still open")
	}
}
