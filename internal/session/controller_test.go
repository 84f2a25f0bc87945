package session_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	gperrors "gitpanel.dev/gitpanel/internal/errors"
	"gitpanel.dev/gitpanel/internal/git"
	"gitpanel.dev/gitpanel/internal/git/gittest"
	"gitpanel.dev/gitpanel/internal/session"
	"gitpanel.dev/gitpanel/testhelpers"
)

var testAuthor = git.Author{Name: "a", Email: "a@x"}

func newActive(t *testing.T, branches ...string) (*session.Controller, *gittest.Engine) {
	t.Helper()
	eng := gittest.New()
	eng.Seed("/repo", branches...)
	ctrl := session.New(eng, testAuthor)
	require.NoError(t, ctrl.Start(context.Background(), "/repo"))
	require.Equal(t, session.PhaseActive, ctrl.State().Phase)
	return ctrl, eng
}

func TestStart(t *testing.T) {
	t.Run("opens existing repository", func(t *testing.T) {
		ctrl, _ := newActive(t, "feature")

		st := ctrl.State()
		require.Equal(t, "/repo", st.Path)
		require.Equal(t, []string{"main", "feature"}, st.Branches)
		require.Equal(t, "main", st.CurrentBranch)
		require.Contains(t, st.Log, git.InitialCommitMessage)
	})

	t.Run("opens repository without commits", func(t *testing.T) {
		eng := gittest.New()
		eng.SeedEmpty("/repo")
		ctrl := session.New(eng, testAuthor)
		ctx := context.Background()

		require.NoError(t, ctrl.Start(ctx, "/repo"))

		v := ctrl.View()
		require.True(t, v.RepoExists)
		require.False(t, v.InitEnabled)
		require.Equal(t, "main", v.CurrentBranch)
		require.Empty(t, v.BranchOptions)
		require.Equal(t, -1, v.Selected)
		require.Empty(t, v.LogText)

		err := ctrl.CreateBranch(ctx, "feature")
		require.ErrorIs(t, err, gperrors.ErrNoCommits)
		require.Equal(t, "The repository has no commits yet. Commit first.", gperrors.UserMessage(err))

		require.NoError(t, ctrl.Commit(ctx, "first"))
		require.Equal(t, []string{"main"}, ctrl.State().Branches)
		require.Contains(t, ctrl.State().Log, "first")
	})

	t.Run("stays without repository when probe fails", func(t *testing.T) {
		eng := gittest.New()
		ctrl := session.New(eng, testAuthor)

		require.NoError(t, ctrl.Start(context.Background(), "/empty"))

		st := ctrl.State()
		require.Equal(t, session.PhaseNoRepo, st.Phase)
		require.Equal(t, "/empty", st.Path)
		require.NotContains(t, eng.Calls(), gittest.OpOpen)
	})
}

func TestInit(t *testing.T) {
	t.Run("creates repository and publishes its state", func(t *testing.T) {
		eng := gittest.New()
		ctrl := session.New(eng, testAuthor)

		require.NoError(t, ctrl.Init(context.Background(), "/repo"))

		require.True(t, eng.HasRepository("/repo"))
		st := ctrl.State()
		require.Equal(t, session.PhaseActive, st.Phase)
		require.Equal(t, []string{"main"}, st.Branches)
		require.Contains(t, st.Log, "(a)")
	})

	t.Run("refused where a repository already exists", func(t *testing.T) {
		eng := gittest.New()
		eng.Seed("/repo")
		ctrl := session.New(eng, testAuthor)

		err := ctrl.Init(context.Background(), "/repo")
		require.ErrorIs(t, err, gperrors.ErrRepositoryPresent)
		require.Equal(t, gperrors.KindValidation, gperrors.Classify(err))
		require.NotContains(t, eng.Calls(), gittest.OpInit)
	})

	t.Run("refused while a repository is open", func(t *testing.T) {
		ctrl, _ := newActive(t)

		err := ctrl.Init(context.Background(), "/other")
		require.ErrorIs(t, err, gperrors.ErrRepositoryExists)
		require.Equal(t, gperrors.KindValidation, gperrors.Classify(err))
	})

	t.Run("engine failure leaves session without repository", func(t *testing.T) {
		eng := gittest.New()
		eng.Fail(gittest.OpInit, errors.New("disk full"))
		ctrl := session.New(eng, testAuthor)

		err := ctrl.Init(context.Background(), "/repo")
		require.Error(t, err)
		require.Equal(t, gperrors.KindEngine, gperrors.Classify(err))
		require.Equal(t, session.PhaseNoRepo, ctrl.State().Phase)
	})

	t.Run("failed first query releases the handle", func(t *testing.T) {
		eng := gittest.New()
		eng.Fail(gittest.OpLog, errors.New("corrupt object"))
		ctrl := session.New(eng, testAuthor)

		err := ctrl.Init(context.Background(), "/repo")
		require.Error(t, err)
		require.False(t, eng.IsLocked("/repo"))
		require.Equal(t, session.PhaseNoRepo, ctrl.State().Phase)
	})
}

func TestOpen(t *testing.T) {
	t.Run("refused when path has no repository", func(t *testing.T) {
		ctrl := session.New(gittest.New(), testAuthor)

		err := ctrl.Open(context.Background(), "/nothing")
		require.ErrorIs(t, err, gperrors.ErrNoRepository)
	})

	t.Run("lock contention is an engine error", func(t *testing.T) {
		eng := gittest.New()
		eng.Seed("/repo")
		first := session.New(eng, testAuthor)
		require.NoError(t, first.Open(context.Background(), "/repo"))

		second := session.New(eng, testAuthor)
		err := second.Open(context.Background(), "/repo")
		require.ErrorIs(t, err, gperrors.ErrRepositoryLocked)
		require.Equal(t, gperrors.KindEngine, gperrors.Classify(err))
	})
}

func TestOperationsWithoutRepository(t *testing.T) {
	ctrl := session.New(gittest.New(), testAuthor)
	ctx := context.Background()

	for name, op := range map[string]func() error{
		"commit":   func() error { return ctrl.Commit(ctx, "msg") },
		"create":   func() error { return ctrl.CreateBranch(ctx, "x") },
		"merge":    func() error { return ctrl.MergeBranch(ctx, "x") },
		"delete":   func() error { return ctrl.DeleteBranch(ctx, "x") },
		"checkout": func() error { return ctrl.Checkout(ctx, 0) },
		"refresh":  func() error { return ctrl.Refresh(ctx) },
	} {
		t.Run(name, func(t *testing.T) {
			err := op()
			require.ErrorIs(t, err, gperrors.ErrNoRepository)
			require.Equal(t, gperrors.KindValidation, gperrors.Classify(err))
		})
	}
}

func TestCommit(t *testing.T) {
	t.Run("records commit and refreshes log", func(t *testing.T) {
		ctrl, _ := newActive(t)

		require.NoError(t, ctrl.Commit(context.Background(), "add readme"))

		lines := strings.Split(ctrl.State().Log, "\n")
		require.Len(t, lines, 2)
		require.Contains(t, lines[0], "add readme")
	})

	t.Run("empty message is refused without touching the engine", func(t *testing.T) {
		ctrl, eng := newActive(t)
		before := len(eng.Calls())

		err := ctrl.Commit(context.Background(), "   ")
		require.ErrorIs(t, err, gperrors.ErrEmptyCommitMessage)
		require.Len(t, eng.Calls(), before)
	})

	t.Run("engine failure is wrapped and state re-read", func(t *testing.T) {
		ctrl, eng := newActive(t)
		eng.Fail(gittest.OpCommit, errors.New("index locked"))

		err := ctrl.Commit(context.Background(), "msg")
		var engineErr *gperrors.EngineError
		require.ErrorAs(t, err, &engineErr)
		require.Equal(t, "commit", engineErr.Op)
		require.NotContains(t, ctrl.State().Log, "msg")
	})
}

func TestCreateBranch(t *testing.T) {
	t.Run("adds branch to the list", func(t *testing.T) {
		ctrl, _ := newActive(t)

		require.NoError(t, ctrl.CreateBranch(context.Background(), "feature"))
		require.Equal(t, []string{"main", "feature"}, ctrl.State().Branches)
		require.Equal(t, "main", ctrl.State().CurrentBranch)
	})

	t.Run("rejects duplicates, empty and invalid names", func(t *testing.T) {
		ctrl, _ := newActive(t, "feature")
		ctx := context.Background()

		require.ErrorIs(t, ctrl.CreateBranch(ctx, "feature"), gperrors.ErrBranchExists)
		require.ErrorIs(t, ctrl.CreateBranch(ctx, ""), gperrors.ErrEmptyBranchName)
		require.ErrorIs(t, ctrl.CreateBranch(ctx, "bad name"), gperrors.ErrInvalidBranchName)
		require.Equal(t, []string{"main", "feature"}, ctrl.State().Branches)
	})
}

func TestMergeBranch(t *testing.T) {
	t.Run("fast-forwards onto current branch", func(t *testing.T) {
		ctrl, _ := newActive(t)
		ctx := context.Background()

		require.NoError(t, ctrl.CreateBranch(ctx, "feature"))
		require.NoError(t, ctrl.Checkout(ctx, 1))
		require.NoError(t, ctrl.Commit(ctx, "feature work"))
		require.NoError(t, ctrl.Checkout(ctx, 0))
		require.NotContains(t, ctrl.State().Log, "feature work")

		require.NoError(t, ctrl.MergeBranch(ctx, "feature"))
		require.Contains(t, ctrl.State().Log, "feature work")
	})

	t.Run("unknown branch is branch not found and mutates nothing", func(t *testing.T) {
		ctrl, eng := newActive(t)
		before := ctrl.State()

		err := ctrl.MergeBranch(context.Background(), "ghost")
		require.ErrorIs(t, err, gperrors.ErrBranchNotFound)
		require.Equal(t, "Branch not in Repository", gperrors.UserMessage(err))
		require.NotContains(t, eng.Calls(), gittest.OpMergeBranch)
		require.Equal(t, before, ctrl.State())
	})
}

func TestDeleteBranch(t *testing.T) {
	t.Run("removes another branch", func(t *testing.T) {
		ctrl, _ := newActive(t, "old")

		require.NoError(t, ctrl.DeleteBranch(context.Background(), "old"))
		require.Equal(t, []string{"main"}, ctrl.State().Branches)
	})

	t.Run("never deletes the current branch", func(t *testing.T) {
		ctrl, eng := newActive(t, "feature")
		ctx := context.Background()
		require.NoError(t, ctrl.CheckoutBranch(ctx, "feature"))

		err := ctrl.DeleteBranch(ctx, "feature")
		require.ErrorIs(t, err, gperrors.ErrCurrentBranch)
		require.NotContains(t, eng.Calls(), gittest.OpDeleteBranch)
		require.Equal(t, []string{"main", "feature"}, ctrl.State().Branches)
	})

	// Unknown names never reach the engine; existing names other than the
	// current branch are deleted.
	t.Run("unknown branch is refused, existing non-current branch is allowed", func(t *testing.T) {
		ctrl, eng := newActive(t, "feature")
		ctx := context.Background()

		err := ctrl.DeleteBranch(ctx, "ghost")
		require.ErrorIs(t, err, gperrors.ErrBranchNotFound)
		require.NotContains(t, eng.Calls(), gittest.OpDeleteBranch)

		require.NoError(t, ctrl.DeleteBranch(ctx, "feature"))
	})
}

func TestCheckout(t *testing.T) {
	t.Run("switches by index", func(t *testing.T) {
		ctrl, _ := newActive(t, "feature")

		require.NoError(t, ctrl.Checkout(context.Background(), 1))
		require.Equal(t, "feature", ctrl.State().CurrentBranch)
	})

	t.Run("out of range index leaves current branch", func(t *testing.T) {
		ctrl, eng := newActive(t, "feature")
		ctx := context.Background()

		for _, idx := range []int{-1, 2, 100} {
			err := ctrl.Checkout(ctx, idx)
			require.ErrorIs(t, err, gperrors.ErrIndexOutOfRange)
		}
		require.Equal(t, "main", ctrl.State().CurrentBranch)
		require.NotContains(t, eng.Calls(), gittest.OpCheckout)
	})

	t.Run("selecting the current branch only refreshes", func(t *testing.T) {
		ctrl, eng := newActive(t, "feature")

		require.NoError(t, ctrl.Checkout(context.Background(), 0))
		require.NotContains(t, eng.Calls(), gittest.OpCheckout)
	})

	t.Run("by unknown name", func(t *testing.T) {
		ctrl, _ := newActive(t)

		err := ctrl.CheckoutBranch(context.Background(), "ghost")
		require.ErrorIs(t, err, gperrors.ErrBranchNotFound)
	})
}

func TestDestroy(t *testing.T) {
	t.Run("releases handle and is idempotent", func(t *testing.T) {
		ctrl, eng := newActive(t)
		ctx := context.Background()

		require.NoError(t, ctrl.Destroy(ctx))
		require.False(t, eng.IsLocked("/repo"))
		require.Equal(t, session.PhaseDestroyed, ctrl.State().Phase)

		require.NotPanics(t, func() {
			require.NoError(t, ctrl.Destroy(ctx))
		})
	})

	t.Run("operations afterwards are contract violations", func(t *testing.T) {
		ctrl, _ := newActive(t)
		ctx := context.Background()
		require.NoError(t, ctrl.Destroy(ctx))

		err := ctrl.Commit(ctx, "msg")
		require.ErrorIs(t, err, gperrors.ErrSessionDestroyed)
		require.Equal(t, gperrors.KindProgramming, gperrors.Classify(err))

		err = ctrl.Init(ctx, "/other")
		require.ErrorIs(t, err, gperrors.ErrSessionDestroyed)
	})

	t.Run("ignores a cancelled context", func(t *testing.T) {
		ctrl, eng := newActive(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, ctrl.Destroy(ctx))
		require.False(t, eng.IsLocked("/repo"))
	})
}

func TestScenario(t *testing.T) {
	eng := gittest.New()
	ctrl := session.New(eng, git.Author{Name: "a", Email: "a@x"})
	ctx := context.Background()

	require.NoError(t, ctrl.Init(ctx, "/repo"))
	require.NoError(t, ctrl.CreateBranch(ctx, "feature"))
	require.NoError(t, ctrl.Checkout(ctx, 1))
	require.NoError(t, ctrl.Commit(ctx, "msg"))

	st := ctrl.State()
	require.Equal(t, []string{"main", "feature"}, st.Branches)
	require.Equal(t, "feature", st.CurrentBranch)
	require.Contains(t, st.Log, "msg")
}

func TestStateMatchesHandleAfterEveryOperation(t *testing.T) {
	eng := gittest.New()
	ctrl := session.New(eng, testAuthor)
	ctx := context.Background()
	require.NoError(t, ctrl.Init(ctx, "/repo"))

	ops := []session.Operation{
		{Kind: session.OpCreateBranch, Arg: "a"},
		{Kind: session.OpCreateBranch, Arg: "b"},
		{Kind: session.OpCheckout, Index: 1},
		{Kind: session.OpCommit, Arg: "on a"},
		{Kind: session.OpCheckout, Arg: "b"},
		{Kind: session.OpCommit, Arg: "on b"},
		{Kind: session.OpMergeBranch, Arg: "a"},
		{Kind: session.OpCheckout, Index: 0},
		{Kind: session.OpDeleteBranch, Arg: "a"},
	}

	for _, op := range ops {
		require.NoError(t, ctrl.Apply(ctx, op), op.String())

		branches, current, log, ok := eng.Snapshot("/repo")
		require.True(t, ok)
		st := ctrl.State()
		require.Equal(t, branches, st.Branches, op.String())
		require.Equal(t, current, st.CurrentBranch, op.String())
		require.Equal(t, log, st.Log, op.String())
	}
	require.Equal(t, []string{"main", "b"}, ctrl.State().Branches)
	require.Equal(t, "main", ctrl.State().CurrentBranch)
}

type recorded struct {
	entries []session.Entry
}

func (r *recorded) Record(_ context.Context, e session.Entry) {
	r.entries = append(r.entries, e)
}

func TestRecorder(t *testing.T) {
	eng := gittest.New()
	rec := &recorded{}
	ctrl := session.New(eng, testAuthor, session.WithRecorder(rec))
	ctx := context.Background()

	require.NoError(t, ctrl.Init(ctx, "/repo"))
	require.Error(t, ctrl.MergeBranch(ctx, "ghost"))

	require.Len(t, rec.entries, 2)
	require.Equal(t, session.OpInit, rec.entries[0].Op)
	require.Equal(t, "/repo", rec.entries[0].Arg)
	require.NoError(t, rec.entries[0].Err)
	require.Equal(t, session.OpMergeBranch, rec.entries[1].Op)
	require.ErrorIs(t, rec.entries[1].Err, gperrors.ErrBranchNotFound)
	require.NotEmpty(t, rec.entries[1].ID)
}

func TestDetachedHead(t *testing.T) {
	ctrl, eng := newActive(t, "feature")
	ctx := context.Background()
	eng.Detach("/repo")

	require.NoError(t, ctrl.Refresh(ctx))
	v := ctrl.View()
	require.Empty(t, v.CurrentBranch)
	require.Equal(t, -1, v.Selected)
	require.Equal(t, []string{"main", "feature"}, v.BranchOptions)

	require.NoError(t, ctrl.Checkout(ctx, 0))
	require.Equal(t, "main", ctrl.State().CurrentBranch)
	require.Contains(t, eng.Calls(), gittest.OpCheckout)

	eng.Detach("/repo")
	require.NoError(t, ctrl.CheckoutBranch(ctx, "feature"))
	require.Equal(t, "feature", ctrl.State().CurrentBranch)
	require.Equal(t, 1, ctrl.View().Selected)
}

func TestLocalRepositoryStates(t *testing.T) {
	newSession := func(t *testing.T) *session.Controller {
		t.Helper()
		ctrl := session.New(git.NewLocal(git.Options{AllowEmptyCommits: true}), testAuthor)
		t.Cleanup(func() { _ = ctrl.Destroy(context.Background()) })
		return ctrl
	}

	t.Run("git init without commits starts active", func(t *testing.T) {
		testhelpers.RequireGit(t)
		dir := t.TempDir()
		_, err := testhelpers.NewGitRepo(dir)
		require.NoError(t, err)
		ctrl := newSession(t)
		ctx := context.Background()

		require.NoError(t, ctrl.Start(ctx, dir))
		st := ctrl.State()
		require.Equal(t, session.PhaseActive, st.Phase)
		require.Equal(t, "main", st.CurrentBranch)
		require.Empty(t, st.Log)

		require.NoError(t, ctrl.Commit(ctx, "first"))
		require.Equal(t, []string{"main"}, ctrl.State().Branches)
	})

	t.Run("checkout recovers from detached HEAD", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateBranch("feature"))
		ctrl := newSession(t)
		ctx := context.Background()
		require.NoError(t, ctrl.Start(ctx, scene.Dir))

		require.NoError(t, scene.Repo.RunGitCommand("checkout", "-q", "--detach"))
		require.NoError(t, ctrl.Refresh(ctx))
		require.Empty(t, ctrl.State().CurrentBranch)

		require.NoError(t, ctrl.CheckoutBranch(ctx, "main"))
		require.Equal(t, "main", ctrl.State().CurrentBranch)
		branch, err := scene.Repo.CurrentBranchName()
		require.NoError(t, err)
		require.Equal(t, "main", branch)
	})
}
