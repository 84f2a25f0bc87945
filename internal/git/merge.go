package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"

	gperrors "gitpanel.dev/gitpanel/internal/errors"
)

// MergeBranch merges name into the current branch.
//
// A branch already contained in HEAD is a no-op. A fast-forward is done in
// process with go-git. Anything else is handed to `git merge --no-ff`; when
// that stops on conflicts the merge is aborted and a MergeConflictError is
// returned, leaving the repository as it was.
func (r *Repository) MergeBranch(ctx context.Context, name string, author Author) error {
	if err := r.checkAlive(); err != nil {
		return err
	}

	ref, err := r.branchRef(name)
	if err != nil {
		return err
	}

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}
	if head.Hash() == ref.Hash() {
		return nil
	}

	headCommit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("resolving HEAD commit: %w", err)
	}
	branchCommit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return fmt.Errorf("resolving branch commit: %w", err)
	}

	upToDate, err := branchCommit.IsAncestor(headCommit)
	if err != nil {
		return fmt.Errorf("checking merge status: %w", err)
	}
	if upToDate {
		return nil
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	if !status.IsClean() {
		return gperrors.ErrDirtyWorktree
	}

	fastForward, err := headCommit.IsAncestor(branchCommit)
	if err != nil {
		return fmt.Errorf("checking fast-forward: %w", err)
	}
	if fastForward {
		err := wt.Reset(&gogit.ResetOptions{Commit: ref.Hash(), Mode: gogit.HardReset})
		if err != nil {
			return fmt.Errorf("fast-forward to %s failed: %w", name, err)
		}
		return nil
	}

	return r.mergeWithCLI(ctx, name, author)
}

func (r *Repository) mergeWithCLI(ctx context.Context, name string, author Author) error {
	msg := fmt.Sprintf("Merge branch '%s'", name)
	_, err := r.runner.RunWithEnv(ctx, authorEnv(author), "merge", "--no-ff", "--no-edit", "-m", msg, name)
	if err == nil {
		return nil
	}

	var cmdErr *gperrors.GitCommandError
	if !errors.As(err, &cmdErr) {
		return fmt.Errorf("merge %s failed: %w", name, err)
	}

	// Only abort when git left a merge in progress.
	if _, headErr := r.runner.Run(ctx, "rev-parse", "-q", "--verify", "MERGE_HEAD"); headErr == nil {
		if _, abortErr := r.runner.Run(ctx, "merge", "--abort"); abortErr != nil {
			return fmt.Errorf("merge abort failed after conflict on %s: %w", name, abortErr)
		}
		return gperrors.NewMergeConflictError(name, cmdErr.Stdout)
	}
	return fmt.Errorf("merge %s failed: %w", name, err)
}
