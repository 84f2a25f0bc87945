package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	gperrors "gitpanel.dev/gitpanel/internal/errors"
)

// ValidateBranchName checks name against the rules git applies to branch refs.
func ValidateBranchName(name string) error {
	if strings.TrimSpace(name) == "" {
		return gperrors.ErrEmptyBranchName
	}
	invalid := func(reason string) error {
		return fmt.Errorf("%w: %q %s", gperrors.ErrInvalidBranchName, name, reason)
	}
	switch {
	case strings.HasPrefix(name, "-"):
		return invalid("starts with '-'")
	case strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/"):
		return invalid("starts or ends with '/'")
	case strings.HasSuffix(name, ".") || strings.HasSuffix(name, ".lock"):
		return invalid("ends with '.' or '.lock'")
	case strings.Contains(name, "..") || strings.Contains(name, "//") || strings.Contains(name, "@{"):
		return invalid("contains '..', '//' or '@{'")
	case name == "@" || name == "HEAD":
		return invalid("is reserved")
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return invalid("has a component starting with '.'")
		}
	}
	for _, c := range name {
		if c < 0x20 || c == 0x7f || strings.ContainsRune(" ~^:?*[\\", c) {
			return invalid(fmt.Sprintf("contains %q", c))
		}
	}
	return nil
}

// Branches returns all local branch names. The trunk comes first when it
// exists; the rest follow in lexical order.
func (r *Repository) Branches(_ context.Context) ([]string, error) {
	if err := r.checkAlive(); err != nil {
		return nil, err
	}

	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}

	return OrderBranches(names, r.opts.Trunk), nil
}

// OrderBranches sorts names lexically and moves trunk to the front when present.
func OrderBranches(names []string, trunk string) []string {
	out := make([]string, 0, len(names))
	hasTrunk := false
	for _, name := range names {
		if name == trunk {
			hasTrunk = true
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	if hasTrunk {
		out = append([]string{trunk}, out...)
	}
	return out
}

// CurrentBranch returns the branch HEAD points at. HEAD is read without
// resolving it, so an unborn branch in a repository with no commits is still
// reported. A detached HEAD yields "".
func (r *Repository) CurrentBranch(_ context.Context) (string, error) {
	if err := r.checkAlive(); err != nil {
		return "", err
	}

	head, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", nil
	}
	return head.Target().Short(), nil
}

// branchRef resolves a local branch, returning a BranchNotFoundError when it
// does not exist.
func (r *Repository) branchRef(name string) (*plumbing.Reference, error) {
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, gperrors.NewBranchNotFoundError(name)
		}
		return nil, fmt.Errorf("resolving branch %q: %w", name, err)
	}
	return ref, nil
}

// CreateBranch creates a branch pointing at HEAD without checking it out
func (r *Repository) CreateBranch(_ context.Context, name string) error {
	if err := r.checkAlive(); err != nil {
		return err
	}
	if err := ValidateBranchName(name); err != nil {
		return err
	}

	if _, err := r.branchRef(name); err == nil {
		return fmt.Errorf("%w: %s", gperrors.ErrBranchExists, name)
	} else if !errors.Is(err, gperrors.ErrBranchNotFound) {
		return err
	}

	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("cannot branch from HEAD: %w", gperrors.ErrNoCommits)
	}
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", name, err)
	}
	return nil
}

// DeleteBranch deletes a branch ref and its config (equivalent to `git branch -D`).
func (r *Repository) DeleteBranch(ctx context.Context, name string) error {
	if err := r.checkAlive(); err != nil {
		return err
	}

	if _, err := r.branchRef(name); err != nil {
		return err
	}

	current, err := r.CurrentBranch(ctx)
	if err != nil {
		return fmt.Errorf("checking current branch: %w", err)
	}
	if current == name {
		return gperrors.ErrCurrentBranch
	}

	if err := r.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(name)); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", name, err)
	}

	// Tracking config may not exist for local-only branches
	if err := r.repo.DeleteBranch(name); err != nil && !errors.Is(err, gogit.ErrBranchNotFound) {
		return fmt.Errorf("branch ref deleted but config cleanup failed: %w", err)
	}
	return nil
}

// Checkout checks out an existing branch
func (r *Repository) Checkout(_ context.Context, name string) error {
	if err := r.checkAlive(); err != nil {
		return err
	}

	if _, err := r.branchRef(name); err != nil {
		return err
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	err = wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	})
	if err != nil {
		if errors.Is(err, gogit.ErrUnstagedChanges) {
			return fmt.Errorf("failed to checkout branch %s: %w", name, gperrors.ErrDirtyWorktree)
		}
		return fmt.Errorf("failed to checkout branch %s: %w", name, err)
	}
	return nil
}
