package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/gofrs/flock"

	gperrors "gitpanel.dev/gitpanel/internal/errors"
)

// DefaultTrunk is the branch created by Init and listed first by Branches.
const DefaultTrunk = "main"

// InitialCommitMessage is the message of the commit created by Init.
const InitialCommitMessage = "Initial commit"

// Options configures a Local engine.
type Options struct {
	// Trunk is the default branch name for new repositories and the branch
	// listed first by Branches. Defaults to DefaultTrunk.
	Trunk string
	// LogLimit caps the number of commits rendered by Log. Zero means no limit.
	LogLimit int
	// AllowEmptyCommits lets Commit record a commit with no changes.
	AllowEmptyCommits bool
}

// Local is the go-git backed Engine working on repositories on disk.
type Local struct {
	opts Options
	now  func() time.Time

	// initialCommit records the commit made by Init.
	initialCommit func(wt *gogit.Worktree, sig *object.Signature) error
}

// NewLocal creates a Local engine.
func NewLocal(opts Options) *Local {
	if opts.Trunk == "" {
		opts.Trunk = DefaultTrunk
	}
	return &Local{opts: opts, now: time.Now, initialCommit: commitInitial}
}

func commitInitial(wt *gogit.Worktree, sig *object.Signature) error {
	_, err := wt.Commit(InitialCommitMessage, &gogit.CommitOptions{
		Author:            sig,
		AllowEmptyCommits: true,
	})
	return err
}

// HasRepository reports whether path itself is the root of a git repository.
// Parent directories are not searched.
func (l *Local) HasRepository(path string) bool {
	if path == "" {
		return false
	}
	_, err := gogit.PlainOpen(path)
	return err == nil
}

// Init creates a repository at path, stages any files already present and
// records an initial commit by author so the trunk branch exists.
func (l *Local) Init(_ context.Context, path string, author Author) (Handle, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	repo, err := gogit.PlainInitWithOptions(absPath, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(l.opts.Trunk),
		},
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", gperrors.ErrRepositoryPresent, absPath)
		}
		return nil, fmt.Errorf("failed to init repository: %w", err)
	}

	// Anything that fails from here on removes the .git directory again so a
	// later Init starts from a clean directory.
	abandon := func(lock *flock.Flock, err error) (Handle, error) {
		if lock != nil {
			_ = lock.Unlock()
		}
		if rmErr := os.RemoveAll(filepath.Join(absPath, ".git")); rmErr != nil {
			return nil, errors.Join(err, fmt.Errorf("removing partial repository: %w", rmErr))
		}
		return nil, err
	}

	lock, err := acquireLock(absPath)
	if err != nil {
		return abandon(nil, err)
	}

	r := newRepository(repo, absPath, lock, l.opts, l.now)

	wt, err := repo.Worktree()
	if err != nil {
		return abandon(lock, fmt.Errorf("failed to get worktree: %w", err))
	}
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return abandon(lock, fmt.Errorf("failed to stage files: %w", err))
	}
	if err := l.initialCommit(wt, r.signature(author)); err != nil {
		return abandon(lock, fmt.Errorf("failed to create initial commit: %w", err))
	}

	return r, nil
}

// Open opens the existing repository rooted at path.
func (l *Local) Open(_ context.Context, path string) (Handle, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpen(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	lock, err := acquireLock(absPath)
	if err != nil {
		return nil, err
	}

	return newRepository(repo, absPath, lock, l.opts, l.now), nil
}

func (r *Repository) signature(author Author) *object.Signature {
	return &object.Signature{
		Name:  author.Name,
		Email: author.Email,
		When:  r.now(),
	}
}
