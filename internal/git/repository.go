package git

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/gofrs/flock"

	gperrors "gitpanel.dev/gitpanel/internal/errors"
)

// LockFileName is the advisory lock file created inside the .git directory
// while a Handle is alive.
const LockFileName = "gitpanel.lock"

// Repository wraps a go-git repository together with the lock that makes
// this process its exclusive owner.
type Repository struct {
	repo   *gogit.Repository
	path   string
	runner *CommandRunner
	opts   Options
	now    func() time.Time

	mu        sync.Mutex
	lock      *flock.Flock
	destroyed bool
}

func newRepository(repo *gogit.Repository, path string, lock *flock.Flock, opts Options, now func() time.Time) *Repository {
	return &Repository{
		repo:   repo,
		path:   path,
		runner: NewCommandRunner(path),
		opts:   opts,
		now:    now,
		lock:   lock,
	}
}

// acquireLock takes the repository lock without waiting.
func acquireLock(repoRoot string) (*flock.Flock, error) {
	fl := flock.New(filepath.Join(repoRoot, ".git", LockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring repository lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", gperrors.ErrRepositoryLocked, repoRoot)
	}
	return fl, nil
}

// Path returns the root directory of the repository
func (r *Repository) Path() string {
	return r.path
}

// Destroy releases the repository lock. The handle is unusable afterwards.
func (r *Repository) Destroy() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return gperrors.ErrHandleDestroyed
	}
	r.destroyed = true

	if err := r.lock.Unlock(); err != nil {
		return fmt.Errorf("releasing repository lock: %w", err)
	}
	return nil
}

// checkAlive returns ErrHandleDestroyed once Destroy has been called.
func (r *Repository) checkAlive() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return gperrors.ErrHandleDestroyed
	}
	return nil
}
