package git

import (
	"context"
)

// Author identifies the person recorded on commits made through a session.
type Author struct {
	Name  string
	Email string
}

// String returns the author in "Name <email>" form.
func (a Author) String() string {
	return a.Name + " <" + a.Email + ">"
}

// Engine is the entry point to a git implementation.
// It is implemented by Local and by the in-memory fake in gittest.
type Engine interface {
	// HasRepository reports whether path is the root of a git repository.
	HasRepository(path string) bool
	// Init creates a repository at path with an initial commit by author.
	Init(ctx context.Context, path string, author Author) (Handle, error)
	// Open opens the existing repository at path.
	Open(ctx context.Context, path string) (Handle, error)
}

// Handle is an opened repository. A Handle is owned by exactly one session
// and must be released with Destroy.
type Handle interface {
	Path() string

	// Queries
	Log(ctx context.Context) (string, error)
	Branches(ctx context.Context) ([]string, error)
	CurrentBranch(ctx context.Context) (string, error)

	// Mutations
	Commit(ctx context.Context, author Author, message string) error
	CreateBranch(ctx context.Context, name string) error
	MergeBranch(ctx context.Context, name string, author Author) error
	DeleteBranch(ctx context.Context, name string) error
	Checkout(ctx context.Context, name string) error

	// Destroy releases the repository lock. Calling it twice returns
	// ErrHandleDestroyed.
	Destroy() error
}
