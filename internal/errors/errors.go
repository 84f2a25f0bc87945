// Package errors provides sentinel errors and custom error types for gitpanel.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for guard failures. These never mutate repository state.
var (
	// ErrNoRepository indicates that the session has no open repository
	ErrNoRepository = errors.New("no repository")

	// ErrRepositoryExists indicates that a repository is already open in the session
	ErrRepositoryExists = errors.New("repository already open")

	// ErrRepositoryPresent indicates that Init was asked to create a repository
	// where one already exists
	ErrRepositoryPresent = errors.New("path already holds a repository")

	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBranchExists indicates that a branch with the same name already exists
	ErrBranchExists = errors.New("branch already exists")

	// ErrCurrentBranch indicates an attempt to delete the checked out branch
	ErrCurrentBranch = errors.New("cannot delete current branch")

	// ErrEmptyBranchName indicates that no branch name was supplied
	ErrEmptyBranchName = errors.New("branch name is empty")

	// ErrInvalidBranchName indicates a name git would not accept as a branch
	ErrInvalidBranchName = errors.New("invalid branch name")

	// ErrEmptyCommitMessage indicates that no commit message was supplied
	ErrEmptyCommitMessage = errors.New("commit message is empty")

	// ErrIndexOutOfRange indicates a branch selection outside the branch list
	ErrIndexOutOfRange = errors.New("branch index out of range")
)

// Sentinel errors raised by the git engine.
var (
	// ErrRepositoryLocked indicates another session holds the repository lock
	ErrRepositoryLocked = errors.New("repository is locked by another session")

	// ErrMergeConflict indicates that a merge stopped on conflicts and was aborted
	ErrMergeConflict = errors.New("merge conflict")

	// ErrDirtyWorktree indicates uncommitted changes blocking an operation
	ErrDirtyWorktree = errors.New("working tree has uncommitted changes")

	// ErrNoCommits indicates an operation that needs HEAD to point at a commit
	ErrNoCommits = errors.New("repository has no commits yet")
)

// Sentinel errors for contract violations.
var (
	// ErrSessionDestroyed indicates use of a session after Destroy
	ErrSessionDestroyed = errors.New("session destroyed")

	// ErrHandleDestroyed indicates use of a repository handle after Destroy
	ErrHandleDestroyed = errors.New("repository handle already destroyed")
)

// Kind classifies an error for presentation.
type Kind int

const (
	// KindNone is returned for nil errors
	KindNone Kind = iota
	// KindValidation is a guard failure; state is unchanged
	KindValidation
	// KindEngine is a failure inside the git engine
	KindEngine
	// KindProgramming is a contract violation such as using a destroyed session
	KindProgramming
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindEngine:
		return "engine"
	case KindProgramming:
		return "programming"
	default:
		return "unknown"
	}
}

// ValidationError represents a guard failure on a session operation
type ValidationError struct {
	Op     string
	Reason error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Reason, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// NewValidationError creates a new ValidationError
func NewValidationError(op string, reason error, detail string) *ValidationError {
	return &ValidationError{Op: op, Reason: reason, Detail: detail}
}

// EngineError represents a failure reported by the git engine during an operation
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError creates a new EngineError
func NewEngineError(op string, err error) *EngineError {
	return &EngineError{Op: op, Err: err}
}

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// MergeConflictError represents a merge that stopped on conflicts
type MergeConflictError struct {
	BranchName string
	Message    string
}

func (e *MergeConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("merge conflict with branch %s: %s", e.BranchName, e.Message)
	}
	return fmt.Sprintf("merge conflict with branch %s", e.BranchName)
}

// Is returns true if the target error is ErrMergeConflict
func (e *MergeConflictError) Is(target error) bool {
	return target == ErrMergeConflict
}

// NewMergeConflictError creates a new MergeConflictError
func NewMergeConflictError(branchName string, message string) *MergeConflictError {
	return &MergeConflictError{
		BranchName: branchName,
		Message:    message,
	}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// Classify reports which part of the taxonomy err belongs to
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrSessionDestroyed) || errors.Is(err, ErrHandleDestroyed) {
		return KindProgramming
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	return KindEngine
}

// UserMessage turns an operation error into a message suitable for the panel's
// alert line or the CLI's stderr.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrBranchNotFound):
		return "Branch not in Repository"
	case errors.Is(err, ErrCurrentBranch):
		return "Current Branch must not be the branch to delete."
	case errors.Is(err, ErrBranchExists):
		return "A branch with that name already exists."
	case errors.Is(err, ErrEmptyBranchName):
		return "Branch name must not be empty."
	case errors.Is(err, ErrInvalidBranchName):
		return "Branch name is not valid."
	case errors.Is(err, ErrEmptyCommitMessage):
		return "Commit message must not be empty."
	case errors.Is(err, ErrIndexOutOfRange):
		return "No branch at that position."
	case errors.Is(err, ErrNoRepository):
		return "No repository here. Initialize one first."
	case errors.Is(err, ErrRepositoryExists):
		return "A repository is already open."
	case errors.Is(err, ErrRepositoryPresent):
		return "This directory already holds a repository. Open it instead."
	case errors.Is(err, ErrNoCommits):
		return "The repository has no commits yet. Commit first."
	case errors.Is(err, ErrRepositoryLocked):
		return "The repository is in use by another session."
	case errors.Is(err, ErrMergeConflict):
		return "Merge stopped on conflicts and was aborted."
	case errors.Is(err, ErrDirtyWorktree):
		return "Commit or discard your changes first."
	case errors.Is(err, ErrSessionDestroyed):
		return "This session has been closed."
	case errors.Is(err, ErrHandleDestroyed):
		return "The repository has already been closed."
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return fmt.Sprintf("Git could not complete %s. See the log for details.", ee.Op)
	}
	return err.Error()
}
