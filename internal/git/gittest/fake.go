// Package gittest provides an in-memory git.Engine for tests.
//
// The fake models each branch as a list of commits and supports fault
// injection per operation so session code can be tested without a disk.
package gittest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	gperrors "gitpanel.dev/gitpanel/internal/errors"
	"gitpanel.dev/gitpanel/internal/git"
)

// Operation names accepted by Fail and reported to Hook.
const (
	OpInit          = "init"
	OpOpen          = "open"
	OpLog           = "log"
	OpBranches      = "branches"
	OpCurrentBranch = "current-branch"
	OpCommit        = "commit"
	OpCreateBranch  = "create-branch"
	OpMergeBranch   = "merge-branch"
	OpDeleteBranch  = "delete-branch"
	OpCheckout      = "checkout"
	OpDestroy       = "destroy"
)

type commit struct {
	id      int
	message string
	author  string
}

type repo struct {
	trunk    string
	branches map[string][]commit
	current  string
	detached []commit
	locked   bool
	nextID   int
}

func (r *repo) newCommit(message, author string) commit {
	r.nextID++
	return commit{id: r.nextID, message: message, author: author}
}

// history is what HEAD reaches: the current branch, or the detached commits
// when current is "".
func (r *repo) history() []commit {
	if r.current == "" {
		return r.detached
	}
	return r.branches[r.current]
}

func (r *repo) setHistory(commits []commit) {
	if r.current == "" {
		r.detached = commits
		return
	}
	r.branches[r.current] = commits
}

func (r *repo) sortedBranches() []string {
	names := make([]string, 0, len(r.branches))
	for name := range r.branches {
		names = append(names, name)
	}
	return git.OrderBranches(names, r.trunk)
}

func (r *repo) log() string {
	history := r.history()
	lines := make([]string, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		c := history[i]
		lines = append(lines, git.FormatLogLine(fmt.Sprintf("%07x", c.id), c.message, c.author))
	}
	return strings.Join(lines, "\n")
}

// Engine is an in-memory git.Engine. The zero value is not usable; call New.
type Engine struct {
	mu       sync.Mutex
	trunk    string
	repos    map[string]*repo
	failures map[string]error
	calls    []string

	// Hook, when set, runs at the start of every operation with its name.
	// Tests use it to block an operation mid-flight.
	Hook func(op string)
}

// New creates an empty fake engine whose repositories use trunk "main".
func New() *Engine {
	return &Engine{
		trunk:    git.DefaultTrunk,
		repos:    make(map[string]*repo),
		failures: make(map[string]error),
	}
}

// Fail makes the next call of op return err.
func (e *Engine) Fail(op string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[op] = err
}

// Calls returns the operations performed so far, in order.
func (e *Engine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// Seed creates a repository at path as if it already existed on disk.
func (e *Engine) Seed(path string, branches ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := &repo{trunk: e.trunk, branches: make(map[string][]commit), current: e.trunk}
	root := r.newCommit(git.InitialCommitMessage, "seed")
	r.branches[e.trunk] = []commit{root}
	for _, b := range branches {
		r.branches[b] = []commit{root}
	}
	e.repos[filepath.Clean(path)] = r
}

// SeedEmpty creates a repository at path whose trunk has no commits yet, as
// left by a plain `git init`.
func (e *Engine) SeedEmpty(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.repos[filepath.Clean(path)] = &repo{trunk: e.trunk, branches: make(map[string][]commit), current: e.trunk}
}

// Detach moves HEAD of the repository at path off its branch, keeping the
// commit it pointed at.
func (e *Engine) Detach(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.repos[filepath.Clean(path)]
	r.detached = append([]commit(nil), r.history()...)
	r.current = ""
}

// Snapshot reads the repository at path directly, bypassing any handle and
// its lock. ok is false when no repository exists there.
func (e *Engine) Snapshot(path string) (branches []string, current, log string, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, found := e.repos[filepath.Clean(path)]
	if !found {
		return nil, "", "", false
	}
	return r.sortedBranches(), r.current, r.log(), true
}

// IsLocked reports whether a live handle holds the repository at path.
func (e *Engine) IsLocked(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.repos[filepath.Clean(path)]
	return ok && r.locked
}

// begin records op, runs the hook outside the lock and returns any injected failure.
func (e *Engine) begin(op string) error {
	e.mu.Lock()
	e.calls = append(e.calls, op)
	hook := e.Hook
	e.mu.Unlock()

	if hook != nil {
		hook(op)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err, ok := e.failures[op]; ok {
		delete(e.failures, op)
		return err
	}
	return nil
}

// HasRepository implements git.Engine.
func (e *Engine) HasRepository(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.repos[filepath.Clean(path)]
	return ok
}

// Init implements git.Engine.
func (e *Engine) Init(_ context.Context, path string, author git.Author) (git.Handle, error) {
	if err := e.begin(OpInit); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	key := filepath.Clean(path)
	if _, ok := e.repos[key]; ok {
		return nil, fmt.Errorf("repository already exists at %s", path)
	}
	r := &repo{trunk: e.trunk, branches: make(map[string][]commit), current: e.trunk, locked: true}
	r.branches[e.trunk] = []commit{r.newCommit(git.InitialCommitMessage, author.Name)}
	e.repos[key] = r
	return &Handle{engine: e, repo: r, path: key}, nil
}

// Open implements git.Engine.
func (e *Engine) Open(_ context.Context, path string) (git.Handle, error) {
	if err := e.begin(OpOpen); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	key := filepath.Clean(path)
	r, ok := e.repos[key]
	if !ok {
		return nil, fmt.Errorf("failed to open repository: repository does not exist")
	}
	if r.locked {
		return nil, fmt.Errorf("%w: %s", gperrors.ErrRepositoryLocked, path)
	}
	r.locked = true
	return &Handle{engine: e, repo: r, path: key}, nil
}

// Handle is the fake git.Handle.
type Handle struct {
	engine    *Engine
	repo      *repo
	path      string
	destroyed bool
}

func (h *Handle) enter(op string) error {
	if err := h.engine.begin(op); err != nil {
		return err
	}
	h.engine.mu.Lock()
	if h.destroyed {
		h.engine.mu.Unlock()
		return gperrors.ErrHandleDestroyed
	}
	return nil
}

// Path implements git.Handle.
func (h *Handle) Path() string { return h.path }

// Log implements git.Handle.
func (h *Handle) Log(_ context.Context) (string, error) {
	if err := h.enter(OpLog); err != nil {
		return "", err
	}
	defer h.engine.mu.Unlock()
	return h.repo.log(), nil
}

// Branches implements git.Handle.
func (h *Handle) Branches(_ context.Context) ([]string, error) {
	if err := h.enter(OpBranches); err != nil {
		return nil, err
	}
	defer h.engine.mu.Unlock()
	return h.repo.sortedBranches(), nil
}

// CurrentBranch implements git.Handle.
func (h *Handle) CurrentBranch(_ context.Context) (string, error) {
	if err := h.enter(OpCurrentBranch); err != nil {
		return "", err
	}
	defer h.engine.mu.Unlock()
	return h.repo.current, nil
}

// Commit implements git.Handle.
func (h *Handle) Commit(_ context.Context, author git.Author, message string) error {
	if err := h.enter(OpCommit); err != nil {
		return err
	}
	defer h.engine.mu.Unlock()

	r := h.repo
	r.setHistory(append(r.history(), r.newCommit(message, author.Name)))
	return nil
}

// CreateBranch implements git.Handle.
func (h *Handle) CreateBranch(_ context.Context, name string) error {
	if err := h.enter(OpCreateBranch); err != nil {
		return err
	}
	defer h.engine.mu.Unlock()

	if err := git.ValidateBranchName(name); err != nil {
		return err
	}
	r := h.repo
	if _, ok := r.branches[name]; ok {
		return fmt.Errorf("%w: %s", gperrors.ErrBranchExists, name)
	}
	if len(r.history()) == 0 {
		return fmt.Errorf("cannot branch from HEAD: %w", gperrors.ErrNoCommits)
	}
	r.branches[name] = append([]commit(nil), r.history()...)
	return nil
}

// MergeBranch implements git.Handle.
func (h *Handle) MergeBranch(_ context.Context, name string, author git.Author) error {
	if err := h.enter(OpMergeBranch); err != nil {
		return err
	}
	defer h.engine.mu.Unlock()

	r := h.repo
	theirs, ok := r.branches[name]
	if !ok {
		return gperrors.NewBranchNotFoundError(name)
	}
	ours := r.history()

	switch {
	case isPrefix(theirs, ours):
		return nil
	case isPrefix(ours, theirs):
		r.setHistory(append([]commit(nil), theirs...))
	default:
		merged := append([]commit(nil), ours...)
		seen := make(map[int]bool, len(ours))
		for _, c := range ours {
			seen[c.id] = true
		}
		for _, c := range theirs {
			if !seen[c.id] {
				merged = append(merged, c)
			}
		}
		merged = append(merged, r.newCommit(fmt.Sprintf("Merge branch '%s'", name), author.Name))
		r.setHistory(merged)
	}
	return nil
}

// DeleteBranch implements git.Handle.
func (h *Handle) DeleteBranch(_ context.Context, name string) error {
	if err := h.enter(OpDeleteBranch); err != nil {
		return err
	}
	defer h.engine.mu.Unlock()

	r := h.repo
	if _, ok := r.branches[name]; !ok {
		return gperrors.NewBranchNotFoundError(name)
	}
	if name == r.current {
		return gperrors.ErrCurrentBranch
	}
	delete(r.branches, name)
	return nil
}

// Checkout implements git.Handle.
func (h *Handle) Checkout(_ context.Context, name string) error {
	if err := h.enter(OpCheckout); err != nil {
		return err
	}
	defer h.engine.mu.Unlock()

	if _, ok := h.repo.branches[name]; !ok {
		return gperrors.NewBranchNotFoundError(name)
	}
	h.repo.current = name
	return nil
}

// Destroy implements git.Handle.
func (h *Handle) Destroy() error {
	if err := h.enter(OpDestroy); err != nil {
		return err
	}
	defer h.engine.mu.Unlock()

	h.destroyed = true
	h.repo.locked = false
	return nil
}

func isPrefix(prefix, full []commit) bool {
	if len(prefix) > len(full) {
		return false
	}
	for i := range prefix {
		if prefix[i].id != full[i].id {
			return false
		}
	}
	return true
}

var _ git.Engine = (*Engine)(nil)
var _ git.Handle = (*Handle)(nil)
