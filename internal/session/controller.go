package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	gperrors "gitpanel.dev/gitpanel/internal/errors"
	"gitpanel.dev/gitpanel/internal/git"
)

// Controller is the repository-session state machine. It exclusively owns the
// current git.Handle. All methods are safe for concurrent use; transitions run
// one at a time in the order callers reach the gate.
type Controller struct {
	engine   git.Engine
	author   git.Author
	logger   *slog.Logger
	recorder Recorder

	// gate admits one operation at a time; waiters are served FIFO.
	gate *semaphore.Weighted

	// handle is only touched while holding gate.
	handle git.Handle

	mu    sync.RWMutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for operation tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder sets the Recorder notified after every operation.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

// New creates a Controller in the no-repository phase.
func New(engine git.Engine, author git.Author, opts ...Option) *Controller {
	c := &Controller{
		engine:   engine,
		author:   author,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		recorder: NopRecorder{},
		gate:     semaphore.NewWeighted(1),
		state:    State{Phase: PhaseNoRepo, Author: author},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Author returns the identity used for commits and merges.
func (c *Controller) Author() git.Author {
	return c.author
}

// State returns a snapshot of the last confirmed repository state.
// It does not wait for an in-flight operation.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// View projects the current State.
func (c *Controller) View() View {
	return Project(c.State())
}

// Apply runs op through the matching controller method.
func (c *Controller) Apply(ctx context.Context, op Operation) error {
	switch op.Kind {
	case OpStart:
		return c.Start(ctx, op.Path)
	case OpInit:
		return c.Init(ctx, op.Path)
	case OpOpen:
		return c.Open(ctx, op.Path)
	case OpCommit:
		return c.Commit(ctx, op.Arg)
	case OpCreateBranch:
		return c.CreateBranch(ctx, op.Arg)
	case OpMergeBranch:
		return c.MergeBranch(ctx, op.Arg)
	case OpDeleteBranch:
		return c.DeleteBranch(ctx, op.Arg)
	case OpCheckout:
		if op.Arg != "" {
			return c.CheckoutBranch(ctx, op.Arg)
		}
		return c.Checkout(ctx, op.Index)
	case OpRefresh:
		return c.Refresh(ctx)
	case OpDestroy:
		return c.Destroy(ctx)
	default:
		return fmt.Errorf("unknown operation %q", op.Kind)
	}
}

// Start probes path and opens the repository there if one exists. Otherwise
// the session stays in the no-repository phase, remembering path for Init.
func (c *Controller) Start(ctx context.Context, path string) error {
	op := Operation{Kind: OpStart, Path: path}
	return c.run(ctx, op, func(ctx context.Context) error {
		if err := c.requireNoRepo(op); err != nil {
			return err
		}
		if !c.engine.HasRepository(path) {
			c.publish(func(s *State) { s.Path = path })
			return nil
		}
		return c.open(ctx, op, path)
	})
}

// Init creates a repository at path authored by the session author and opens it.
func (c *Controller) Init(ctx context.Context, path string) error {
	op := Operation{Kind: OpInit, Path: path}
	return c.run(ctx, op, func(ctx context.Context) error {
		if err := c.requireNoRepo(op); err != nil {
			return err
		}
		if c.engine.HasRepository(path) {
			return gperrors.NewValidationError(string(op.Kind), gperrors.ErrRepositoryPresent, path)
		}
		h, err := c.engine.Init(ctx, path, c.author)
		if err != nil {
			return gperrors.NewEngineError(string(op.Kind), err)
		}
		return c.adopt(ctx, op, path, h)
	})
}

// Open opens the existing repository at path.
func (c *Controller) Open(ctx context.Context, path string) error {
	op := Operation{Kind: OpOpen, Path: path}
	return c.run(ctx, op, func(ctx context.Context) error {
		if err := c.requireNoRepo(op); err != nil {
			return err
		}
		if !c.engine.HasRepository(path) {
			return gperrors.NewValidationError(string(op.Kind), gperrors.ErrNoRepository, path)
		}
		return c.open(ctx, op, path)
	})
}

// Commit stages all changes and records a commit with message.
func (c *Controller) Commit(ctx context.Context, message string) error {
	op := Operation{Kind: OpCommit, Arg: message}
	return c.run(ctx, op, func(ctx context.Context) error {
		if err := c.requireActive(op); err != nil {
			return err
		}
		if strings.TrimSpace(message) == "" {
			return gperrors.NewValidationError(string(op.Kind), gperrors.ErrEmptyCommitMessage, "")
		}
		return c.mutate(ctx, op, func() error {
			return c.handle.Commit(ctx, c.author, message)
		})
	})
}

// CreateBranch creates name at HEAD without switching to it.
func (c *Controller) CreateBranch(ctx context.Context, name string) error {
	op := Operation{Kind: OpCreateBranch, Arg: name}
	return c.run(ctx, op, func(ctx context.Context) error {
		if err := c.requireActive(op); err != nil {
			return err
		}
		if err := git.ValidateBranchName(name); err != nil {
			return gperrors.NewValidationError(string(op.Kind), err, "")
		}
		branches, _, err := c.query(ctx, op)
		if err != nil {
			return err
		}
		if slices.Contains(branches, name) {
			return gperrors.NewValidationError(string(op.Kind), gperrors.ErrBranchExists, name)
		}
		return c.mutate(ctx, op, func() error {
			return c.handle.CreateBranch(ctx, name)
		})
	})
}

// MergeBranch merges name into the current branch.
func (c *Controller) MergeBranch(ctx context.Context, name string) error {
	op := Operation{Kind: OpMergeBranch, Arg: name}
	return c.run(ctx, op, func(ctx context.Context) error {
		if err := c.requireActive(op); err != nil {
			return err
		}
		if name == "" {
			return gperrors.NewValidationError(string(op.Kind), gperrors.ErrEmptyBranchName, "")
		}
		branches, _, err := c.query(ctx, op)
		if err != nil {
			return err
		}
		if !slices.Contains(branches, name) {
			return gperrors.NewValidationError(string(op.Kind), gperrors.NewBranchNotFoundError(name), "")
		}
		return c.mutate(ctx, op, func() error {
			return c.handle.MergeBranch(ctx, name, c.author)
		})
	})
}

// DeleteBranch removes name. The current branch and unknown names are refused.
func (c *Controller) DeleteBranch(ctx context.Context, name string) error {
	op := Operation{Kind: OpDeleteBranch, Arg: name}
	return c.run(ctx, op, func(ctx context.Context) error {
		if err := c.requireActive(op); err != nil {
			return err
		}
		if name == "" {
			return gperrors.NewValidationError(string(op.Kind), gperrors.ErrEmptyBranchName, "")
		}
		branches, current, err := c.query(ctx, op)
		if err != nil {
			return err
		}
		if !slices.Contains(branches, name) {
			return gperrors.NewValidationError(string(op.Kind), gperrors.NewBranchNotFoundError(name), "")
		}
		if name == current {
			return gperrors.NewValidationError(string(op.Kind), gperrors.ErrCurrentBranch, name)
		}
		return c.mutate(ctx, op, func() error {
			return c.handle.DeleteBranch(ctx, name)
		})
	})
}

// Checkout switches to the branch at index in the published branch list.
func (c *Controller) Checkout(ctx context.Context, index int) error {
	op := Operation{Kind: OpCheckout, Index: index}
	return c.run(ctx, op, func(ctx context.Context) error {
		if err := c.requireActive(op); err != nil {
			return err
		}
		branches := c.State().Branches
		if index < 0 || index >= len(branches) {
			return gperrors.NewValidationError(string(op.Kind), gperrors.ErrIndexOutOfRange,
				fmt.Sprintf("%d not in [0, %d)", index, len(branches)))
		}
		return c.checkout(ctx, op, branches[index])
	})
}

// CheckoutBranch switches to the named branch.
func (c *Controller) CheckoutBranch(ctx context.Context, name string) error {
	op := Operation{Kind: OpCheckout, Arg: name}
	return c.run(ctx, op, func(ctx context.Context) error {
		if err := c.requireActive(op); err != nil {
			return err
		}
		if name == "" {
			return gperrors.NewValidationError(string(op.Kind), gperrors.ErrEmptyBranchName, "")
		}
		return c.checkout(ctx, op, name)
	})
}

// Refresh re-reads branches, current branch and log from the repository.
func (c *Controller) Refresh(ctx context.Context) error {
	op := Operation{Kind: OpRefresh}
	return c.run(ctx, op, func(ctx context.Context) error {
		if err := c.requireActive(op); err != nil {
			return err
		}
		if err := c.refresh(ctx); err != nil {
			return gperrors.NewEngineError(string(op.Kind), err)
		}
		return nil
	})
}

// Destroy waits for any in-flight operation, then releases the handle and
// moves the session to its terminal phase. Cancellation of ctx is ignored so
// teardown always completes. Destroying twice is a no-op.
func (c *Controller) Destroy(ctx context.Context) error {
	op := Operation{Kind: OpDestroy}
	return c.run(context.WithoutCancel(ctx), op, func(context.Context) error {
		if c.State().Phase == PhaseDestroyed {
			return nil
		}

		var err error
		if c.handle != nil {
			err = c.handle.Destroy()
			c.handle = nil
		}

		c.mu.Lock()
		c.state = State{Path: c.state.Path, Phase: PhaseDestroyed, Author: c.author}
		c.mu.Unlock()

		if err != nil {
			return gperrors.NewEngineError(string(op.Kind), err)
		}
		return nil
	})
}

// run serializes fn behind the gate and reports the outcome. In-flight git
// work is never cancelled; ctx only bounds the wait for the gate.
func (c *Controller) run(ctx context.Context, op Operation, fn func(ctx context.Context) error) error {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting to %s: %w", op.Kind, err)
	}
	defer c.gate.Release(1)

	started := time.Now()
	err := fn(context.WithoutCancel(ctx))
	c.report(ctx, op, err, started)
	return err
}

func (c *Controller) report(ctx context.Context, op Operation, err error, started time.Time) {
	elapsed := time.Since(started)
	path := c.State().Path
	if path == "" {
		path = op.Path
	}

	switch gperrors.Classify(err) {
	case gperrors.KindNone:
		c.logger.Debug("operation done", "op", op.String(), "duration", elapsed)
	case gperrors.KindValidation:
		c.logger.Debug("operation refused", "op", op.String(), "error", err)
	case gperrors.KindEngine:
		c.logger.Warn("operation failed", "op", op.String(), "error", err)
	case gperrors.KindProgramming:
		c.logger.Error("operation on closed session", "op", op.String(), "error", err)
	}

	c.recorder.Record(context.WithoutCancel(ctx), Entry{
		ID:       uuid.NewString(),
		Path:     path,
		Op:       op.Kind,
		Arg:      op.argument(),
		Err:      err,
		Started:  started,
		Duration: elapsed,
	})
}

func (c *Controller) requireNoRepo(op Operation) error {
	switch c.State().Phase {
	case PhaseDestroyed:
		return fmt.Errorf("%s: %w", op.Kind, gperrors.ErrSessionDestroyed)
	case PhaseActive:
		return gperrors.NewValidationError(string(op.Kind), gperrors.ErrRepositoryExists, c.State().Path)
	}
	return nil
}

func (c *Controller) requireActive(op Operation) error {
	if c.State().Phase == PhaseDestroyed {
		return fmt.Errorf("%s: %w", op.Kind, gperrors.ErrSessionDestroyed)
	}
	if c.handle == nil {
		return gperrors.NewValidationError(string(op.Kind), gperrors.ErrNoRepository, "")
	}
	return nil
}

func (c *Controller) open(ctx context.Context, op Operation, path string) error {
	h, err := c.engine.Open(ctx, path)
	if err != nil {
		return gperrors.NewEngineError(string(op.Kind), err)
	}
	return c.adopt(ctx, op, path, h)
}

// adopt takes ownership of a freshly opened handle. If the first query fails
// the handle is released and the session stays without a repository.
func (c *Controller) adopt(ctx context.Context, op Operation, path string, h git.Handle) error {
	c.handle = h
	if err := c.refresh(ctx); err != nil {
		_ = h.Destroy()
		c.handle = nil
		return gperrors.NewEngineError(string(op.Kind), err)
	}
	c.publish(func(s *State) { s.Path = path })
	return nil
}

// mutate runs fn and re-queries the repository. After an engine error the
// view is re-read as well so it shows what the engine actually left behind;
// if that read fails the previous state stays published.
func (c *Controller) mutate(ctx context.Context, op Operation, fn func() error) error {
	if err := fn(); err != nil {
		_ = c.refresh(ctx)
		return gperrors.NewEngineError(string(op.Kind), err)
	}
	if err := c.refresh(ctx); err != nil {
		return gperrors.NewEngineError(string(op.Kind), fmt.Errorf("refreshing after %s: %w", op.Kind, err))
	}
	return nil
}

func (c *Controller) checkout(ctx context.Context, op Operation, name string) error {
	branches, current, err := c.query(ctx, op)
	if err != nil {
		return err
	}
	if !slices.Contains(branches, name) {
		return gperrors.NewValidationError(string(op.Kind), gperrors.NewBranchNotFoundError(name), "")
	}
	// A detached HEAD reports "" and so never matches.
	if name == current {
		if err := c.refresh(ctx); err != nil {
			return gperrors.NewEngineError(string(op.Kind), err)
		}
		return nil
	}
	return c.mutate(ctx, op, func() error {
		return c.handle.Checkout(ctx, name)
	})
}

// query reads branches and current branch straight from the handle so guards
// see the repository as it is now.
func (c *Controller) query(ctx context.Context, op Operation) ([]string, string, error) {
	branches, err := c.handle.Branches(ctx)
	if err != nil {
		return nil, "", gperrors.NewEngineError(string(op.Kind), err)
	}
	current, err := c.handle.CurrentBranch(ctx)
	if err != nil {
		return nil, "", gperrors.NewEngineError(string(op.Kind), err)
	}
	return branches, current, nil
}

// refresh reads everything first and publishes only on full success.
func (c *Controller) refresh(ctx context.Context) error {
	branches, err := c.handle.Branches(ctx)
	if err != nil {
		return err
	}
	current, err := c.handle.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	log, err := c.handle.Log(ctx)
	if err != nil {
		return err
	}

	c.publish(func(s *State) {
		s.Phase = PhaseActive
		s.Branches = branches
		s.CurrentBranch = current
		s.Log = log
	})
	return nil
}

func (c *Controller) publish(update func(s *State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	update(&c.state)
}
