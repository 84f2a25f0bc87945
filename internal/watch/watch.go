// Package watch reports changes to a repository's branch refs made outside
// the session, so the panel can refresh when another tool moves HEAD or
// creates and deletes branches.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is how long the watcher waits for a burst of ref writes to
// settle before emitting one Event.
const DefaultDebounce = 150 * time.Millisecond

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("watcher closed")

// Event is one settled batch of ref changes.
type Event struct {
	// Paths lists the changed files relative to the .git directory.
	Paths []string
	Time  time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for dropped events and fsnotify errors.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// Watcher watches HEAD, packed-refs and refs/heads of one repository.
type Watcher struct {
	gitDir   string
	debounce time.Duration
	log      *slog.Logger

	fs     *fsnotify.Watcher
	events chan Event

	mu     sync.Mutex
	closed bool
}

// New starts watching the repository rooted at repoRoot.
func New(repoRoot string, opts ...Option) (*Watcher, error) {
	gitDir, err := filepath.Abs(filepath.Join(repoRoot, ".git"))
	if err != nil {
		return nil, fmt.Errorf("resolving git directory: %w", err)
	}
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s is not a git directory", gitDir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		gitDir:   gitDir,
		debounce: DefaultDebounce,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		fs:       fsw,
		events:   make(chan Event, 1),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(gitDir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", gitDir, err)
	}
	if err := w.addTree(filepath.Join(gitDir, "refs", "heads")); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every directory below it. Branch names with
// slashes live in subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

// Events delivers settled changes. Only the latest pending Event is kept
// when the consumer is slow.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run processes filesystem notifications until ctx is done or the watcher is
// closed. It closes the Events channel on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	var (
		pending []string
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return ErrClosed
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.log.Debug("failed to watch new ref directory", "path", ev.Name, "error", err)
					}
				}
			}
			rel, ok := w.relevant(ev.Name)
			if !ok {
				continue
			}
			pending = appendUnique(pending, rel)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			w.emit(Event{Paths: pending, Time: time.Now()})
			pending = nil
			fire = nil

		case err, ok := <-w.fs.Errors:
			if !ok {
				return ErrClosed
			}
			w.log.Warn("repository watcher error", "error", err)
		}
	}
}

func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
		return
	default:
	}
	// Replace the stale event nobody has read yet.
	select {
	case old := <-w.events:
		ev.Paths = mergePaths(old.Paths, ev.Paths)
	default:
	}
	select {
	case w.events <- ev:
	default:
		w.log.Debug("dropping repository change event", "paths", ev.Paths)
	}
}

// relevant reports whether path is a ref file whose change affects the
// branch list, the current branch or the log.
func (w *Watcher) relevant(path string) (string, bool) {
	rel, err := filepath.Rel(w.gitDir, path)
	if err != nil {
		return "", false
	}
	return rel, IsRefPath(filepath.ToSlash(rel))
}

// IsRefPath reports whether rel, a slash-separated path inside .git, names
// HEAD, packed-refs or a local branch ref. Lock files are ignored.
func IsRefPath(rel string) bool {
	if strings.HasSuffix(rel, ".lock") {
		return false
	}
	switch {
	case rel == "HEAD", rel == "packed-refs":
		return true
	case strings.HasPrefix(rel, "refs/heads/"):
		return true
	}
	return false
}

// Close stops the watcher. Run returns ErrClosed afterwards.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fs.Close()
}

// Follow runs w and calls refresh for every Event until ctx is done or
// refresh fails. The watcher is closed on return.
func Follow(ctx context.Context, w *Watcher, refresh func(context.Context, Event) error) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := w.Run(ctx)
		if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-w.Events():
				if !ok {
					return nil
				}
				if err := refresh(ctx, ev); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}

func appendUnique(paths []string, p string) []string {
	for _, existing := range paths {
		if existing == p {
			return paths
		}
	}
	return append(paths, p)
}

func mergePaths(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, p := range b {
		out = appendUnique(out, p)
	}
	return out
}
