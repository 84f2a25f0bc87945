package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gitpanel.dev/gitpanel/internal/config"
	"gitpanel.dev/gitpanel/internal/git"
	"gitpanel.dev/gitpanel/internal/journal"
	"gitpanel.dev/gitpanel/internal/session"
	"gitpanel.dev/gitpanel/internal/tui"
	"gitpanel.dev/gitpanel/internal/watch"
)

// Options controls how a Context is built. Zero values pick the defaults.
type Options struct {
	// RepoRoot is the directory the session starts in. The working directory when empty.
	RepoRoot string
	// ConfigPath overrides the user config file.
	ConfigPath string
	// Splog overrides the console and file logger.
	Splog *tui.Splog
	// Engine overrides the go-git engine built from the configuration.
	Engine git.Engine
}

// Context provides access to configuration, output and the session for commands
type Context struct {
	Config     *config.Config
	Splog      *tui.Splog
	Engine     git.Engine
	Controller *session.Controller
	// Journal is nil when journal.enabled is false.
	Journal  *journal.Store
	RepoRoot string

	ownsSplog bool
}

// NewContext loads the configuration, opens the journal and starts a session
// at the repository root. An existing repository is opened right away.
func NewContext(ctx context.Context, opts Options) (*Context, error) {
	root, err := resolveRoot(opts.RepoRoot)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.LoadOptions{Path: opts.ConfigPath, RepoRoot: root})
	if err != nil {
		return nil, err
	}

	c := &Context{Config: cfg, Splog: opts.Splog, Engine: opts.Engine, RepoRoot: root}
	if c.Splog == nil {
		splog, err := tui.NewSplogWithConfig(tui.GetLogFilePath(), nil)
		if err != nil {
			return nil, err
		}
		c.Splog = splog
		c.ownsSplog = true
	}
	if c.Engine == nil {
		c.Engine = git.NewLocal(cfg.EngineOptions())
	}

	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path, journal.Options{
			Logger: c.Splog.Logger(),
			Debug:  os.Getenv("DEBUG") != "",
		})
		if err != nil {
			// The panel works without history.
			c.Splog.Warn("journal disabled: %v", err)
		} else {
			c.Journal = store
		}
	}

	c.Controller = c.newController()
	if err := c.Controller.Start(ctx, root); err != nil {
		_ = c.Close(ctx)
		return nil, err
	}
	c.Splog.Logger().Debug("session started", "root", root, "phase", c.Controller.State().Phase)
	return c, nil
}

func resolveRoot(root string) (string, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	return abs, nil
}

func (c *Context) newController() *session.Controller {
	opts := []session.Option{session.WithLogger(c.Splog.Logger())}
	if c.Journal != nil {
		opts = append(opts, session.WithRecorder(c.Journal))
	}
	return session.New(c.Engine, c.Config.AuthorIdentity(), opts...)
}

// NewDispatcher returns a dispatcher over the current controller.
func (c *Context) NewDispatcher() *session.Dispatcher {
	return session.NewDispatcher(c.Controller, session.DefaultBacklog)
}

// Watch returns a watcher on the current repository, or nil when the session
// has no repository.
func (c *Context) Watch() (*watch.Watcher, error) {
	st := c.Controller.State()
	if st.Phase != session.PhaseActive {
		return nil, nil
	}
	return watch.New(st.Path, watch.WithLogger(c.Splog.Logger()))
}

// SwitchProject tears down the current session and starts a new one at root.
// A destroyed controller is never reused.
func (c *Context) SwitchProject(ctx context.Context, root string) error {
	abs, err := resolveRoot(root)
	if err != nil {
		return err
	}
	if err := c.Controller.Destroy(ctx); err != nil {
		c.Splog.Logger().Error("destroying previous session", "root", c.RepoRoot, "error", err)
	}

	c.RepoRoot = abs
	c.Controller = c.newController()
	return c.Controller.Start(ctx, abs)
}

// Close destroys the session and releases the journal and log file.
func (c *Context) Close(ctx context.Context) error {
	var errs []error
	if c.Controller != nil {
		errs = append(errs, c.Controller.Destroy(ctx))
	}
	if c.Journal != nil {
		errs = append(errs, c.Journal.Close())
	}
	if c.ownsSplog {
		errs = append(errs, c.Splog.Close())
	}
	return errors.Join(errs...)
}
