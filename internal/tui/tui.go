package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"gitpanel.dev/gitpanel/internal/session"
	"gitpanel.dev/gitpanel/internal/watch"
)

// IsTTY returns true if we can use a TTY for interactive TUI
func IsTTY() bool {
	if !((isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))) {
		return false
	}
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// PanelOptions configures RunPanel.
type PanelOptions struct {
	Path string
	View session.View
	// Watcher, when set, triggers a refresh whenever refs change on disk.
	Watcher *watch.Watcher
	Splog   *Splog
}

// RunPanel runs the panel until the user quits. Console logging is muted
// while the panel owns the terminal.
func RunPanel(ctx context.Context, d *session.Dispatcher, opts PanelOptions) error {
	if opts.Splog != nil {
		opts.Splog.SetQuiet(true)
		defer opts.Splog.SetQuiet(false)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewPanelModel(ctx, d, opts.Path, opts.View)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx),
		tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Watcher != nil {
		g.Go(func() error {
			return watch.Follow(gctx, opts.Watcher, func(_ context.Context, ev watch.Event) error {
				p.Send(RepoChangedMsg(ev))
				return nil
			})
		})
	}

	_, runErr := p.Run()
	cancel()
	watchErr := g.Wait()
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return watchErr
}
