package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	gperrors "gitpanel.dev/gitpanel/internal/errors"
	"gitpanel.dev/gitpanel/internal/session"
	"gitpanel.dev/gitpanel/internal/watch"
)

type panelMode int

const (
	modeBrowse panelMode = iota
	modeCommit
	modeCreateBranch
	modeConfirmDelete
)

// ResultMsg carries the outcome of an operation dispatched by the panel.
type ResultMsg session.Result

// RepoChangedMsg reports that refs changed on disk outside the panel.
type RepoChangedMsg watch.Event

type panelStyles struct {
	title    lipgloss.Style
	current  lipgloss.Style
	cursor   lipgloss.Style
	disabled lipgloss.Style
	status   lipgloss.Style
	alert    lipgloss.Style
	help     lipgloss.Style
	border   lipgloss.Style
}

func newPanelStyles() panelStyles {
	return panelStyles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		current:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
		disabled: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		alert:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
	}
}

// PanelModel is the interactive repository panel: a branch list, the log of
// the current branch and the controls acting on them. Every action goes
// through the dispatcher, so the panel never blocks on git.
type PanelModel struct {
	ctx        context.Context
	dispatcher *session.Dispatcher
	path       string

	view    session.View
	cursor  int
	mode    panelMode
	pending int

	input textinput.Model
	log   viewport.Model

	status string
	alert  string

	width  int
	height int
	styles panelStyles

	quitting bool
}

// NewPanelModel creates a panel for the repository at path, starting from view.
func NewPanelModel(ctx context.Context, d *session.Dispatcher, path string, view session.View) PanelModel {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60

	m := PanelModel{
		ctx:        ctx,
		dispatcher: d,
		path:       path,
		input:      ti,
		log:        viewport.New(80, 12),
		styles:     newPanelStyles(),
	}
	m.setView(view)
	return m
}

// SessionView returns the last view published to the panel.
func (m PanelModel) SessionView() session.View {
	return m.view
}

// Cursor returns the highlighted branch index.
func (m PanelModel) Cursor() int {
	return m.cursor
}

// Alert returns the message of the last failed operation, if any.
func (m PanelModel) Alert() string {
	return m.alert
}

// Busy reports whether operations are still in flight.
func (m PanelModel) Busy() bool {
	return m.pending > 0
}

func (m *PanelModel) setView(v session.View) {
	m.view = v
	if v.Selected >= 0 {
		m.cursor = v.Selected
	}
	if m.cursor >= len(v.BranchOptions) {
		m.cursor = len(v.BranchOptions) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.log.SetContent(v.LogText)
	m.log.GotoTop()
}

// dispatch submits op right away so operations keep the order of key presses.
func (m *PanelModel) dispatch(op session.Operation) tea.Cmd {
	m.pending++
	m.status = fmt.Sprintf("running %s...", op)
	reply := m.dispatcher.Submit(m.ctx, op)
	return func() tea.Msg {
		return ResultMsg(<-reply)
	}
}

func (m PanelModel) Init() tea.Cmd {
	return nil
}

func (m PanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.log.Width = max(msg.Width-4, 20)
		m.log.Height = max(msg.Height-len(m.view.BranchOptions)-10, 3)
		return m, nil

	case ResultMsg:
		m.pending--
		m.setView(msg.View)
		if msg.Err != nil {
			m.alert = gperrors.UserMessage(msg.Err)
			m.status = ""
		} else {
			m.alert = ""
			m.status = fmt.Sprintf("%s done", msg.Op)
		}
		return m, nil

	case RepoChangedMsg:
		if !m.view.ControlsEnabled {
			return m, nil
		}
		return m, m.dispatch(session.Operation{Kind: session.OpRefresh})

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeCommit, modeCreateBranch:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m PanelModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "i":
		if !m.view.InitEnabled {
			return m, nil
		}
		return m, m.dispatch(session.Operation{Kind: session.OpInit, Path: m.path})
	case "r":
		if !m.view.ControlsEnabled {
			return m, nil
		}
		return m, m.dispatch(session.Operation{Kind: session.OpRefresh})
	case "j", "down":
		if m.cursor < len(m.view.BranchOptions)-1 {
			m.cursor++
		}
		return m, nil
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "pgdown", "pgup":
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd
	}

	if !m.view.ControlsEnabled {
		return m, nil
	}

	switch msg.String() {
	case "enter", " ":
		return m, m.dispatch(session.Operation{Kind: session.OpCheckout, Index: m.cursor})
	case "c":
		return m.startInput(modeCommit, "commit message")
	case "n":
		return m.startInput(modeCreateBranch, "new branch name")
	case "m":
		if name, ok := m.highlighted(); ok {
			return m, m.dispatch(session.Operation{Kind: session.OpMergeBranch, Arg: name})
		}
	case "d":
		if _, ok := m.highlighted(); ok {
			m.mode = modeConfirmDelete
		}
	}
	return m, nil
}

func (m PanelModel) startInput(mode panelMode, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m, m.input.Focus()
}

func (m PanelModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		kind := session.OpCommit
		if m.mode == modeCreateBranch {
			kind = session.OpCreateBranch
		}
		m.mode = modeBrowse
		m.input.Blur()
		return m, m.dispatch(session.Operation{Kind: kind, Arg: value})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PanelModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeBrowse
	if strings.ToLower(msg.String()) != "y" {
		return m, nil
	}
	name, ok := m.highlighted()
	if !ok {
		return m, nil
	}
	return m, m.dispatch(session.Operation{Kind: session.OpDeleteBranch, Arg: name})
}

func (m PanelModel) highlighted() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.BranchOptions) {
		return "", false
	}
	return m.view.BranchOptions[m.cursor], true
}

func (m PanelModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render("gitpanel " + m.path))
	b.WriteString("\n\n")

	if !m.view.RepoExists {
		b.WriteString(m.styles.disabled.Render("No repository here."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderBranches())
		b.WriteString("\n")
		b.WriteString(m.styles.border.Render(m.log.View()))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeCommit, modeCreateBranch:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeConfirmDelete:
		name, _ := m.highlighted()
		b.WriteString(ColorYellow(fmt.Sprintf("Delete branch %s? [y/N]", name)))
		b.WriteString("\n")
	}

	if m.alert != "" {
		b.WriteString(m.styles.alert.Render(m.alert))
	} else {
		b.WriteString(m.styles.status.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.help.Render(m.helpLine()))
	return b.String()
}

func (m PanelModel) renderBranches() string {
	var b strings.Builder
	for i, name := range m.view.BranchOptions {
		pointer := "  "
		if i == m.cursor {
			pointer = m.styles.cursor.Render("> ")
		}
		label := name
		if i == m.view.Selected {
			label = m.styles.current.Render(name + " *")
		}
		fmt.Fprintf(&b, "%s%d %s\n", pointer, i, label)
	}
	return b.String()
}

func (m PanelModel) helpLine() string {
	if m.view.InitEnabled {
		return "i init • q quit"
	}
	if !m.view.ControlsEnabled {
		return "q quit"
	}
	return "enter checkout • c commit • n new branch • m merge • d delete • r refresh • q quit"
}
