package tui

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitpanel.dev/gitpanel/internal/session"
)

// ErrInteractiveDisabled is returned when interactive prompts are disabled via GITPANEL_NO_INTERACTIVE
var ErrInteractiveDisabled = errors.New("interactive prompts are disabled (GITPANEL_NO_INTERACTIVE is set)")

// ErrPromptCanceled is returned when the user leaves a prompt without answering
var ErrPromptCanceled = errors.New("canceled")

// checkInteractiveAllowed returns an error if interactive mode is disabled
func checkInteractiveAllowed() error {
	if os.Getenv("GITPANEL_NO_INTERACTIVE") != "" {
		return ErrInteractiveDisabled
	}
	return nil
}

var (
	pickerCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	pickerHintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type pickerRow struct {
	index   int
	name    string
	current bool
}

// BranchPicker chooses a branch from a session view. Rows keep the position
// `gitpanel checkout N` would use and mark the current branch. Typing
// narrows the rows by name.
type BranchPicker struct {
	title   string
	rows    []pickerRow
	visible []pickerRow
	filter  string
	cursor  int

	Selected string
	Canceled bool
}

// NewBranchPicker lists the branches of v in their published order, leaving
// out the names in exclude. The cursor starts on the current branch when it
// is listed.
func NewBranchPicker(title string, v session.View, exclude ...string) BranchPicker {
	m := BranchPicker{title: title}
	for i, name := range v.BranchOptions {
		if slices.Contains(exclude, name) {
			continue
		}
		m.rows = append(m.rows, pickerRow{index: i, name: name, current: i == v.Selected})
	}
	m.visible = m.rows
	for i, row := range m.visible {
		if row.current {
			m.cursor = i
		}
	}
	return m
}

// Len is the number of branches shown with the current filter.
func (m BranchPicker) Len() int { return len(m.visible) }

// Init implements tea.Model.
func (m BranchPicker) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m BranchPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyEnter:
		if len(m.visible) == 0 {
			return m, nil
		}
		m.Selected = m.visible[m.cursor].name
		return m, tea.Quit
	case tea.KeyCtrlC, tea.KeyEsc:
		m.Canceled = true
		return m, tea.Quit
	case tea.KeyUp:
		if len(m.visible) > 0 {
			m.cursor = (m.cursor - 1 + len(m.visible)) % len(m.visible)
		}
	case tea.KeyDown:
		if len(m.visible) > 0 {
			m.cursor = (m.cursor + 1) % len(m.visible)
		}
	case tea.KeyBackspace:
		if m.filter != "" {
			runes := []rune(m.filter)
			m.setFilter(string(runes[:len(runes)-1]))
		}
	case tea.KeyRunes:
		m.setFilter(m.filter + string(key.Runes))
	}
	return m, nil
}

func (m *BranchPicker) setFilter(filter string) {
	m.filter = filter
	m.cursor = 0
	if filter == "" {
		m.visible = m.rows
		return
	}
	needle := strings.ToLower(filter)
	m.visible = nil
	for _, row := range m.rows {
		if strings.Contains(strings.ToLower(row.name), needle) {
			m.visible = append(m.visible, row)
		}
	}
}

// View implements tea.Model.
func (m BranchPicker) View() string {
	if m.Selected != "" || m.Canceled {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.title))
	b.WriteString("\n")
	if m.filter != "" {
		fmt.Fprintf(&b, "Filter: %s\n", pickerCursorStyle.Render(m.filter))
	}
	b.WriteString("\n")

	if len(m.visible) == 0 {
		b.WriteString("No branches match the filter.\n")
	}
	for i, row := range m.visible {
		cursor := " "
		name := row.name
		if i == m.cursor {
			cursor = pickerCursorStyle.Render(">")
			name = pickerCursorStyle.Render(name)
		}
		marker := ""
		if row.current {
			marker = " " + ColorCyan("(current)")
		}
		fmt.Fprintf(&b, "%s %2d  %s%s\n", cursor, row.index, name, marker)
	}

	b.WriteString(pickerHintStyle.Render("\n(↑/↓ to move, type to filter, Enter to select, Esc to cancel)"))
	return lipgloss.NewStyle().Margin(1, 0).Render(b.String())
}

// PromptBranch runs a BranchPicker over v and returns the chosen name.
func PromptBranch(title string, v session.View, exclude ...string) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}

	m := NewBranchPicker(title, v, exclude...)
	if m.Len() == 0 {
		return "", fmt.Errorf("no branches to choose from")
	}

	final, err := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout)).Run()
	if err != nil {
		return "", err
	}
	picked := final.(BranchPicker)
	if picked.Canceled {
		return "", ErrPromptCanceled
	}
	return picked.Selected, nil
}

// PromptConfirm asks a yes/no question.
func PromptConfirm(message string, defaultValue bool) (bool, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return false, err
	}

	answer := defaultValue
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: defaultValue}, &answer); err != nil {
		return false, err
	}
	return answer, nil
}

func promptLine(input *survey.Input) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}

	var answer string
	if err := survey.AskOne(input, &answer, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// PromptCommitMessage asks for a commit message on a single line.
func PromptCommitMessage(defaultValue string) (string, error) {
	return promptLine(&survey.Input{Message: "Commit message:", Default: defaultValue})
}

// PromptBranchName asks for the name of a branch to create.
func PromptBranchName() (string, error) {
	return promptLine(&survey.Input{
		Message: "Branch name:",
		Help:    "The new branch starts at the current commit.",
	})
}

// PromptConfigValue asks for a new value of a config key, offering the
// current one as default.
func PromptConfigValue(key, current string) (string, error) {
	return promptLine(&survey.Input{Message: fmt.Sprintf("Value for %s:", key), Default: current})
}
