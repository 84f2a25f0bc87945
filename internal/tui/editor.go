package tui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// commitTemplate is appended below the initial message; lines starting with
// '#' are dropped from the result.
const commitTemplate = `
# Enter the commit message. Lines starting with '#' are ignored,
# and an empty message aborts the commit.
`

// OpenEditor opens the user's preferred editor with the given initial content.
// It returns the edited content or an error.
func OpenEditor(initialContent, filenamePattern string) (string, error) {
	tmpFile, err := os.CreateTemp("", filenamePattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	if _, err := tmpFile.WriteString(initialContent); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	cmd := exec.Command("sh", "-c", fmt.Sprintf("%s %s", preferredEditor(), tmpFile.Name()))
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor exited with error: %w", err)
	}

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}

	return string(content), nil
}

// preferredEditor resolves GITPANEL_EDITOR, GIT_EDITOR, EDITOR, core.editor
// and finally vi.
func preferredEditor() string {
	for _, key := range []string{"GITPANEL_EDITOR", "GIT_EDITOR", "EDITOR"} {
		if editor := os.Getenv(key); editor != "" {
			return editor
		}
	}
	output, err := exec.Command("git", "config", "--get", "core.editor").Output()
	if err == nil {
		if editor := strings.TrimSpace(string(output)); editor != "" {
			return editor
		}
	}
	return "vi"
}

// EditCommitMessage opens the editor on initial plus a short template and
// returns the message with comment lines removed.
func EditCommitMessage(initial string) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}
	content, err := OpenEditor(initial+"\n"+commitTemplate, "COMMIT_EDITMSG-*")
	if err != nil {
		return "", err
	}
	return StripComments(content), nil
}

// StripComments removes '#' lines and surrounding blank lines from an edited message.
func StripComments(content string) string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t\r"))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
