package tui

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If GITPANEL_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.gitpanel/logs/gitpanel.log
func GetLogFilePath() string {
	if customPath := os.Getenv("GITPANEL_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "gitpanel.log"
	}

	return filepath.Join(homeDir, ".gitpanel", "logs", "gitpanel.log")
}
