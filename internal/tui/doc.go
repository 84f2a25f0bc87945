// Package tui provides the terminal user interface for gitpanel.
//
// It handles:
//   - The interactive repository panel (bubbletea)
//   - Prompts for missing command arguments (survey and bubbletea)
//   - Structured logging and status reporting (Splog)
//   - Terminal styling and colors (using lipgloss)
package tui
