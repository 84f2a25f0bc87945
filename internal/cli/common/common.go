// Package common provides shared helper functions for CLI commands.
package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/config"
	gperrors "gitpanel.dev/gitpanel/internal/errors"
	"gitpanel.dev/gitpanel/internal/runtime"
	"gitpanel.dev/gitpanel/internal/session"
	"gitpanel.dev/gitpanel/internal/tui"
)

// Persistent flag names shared by every command.
const (
	FlagRepo   = "repo"
	FlagConfig = "config"
)

// Run is a helper that provides a runtime context to a command's execution
// function. The session is destroyed and the log file closed afterwards.
func Run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	repo, _ := cmd.Flags().GetString(FlagRepo)
	cfgPath, _ := cmd.Flags().GetString(FlagConfig)

	splog, err := tui.NewSplogWithConfig(tui.GetLogFilePath(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer splog.Close()

	rc, err := runtime.NewContext(cmd.Context(), runtime.Options{
		RepoRoot:   repo,
		ConfigPath: cfgPath,
		Splog:      splog,
	})
	if err != nil {
		return err
	}

	err = fn(rc)
	if closeErr := rc.Close(context.WithoutCancel(cmd.Context())); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// RepoRoot returns the absolute repository root selected by --repo, or the
// working directory.
func RepoRoot(cmd *cobra.Command) (string, error) {
	repo, _ := cmd.Flags().GetString(FlagRepo)
	if repo == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		repo = wd
	}
	return filepath.Abs(repo)
}

// LoadConfig loads the configuration without opening a session.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	root, err := RepoRoot(cmd)
	if err != nil {
		return nil, err
	}
	cfgPath, _ := cmd.Flags().GetString(FlagConfig)
	return config.Load(config.LoadOptions{Path: cfgPath, RepoRoot: root})
}

// ResolvePath resolves a file argument against the repository root.
func ResolvePath(cmd *cobra.Command, path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	root, err := RepoRoot(cmd)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, path), nil
}

// RequireRepository fails when the session found no repository at its root.
func RequireRepository(rc *runtime.Context) (session.View, error) {
	v := rc.Controller.View()
	if !v.RepoExists {
		return v, fmt.Errorf("%s: %w", rc.RepoRoot, gperrors.ErrNoRepository)
	}
	return v, nil
}

// Interactive reports whether prompts may be shown.
func Interactive() bool {
	return os.Getenv("GITPANEL_NO_INTERACTIVE") == "" && tui.IsTTY()
}

// PrintBranches writes the branch list with the current branch marked.
func PrintBranches(splog *tui.Splog, v session.View) {
	for i, name := range v.BranchOptions {
		if i == v.Selected {
			splog.Info("* %d %s", i, tui.ColorGreen(name))
			continue
		}
		splog.Info("  %d %s", i, name)
	}
}

// CompleteBranches is a helper for cobra.ValidArgsFunction that returns all
// branch names in the repository.
func CompleteBranches(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var branches []string
	err := Run(cmd, func(rc *runtime.Context) error {
		branches = rc.Controller.View().BranchOptions
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return branches, cobra.ShellCompDirectiveNoFileComp
}
