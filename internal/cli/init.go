package cli

import (
	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/runtime"
	"gitpanel.dev/gitpanel/internal/tui"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a repository in the repository root",
		Long: `Create a repository in the repository root.

Files already present are staged and recorded in an initial commit authored
by the configured author, so the trunk branch exists right away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				if err := ctx.Controller.Init(cmd.Context(), ctx.RepoRoot); err != nil {
					return err
				}
				v := ctx.Controller.View()
				ctx.Splog.Info("Initialized repository in %s on branch %s.", ctx.RepoRoot, tui.ColorCyan(v.CurrentBranch))
				return nil
			})
		},
	}

	return cmd
}
