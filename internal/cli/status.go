package cli

import (
	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/runtime"
	"gitpanel.dev/gitpanel/internal/tui"
)

// newStatusCmd creates the status command
func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   "Show the repository, its branches and the current branch",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				v := ctx.Controller.View()
				if !v.RepoExists {
					ctx.Splog.Info("No repository in %s.", ctx.RepoRoot)
					ctx.Splog.Tip("Run 'gitpanel init' to create one.")
					return nil
				}

				ctx.Splog.Info("Repository %s", ctx.RepoRoot)
				if v.CurrentBranch == "" {
					ctx.Splog.Info("HEAD detached")
				} else {
					ctx.Splog.Info("On branch %s", tui.ColorCyan(v.CurrentBranch))
				}
				if len(v.BranchOptions) == 0 {
					ctx.Splog.Info("No commits yet.")
					return nil
				}
				ctx.Splog.Newline()
				common.PrintBranches(ctx.Splog, v)
				return nil
			})
		},
	}

	return cmd
}
