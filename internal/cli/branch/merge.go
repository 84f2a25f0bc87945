package branch

import (
	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/runtime"
	"gitpanel.dev/gitpanel/internal/tui"
)

// NewMergeCmd creates the merge command
func NewMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge [name]",
		Short: "Merge a branch into the current branch",
		Long: `Merge a branch into the current branch.

A branch that is already contained in the current branch is a no-op, a branch
ahead of it is fast-forwarded, and anything else gets a merge commit. A merge
that stops on conflicts is aborted and the repository is left unchanged.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				v, err := common.RequireRepository(ctx)
				if err != nil {
					return err
				}

				name := ""
				if len(args) > 0 {
					name = args[0]
				} else if common.Interactive() {
					if name, err = tui.PromptBranch("Merge which branch into "+v.CurrentBranch+"?", v, v.CurrentBranch); err != nil {
						return err
					}
				}

				if err := ctx.Controller.MergeBranch(cmd.Context(), name); err != nil {
					return err
				}
				ctx.Splog.Info("Merged %s into %s.", tui.ColorCyan(name), tui.ColorCyan(v.CurrentBranch))
				return nil
			})
		},
	}

	return cmd
}
