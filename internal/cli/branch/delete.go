package branch

import (
	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/runtime"
	"gitpanel.dev/gitpanel/internal/tui"
)

// NewDeleteCmd creates the delete command
func NewDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "delete [name]",
		Aliases: []string{"d", "rm"},
		Short:   "Delete a branch",
		Long: `Delete a branch. The current branch can never be deleted.

In an interactive terminal you are asked to confirm unless --force is given.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				v, err := common.RequireRepository(ctx)
				if err != nil {
					return err
				}

				interactive := common.Interactive()
				name := ""
				if len(args) > 0 {
					name = args[0]
				} else if interactive {
					if name, err = tui.PromptBranch("Delete which branch?", v, v.CurrentBranch); err != nil {
						return err
					}
				}

				if interactive && !force && name != "" {
					ok, err := tui.PromptConfirm("Delete branch "+name+"?", false)
					if err != nil {
						return err
					}
					if !ok {
						ctx.Splog.Info("Not deleting %s.", name)
						return nil
					}
				}

				if err := ctx.Controller.DeleteBranch(cmd.Context(), name); err != nil {
					return err
				}
				ctx.Splog.Info("Deleted branch %s.", tui.ColorCyan(name))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without asking for confirmation")

	return cmd
}
