package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/runtime"
	"gitpanel.dev/gitpanel/internal/tui"
)

// newCheckoutCmd creates the checkout command
func newCheckoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "checkout [index|branch]",
		Aliases: []string{"co"},
		Short:   "Switch to a branch. If no branch is provided, opens an interactive selector.",
		Long: `Switch to a branch by its index in 'gitpanel branches' or by name.

If no branch is provided, opens an interactive selector that you can filter
by typing. Checking out the current branch only refreshes the view.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				v, err := common.RequireRepository(ctx)
				if err != nil {
					return err
				}

				switch {
				case len(args) == 1:
					if index, convErr := strconv.Atoi(args[0]); convErr == nil {
						err = ctx.Controller.Checkout(cmd.Context(), index)
					} else {
						err = ctx.Controller.CheckoutBranch(cmd.Context(), args[0])
					}
				case common.Interactive():
					name, promptErr := tui.PromptBranch("Checkout a branch", v)
					if promptErr != nil {
						return promptErr
					}
					err = ctx.Controller.CheckoutBranch(cmd.Context(), name)
				default:
					return fmt.Errorf("a branch index or name is required")
				}
				if err != nil {
					return err
				}

				ctx.Splog.Info("Switched to branch %s.", tui.ColorCyan(ctx.Controller.View().CurrentBranch))
				return nil
			})
		},
	}

	return cmd
}
