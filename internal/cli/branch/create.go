package branch

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/runtime"
	"gitpanel.dev/gitpanel/internal/tui"
)

// NewCreateCmd creates the create command
func NewCreateCmd() *cobra.Command {
	var checkout bool

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new branch at the current commit",
		Long: `Create a new branch at the current commit.

If no branch name is specified and the terminal is interactive, you will be
asked for one. The current branch does not change unless --checkout is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				if _, err := common.RequireRepository(ctx); err != nil {
					return err
				}

				name := ""
				if len(args) > 0 {
					name = args[0]
				} else if common.Interactive() {
					var err error
					if name, err = tui.PromptBranchName(); err != nil {
						return err
					}
				}

				if err := ctx.Controller.CreateBranch(cmd.Context(), name); err != nil {
					return err
				}
				ctx.Splog.Info("Created branch %s.", tui.ColorCyan(name))

				if checkout {
					if err := ctx.Controller.CheckoutBranch(cmd.Context(), name); err != nil {
						return fmt.Errorf("branch %s was created but not checked out: %w", name, err)
					}
					ctx.Splog.Info("Switched to branch %s.", tui.ColorCyan(name))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&checkout, "checkout", "c", false, "Check out the new branch after creating it")

	return cmd
}
