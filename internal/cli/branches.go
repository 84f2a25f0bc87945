package cli

import (
	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/runtime"
)

// newBranchesCmd creates the branches command
func newBranchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "List branches with their checkout index, trunk first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				v, err := common.RequireRepository(ctx)
				if err != nil {
					return err
				}
				common.PrintBranches(ctx.Splog, v)
				return nil
			})
		},
	}

	return cmd
}
