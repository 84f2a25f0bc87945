// Package branch provides CLI commands for creating, merging and deleting branches.
package branch

import (
	"github.com/spf13/cobra"
)

// NewBranchCmd creates the branch command and its subcommands
func NewBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "branch",
		Aliases: []string{"b"},
		Short:   "Create, merge and delete branches",
	}

	cmd.AddCommand(NewCreateCmd())
	cmd.AddCommand(NewMergeCmd())
	cmd.AddCommand(NewDeleteCmd())

	return cmd
}
