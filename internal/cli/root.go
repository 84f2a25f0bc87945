package cli

import (
	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/branch"
	"gitpanel.dev/gitpanel/internal/cli/common"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitpanel",
		Short: "gitpanel is a small panel for working with a local git repository",
		Long: `gitpanel is a small panel for working with a local git repository.

It shows the branches and the log of the current branch, and lets you commit,
create, merge, delete and check out branches. Run 'gitpanel panel' for the
interactive view or use the subcommands directly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(common.FlagRepo, "", "Repository root (defaults to the working directory)")
	rootCmd.PersistentFlags().String(common.FlagConfig, "", "Config file (defaults to $XDG_CONFIG_HOME/gitpanel/config.yaml)")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newBranchesCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(branch.NewBranchCmd())
	rootCmd.AddCommand(newCheckoutCmd())
	rootCmd.AddCommand(newPanelCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd(version, commit, date))

	return rootCmd
}
