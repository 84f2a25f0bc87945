package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/config"
	"gitpanel.dev/gitpanel/internal/tui"
)

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get and set gitpanel configuration",
		Long: `Get and set gitpanel configuration values.

Values come from, lowest first: built-in defaults, the user file, the
repository file .git/gitpanel.yaml and GITPANEL_* environment variables.

Examples:
  gitpanel config get author.name
  gitpanel config set author.email dev@example.com
  gitpanel config set --local trunk develop`,
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

// newConfigGetCmd creates the config get command
func newConfigGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "get <key>",
		Short:     "Get the effective value of a configuration key",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := common.LoadConfig(cmd)
			if err != nil {
				return err
			}
			value, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		},
	}

	return cmd
}

// newConfigSetCmd creates the config set command
func newConfigSetCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:       "set <key> [value]",
		Short:     "Set a configuration value in the user file, or the repository file with --local",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			cfg, err := common.LoadConfig(cmd)
			if err != nil {
				return err
			}
			current, err := cfg.Get(key)
			if err != nil {
				return err
			}

			var value string
			if len(args) == 2 {
				value = args[1]
			} else if common.Interactive() {
				if value, err = tui.PromptConfigValue(key, fmt.Sprint(current)); err != nil {
					return err
				}
			} else {
				return fmt.Errorf("a value for %s is required", key)
			}

			path := cfg.Path()
			if local {
				root, err := common.RepoRoot(cmd)
				if err != nil {
					return err
				}
				path = config.RepoPath(root)
			}

			if err := config.Set(path, key, value); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s in %s\n", key, value, path)
			return err
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Write to the repository file .git/gitpanel.yaml")

	return cmd
}

// newConfigListCmd creates the config list command
func newConfigListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every configuration key with its effective value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := common.LoadConfig(cmd)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(config.Keys()))
			for _, key := range config.Keys() {
				value, err := cfg.Get(key)
				if err != nil {
					return err
				}
				rows = append(rows, []string{key, fmt.Sprint(value)})
			}
			return tui.RenderTable(cmd.OutOrStdout(), []string{"key", "value"}, rows)
		},
	}

	return cmd
}

// newConfigPathCmd creates the config path command
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the user configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := common.LoadConfig(cmd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cfg.Path())
			return err
		},
	}

	return cmd
}
