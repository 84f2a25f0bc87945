package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/runtime"
)

// newLogCmd creates the log command
func newLogCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:     "log",
		Aliases: []string{"l"},
		Short:   "Print the log of the current branch, newest commit first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				v, err := common.RequireRepository(ctx)
				if err != nil {
					return err
				}

				text := v.LogText
				if steps > 0 {
					lines := strings.Split(text, "\n")
					if len(lines) > steps {
						text = strings.Join(lines[:steps], "\n")
					}
				}
				if text != "" {
					ctx.Splog.Page(text + "\n")
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 0, "Only show this many commits")

	return cmd
}
