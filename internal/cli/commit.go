package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/runtime"
	"gitpanel.dev/gitpanel/internal/tui"
)

// newCommitCmd creates the commit command
func newCommitCmd() *cobra.Command {
	var (
		message string
		edit    bool
	)

	cmd := &cobra.Command{
		Use:     "commit",
		Aliases: []string{"c"},
		Short:   "Record all changes in the working tree as a commit on the current branch",
		Long: `Record all changes in the working tree as a commit on the current branch.

Without --message an interactive terminal asks for one; --edit opens your
editor instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				v, err := common.RequireRepository(ctx)
				if err != nil {
					return err
				}

				msg := strings.TrimSpace(message)
				switch {
				case edit:
					if msg, err = tui.EditCommitMessage(msg); err != nil {
						return err
					}
				case msg == "" && common.Interactive():
					if msg, err = tui.PromptCommitMessage(""); err != nil {
						return err
					}
				}

				if err := ctx.Controller.Commit(cmd.Context(), msg); err != nil {
					return err
				}
				subject, _, _ := strings.Cut(msg, "\n")
				ctx.Splog.Info("[%s] %s", tui.ColorCyan(v.CurrentBranch), subject)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "The commit message")
	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "Write the commit message in your editor")

	return cmd
}
