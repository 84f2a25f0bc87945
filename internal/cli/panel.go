package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/runtime"
	"gitpanel.dev/gitpanel/internal/tui"
)

// newPanelCmd creates the panel command
func newPanelCmd() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:     "panel",
		Aliases: []string{"ui"},
		Short:   "Open the interactive repository panel",
		Long: `Open the interactive repository panel.

The panel lists the branches, shows the log of the current branch and refreshes
itself when branches change on disk.

Keys: j/k move, enter checkout, c commit, n new branch, m merge, d delete,
r refresh, i init (when there is no repository), q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !tui.IsTTY() {
				return fmt.Errorf("the panel needs an interactive terminal")
			}
			return common.Run(cmd, func(ctx *runtime.Context) error {
				opts := tui.PanelOptions{
					Path:  ctx.RepoRoot,
					View:  ctx.Controller.View(),
					Splog: ctx.Splog,
				}
				if !noWatch {
					w, err := ctx.Watch()
					if err != nil {
						ctx.Splog.Warn("not watching for changes: %v", err)
					} else {
						opts.Watcher = w
					}
				}

				d := ctx.NewDispatcher()
				err := tui.RunPanel(cmd.Context(), d, opts)
				if closeErr := d.Close(cmd.Context()); closeErr != nil && err == nil {
					err = closeErr
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not refresh when the repository changes on disk")

	return cmd
}
