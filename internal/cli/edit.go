package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/editor"
)

// newEditCmd creates the edit command
func newEditCmd() *cobra.Command {
	var (
		at       int
		insert   string
		deleteTo int
		setText  string
	)

	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Apply one edit to a file and save it",
		Long: `Apply one edit to a file and save it.

Offsets count characters from the start of the file. Use exactly one of
--insert (at --at), --delete-to (removes [--at, --delete-to)) or --set.
A missing file is created.`,
		Example: `  gitpanel edit notes.txt --at 0 --insert "TODO "
  gitpanel edit notes.txt --at 0 --delete-to 5
  gitpanel edit notes.txt --set "fresh content"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var change editor.ContentChange
			switch {
			case cmd.Flags().Changed("set"):
				change = editor.ContentChange{Action: editor.ActionSetText, Text: setText}
			case cmd.Flags().Changed("insert"):
				change = editor.ContentChange{Action: editor.ActionInsert, Start: at, Text: insert}
			case cmd.Flags().Changed("delete-to"):
				change = editor.ContentChange{Action: editor.ActionDelete, Start: at, End: deleteTo}
			default:
				return fmt.Errorf("one of --insert, --delete-to or --set is required")
			}

			buf, doc, err := openBuffer(cmd, args[0], "")
			if err != nil {
				return err
			}

			var saveErr error
			buf.OnContentChange(func(editor.ContentChange) {
				if doc.Text() != buf.Text() {
					saveErr = fmt.Errorf("%s was not saved", doc.Path())
				}
			})
			if err := buf.Edit(change); err != nil {
				return err
			}
			if saveErr != nil {
				return saveErr
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s).\n", doc.Path(), change)
			return err
		},
	}

	cmd.Flags().IntVar(&at, "at", 0, "Character offset where the edit starts")
	cmd.Flags().StringVar(&insert, "insert", "", "Text to insert at --at")
	cmd.Flags().IntVar(&deleteTo, "delete-to", 0, "End offset (exclusive) of the text to delete")
	cmd.Flags().StringVar(&setText, "set", "", "Replace the whole file with this text")
	cmd.MarkFlagsMutuallyExclusive("insert", "delete-to", "set")

	return cmd
}
