package cli

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/editor"
)

// chromaFormatter picks the chroma formatter matching the colour support of w.
func chromaFormatter(w io.Writer) string {
	switch termenv.NewOutput(w).EnvColorProfile() {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal"
	default:
		return "noop"
	}
}

// openBuffer loads path into a headless editor bound to the file.
func openBuffer(cmd *cobra.Command, path, style string) (*editor.Buffer, *editor.Document, error) {
	resolved, err := common.ResolvePath(cmd, path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := editor.Open(resolved)
	if err != nil {
		return nil, nil, err
	}

	if style == "" {
		cfg, err := common.LoadConfig(cmd)
		if err != nil {
			return nil, nil, err
		}
		style = cfg.Editor.Style
	}

	buf := editor.NewBuffer()
	lang := editor.ForFile(doc.Path(), style, chromaFormatter(cmd.OutOrStdout()))
	editor.Bind(buf, doc, lang, func(c editor.ContentChange, err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed to save %s: %v\n", c, err)
	})
	return buf, doc, nil
}

// newShowCmd creates the show command
func newShowCmd() *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print a file with syntax highlighting",
		Long: `Print a file with syntax highlighting picked from its name.

Relative paths are resolved against the repository root. Colours follow the
terminal; piped output is plain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, _, err := openBuffer(cmd, args[0], style)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), buf.Render())
			return err
		},
	}

	cmd.Flags().StringVar(&style, "style", "", "Chroma style (defaults to editor.style)")

	return cmd
}
