package editor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gitpanel.dev/gitpanel/internal/editor"
)

func TestDocumentCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o600))

	doc, err := editor.Open(path)
	require.NoError(t, err)
	require.Equal(t, "hello world", doc.Text())

	tests := []struct {
		name   string
		change editor.ContentChange
		want   string
	}{
		{"insert", editor.ContentChange{Action: editor.ActionInsert, Start: 5, Text: ","}, "hello, world"},
		{"delete", editor.ContentChange{Action: editor.ActionDelete, Start: 0, End: 7}, "world"},
		{"insert multibyte", editor.ContentChange{Action: editor.ActionInsert, Start: 5, Text: " ✓"}, "world ✓"},
		{"delete after multibyte", editor.ContentChange{Action: editor.ActionDelete, Start: 6, End: 7}, "world "},
		{"set text", editor.ContentChange{Action: editor.ActionSetText, Text: "fresh"}, "fresh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, doc.Commit(tt.change))
			require.Equal(t, tt.want, doc.Text())

			onDisk, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(onDisk))
		})
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestDocumentRejectsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))
	doc, err := editor.Open(path)
	require.NoError(t, err)

	bad := []editor.ContentChange{
		{Action: editor.ActionInsert, Start: 4, Text: "x"},
		{Action: editor.ActionInsert, Start: -1, Text: "x"},
		{Action: editor.ActionDelete, Start: 2, End: 1},
		{Action: editor.ActionDelete, Start: 0, End: 9},
	}
	for _, c := range bad {
		require.ErrorIs(t, doc.Commit(c), editor.ErrRangeOutOfBounds, c.String())
	}
	require.Equal(t, "abc", doc.Text())

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "abc", string(onDisk))
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir", "new.go")
	doc, err := editor.Open(path)
	require.NoError(t, err)
	require.Empty(t, doc.Text())

	require.NoError(t, doc.Commit(editor.ContentChange{Action: editor.ActionInsert, Text: "package main\n"}))
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "package main\n", string(onDisk))
}

func TestBind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))
	doc, err := editor.Open(path)
	require.NoError(t, err)

	var failures []error
	buf := editor.NewBuffer()
	editor.Bind(buf, doc, nil, func(_ editor.ContentChange, err error) {
		failures = append(failures, err)
	})

	require.Equal(t, "package main\n", buf.Text())
	require.Equal(t, "plain", buf.Language().Name())

	require.NoError(t, buf.Edit(editor.ContentChange{Action: editor.ActionInsert, Start: 13, Text: "\nfunc main() {}\n"}))
	require.Equal(t, buf.Text(), doc.Text())

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "package main\n\nfunc main() {}\n", string(onDisk))
	require.Empty(t, failures)

	require.ErrorIs(t, buf.Edit(editor.ContentChange{Action: editor.ActionDelete, Start: 0, End: 999}), editor.ErrRangeOutOfBounds)
}

func TestBindReportsCommitFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	doc, err := editor.Open(path)
	require.NoError(t, err)

	var failed []editor.ContentChange
	buf := editor.NewBuffer()
	buf.SetText("diverged")
	editor.Bind(buf, doc, editor.EmptyLanguage{}, func(c editor.ContentChange, _ error) {
		failed = append(failed, c)
	})

	// The widget and document agree after Bind, so force a mismatch.
	buf.SetText("much longer text than the document")
	require.NoError(t, buf.Edit(editor.ContentChange{Action: editor.ActionDelete, Start: 10, End: 20}))
	require.Len(t, failed, 1)
	require.Empty(t, doc.Text())
}

func TestLanguages(t *testing.T) {
	require.Equal(t, "hi", editor.EmptyLanguage{}.Highlight("hi"))

	require.Nil(t, editor.NewSyntaxLanguage("no-such-language", "", "noop"))

	goLang := editor.NewSyntaxLanguage("go", "", "noop")
	require.NotNil(t, goLang)
	require.Equal(t, "Go", goLang.Name())
	require.Equal(t, "package main\n", goLang.Highlight("package main\n"))

	colored := editor.NewSyntaxLanguage("go", "monokai", "terminal256")
	require.Contains(t, colored.Highlight("package main\n"), "\x1b[")

	require.Equal(t, "Go", editor.ForFile("/x/main.go", "", "noop").Name())
	require.Equal(t, "plain", editor.ForFile("/x/unknown.zzz-ext", "", "noop").Name())
}

func TestBufferRenderUsesLanguage(t *testing.T) {
	buf := editor.NewBuffer()
	buf.SetText("package main\n")
	require.Equal(t, "package main\n", buf.Render())

	buf.SetLanguage(editor.NewSyntaxLanguage("go", "", "terminal256"))
	require.Contains(t, buf.Render(), "\x1b[")
	require.Equal(t, "package main\n", buf.Text())
}

func TestSetTextIgnoresRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("old text"), 0o600))
	doc, err := editor.Open(path)
	require.NoError(t, err)

	change := editor.ContentChange{Action: editor.ActionSetText, Start: 50, End: 90, Text: "new"}
	require.Equal(t, "set-text", change.Action.String())
	require.NoError(t, doc.Commit(change))
	require.Equal(t, "new", doc.Text())
}
