package editor

import (
	"bytes"
	"path/filepath"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "monokai"

// Language controls how a Widget renders its text.
type Language interface {
	Name() string
	// Highlight returns text decorated for display. It never changes the
	// characters of text other than by adding escape sequences.
	Highlight(text string) string
}

// EmptyLanguage renders text as is. It is the default language of a Widget.
type EmptyLanguage struct{}

// Name implements Language.
func (EmptyLanguage) Name() string { return "plain" }

// Highlight implements Language.
func (EmptyLanguage) Highlight(text string) string { return text }

// SyntaxLanguage highlights text with a chroma lexer.
type SyntaxLanguage struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

// NewSyntaxLanguage returns the language registered under name, such as
// "go" or "kotlin". formatter names a chroma formatter ("terminal256",
// "terminal16m", "noop"...). It returns nil when chroma knows no lexer by
// that name.
func NewSyntaxLanguage(name, style, formatter string) *SyntaxLanguage {
	lexer := lexers.Get(name)
	if lexer == nil {
		return nil
	}
	return newSyntaxLanguage(lexer, style, formatter)
}

// ForFile picks a language from the file name. Unknown file types get
// EmptyLanguage.
func ForFile(path, style, formatter string) Language {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return EmptyLanguage{}
	}
	return newSyntaxLanguage(lexer, style, formatter)
}

func newSyntaxLanguage(lexer chroma.Lexer, style, formatter string) *SyntaxLanguage {
	s := styles.Get(style)
	if s == nil {
		s = styles.Get(DefaultStyle)
	}
	if s == nil {
		s = styles.Fallback
	}
	f := formatters.Get(formatter)
	if f == nil {
		f = formatters.Fallback
	}
	return &SyntaxLanguage{lexer: chroma.Coalesce(lexer), style: s, formatter: f}
}

// Name implements Language.
func (l *SyntaxLanguage) Name() string {
	return l.lexer.Config().Name
}

// Highlight implements Language. Text chroma cannot tokenise is returned unchanged.
func (l *SyntaxLanguage) Highlight(text string) string {
	iterator, err := l.lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf bytes.Buffer
	if err := l.formatter.Format(&buf, l.style, iterator); err != nil {
		return text
	}
	return buf.String()
}
