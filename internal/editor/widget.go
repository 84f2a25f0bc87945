// Package editor defines the contract between gitpanel and a text editor
// widget: the widget shows a Document through a Language and reports every
// edit as a ContentChange, which Bind commits back to the file.
package editor

import (
	"sync"
)

// Widget is a text editing surface.
type Widget interface {
	SetText(text string)
	SetLanguage(lang Language)
	// OnContentChange registers fn to be called for every user edit.
	OnContentChange(fn func(ContentChange))
}

// Bind shows doc in w using lang, or EmptyLanguage when lang is nil, and
// commits every change w reports to doc. Failed commits go to onErr.
func Bind(w Widget, doc *Document, lang Language, onErr func(ContentChange, error)) {
	if lang == nil {
		lang = EmptyLanguage{}
	}
	w.SetText(doc.Text())
	w.SetLanguage(lang)
	w.OnContentChange(func(c ContentChange) {
		if err := doc.Commit(c); err != nil && onErr != nil {
			onErr(c, err)
		}
	})
}

// Buffer is a headless Widget. Edit feeds changes through it the way a
// keyboard would feed an on-screen editor.
type Buffer struct {
	mu        sync.Mutex
	text      []rune
	lang      Language
	listeners []func(ContentChange)
}

// NewBuffer returns an empty Buffer using EmptyLanguage.
func NewBuffer() *Buffer {
	return &Buffer{lang: EmptyLanguage{}}
}

// SetText implements Widget.
func (b *Buffer) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = []rune(text)
}

// SetLanguage implements Widget.
func (b *Buffer) SetLanguage(lang Language) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if lang == nil {
		lang = EmptyLanguage{}
	}
	b.lang = lang
}

// OnContentChange implements Widget.
func (b *Buffer) OnContentChange(fn func(ContentChange)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Edit applies c to the buffer and notifies listeners.
func (b *Buffer) Edit(c ContentChange) error {
	b.mu.Lock()
	next, err := c.apply(b.text)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	b.text = next
	listeners := append([](func(ContentChange))(nil), b.listeners...)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
	return nil
}

// Text returns the buffer content.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.text)
}

// Language returns the language set on the buffer.
func (b *Buffer) Language() Language {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lang
}

// Render returns the content highlighted by the buffer's language.
func (b *Buffer) Render() string {
	b.mu.Lock()
	text, lang := string(b.text), b.lang
	b.mu.Unlock()
	return lang.Highlight(text)
}

var _ Widget = (*Buffer)(nil)
