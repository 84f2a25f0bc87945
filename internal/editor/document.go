package editor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Document is the file behind an editor. Every committed change is applied
// in memory and written back to disk.
type Document struct {
	path string
	mode os.FileMode

	mu   sync.Mutex
	text []rune
}

// Open loads path. A missing file opens as an empty document that is created
// on the first commit.
func Open(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	doc := &Document{path: abs, mode: 0o644}
	data, err := os.ReadFile(abs)
	switch {
	case err == nil:
		doc.text = []rune(string(data))
		if info, statErr := os.Stat(abs); statErr == nil {
			doc.mode = info.Mode().Perm()
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading %s: %w", abs, err)
	}
	return doc, nil
}

// Path returns the absolute file path.
func (d *Document) Path() string {
	return d.path
}

// Text returns the current content.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.text)
}

// Commit applies c and persists the result. On error neither the in-memory
// text nor the file changes.
func (d *Document) Commit(c ContentChange) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := c.apply(d.text)
	if err != nil {
		return err
	}
	if err := writeAtomic(d.path, []byte(string(next)), d.mode); err != nil {
		return err
	}
	d.text = next
	return nil
}

// writeAtomic replaces path through a temporary file in the same directory.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
