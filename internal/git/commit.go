package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// ShortHashLength is the number of hex digits shown for a commit in the log
const ShortHashLength = 7

// Commit stages every change in the worktree and records a commit by author
func (r *Repository) Commit(_ context.Context, author Author, message string) error {
	if err := r.checkAlive(); err != nil {
		return err
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}

	_, err = wt.Commit(message, &gogit.CommitOptions{
		Author:            r.signature(author),
		AllowEmptyCommits: r.opts.AllowEmptyCommits,
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Log renders the history reachable from HEAD, newest first, one commit per line:
//
//	<short hash> <subject> (<author name>)
//
// A repository without commits has an empty log.
func (r *Repository) Log(_ context.Context) (string, error) {
	if err := r.checkAlive(); err != nil {
		return "", err
	}

	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	iter, err := r.repo.Log(&gogit.LogOptions{From: head.Hash()})
	if err != nil {
		return "", fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	var lines []string
	err = iter.ForEach(func(c *object.Commit) error {
		if r.opts.LogLimit > 0 && len(lines) >= r.opts.LogLimit {
			return storer.ErrStop
		}
		lines = append(lines, FormatLogLine(c.Hash.String(), c.Message, c.Author.Name))
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return "", fmt.Errorf("failed to iterate log: %w", err)
	}

	return strings.Join(lines, "\n"), nil
}

// FormatLogLine renders one log entry. Only the first line of message is used.
func FormatLogLine(hash, message, authorName string) string {
	if len(hash) > ShortHashLength {
		hash = hash[:ShortHashLength]
	}
	subject, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return fmt.Sprintf("%s %s (%s)", hash, subject, authorName)
}
