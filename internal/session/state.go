package session

import (
	"gitpanel.dev/gitpanel/internal/git"
)

// Phase is the lifecycle phase of a session.
type Phase int

const (
	// PhaseNoRepo means no repository is open
	PhaseNoRepo Phase = iota
	// PhaseActive means a repository handle is open
	PhaseActive
	// PhaseDestroyed is terminal; the session can no longer be used
	PhaseDestroyed
)

func (p Phase) String() string {
	switch p {
	case PhaseNoRepo:
		return "no-repo"
	case PhaseActive:
		return "active"
	case PhaseDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// State is a snapshot of what the session last confirmed from the repository.
type State struct {
	Path          string
	Phase         Phase
	Branches      []string
	CurrentBranch string
	Log           string
	Author        git.Author
}

// clone returns a copy that shares no slices with s.
func (s State) clone() State {
	s.Branches = append([]string(nil), s.Branches...)
	return s
}

// IndexOf returns the position of branch in the branch list, or -1.
func (s State) IndexOf(branch string) int {
	for i, b := range s.Branches {
		if b == branch {
			return i
		}
	}
	return -1
}
