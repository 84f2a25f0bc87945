package editor

import (
	"errors"
	"fmt"
)

// ErrRangeOutOfBounds is returned when a change addresses text outside the document.
var ErrRangeOutOfBounds = errors.New("change range out of bounds")

// Action is the kind of a ContentChange.
type Action int

const (
	// ActionInsert inserts Text at Start.
	ActionInsert Action = iota
	// ActionDelete removes the runes in [Start, End).
	ActionDelete
	// ActionSetText replaces the whole document with Text.
	ActionSetText
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionDelete:
		return "delete"
	case ActionSetText:
		return "set-text"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ContentChange is one edit reported by a Widget. Offsets count runes from
// the start of the document.
type ContentChange struct {
	Action Action
	Start  int
	End    int
	Text   string
}

func (c ContentChange) String() string {
	switch c.Action {
	case ActionInsert:
		return fmt.Sprintf("Insert(%d, %q)", c.Start, c.Text)
	case ActionDelete:
		return fmt.Sprintf("Delete[%d:%d]", c.Start, c.End)
	default:
		return fmt.Sprintf("SetText(%q)", c.Text)
	}
}

// apply returns text with c applied.
func (c ContentChange) apply(text []rune) ([]rune, error) {
	switch c.Action {
	case ActionInsert:
		if c.Start < 0 || c.Start > len(text) {
			return nil, fmt.Errorf("%w: insert at %d, length %d", ErrRangeOutOfBounds, c.Start, len(text))
		}
		out := make([]rune, 0, len(text)+len(c.Text))
		out = append(out, text[:c.Start]...)
		out = append(out, []rune(c.Text)...)
		return append(out, text[c.Start:]...), nil

	case ActionDelete:
		if c.Start < 0 || c.End < c.Start || c.End > len(text) {
			return nil, fmt.Errorf("%w: delete [%d:%d], length %d", ErrRangeOutOfBounds, c.Start, c.End, len(text))
		}
		out := make([]rune, 0, len(text)-(c.End-c.Start))
		out = append(out, text[:c.Start]...)
		return append(out, text[c.End:]...), nil

	case ActionSetText:
		return []rune(c.Text), nil

	default:
		return nil, fmt.Errorf("unknown change action %v", c.Action)
	}
}
