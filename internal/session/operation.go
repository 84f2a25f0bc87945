package session

import (
	"fmt"
)

// OpKind names a controller operation.
type OpKind string

// Operation kinds, one per controller method.
const (
	OpStart        OpKind = "start"
	OpInit         OpKind = "init"
	OpOpen         OpKind = "open"
	OpCommit       OpKind = "commit"
	OpCreateBranch OpKind = "create-branch"
	OpMergeBranch  OpKind = "merge-branch"
	OpDeleteBranch OpKind = "delete-branch"
	OpCheckout     OpKind = "checkout"
	OpRefresh      OpKind = "refresh"
	OpDestroy      OpKind = "destroy"
)

// Operation is a request to the controller. Path is used by start, init and
// open; Arg carries a commit message or branch name; Index selects a branch
// for checkout when Arg is empty.
type Operation struct {
	Kind  OpKind
	Path  string
	Arg   string
	Index int
}

func (o Operation) String() string {
	switch o.Kind {
	case OpStart, OpInit, OpOpen:
		return fmt.Sprintf("%s %s", o.Kind, o.Path)
	case OpCommit, OpCreateBranch, OpMergeBranch, OpDeleteBranch:
		return fmt.Sprintf("%s %q", o.Kind, o.Arg)
	case OpCheckout:
		if o.Arg != "" {
			return fmt.Sprintf("%s %q", o.Kind, o.Arg)
		}
		return fmt.Sprintf("%s #%d", o.Kind, o.Index)
	default:
		return string(o.Kind)
	}
}

// argument returns the value recorded for the operation in the journal.
func (o Operation) argument() string {
	switch o.Kind {
	case OpStart, OpInit, OpOpen:
		return o.Path
	case OpCheckout:
		if o.Arg != "" {
			return o.Arg
		}
		return fmt.Sprintf("#%d", o.Index)
	default:
		return o.Arg
	}
}
