package session

import (
	"context"
	"time"
)

// Entry describes one finished controller operation.
type Entry struct {
	ID       string
	Path     string
	Op       OpKind
	Arg      string
	Err      error
	Started  time.Time
	Duration time.Duration
}

// Recorder receives an Entry after every operation. Implementations must not
// block for long; they run while the operation gate is still held.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// NopRecorder discards entries.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, Entry) {}
