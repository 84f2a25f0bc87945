package session

import (
	"context"
	"fmt"
	"sync"

	gperrors "gitpanel.dev/gitpanel/internal/errors"
)

// DefaultBacklog is the number of operations that can wait behind the
// in-flight one before Submit blocks.
const DefaultBacklog = 16

// Result reports the outcome of a dispatched Operation together with the View
// published right after it.
type Result struct {
	Op   Operation
	View View
	Err  error
}

type job struct {
	ctx   context.Context
	op    Operation
	reply chan Result
}

// Dispatcher runs Operations off the caller's goroutine, one at a time and in
// submission order.
type Dispatcher struct {
	ctrl *Controller
	jobs chan job
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewDispatcher starts a worker that applies submitted operations to ctrl.
func NewDispatcher(ctrl *Controller, backlog int) *Dispatcher {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	d := &Dispatcher{
		ctrl: ctrl,
		jobs: make(chan job, backlog),
		done: make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for j := range d.jobs {
		err := d.ctrl.Apply(j.ctx, j.op)
		j.reply <- Result{Op: j.op, View: d.ctrl.View(), Err: err}
	}
}

// Submit queues op. The returned channel receives exactly one Result.
// After Close, the Result carries ErrSessionDestroyed.
func (d *Dispatcher) Submit(ctx context.Context, op Operation) <-chan Result {
	reply := make(chan Result, 1)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		reply <- Result{
			Op:   op,
			View: d.ctrl.View(),
			Err:  fmt.Errorf("%s: %w", op.Kind, gperrors.ErrSessionDestroyed),
		}
		return reply
	}
	d.jobs <- job{ctx: ctx, op: op, reply: reply}
	return reply
}

// Do submits op and waits for its Result.
func (d *Dispatcher) Do(ctx context.Context, op Operation) Result {
	return <-d.Submit(ctx, op)
}

// Close queues a destroy behind every pending operation, waits for it and
// stops the worker. Calling Close again only waits for the worker.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return nil
	}
	d.closed = true
	reply := make(chan Result, 1)
	d.jobs <- job{ctx: context.WithoutCancel(ctx), op: Operation{Kind: OpDestroy}, reply: reply}
	close(d.jobs)
	d.mu.Unlock()

	res := <-reply
	<-d.done
	return res.Err
}
