package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jonwraymond/sirenstore/observe"
)

// Task is one unit of queued work.
type Task func(ctx context.Context) (any, error)

// Config configures a Queue.
type Config struct {
	// Logger receives task failures.
	// Default: observe.NopLogger()
	Logger observe.Logger
}

// Queue runs tasks in FIFO order, one at a time.
//
// Contract:
// - Concurrency: safe for concurrent use. Tasks enqueued from different
// goroutines run in the order Enqueue acquired the queue.
// - Context: a task whose ctx ends before its turn is not run and settles
// with ctx's error.
// - Errors: task errors and panics settle only that task's Future.
type Queue struct {
	logger observe.Logger

	mu      sync.Mutex
	tail    <-chan struct{}
	pending atomic.Int64
}

// New creates a Queue.
func New(config Config) *Queue {
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	return &Queue{logger: config.Logger}
}

// Enqueue schedules task after every task enqueued before it.
func (q *Queue) Enqueue(ctx context.Context, task Task) *Future {
	f := newFuture(uuid.NewString())
	q.pending.Add(1)

	q.mu.Lock()
	prev := q.tail
	q.tail = f.done
	q.mu.Unlock()

	go q.run(ctx, prev, task, f)
	return f
}

func (q *Queue) run(ctx context.Context, prev <-chan struct{}, task Task, f *Future) {
	if prev != nil {
		<-prev
	}

	var value any
	var err error
	switch {
	case task == nil:
		err = ErrNilTask
	case ctx.Err() != nil:
		err = ctx.Err()
	default:
		value, err = q.call(ctx, task, f.id)
	}

	f.value, f.err = value, err
	q.pending.Add(-1)
	close(f.done)
}

func (q *Queue) call(ctx context.Context, task Task, id string) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
			q.logger.Error(ctx, "queued task panicked",
				observe.Field{Key: "task_id", Value: id},
				observe.Field{Key: "panic", Value: fmt.Sprint(r)},
			)
		}
	}()
	return task(ctx)
}

// IsPending reports whether any enqueued task has not settled.
func (q *Queue) IsPending() bool {
	return q.pending.Load() > 0
}

// Len returns the number of tasks that have not settled, including the
// one running.
func (q *Queue) Len() int {
	return int(q.pending.Load())
}

// Drain waits until every task enqueued before the call has settled.
func (q *Queue) Drain(ctx context.Context) error {
	q.mu.Lock()
	tail := q.tail
	q.mu.Unlock()

	if tail == nil {
		return nil
	}
	select {
	case <-tail:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Future is the outcome of one queued task.
type Future struct {
	id    string
	done  chan struct{}
	value any
	err   error
}

func newFuture(id string) *Future {
	return &Future{id: id, done: make(chan struct{})}
}

// ID identifies the task in logs.
func (f *Future) ID() string { return f.id }

// Done is closed once the task has settled.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the task settles or ctx ends. Ending ctx abandons the
// wait, not the task.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
