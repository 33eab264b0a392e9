package queue

import "errors"

// Sentinel errors for queued tasks.
var (
	// ErrTaskPanic wraps the value a task panicked with.
	ErrTaskPanic = errors.New("queue: task panicked")

	// ErrNilTask is the outcome of enqueueing a nil task.
	ErrNilTask = errors.New("queue: task is nil")
)
