// Package queue serializes actions that change server state.
//
// A Queue runs tasks one at a time in the order they were enqueued. A task
// starts only after every earlier task has settled, whether it succeeded,
// failed, or panicked, so one failing action never stalls the ones behind
// it. Each task's outcome is delivered through its own Future:
//
//	f := q.Enqueue(ctx, func(ctx context.Context) (any, error) {
//		return submit(ctx, order)
//	})
//	v, err := f.Wait(ctx)
//
// IsPending reports whether any enqueued task has not yet settled.
package queue
