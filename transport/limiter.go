package transport

import (
	"context"
	"sync"
	"time"
)

// limiter bounds concurrent requests. A slot is held from send until the
// response body is closed.
type limiter struct {
	sem     chan struct{}
	maxWait time.Duration

	mu        sync.Mutex
	active    int
	maxActive int
	rejected  int64
}

func newLimiter(maxConcurrent int, maxWait time.Duration) *limiter {
	return &limiter{
		sem:     make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

func (l *limiter) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		l.acquired()
		return nil
	default:
	}

	if l.maxWait <= 0 {
		l.reject()
		return ErrBusy
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.sem <- struct{}{}:
		l.acquired()
		return nil
	case <-timer.C:
		l.reject()
		return ErrBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limiter) acquired() {
	l.mu.Lock()
	l.active++
	if l.active > l.maxActive {
		l.maxActive = l.active
	}
	l.mu.Unlock()
}

func (l *limiter) reject() {
	l.mu.Lock()
	l.rejected++
	l.mu.Unlock()
}

func (l *limiter) release() {
	select {
	case <-l.sem:
		l.mu.Lock()
		l.active--
		l.mu.Unlock()
	default:
	}
}

// Stats is a snapshot of the HTTP transport's request slots.
type Stats struct {
	Active        int
	MaxActive     int
	MaxConcurrent int
	Rejected      int64
}

func (l *limiter) stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Stats{
		Active:        l.active,
		MaxActive:     l.maxActive,
		MaxConcurrent: cap(l.sem),
		Rejected:      l.rejected,
	}
}
