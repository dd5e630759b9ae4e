package maps

import (
	"context"
	"fmt"
	"time"
)

// readiness is a one-shot future for a value that becomes available asynchronously.
// Waiters either get the value, the single initialisation error, or ErrNotReady when
// the bounded wait expires.
type readiness[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func startReadiness[T any](init func() (T, error)) *readiness[T] {
	r := &readiness[T]{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		r.val, r.err = init()
	}()
	return r
}

func (r *readiness[T]) wait(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-r.done:
		if r.err != nil {
			return zero, fmt.Errorf("%w: %v", ErrUnavailable, r.err)
		}
		return r.val, nil
	case <-timer.C:
		return zero, ErrNotReady
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// resolved reports whether initialisation has finished, successfully or not.
func (r *readiness[T]) resolved() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
