package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Section names a critical section
type Section string

const (
	UserAuth      Section = "userAuthLock"
	GameMutate    Section = "gameMutateLock"
	SessionMutate Section = "sessionMutateLock"
)

var (
	ErrUnknownSection = errors.New("unknown lock section")
	ErrPanicked       = errors.New("locked operation panicked")
)

// Locker serializes operations into independent named sections.
// Waiters on the same section are granted in arrival order.
type Locker struct {
	sections map[Section]*queue
	wait     time.Duration
}

type queue struct {
	mu      sync.Mutex
	held    bool
	waiters []chan struct{}
}

// New creates a Locker with the three application sections.
// A positive wait bounds how long a caller queues for a section.
func New(wait time.Duration) *Locker {
	return &Locker{
		sections: map[Section]*queue{
			UserAuth:      {},
			GameMutate:    {},
			SessionMutate: {},
		},
		wait: wait,
	}
}

// Acquire blocks until the section is held by the caller, or ctx is done.
// The returned release func must be called exactly once.
func (l *Locker) Acquire(ctx context.Context, s Section) (func(), error) {
	q, ok := l.sections[s]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSection, s)
	}
	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	q.mu.Lock()
	if !q.held && len(q.waiters) == 0 {
		q.held = true
		q.mu.Unlock()
		return q.releaseOnce(), nil
	}
	ch := make(chan struct{})
	q.waiters = append(q.waiters, ch)
	q.mu.Unlock()

	select {
	case <-ch:
		return q.releaseOnce(), nil
	case <-ctx.Done():
		q.mu.Lock()
		for i, w := range q.waiters {
			if w == ch {
				q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
				q.mu.Unlock()
				return nil, fmt.Errorf("waiting for %s: %w", s, ctx.Err())
			}
		}
		q.mu.Unlock()
		// Granted while cancelling; hand the section on
		q.release()
		return nil, fmt.Errorf("waiting for %s: %w", s, ctx.Err())
	}
}

func (q *queue) releaseOnce() func() {
	var once sync.Once
	return func() { once.Do(q.release) }
}

func (q *queue) release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.waiters) > 0 {
		next := q.waiters[0]
		q.waiters = q.waiters[1:]
		close(next)
		return
	}
	q.held = false
}

// With runs fn while holding section s. A panic in fn is returned as an
// error wrapping ErrPanicked; the section is released on every path.
func With[T any](ctx context.Context, l *Locker, s Section, fn func(ctx context.Context) (T, error)) (result T, err error) {
	release, err := l.Acquire(ctx, s)
	if err != nil {
		return result, err
	}
	defer release()
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	return fn(ctx)
}
