// Package query is the shared loading/error/retry state used by every page.
// A query is tied to its page's lifetime: closing it cancels the request in
// flight and discards whatever comes back.
package query

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/teammatch/internal/api"
)

// Status is the lifecycle of a query.
type Status int

// Query statuses.
const (
	Idle Status = iota
	Loading
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("query closed")

// Fetch loads the data. It must honour ctx.
type Fetch[T any] func(ctx context.Context) (T, error)

// State is a snapshot of a query.
type State[T any] struct {
	Status Status
	Data   T
	Err    error
}

// NotFound reports whether the last failure was a 404.
func (s State[T]) NotFound() bool {
	return s.Status == Error && api.IsNotFound(s.Err)
}

// Query runs a Fetch and remembers the outcome.
type Query[T any] struct {
	fetch Fetch[T]
	ctx   context.Context
	stop  context.CancelFunc

	mu       sync.Mutex
	state    State[T]
	gen      uint64
	inflight context.CancelFunc
	closed   bool
}

// New binds fetch to ctx, the owning page's lifetime.
func New[T any](ctx context.Context, fetch Fetch[T]) *Query[T] {
	ctx, stop := context.WithCancel(ctx)
	return &Query[T]{fetch: fetch, ctx: ctx, stop: stop}
}

// Run fetches and records the result. Starting a new run cancels the
// previous one; only the newest run may update the state.
func (q *Query[T]) Run() (T, error) {
	var zero T

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return zero, ErrClosed
	}
	if q.inflight != nil {
		q.inflight()
	}
	q.gen++
	gen := q.gen
	ctx, cancel := context.WithCancel(q.ctx)
	q.inflight = cancel
	q.state.Status = Loading
	q.state.Err = nil
	q.mu.Unlock()

	data, err := q.fetch(ctx)

	q.mu.Lock()
	defer q.mu.Unlock()
	cancel()
	if q.closed || gen != q.gen {
		if err == nil {
			err = context.Canceled
		}
		return zero, err
	}
	q.inflight = nil
	if err != nil {
		q.state = State[T]{Status: Error, Err: err}
		return zero, err
	}
	q.state = State[T]{Status: Success, Data: data}
	return data, nil
}

// Retry is Run again.
func (q *Query[T]) Retry() (T, error) {
	return q.Run()
}

// State returns the current snapshot.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Close cancels the run in flight. Results that arrive later are dropped.
func (q *Query[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.stop()
}
