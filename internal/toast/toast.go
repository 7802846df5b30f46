// Package toast is the ephemeral notification queue. Each toast removes
// itself after its duration.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type is the toast's severity.
type Type string

// Toast types.
const (
	Success Type = "success"
	Error   Type = "error"
	Warning Type = "warning"
	Info    Type = "info"
)

// Default durations.
const (
	DefaultDuration      = 3000 * time.Millisecond
	DefaultErrorDuration = 5000 * time.Millisecond
)

// Toast is one notification.
type Toast struct {
	ID        string
	Type      Type
	Message   string
	Duration  time.Duration
	CreatedAt time.Time
}

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock schedules the auto-dismiss callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Option configures a Queue.
type Option func(*Queue)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(q *Queue) { q.clock = c }
}

// WithLimit caps the queue; the oldest toast is dropped on overflow. Zero
// means unbounded.
func WithLimit(n int) Option {
	return func(q *Queue) { q.limit = n }
}

// Queue holds the visible toasts in insertion order.
type Queue struct {
	clock Clock
	limit int

	mu     sync.Mutex
	toasts []Toast
	timers map[string]Timer
	subs   map[int]func([]Toast)
	nextID int
}

// New returns an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		clock:  realClock{},
		timers: make(map[string]Timer),
		subs:   make(map[int]func([]Toast)),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// ShowSuccess enqueues a success toast and returns its id.
func (q *Queue) ShowSuccess(msg string, duration ...time.Duration) string {
	return q.show(Success, msg, pick(duration, DefaultDuration))
}

// ShowError enqueues an error toast. Errors stay longer by default.
func (q *Queue) ShowError(msg string, duration ...time.Duration) string {
	return q.show(Error, msg, pick(duration, DefaultErrorDuration))
}

// ShowWarning enqueues a warning toast.
func (q *Queue) ShowWarning(msg string, duration ...time.Duration) string {
	return q.show(Warning, msg, pick(duration, DefaultDuration))
}

// ShowInfo enqueues an info toast.
func (q *Queue) ShowInfo(msg string, duration ...time.Duration) string {
	return q.show(Info, msg, pick(duration, DefaultDuration))
}

func pick(duration []time.Duration, def time.Duration) time.Duration {
	if len(duration) > 0 && duration[0] > 0 {
		return duration[0]
	}
	return def
}

func (q *Queue) show(typ Type, msg string, d time.Duration) string {
	t := Toast{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   msg,
		Duration:  d,
		CreatedAt: q.clock.Now(),
	}

	q.mu.Lock()
	q.toasts = append(q.toasts, t)
	if q.limit > 0 && len(q.toasts) > q.limit {
		dropped := q.toasts[0]
		q.toasts = q.toasts[1:]
		if timer, ok := q.timers[dropped.ID]; ok {
			timer.Stop()
			delete(q.timers, dropped.ID)
		}
	}
	q.timers[t.ID] = q.clock.AfterFunc(d, func() { q.Remove(t.ID) })
	snap := q.snapshotLocked()
	fns := q.subscribersLocked()
	q.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
	return t.ID
}

// Remove drops a toast. Removing an unknown id is a no-op.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	idx := -1
	for i, t := range q.toasts {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return
	}
	q.toasts = append(q.toasts[:idx], q.toasts[idx+1:]...)
	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	snap := q.snapshotLocked()
	fns := q.subscribersLocked()
	q.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Clear empties the queue immediately.
func (q *Queue) Clear() {
	q.mu.Lock()
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.toasts = nil
	fns := q.subscribersLocked()
	q.mu.Unlock()

	for _, fn := range fns {
		fn(nil)
	}
}

// Toasts returns the visible toasts, oldest first.
func (q *Queue) Toasts() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

// Len returns the number of visible toasts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.toasts)
}

// Subscribe registers fn for every change to the queue.
func (q *Queue) Subscribe(fn func([]Toast)) func() {
	q.mu.Lock()
	id := q.nextID
	q.nextID++
	q.subs[id] = fn
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.subs, id)
		q.mu.Unlock()
	}
}

func (q *Queue) snapshotLocked() []Toast {
	return append([]Toast(nil), q.toasts...)
}

func (q *Queue) subscribersLocked() []func([]Toast) {
	fns := make([]func([]Toast), 0, len(q.subs))
	for _, fn := range q.subs {
		fns = append(fns, fn)
	}
	return fns
}
