// Package storage is the single owner of the client's durable key/value state
// (the session token and the identity of the signed-in user).
//
// Every read and write goes through Local, which notifies in-process subscribers
// and, when a Broadcaster is attached, other processes sharing the same store.
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/teammatch/internal/logging"
	"go.uber.org/zap"
)

// Well-known keys.
const (
	KeyAccessToken = "accessToken"
	KeyUsername    = "username"
	KeyEmail       = "email"
	KeyUserID      = "userId"
)

// Backend persists string values by key.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// EventKind identifies the mutation behind an Event.
type EventKind string

// Event kinds.
const (
	EventSet    EventKind = "set"
	EventDelete EventKind = "delete"
	EventClear  EventKind = "clear"
)

// Event describes a change to the store. Values are never carried, so tokens
// do not leave the process.
type Event struct {
	Kind   EventKind `json:"kind"`
	Key    string    `json:"key,omitempty"`
	Origin string    `json:"origin"`
	Remote bool      `json:"-"`
}

// Affects reports whether the event changed key.
func (e Event) Affects(key string) bool {
	return e.Kind == EventClear || e.Key == key
}

// Local wraps a Backend with change notification.
type Local struct {
	backend Backend
	origin  string
	logger  *zap.Logger

	mu     sync.Mutex
	subs   map[int]func(Event)
	nextID int

	bc     Broadcaster
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLocal creates a store over backend.
func NewLocal(backend Backend, logger *zap.Logger) *Local {
	logger = logging.OrNop(logger)
	return &Local{
		backend: backend,
		origin:  uuid.NewString(),
		logger:  logger,
		subs:    make(map[int]func(Event)),
	}
}

// NewMemory is a convenience for an in-memory store.
func NewMemory() *Local {
	return NewLocal(NewMemoryBackend(), nil)
}

// Origin identifies this store instance in broadcast events.
func (l *Local) Origin() string {
	return l.origin
}

// Get returns the value stored under key.
func (l *Local) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := l.backend.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("storage get %s: %w", key, err)
	}
	return v, ok, nil
}

// Value returns the value under key, or "" when absent or unreadable.
func (l *Local) Value(ctx context.Context, key string) string {
	v, _, err := l.Get(ctx, key)
	if err != nil {
		l.logger.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return v
}

// Set stores value under key.
func (l *Local) Set(ctx context.Context, key, value string) error {
	if err := l.backend.Set(ctx, key, value); err != nil {
		return fmt.Errorf("storage set %s: %w", key, err)
	}
	l.emit(ctx, Event{Kind: EventSet, Key: key, Origin: l.origin})
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	if err := l.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("storage delete %s: %w", key, err)
	}
	l.emit(ctx, Event{Kind: EventDelete, Key: key, Origin: l.origin})
	return nil
}

// Clear removes every key.
func (l *Local) Clear(ctx context.Context) error {
	if err := l.backend.Clear(ctx); err != nil {
		return fmt.Errorf("storage clear: %w", err)
	}
	l.emit(ctx, Event{Kind: EventClear, Origin: l.origin})
	return nil
}

// Subscribe registers fn for every change, local or remote. The returned
// function unregisters it.
func (l *Local) Subscribe(fn func(Event)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// Attach starts relaying events through bc. Events published by this
// instance are ignored when they come back.
func (l *Local) Attach(ctx context.Context, bc Broadcaster) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	l.mu.Lock()
	l.bc = bc
	l.cancel = cancel
	l.done = done
	l.mu.Unlock()

	go func() {
		defer close(done)
		err := bc.Listen(ctx, func(ev Event) {
			if ev.Origin == l.origin {
				return
			}
			ev.Remote = true
			l.notify(ev)
		})
		if err != nil && ctx.Err() == nil {
			l.logger.Warn("storage broadcast listener stopped", zap.Error(err))
		}
	}()
}

// Close stops the broadcast listener and closes the backend.
func (l *Local) Close() error {
	l.mu.Lock()
	cancel, done, bc := l.cancel, l.done, l.bc
	l.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if bc != nil {
		if err := bc.Close(); err != nil {
			l.logger.Warn("failed to close broadcaster", zap.Error(err))
		}
	}
	return l.backend.Close()
}

func (l *Local) emit(ctx context.Context, ev Event) {
	l.notify(ev)

	l.mu.Lock()
	bc := l.bc
	l.mu.Unlock()
	if bc == nil {
		return
	}
	if err := bc.Publish(context.WithoutCancel(ctx), ev); err != nil {
		l.logger.Warn("failed to broadcast storage event",
			zap.String("kind", string(ev.Kind)), zap.String("key", ev.Key), zap.Error(err))
	}
}

func (l *Local) notify(ev Event) {
	l.mu.Lock()
	fns := make([]func(Event), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
