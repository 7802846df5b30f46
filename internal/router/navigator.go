package router

import (
	"context"
	"sync"
)

// Navigator tracks the current location and tells subscribers when it changes.
type Navigator struct {
	mu       sync.Mutex
	location string
	history  []string
	subs     map[int]func(string)
	nextID   int
}

// NewNavigator starts at start.
func NewNavigator(start string) *Navigator {
	return &Navigator{location: start, subs: make(map[int]func(string))}
}

// Navigate moves to path and notifies subscribers, even when path equals the
// current location.
func (n *Navigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	n.history = append(n.history, n.location)
	n.location = path
	fns := make([]func(string), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(path)
	}
}

// Location returns the current path.
func (n *Navigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// Back returns to the previous location, if any.
func (n *Navigator) Back(ctx context.Context) bool {
	n.mu.Lock()
	if len(n.history) == 0 {
		n.mu.Unlock()
		return false
	}
	prev := n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	n.mu.Unlock()

	n.Navigate(ctx, prev)
	n.mu.Lock()
	n.history = n.history[:len(n.history)-1]
	n.mu.Unlock()
	return true
}

// Subscribe registers fn for location changes.
func (n *Navigator) Subscribe(fn func(path string)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}
