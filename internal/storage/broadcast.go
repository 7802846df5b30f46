package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel used for storage events.
const DefaultChannel = "teammatch:storage"

// Broadcaster fans storage events out to other store instances.
type Broadcaster interface {
	Publish(ctx context.Context, ev Event) error
	// Listen delivers events to fn until ctx is done.
	Listen(ctx context.Context, fn func(Event)) error
	Close() error
}

// RedisBroadcaster relays events over Redis pub/sub.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
}

// NewRedisBroadcaster connects to the Redis server at redisURL
// (redis://[:password@]host:port/db).
func NewRedisBroadcaster(ctx context.Context, redisURL string) (*RedisBroadcaster, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return &RedisBroadcaster{client: client, channel: DefaultChannel}, nil
}

// Publish implements Broadcaster.
func (b *RedisBroadcaster) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return b.client.Publish(ctx, b.channel, data).Err()
}

// Listen implements Broadcaster.
func (b *RedisBroadcaster) Listen(ctx context.Context, fn func(Event)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			fn(ev)
		}
	}
}

// Close implements Broadcaster.
func (b *RedisBroadcaster) Close() error {
	return b.client.Close()
}

// MemoryBroadcaster connects store instances living in one process.
type MemoryBroadcaster struct {
	mu        sync.Mutex
	listeners map[int]func(Event)
	nextID    int
}

// NewMemoryBroadcaster returns an empty hub.
func NewMemoryBroadcaster() *MemoryBroadcaster {
	return &MemoryBroadcaster{listeners: make(map[int]func(Event))}
}

// Publish implements Broadcaster.
func (b *MemoryBroadcaster) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
	return nil
}

// Listen implements Broadcaster.
func (b *MemoryBroadcaster) Listen(ctx context.Context, fn func(Event)) error {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	<-ctx.Done()

	b.mu.Lock()
	delete(b.listeners, id)
	b.mu.Unlock()
	return ctx.Err()
}

// Listeners returns the number of active listeners.
func (b *MemoryBroadcaster) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Close implements Broadcaster.
func (b *MemoryBroadcaster) Close() error {
	return nil
}
