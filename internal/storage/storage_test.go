package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestLocal_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, ok, err := store.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyAccessToken, "abc123"))
	v, ok, err := store.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc123", v)
	assert.Equal(t, "abc123", store.Value(ctx, KeyAccessToken))

	require.NoError(t, store.Delete(ctx, KeyAccessToken))
	assert.Equal(t, "", store.Value(ctx, KeyAccessToken))

	// Deleting again is a no-op.
	require.NoError(t, store.Delete(ctx, KeyAccessToken))
}

type brokenBackend struct{ *MemoryBackend }

func (brokenBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}

func TestLocal_ValueWithoutLoggerSwallowsReadErrors(t *testing.T) {
	store := NewLocal(brokenBackend{NewMemoryBackend()}, nil)

	assert.NotPanics(t, func() {
		assert.Equal(t, "", store.Value(context.Background(), KeyAccessToken))
	})
}

func TestLocal_ClearRemovesEverything(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewLocal(backend, nil)

	for _, key := range []string{KeyAccessToken, KeyUsername, KeyEmail, KeyUserID} {
		require.NoError(t, store.Set(ctx, key, "v"))
	}
	assert.Equal(t, 4, backend.Len())

	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, 0, backend.Len())
}

func TestLocal_SubscribeReceivesEvents(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	rec := &recorder{}
	unsubscribe := store.Subscribe(rec.record)

	require.NoError(t, store.Set(ctx, KeyUsername, "alice"))
	require.NoError(t, store.Delete(ctx, KeyUsername))
	require.NoError(t, store.Clear(ctx))

	events := rec.snapshot()
	require.Len(t, events, 3)
	assert.Equal(t, EventSet, events[0].Kind)
	assert.Equal(t, KeyUsername, events[0].Key)
	assert.Equal(t, EventDelete, events[1].Kind)
	assert.Equal(t, EventClear, events[2].Kind)
	for _, ev := range events {
		assert.Equal(t, store.Origin(), ev.Origin)
		assert.False(t, ev.Remote)
	}

	unsubscribe()
	require.NoError(t, store.Set(ctx, KeyUsername, "bob"))
	assert.Len(t, rec.snapshot(), 3)
}

func TestEvent_Affects(t *testing.T) {
	assert.True(t, Event{Kind: EventClear}.Affects(KeyAccessToken))
	assert.True(t, Event{Kind: EventDelete, Key: KeyAccessToken}.Affects(KeyAccessToken))
	assert.False(t, Event{Kind: EventSet, Key: KeyEmail}.Affects(KeyAccessToken))
}

func TestLocal_BroadcastReachesOtherInstances(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shared := NewMemoryBackend()
	hub := NewMemoryBroadcaster()
	first := NewLocal(shared, nil)
	second := NewLocal(shared, nil)
	first.Attach(ctx, hub)
	second.Attach(ctx, hub)
	require.Eventually(t, func() bool { return hub.Listeners() == 2 }, time.Second, 5*time.Millisecond)

	onFirst := &recorder{}
	onSecond := &recorder{}
	first.Subscribe(onFirst.record)
	second.Subscribe(onSecond.record)

	require.NoError(t, first.Clear(ctx))

	firstEvents := onFirst.snapshot()
	require.Len(t, firstEvents, 1, "own broadcast is not delivered twice")
	assert.False(t, firstEvents[0].Remote)

	secondEvents := onSecond.snapshot()
	require.Len(t, secondEvents, 1)
	assert.Equal(t, EventClear, secondEvents[0].Kind)
	assert.True(t, secondEvents[0].Remote)
	assert.Equal(t, first.Origin(), secondEvents[0].Origin)

	require.NoError(t, first.Close())
	require.NoError(t, second.Close())
	assert.Equal(t, 0, hub.Listeners())
}

func TestSQLiteBackend_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "storage.db")

	backend, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	store := NewLocal(backend, nil)
	require.NoError(t, store.Set(ctx, KeyAccessToken, "abc123"))
	require.NoError(t, store.Set(ctx, KeyAccessToken, "def456"))
	require.NoError(t, store.Set(ctx, KeyUsername, "alice"))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	v, ok, err := reopened.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "def456", v)

	require.NoError(t, reopened.Delete(ctx, KeyAccessToken))
	_, ok, err = reopened.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, reopened.Clear(ctx))
	_, ok, err = reopened.Get(ctx, KeyUsername)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisBroadcaster(t *testing.T) {
	redisURL := os.Getenv("TEAMMATCH_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEAMMATCH_TEST_REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pub, err := NewRedisBroadcaster(ctx, redisURL)
	require.NoError(t, err)
	sub, err := NewRedisBroadcaster(ctx, redisURL)
	require.NoError(t, err)

	shared := NewMemoryBackend()
	sender := NewLocal(shared, nil)
	receiver := NewLocal(shared, nil)
	sender.Attach(ctx, pub)
	receiver.Attach(ctx, sub)

	rec := &recorder{}
	receiver.Subscribe(rec.record)

	// Subscription is asynchronous; publish until the receiver sees it.
	require.Eventually(t, func() bool {
		_ = sender.Delete(ctx, KeyAccessToken)
		for _, ev := range rec.snapshot() {
			if ev.Remote && ev.Key == KeyAccessToken {
				return true
			}
		}
		return false
	}, 5*time.Second, 100*time.Millisecond)

	require.NoError(t, sender.Close())
	require.NoError(t, receiver.Close())
}

func TestNewRedisBroadcaster_InvalidURL(t *testing.T) {
	_, err := NewRedisBroadcaster(context.Background(), "not a url")
	assert.Error(t, err)
}
