package query

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonathan/teammatch/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_SuccessAndError(t *testing.T) {
	calls := 0
	q := New(context.Background(), func(context.Context) ([]string, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("backend down")
		}
		return []string{"a", "b"}, nil
	})
	defer q.Close()

	assert.Equal(t, Idle, q.State().Status)

	_, err := q.Run()
	require.Error(t, err)
	st := q.State()
	assert.Equal(t, Error, st.Status)
	assert.EqualError(t, st.Err, "backend down")
	assert.False(t, st.NotFound())

	data, err := q.Retry()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, data)
	st = q.State()
	assert.Equal(t, Success, st.Status)
	assert.Nil(t, st.Err)
	assert.Equal(t, data, st.Data)
}

func TestQuery_NotFound(t *testing.T) {
	q := New(context.Background(), func(context.Context) (int, error) {
		return 0, fmt.Errorf("loading posting: %w", api.ErrNotFound)
	})
	defer q.Close()

	_, _ = q.Run()
	assert.True(t, q.State().NotFound())
}

func TestQuery_LoadingWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	q := New(context.Background(), func(context.Context) (int, error) {
		close(started)
		<-release
		return 1, nil
	})
	defer q.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = q.Run()
	}()
	<-started
	assert.Equal(t, Loading, q.State().Status)
	close(release)
	<-done
	assert.Equal(t, Success, q.State().Status)
}

func TestQuery_CloseDiscardsStaleResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	q := New(context.Background(), func(ctx context.Context) (string, error) {
		close(started)
		<-release
		// The fetch ignores cancellation and returns data anyway.
		return "stale", nil
	})

	errc := make(chan error, 1)
	go func() {
		_, err := q.Run()
		errc <- err
	}()
	<-started
	q.Close()
	close(release)

	assert.ErrorIs(t, <-errc, context.Canceled)
	st := q.State()
	assert.Equal(t, Loading, st.Status)
	assert.Empty(t, st.Data)

	_, err := q.Run()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestQuery_CloseCancelsContext(t *testing.T) {
	started := make(chan struct{})
	q := New(context.Background(), func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})

	errc := make(chan error, 1)
	go func() {
		_, err := q.Run()
		errc <- err
	}()
	<-started
	q.Close()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("fetch was not cancelled")
	}
}

func TestQuery_NewerRunWins(t *testing.T) {
	firstStarted := make(chan struct{})
	results := make(chan string, 2)
	n := 0
	q := New(context.Background(), func(ctx context.Context) (string, error) {
		n++
		if n == 1 {
			close(firstStarted)
			<-ctx.Done()
			return "first", nil
		}
		return "second", nil
	})
	defer q.Close()

	go func() {
		v, _ := q.Run()
		results <- v
	}()
	<-firstStarted

	v, err := q.Run()
	require.NoError(t, err)
	assert.Equal(t, "second", v)
	assert.Equal(t, "", <-results, "the superseded run reports nothing")
	assert.Equal(t, "second", q.State().Data)
}

func TestQuery_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := New(ctx, func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	})
	defer q.Close()
	cancel()

	_, err := q.Run()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Error, q.State().Status)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "error", Error.String())
}
