package toast

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeClock struct {
	mu      sync.Mutex
	elapsed time.Duration
	timers  []*fakeTimer
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Unix(0, 0).Add(c.elapsed)
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.elapsed + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and fires due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.elapsed += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.elapsed {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

func ids(toasts []Toast) []string {
	out := make([]string, len(toasts))
	for i, t := range toasts {
		out[i] = t.ID
	}
	return out
}

func TestQueue_AutoDismiss(t *testing.T) {
	clock := &fakeClock{}
	q := New(WithClock(clock))

	id := q.ShowSuccess("saved", 3000*time.Millisecond)

	clock.Advance(2999 * time.Millisecond)
	assert.Equal(t, []string{id}, ids(q.Toasts()))

	clock.Advance(2 * time.Millisecond)
	assert.Empty(t, q.Toasts())
}

func TestQueue_DefaultDurations(t *testing.T) {
	tests := []struct {
		name string
		show func(q *Queue) string
		typ  Type
		want time.Duration
	}{
		{"success", func(q *Queue) string { return q.ShowSuccess("ok") }, Success, 3000 * time.Millisecond},
		{"error", func(q *Queue) string { return q.ShowError("bad") }, Error, 5000 * time.Millisecond},
		{"warning", func(q *Queue) string { return q.ShowWarning("hmm") }, Warning, 3000 * time.Millisecond},
		{"info", func(q *Queue) string { return q.ShowInfo("fyi") }, Info, 3000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{}
			q := New(WithClock(clock))
			id := tt.show(q)

			toasts := q.Toasts()
			require.Len(t, toasts, 1)
			assert.Equal(t, id, toasts[0].ID)
			assert.Equal(t, tt.typ, toasts[0].Type)
			assert.Equal(t, tt.want, toasts[0].Duration)

			clock.Advance(tt.want - time.Millisecond)
			assert.Equal(t, 1, q.Len())
			clock.Advance(time.Millisecond)
			assert.Equal(t, 0, q.Len())
		})
	}
}

func TestQueue_FIFOAndUniqueIDs(t *testing.T) {
	q := New(WithClock(&fakeClock{}))
	a := q.ShowInfo("a")
	b := q.ShowError("b")
	c := q.ShowWarning("c")

	assert.Equal(t, []string{a, b, c}, ids(q.Toasts()))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, c)
}

func TestQueue_RemoveIsIdempotent(t *testing.T) {
	clock := &fakeClock{}
	q := New(WithClock(clock))
	a := q.ShowInfo("a")
	b := q.ShowInfo("b")

	q.Remove(a)
	q.Remove(a)
	q.Remove("unknown")
	assert.Equal(t, []string{b}, ids(q.Toasts()))

	// The auto-dismiss of a removed toast does nothing.
	clock.Advance(DefaultDuration)
	assert.Empty(t, q.Toasts())
}

func TestQueue_Clear(t *testing.T) {
	clock := &fakeClock{}
	q := New(WithClock(clock))
	q.ShowInfo("a")
	q.ShowError("b")

	q.Clear()
	assert.Empty(t, q.Toasts())

	q.ShowSuccess("c")
	clock.Advance(DefaultDuration)
	assert.Empty(t, q.Toasts())
}

func TestQueue_Limit(t *testing.T) {
	q := New(WithClock(&fakeClock{}), WithLimit(2))
	q.ShowInfo("a")
	b := q.ShowInfo("b")
	c := q.ShowInfo("c")

	assert.Equal(t, []string{b, c}, ids(q.Toasts()))
}

func TestQueue_Subscribe(t *testing.T) {
	clock := &fakeClock{}
	q := New(WithClock(clock))
	var lens []int
	unsubscribe := q.Subscribe(func(ts []Toast) { lens = append(lens, len(ts)) })

	q.ShowInfo("a")
	q.ShowInfo("b")
	clock.Advance(DefaultDuration)
	unsubscribe()
	q.ShowInfo("c")

	assert.Equal(t, []int{1, 2, 1, 0}, lens)
}

func TestQueue_RealClock(t *testing.T) {
	q := New()
	q.ShowInfo("soon gone", 10*time.Millisecond)
	assert.Equal(t, 1, q.Len())
	assert.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, 5*time.Millisecond)
}
