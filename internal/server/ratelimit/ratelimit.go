// Package ratelimit throttles clients with per-endpoint token buckets.
package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	capacity   float64
	perSecond  float64
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.perSecond)
	}
	b.lastRefill = now
}

// resetAt is when the bucket is full again.
func (b *bucket) resetAt(now time.Time) time.Time {
	missing := b.capacity - b.tokens
	if missing <= 0 {
		return now
	}
	return now.Add(time.Duration(missing / b.perSecond * float64(time.Second)))
}

// Info describes the outcome of one check.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter tracks one bucket per client, endpoint and method.
type Limiter struct {
	cfg  Config
	now  func() time.Time
	mu   sync.Mutex
	bkts map[string]*bucket
	stop chan struct{}
	once sync.Once
}

// NewLimiter creates a limiter. A nil config allows 1000 requests a minute.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = &Config{Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute}
	}
	l := &Limiter{cfg: *cfg, now: cfg.Now, bkts: make(map[string]*bucket), stop: make(chan struct{})}
	if l.now == nil {
		l.now = time.Now
	}
	if l.cfg.IdleAfter <= 0 {
		l.cfg.IdleAfter = time.Hour
	}
	if l.cfg.Enabled && l.cfg.CleanupInterval > 0 {
		go l.janitor(l.cfg.CleanupInterval)
	}
	return l
}

// Allow consumes a token for client on path/method.
func (l *Limiter) Allow(client, path, method string) (bool, Info) {
	switch {
	case !l.cfg.Enabled, l.cfg.Allow[client]:
		return true, Info{Allowed: true}
	case l.cfg.Deny[client]:
		return false, Info{}
	}

	rule := Match(path, method, l.cfg.Rules)
	if rule == nil {
		rule = &Rule{Limit: l.cfg.DefaultLimit, Window: l.cfg.DefaultWindow}
	}
	if rule.Limit <= 0 || rule.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	key := client + " " + method + " " + path
	if rule.Path != "" {
		key = client + " " + method + " " + rule.Path
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bkts[key]
	if !ok {
		capacity := rule.Burst
		if capacity <= 0 {
			capacity = rule.Limit
		}
		b = &bucket{
			capacity:   float64(capacity),
			perSecond:  float64(rule.Limit) / rule.Window.Seconds(),
			tokens:     float64(capacity),
			lastRefill: now,
		}
		l.bkts[key] = b
	}
	b.lastSeen = now
	b.refill(now)

	info := Info{Limit: rule.Limit}
	if b.tokens >= 1 {
		b.tokens--
		info.Allowed = true
	}
	info.Remaining = int(b.tokens)
	info.ResetTime = b.resetAt(now)
	if !info.Allowed {
		info.RetryAfter = max(0, time.Duration((1-b.tokens)/b.perSecond*float64(time.Second)))
	}
	return info.Allowed, info
}

func (l *Limiter) janitor(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets idle for longer than IdleAfter.
func (l *Limiter) sweep() int {
	cutoff := l.now().Add(-l.cfg.IdleAfter)
	l.mu.Lock()
	defer l.mu.Unlock()
	dropped := 0
	for k, b := range l.bkts {
		if b.lastSeen.Before(cutoff) {
			delete(l.bkts, k)
			dropped++
		}
	}
	return dropped
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
