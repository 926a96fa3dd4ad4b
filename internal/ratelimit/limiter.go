package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count int
	reset time.Time
}

// Limiter is a fixed-window request counter keyed by an opaque
// identifier. State lives in process memory only: under horizontal
// scaling the effective global limit multiplies by instance count, and
// entries are never evicted before the process exits.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	now     func() time.Time
	windows map[string]*window
}

// New returns a Limiter allowing limit requests per key per period.
func New(limit int, period time.Duration) *Limiter {
	return NewWithClock(limit, period, time.Now)
}

// NewWithClock is New with an injectable clock for tests.
func NewWithClock(limit int, period time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		limit:   limit,
		period:  period,
		now:     now,
		windows: make(map[string]*window),
	}
}

// Allow records a request for key and reports whether it fits within
// the current window. A denied request does not mutate state.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.reset) {
		l.windows[key] = &window{count: 1, reset: now.Add(l.period)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining reports how many requests key may still issue in the
// current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok || l.now().After(w.reset) {
		return l.limit
	}
	if r := l.limit - w.count; r > 0 {
		return r
	}
	return 0
}

// ResetAt reports when the current window for key rolls over. The zero
// time means no window is active.
func (l *Limiter) ResetAt(key string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok || l.now().After(w.reset) {
		return time.Time{}
	}
	return w.reset
}

// Limit returns the per-window request ceiling.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the window duration.
func (l *Limiter) Window() time.Duration { return l.period }
