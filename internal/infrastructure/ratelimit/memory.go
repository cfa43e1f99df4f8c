// Package ratelimit implements fixed-window request counting.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
)

type window struct {
	start time.Time
	count int
}

// MemoryStore counts hits per key in fixed windows. A denied hit does not
// count against the window, so count never exceeds max.
type MemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*window
	size      time.Duration
	max       int
	now       func() time.Time
	lastSweep time.Time
}

type Option func(*MemoryStore)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(size time.Duration, max int, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string]*window),
		size:    size,
		max:     max,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Hit(_ context.Context, key string) (domain.RateLimitDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	w, ok := s.windows[key]
	if !ok || !now.Before(w.start.Add(s.size)) {
		w = &window{start: now}
		s.windows[key] = w
	}

	resetAt := w.start.Add(s.size)
	if w.count >= s.max {
		return domain.RateLimitDecision{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	w.count++
	return domain.RateLimitDecision{
		Allowed:   true,
		Remaining: s.max - w.count,
		ResetAt:   resetAt,
	}, nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = make(map[string]*window)
	return nil
}

// sweepLocked drops expired windows at most once per window length.
func (s *MemoryStore) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < s.size {
		return
	}
	for key, w := range s.windows {
		if !now.Before(w.start.Add(s.size)) {
			delete(s.windows, key)
		}
	}
	s.lastSweep = now
}
