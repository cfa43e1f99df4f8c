// Package replay keeps the in-process record of spent transaction signatures.
package replay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
)

type entryState int

const (
	statePending entryState = iota
	stateUsed
)

type entry struct {
	state       entryState
	reservedAt  time.Time
	committedAt time.Time
}

// MemoryStore is a bounded, mutex-guarded replay store. Once the number of
// tracked signatures reaches highWater, committed signatures older than
// minEvictionAge are evicted in batches, oldest first. Pending reservations
// are never evicted.
type MemoryStore struct {
	mu             sync.Mutex
	entries        map[string]*entry
	committed      []string
	highWater      int
	evictBatch     int
	minEvictionAge time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

type Option func(*MemoryStore)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// WithMinEvictionAge protects signatures committed within age from high
// water eviction. Set it to the maximum transaction age: an evicted
// signature older than that is rejected as too old anyway.
func WithMinEvictionAge(age time.Duration) Option {
	return func(s *MemoryStore) { s.minEvictionAge = age }
}

func NewMemoryStore(highWater, evictBatch int, logger *slog.Logger, opts ...Option) *MemoryStore {
	if evictBatch <= 0 {
		evictBatch = 1
	}
	s := &MemoryStore{
		entries:    make(map[string]*entry),
		highWater:  highWater,
		evictBatch: evictBatch,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Reserve(_ context.Context, signature string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[signature]; ok {
		return false, nil
	}
	s.entries[signature] = &entry{state: statePending, reservedAt: s.now()}
	return true, nil
}

func (s *MemoryStore) Commit(_ context.Context, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[signature]
	if !ok || e.state != statePending {
		return domain.NewReservationLostError(signature)
	}
	e.state = stateUsed
	e.committedAt = s.now()
	s.committed = append(s.committed, signature)

	if s.highWater > 0 && len(s.entries) >= s.highWater {
		s.evictLocked()
	}
	return nil
}

// Release drops a pending reservation. Committed signatures stay spent.
func (s *MemoryStore) Release(_ context.Context, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[signature]; ok && e.state == statePending {
		delete(s.entries, signature)
	}
	return nil
}

func (s *MemoryStore) Seen(_ context.Context, signature string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[signature]
	return ok, nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
	s.committed = nil
	return nil
}

// Len reports how many signatures are tracked, pending included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Prune removes committed signatures older than committedBefore and
// reservations abandoned before pendingBefore.
func (s *MemoryStore) Prune(_ context.Context, committedBefore, pendingBefore time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	kept := s.committed[:0]
	for _, sig := range s.committed {
		e, ok := s.entries[sig]
		if !ok {
			continue
		}
		if e.committedAt.Before(committedBefore) {
			delete(s.entries, sig)
			removed++
			continue
		}
		kept = append(kept, sig)
	}
	s.committed = kept

	for sig, e := range s.entries {
		if e.state == statePending && e.reservedAt.Before(pendingBefore) {
			delete(s.entries, sig)
			removed++
		}
	}
	return removed, nil
}

// evictLocked drops up to evictBatch of the oldest committed signatures
// that are older than minEvictionAge. When every committed signature is
// younger than that, the store is undersized for the traffic and the oldest
// batch is evicted anyway, which reopens those signatures to replay.
// Callers must hold s.mu.
func (s *MemoryStore) evictLocked() {
	cutoff := s.now().Add(-s.minEvictionAge)

	n := 0
	for n < s.evictBatch && n < len(s.committed) {
		e, ok := s.entries[s.committed[n]]
		if ok && e.committedAt.After(cutoff) {
			break
		}
		n++
	}

	forced := false
	if n == 0 {
		n = min(s.evictBatch, len(s.committed))
		forced = n > 0
	}

	for _, sig := range s.committed[:n] {
		delete(s.entries, sig)
	}
	s.committed = append([]string(nil), s.committed[n:]...)

	if s.logger == nil || n == 0 {
		return
	}
	if forced {
		s.logger.Error("replay store full of recent signatures, evicting signatures still within max transaction age",
			"evicted", n,
			"remaining", len(s.entries),
			"high_water_mark", s.highWater,
			"min_eviction_age", s.minEvictionAge,
		)
		return
	}
	s.logger.Warn("replay store reached high water mark, evicted oldest signatures",
		"evicted", n,
		"remaining", len(s.entries),
		"high_water_mark", s.highWater,
	)
}
