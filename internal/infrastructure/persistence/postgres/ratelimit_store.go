package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
)

// RateLimitStore keeps fixed-window counters in rate_limit_windows. The
// upsert locks the row, so concurrent hits on one key are serialized.
type RateLimitStore struct {
	db          *DB
	window      time.Duration
	maxRequests int
	now         func() time.Time
}

func NewRateLimitStore(db *DB, window time.Duration, maxRequests int) *RateLimitStore {
	return &RateLimitStore{
		db:          db,
		window:      window,
		maxRequests: maxRequests,
		now:         time.Now,
	}
}

func (s *RateLimitStore) Hit(ctx context.Context, key string) (domain.RateLimitDecision, error) {
	query := `
		INSERT INTO rate_limit_windows (key, window_start, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (key) DO UPDATE SET
			window_start = CASE
				WHEN rate_limit_windows.window_start <= $3 THEN EXCLUDED.window_start
				ELSE rate_limit_windows.window_start
			END,
			count = CASE
				WHEN rate_limit_windows.window_start <= $3 THEN 1
				ELSE LEAST(rate_limit_windows.count + 1, $4::int + 1)
			END
		RETURNING window_start, count
	`

	now := s.now()
	var (
		start time.Time
		count int
	)
	err := s.db.Pool.QueryRow(ctx, query, key, now, now.Add(-s.window), s.maxRequests).Scan(&start, &count)
	if err != nil {
		return domain.RateLimitDecision{}, fmt.Errorf("failed to count request: %w", err)
	}

	return domain.RateLimitDecision{
		Allowed:   count <= s.maxRequests,
		Remaining: max(s.maxRequests-count, 0),
		ResetAt:   start.Add(s.window),
	}, nil
}

func (s *RateLimitStore) Reset(ctx context.Context) error {
	if _, err := s.db.Pool.Exec(ctx, `TRUNCATE TABLE rate_limit_windows`); err != nil {
		return fmt.Errorf("failed to reset rate limits: %w", err)
	}
	return nil
}
