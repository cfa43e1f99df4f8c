package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// hitScript opens a window on the first hit and refuses to count past the
// cap. Returns {allowed, count, ttl_ms}.
var hitScript = goredis.NewScript(`
local count = tonumber(redis.call("GET", KEYS[1]) or "0")
if count >= tonumber(ARGV[1]) then
	return {0, count, redis.call("PTTL", KEYS[1])}
end
count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return {1, count, redis.call("PTTL", KEYS[1])}
`)

// RateLimitStore is a fixed-window counter shared across instances.
type RateLimitStore struct {
	rdb    goredis.UniversalClient
	prefix string
	window time.Duration
	max    int
	now    func() time.Time
}

func NewRateLimitStore(rdb goredis.UniversalClient, prefix string, window time.Duration, maxRequests int) *RateLimitStore {
	return &RateLimitStore{
		rdb:    rdb,
		prefix: prefix + ":ratelimit:",
		window: window,
		max:    maxRequests,
		now:    time.Now,
	}
}

func (s *RateLimitStore) Hit(ctx context.Context, key string) (domain.RateLimitDecision, error) {
	res, err := hitScript.Run(ctx, s.rdb, []string{s.prefix + key}, s.max, s.window.Milliseconds()).Int64Slice()
	if err != nil {
		return domain.RateLimitDecision{}, fmt.Errorf("failed to count request: %w", err)
	}
	if len(res) != 3 {
		return domain.RateLimitDecision{}, fmt.Errorf("unexpected rate limit script reply: %v", res)
	}

	ttl := time.Duration(res[2]) * time.Millisecond
	if ttl < 0 {
		ttl = s.window
	}

	return domain.RateLimitDecision{
		Allowed:   res[0] == 1,
		Remaining: max(s.max-int(res[1]), 0),
		ResetAt:   s.now().Add(ttl),
	}, nil
}

func (s *RateLimitStore) Reset(ctx context.Context) error {
	if err := deleteByPattern(ctx, s.rdb, s.prefix+"*"); err != nil {
		return fmt.Errorf("failed to reset rate limits: %w", err)
	}
	return nil
}
