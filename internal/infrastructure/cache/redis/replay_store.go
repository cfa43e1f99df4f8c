package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	pendingValue = "pending"
	usedValue    = "used"
)

// releaseScript deletes the key only while it still holds a reservation.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// commitScript flips a reservation to used, and fails if the key no longer
// holds one.
var commitScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

// ReplayStore keeps one key per signature. Reservations expire after
// pendingTTL so a crashed instance cannot block a signature forever;
// committed signatures expire after retention, which is always longer than
// the maximum transaction age.
type ReplayStore struct {
	rdb        goredis.UniversalClient
	prefix     string
	pendingTTL time.Duration
	retention  time.Duration
}

func NewReplayStore(rdb goredis.UniversalClient, prefix string, pendingTTL, retention time.Duration) *ReplayStore {
	return &ReplayStore{
		rdb:        rdb,
		prefix:     prefix + ":replay:",
		pendingTTL: pendingTTL,
		retention:  retention,
	}
}

func (s *ReplayStore) key(signature string) string {
	return s.prefix + signature
}

func (s *ReplayStore) Reserve(ctx context.Context, signature string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.key(signature), pendingValue, s.pendingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve signature: %w", err)
	}
	return ok, nil
}

func (s *ReplayStore) Commit(ctx context.Context, signature string) error {
	keys := []string{s.key(signature)}
	n, err := commitScript.Run(ctx, s.rdb, keys, pendingValue, usedValue, s.retention.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to commit signature: %w", err)
	}
	if n == 0 {
		return domain.NewReservationLostError(signature)
	}
	return nil
}

func (s *ReplayStore) Release(ctx context.Context, signature string) error {
	if err := releaseScript.Run(ctx, s.rdb, []string{s.key(signature)}, pendingValue).Err(); err != nil {
		return fmt.Errorf("failed to release signature: %w", err)
	}
	return nil
}

func (s *ReplayStore) Seen(ctx context.Context, signature string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(signature)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check signature: %w", err)
	}
	return n > 0, nil
}

func (s *ReplayStore) Reset(ctx context.Context) error {
	if err := deleteByPattern(ctx, s.rdb, s.prefix+"*"); err != nil {
		return fmt.Errorf("failed to reset replay store: %w", err)
	}
	return nil
}
