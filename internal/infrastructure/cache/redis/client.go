// Package redis backs the replay and rate-limit stores with Redis so that
// several gateway instances share one view of spent signatures and payer
// windows.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient opens a client and pings it before returning.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("connected to redis", "addr", cfg.Addr, "db", cfg.DB)
	return rdb, nil
}

// deleteByPattern removes every key matching pattern using SCAN, never KEYS.
func deleteByPattern(ctx context.Context, rdb goredis.UniversalClient, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
