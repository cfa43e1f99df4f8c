package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

const envPrefix = "GATEWAY_"

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Primary         Primary               `koanf:"primary"`
	Server          ServerConfig          `koanf:"server"`
	Database        DatabaseConfig        `koanf:"database"`
	Redis           RedisConfig           `koanf:"redis"`
	Ledger          LedgerConfig          `koanf:"ledger"`
	Retry           RetryConfig           `koanf:"retry"`
	Verification    VerificationConfig    `koanf:"verification"`
	RateLimit       RateLimitConfig       `koanf:"rate_limit"`
	Replay          ReplayConfig          `koanf:"replay"`
	Store           StoreConfig           `koanf:"store"`
	VerificationLog VerificationLogConfig `koanf:"verification_log"`
	Logger          LoggerConfig          `koanf:"logger"`
	Worker          WorkerConfig          `koanf:"worker"`
	Pricing         map[string]string     `koanf:"pricing"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port           string        `koanf:"port" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout    time.Duration `koanf:"idle_timeout" validate:"required"`
	// RequestTimeout bounds a whole request, ledger retries included.
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

type LedgerConfig struct {
	RPCURL     string `koanf:"rpc_url" validate:"required"`
	Commitment string `koanf:"commitment" validate:"required,oneof=processed confirmed finalized"`
}

// RetryConfig is the policy for every ledger RPC call. MaxRetries counts
// retries, so a call makes at most MaxRetries+1 attempts.
type RetryConfig struct {
	MaxRetries     int           `koanf:"max_retries" validate:"min=0"`
	InitialDelay   time.Duration `koanf:"initial_delay" validate:"required"`
	MaxDelay       time.Duration `koanf:"max_delay" validate:"required"`
	AttemptTimeout time.Duration `koanf:"attempt_timeout" validate:"required"`
}

// WorstCase is the longest one ledger call can take when every attempt runs
// to its timeout and every backoff is waited out in full. It saturates at
// the largest Duration instead of overflowing.
func (r RetryConfig) WorstCase() time.Duration {
	total := saturatingAdd(saturatingMul(r.AttemptTimeout, int64(r.MaxRetries)), r.AttemptTimeout)

	delay := r.InitialDelay
	if delay <= 0 || delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	for i := 0; i < r.MaxRetries; i++ {
		if delay >= r.MaxDelay {
			return saturatingAdd(total, saturatingMul(r.MaxDelay, int64(r.MaxRetries-i)))
		}
		total = saturatingAdd(total, delay)
		if delay <= r.MaxDelay/2 {
			delay *= 2
		} else {
			delay = r.MaxDelay
		}
	}
	return total
}

func saturatingAdd(a, b time.Duration) time.Duration {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func saturatingMul(d time.Duration, n int64) time.Duration {
	if d <= 0 || n <= 0 {
		return 0
	}
	if int64(d) > math.MaxInt64/n {
		return math.MaxInt64
	}
	return d * time.Duration(n)
}

type VerificationConfig struct {
	TreasuryAccount   string        `koanf:"treasury_account" validate:"required"`
	MaxTransactionAge time.Duration `koanf:"max_transaction_age" validate:"required"`
	ExposeReasons     bool          `koanf:"expose_reasons"`
}

type RateLimitConfig struct {
	Window      time.Duration `koanf:"window" validate:"required"`
	MaxRequests int           `koanf:"max_requests" validate:"required,min=1"`
}

type ReplayConfig struct {
	HighWaterMark int           `koanf:"high_water_mark" validate:"required,min=1"`
	EvictionBatch int           `koanf:"eviction_batch" validate:"required,min=1"`
	PendingTTL    time.Duration `koanf:"pending_ttl" validate:"required"`
	Retention     time.Duration `koanf:"retention" validate:"required"`
}

type StoreConfig struct {
	Backend string `koanf:"backend" validate:"required,oneof=memory redis postgres"`
}

type VerificationLogConfig struct {
	Enabled bool `koanf:"enabled"`
}

type WorkerConfig struct {
	Interval  time.Duration `koanf:"interval" validate:"required"`
	BatchSize int           `koanf:"batch_size" validate:"required"`
}

// Defaults mirror the production policy: five minute payment freshness,
// ten verifications per payer per minute, three retries with 1s..8s backoff.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env":                      "development",
		"server.port":                      "8080",
		"server.read_timeout":              "15s",
		"server.write_timeout":             "60s",
		"server.idle_timeout":              "60s",
		"server.request_timeout":           "55s",
		"database.port":                    5432,
		"database.ssl_mode":                "disable",
		"database.max_open_conns":          10,
		"database.max_idle_conns":          2,
		"database.conn_max_lifetime":       "1h",
		"database.conn_max_idle_time":      "30m",
		"redis.addr":                       "localhost:6379",
		"redis.db":                         0,
		"redis.key_prefix":                 "paygate",
		"ledger.rpc_url":                   "https://api.mainnet-beta.solana.com",
		"ledger.commitment":                "confirmed",
		"retry.max_retries":                3,
		"retry.initial_delay":              "1s",
		"retry.max_delay":                  "8s",
		"retry.attempt_timeout":            "10s",
		"verification.max_transaction_age": "5m",
		"verification.expose_reasons":      false,
		"rate_limit.window":                "60s",
		"rate_limit.max_requests":          10,
		"replay.high_water_mark":           10000,
		"replay.eviction_batch":            1000,
		"replay.pending_ttl":               "2m",
		"replay.retention":                 "24h",
		"store.backend":                    BackendMemory,
		"verification_log.enabled":         false,
		"logger.level":                     "info",
		"worker.interval":                  "1m",
		"worker.batch_size":                500,
		"pricing.impermanent_loss":         "0.05",
		"pricing.correlation":              "0.02",
		"pricing.holder_concentration":     "0.02",
	}
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		logger.Error("failed to load defaults", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	if err := mainConfig.Validate(); err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

// Validate runs the struct tag rules and the cross-field rules tags cannot
// express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Retry.MaxDelay < c.Retry.InitialDelay {
		return errors.New("retry.max_delay must not be smaller than retry.initial_delay")
	}

	// Pruning a spent signature is only safe once the ledger transaction it
	// names is too old to pass the age check again.
	if c.Replay.Retention <= c.Verification.MaxTransactionAge {
		return fmt.Errorf("replay.retention (%s) must exceed verification.max_transaction_age (%s)",
			c.Replay.Retention, c.Verification.MaxTransactionAge)
	}

	// A reservation has to outlive the request holding it. Otherwise the
	// store hands the signature to a second request while the first is still
	// verifying it.
	if worst := c.Retry.WorstCase(); c.Replay.PendingTTL <= c.Server.RequestTimeout || c.Replay.PendingTTL <= worst {
		return fmt.Errorf("replay.pending_ttl (%s) must exceed server.request_timeout (%s) and the worst-case ledger call time (%s)",
			c.Replay.PendingTTL, c.Server.RequestTimeout, worst)
	}

	if c.Replay.EvictionBatch > c.Replay.HighWaterMark {
		return errors.New("replay.eviction_batch must not exceed replay.high_water_mark")
	}

	if c.NeedsDatabase() {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}

	if _, err := c.Prices(); err != nil {
		return err
	}

	if c.Store.Backend == BackendRedis && c.Redis.Addr == "" {
		return errors.New("redis.addr is required for the redis store backend")
	}

	return nil
}

// NeedsDatabase reports whether any configured component talks to Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.Store.Backend == BackendPostgres || c.VerificationLog.Enabled
}
