package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Validate checks the connection settings. They are optional as a whole
// because the default deployment keeps all state in memory.
func (c *DatabaseConfig) Validate() error {
	var missing []error
	if c.Host == "" {
		missing = append(missing, errors.New("database.host is required"))
	}
	if c.User == "" {
		missing = append(missing, errors.New("database.user is required"))
	}
	if c.Name == "" {
		missing = append(missing, errors.New("database.name is required"))
	}
	if c.Port == 0 {
		missing = append(missing, errors.New("database.port is required"))
	}
	return errors.Join(missing...)
}

// PgxConfig creates and returns a pgxpool.Config with the database connection settings from the DatabaseConfig.
func (c *DatabaseConfig) PgxConfig(ctx context.Context) (*pgxpool.Config, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = int32(c.MaxOpenConns)
	cfg.MinConns = int32(c.MaxIdleConns)
	cfg.MaxConnLifetime = c.ConnMaxLifetime
	cfg.MaxConnIdleTime = c.ConnMaxIdleTime
	cfg.HealthCheckPeriod = 30 * time.Second

	return cfg, nil
}
