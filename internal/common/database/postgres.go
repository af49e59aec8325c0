// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"petfood-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// connMaxAge bounds both the lifetime and the idle time of pooled
// connections.
const connMaxAge = 5 * time.Minute

// PostgresClient owns the connection pool shared by every worker that
// reads or writes product rows. Handlers receive the bare *sql.DB; the
// wrapper exists for the manager's lifecycle calls.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens the pool without probing it; the manager's startup
// retry loop does the probing through Ping.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(connMaxAge)
	db.SetConnMaxIdleTime(connMaxAge)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
