package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// An all-patients aggregation opens one read-only transaction per worker on
// top of regular request traffic, so the pool keeps a floor of warm
// connections and recycles them on a fixed cadence instead of relying on
// driver defaults.
const (
	connMaxLifetime   = time.Hour
	connMaxIdleTime   = 30 * time.Minute
	healthCheckPeriod = time.Minute
	startupPingWait   = 5 * time.Second
)

// NewPool connects to Postgres and verifies the connection with a bounded
// ping before the server starts accepting traffic.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = connMaxLifetime
	cfg.MaxConnIdleTime = connMaxIdleTime
	cfg.HealthCheckPeriod = healthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, startupPingWait)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
