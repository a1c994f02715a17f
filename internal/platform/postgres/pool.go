// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres owns the PostgreSQL connection pool behind the account
// store.
//
// # Architecture
//
// The API server and the accountctl CLI both open a pool through [NewPool];
// they differ only in sizing, expressed as [PoolOption]s. Repositories depend
// on the narrow [Querier] contract instead of the pool so they can be
// exercised with pgxmock.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-accounts/internal/platform/constants"
)

// Querier is the subset of [pgxpool.Pool] used by repositories.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pinger is satisfied by [pgxpool.Pool].
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	connectTimeout = 5 * time.Second
	pingTimeout    = 2 * time.Second
)

// # Pool Options

type poolSettings struct {
	maxConns         int32
	minConns         int32
	maxConnLifetime  time.Duration
	maxConnIdleTime  time.Duration
	statementTimeout time.Duration
}

func defaultPoolSettings() poolSettings {
	return poolSettings{
		maxConns:         10,
		minConns:         2,
		maxConnLifetime:  time.Hour,
		maxConnIdleTime:  10 * time.Minute,
		statementTimeout: constants.GlobalRequestTimeout,
	}
}

// PoolOption adjusts the pool before it connects.
type PoolOption func(*poolSettings)

// WithMaxConns caps the pool. The warm minimum is clamped to fit under it.
func WithMaxConns(limit int32) PoolOption {
	return func(settings *poolSettings) {
		if limit < 1 {
			return
		}
		settings.maxConns = limit
		settings.minConns = min(settings.minConns, limit)
	}
}

// WithStatementTimeout sets the per-connection statement_timeout.
// Zero leaves the server default in place.
func WithStatementTimeout(timeout time.Duration) PoolOption {
	return func(settings *poolSettings) {
		settings.statementTimeout = timeout
	}
}

// # Lifecycle

/*
NewPool opens a pgx pool for dsn and verifies it with a ping.

Parameters:
  - ctx: context.Context bounding the initial connection
  - dsn: string (libpq keywords or postgres:// URL)
  - logger: *slog.Logger
  - options: ...PoolOption

Returns:
  - *pgxpool.Pool: Ready to serve queries
  - error: Invalid DSN or unreachable server
*/
func NewPool(ctx context.Context, dsn string, logger *slog.Logger, options ...PoolOption) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	settings := defaultPoolSettings()
	for _, option := range options {
		option(&settings)
	}

	poolConfig.MaxConns = settings.maxConns
	poolConfig.MinConns = settings.minConns
	poolConfig.MaxConnLifetime = settings.maxConnLifetime
	poolConfig.MaxConnIdleTime = settings.maxConnIdleTime
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout
	poolConfig.ConnConfig.RuntimeParams["application_name"] = constants.AppName

	if timeout := settings.statementTimeout; timeout > 0 {
		statement := fmt.Sprintf("SET statement_timeout = %d", timeout.Milliseconds())
		poolConfig.AfterConnect = func(ctx context.Context, connection *pgx.Conn) error {
			_, err := connection.Exec(ctx, statement)
			return err
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.String("host", poolConfig.ConnConfig.Host),
		slog.String("database", poolConfig.ConnConfig.Database),
		slog.Int("max_conns", int(settings.maxConns)),
	)

	return pool, nil
}

// Ping verifies that the database answers within a short deadline.
func Ping(ctx context.Context, pool Pinger) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}

	return nil
}
