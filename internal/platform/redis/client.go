// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis opens the client that holds expiring account state.

Two things live here: login sessions and the failed-login counters behind the
lockout policy. Nothing durable about an account is ever written to Redis, so
a flushed instance logs everyone out and resets lockouts but loses no data.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
	pingTimeout = 2 * time.Second
)

/*
NewClient parses redisURL, sizes the pool and verifies the server answers.

Parameters:
  - context: stdctx.Context bounding the initial ping
  - redisURL: string (redis:// or rediss://)
  - poolSize: int (values below 1 keep the go-redis default)
  - logger: *slog.Logger

Returns:
  - *redis.Client: Connected client
  - error: Invalid URL or unreachable server
*/
func NewClient(context stdctx.Context, redisURL string, poolSize int, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	if poolSize > 0 {
		options.PoolSize = poolSize
		options.MinIdleConns = max(1, poolSize/5)
		options.MaxIdleConns = max(1, poolSize/2)
	}
	options.DialTimeout = dialTimeout
	options.ReadTimeout = ioTimeout
	options.WriteTimeout = ioTimeout

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping reports whether Redis answers within a short deadline.
func Ping(context stdctx.Context, client redis.Cmdable) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}
