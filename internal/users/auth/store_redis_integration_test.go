// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

//go:build integration

package auth_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/platform/redis"
	"github.com/taibuivan/yomira-accounts/internal/users/auth"
)

func startRedis(t *testing.T) *goredis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:8-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	client, err := redis.NewClient(ctx, fmt.Sprintf("redis://%s/0", endpoint), 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedisSessionStore(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	store := auth.NewRedisSessionStore(client, auth.DefaultRememberTTL)

	t.Run("create and resolve", func(t *testing.T) {
		session, err := store.Create(ctx, "acc-1", true, time.Hour)
		require.NoError(t, err)
		assert.Len(t, session.ID, 43)

		resolved, err := store.Resolve(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, "acc-1", resolved.AccountID)
		assert.True(t, resolved.Persistent)
		assert.WithinDuration(t, session.ExpiresAt, resolved.ExpiresAt, 5*time.Second)

		keys, err := client.Keys(ctx, "auth:session:*").Result()
		require.NoError(t, err)
		for _, key := range keys {
			assert.NotContains(t, key, session.ID)
		}
	})

	t.Run("ephemeral sessions slide", func(t *testing.T) {
		session, err := store.Create(ctx, "acc-2", false, 2*time.Second)
		require.NoError(t, err)

		for range 3 {
			time.Sleep(time.Second)
			_, err := store.Resolve(ctx, session.ID)
			require.NoError(t, err)
		}

		time.Sleep(2500 * time.Millisecond)
		_, err = store.Resolve(ctx, session.ID)
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
	})

	t.Run("revoke and revoke all", func(t *testing.T) {
		first, err := store.Create(ctx, "acc-3", false, time.Hour)
		require.NoError(t, err)
		second, err := store.Create(ctx, "acc-3", true, time.Hour)
		require.NoError(t, err)
		other, err := store.Create(ctx, "acc-4", true, time.Hour)
		require.NoError(t, err)

		require.NoError(t, store.Revoke(ctx, first.ID))
		require.NoError(t, store.Revoke(ctx, first.ID))
		_, err = store.Resolve(ctx, first.ID)
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

		require.NoError(t, store.RevokeAll(ctx, "acc-3"))
		_, err = store.Resolve(ctx, second.ID)
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

		_, err = store.Resolve(ctx, other.ID)
		require.NoError(t, err)
	})
}

func TestRedisLoginThrottle(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	throttle := auth.NewRedisLoginThrottle(client, 3, 2*time.Second)

	for range 3 {
		locked, _, err := throttle.Locked(ctx, "mallory@example.com")
		require.NoError(t, err)
		assert.False(t, locked)
		require.NoError(t, throttle.RecordFailure(ctx, "mallory@example.com"))
	}

	locked, retryAfter, err := throttle.Locked(ctx, "mallory@example.com")
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Positive(t, retryAfter)

	other, _, err := throttle.Locked(ctx, "trent@example.com")
	require.NoError(t, err)
	assert.False(t, other)

	time.Sleep(2500 * time.Millisecond)
	locked, _, err = throttle.Locked(ctx, "mallory@example.com")
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, throttle.RecordFailure(ctx, "mallory@example.com"))
	require.NoError(t, throttle.Clear(ctx, "mallory@example.com"))
	keys, err := client.Keys(ctx, "auth:login_failures:*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
