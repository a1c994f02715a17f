// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/platform/constants"
	"github.com/taibuivan/yomira-accounts/internal/platform/sec"
)

// # Session Repository

// sessionTokenBytes is the entropy of a session identifier.
const sessionTokenBytes = 32

// sessionRecord is the JSON value stored under a session key.
type sessionRecord struct {
	AccountID  string    `json:"account_id"`
	Persistent bool      `json:"persistent"`
	CreatedAt  time.Time `json:"created_at"`
	IdleTTL    int64     `json:"idle_ttl_seconds,omitempty"`
}

// RedisSessionStore implements [SessionStore] using Redis.
//
// Keys:
//
//	auth:session:<sha256(id)>          -> sessionRecord JSON, with TTL
//	auth:account_sessions:<account_id> -> set of session hashes
type RedisSessionStore struct {
	client   redis.Cmdable
	indexTTL time.Duration
	now      func() time.Time
}

// NewRedisSessionStore creates a Redis-backed [SessionStore]. indexTTL bounds
// the per-account index and should be at least the longest session TTL.
func NewRedisSessionStore(client redis.Cmdable, indexTTL time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, indexTTL: indexTTL, now: time.Now}
}

func sessionKey(hash string) string {
	return constants.RedisPrefixSession + hash
}

func accountSessionsKey(accountID string) string {
	return constants.RedisPrefixAccountSessions + accountID
}

/*
Create stores a new session record and indexes it under the account.

Parameters:
  - context: context.Context
  - accountID: string
  - persistent: bool
  - ttl: time.Duration

Returns:
  - *Session: including the raw opaque ID
  - error: Execution errors
*/
func (repository *RedisSessionStore) Create(context context.Context, accountID string, persistent bool, ttl time.Duration) (*Session, error) {
	id, err := sec.GenerateSecureToken(sessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("redis_session_create_token_failed: %w", err)
	}

	now := repository.now().UTC()
	record := sessionRecord{AccountID: accountID, Persistent: persistent, CreatedAt: now}
	if !persistent {
		record.IdleTTL = int64(ttl / time.Second)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	hash := sec.HashToken(id)
	_, err = repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Set(context, sessionKey(hash), payload, ttl)
		pipe.SAdd(context, accountSessionsKey(accountID), hash)
		pipe.Expire(context, accountSessionsKey(accountID), max(repository.indexTTL, ttl))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis_session_create_failed: %w", err)
	}

	return &Session{
		ID:         id,
		AccountID:  accountID,
		Persistent: persistent,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}, nil
}

/*
Resolve loads the session for id.

Description: Ephemeral sessions slide: a successful resolve resets the idle
deadline. Persistent sessions keep their absolute expiry.

Returns:
  - *Session: Live session
  - error: apperr.NotFound if missing or expired
*/
func (repository *RedisSessionStore) Resolve(context context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, apperr.NotFound("Session")
	}

	key := sessionKey(sec.HashToken(id))
	payload, err := repository.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}

	session := &Session{
		ID:         id,
		AccountID:  record.AccountID,
		Persistent: record.Persistent,
		CreatedAt:  record.CreatedAt,
	}

	if record.Persistent {
		ttl, err := repository.client.TTL(context, key).Result()
		if err != nil {
			return nil, fmt.Errorf("redis_session_ttl_failed: %w", err)
		}
		session.ExpiresAt = repository.now().UTC().Add(ttl)
		return session, nil
	}

	idle := time.Duration(record.IdleTTL) * time.Second
	if err := repository.client.Expire(context, key, idle).Err(); err != nil {
		return nil, fmt.Errorf("redis_session_touch_failed: %w", err)
	}
	session.ExpiresAt = repository.now().UTC().Add(idle)

	return session, nil
}

// Revoke deletes the session with the given opaque ID.
func (repository *RedisSessionStore) Revoke(context context.Context, id string) error {
	if id == "" {
		return nil
	}

	hash := sec.HashToken(id)
	payload, err := repository.client.GetDel(context, sessionKey(hash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis_session_revoke_failed: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err == nil && record.AccountID != "" {
		if err := repository.client.SRem(context, accountSessionsKey(record.AccountID), hash).Err(); err != nil {
			return fmt.Errorf("redis_session_unindex_failed: %w", err)
		}
	}

	return nil
}

// RevokeAll deletes every indexed session of accountID.
func (repository *RedisSessionStore) RevokeAll(context context.Context, accountID string) error {
	indexKey := accountSessionsKey(accountID)

	hashes, err := repository.client.SMembers(context, indexKey).Result()
	if err != nil {
		return fmt.Errorf("redis_session_list_failed: %w", err)
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, hash := range hashes {
		keys = append(keys, sessionKey(hash))
	}
	keys = append(keys, indexKey)

	if err := repository.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("redis_session_revoke_all_failed: %w", err)
	}

	return nil
}

// # Login Throttle Repository

// RedisLoginThrottle implements [LoginThrottle] with a fixed-window counter.
//
// The window opens on the first failure and is not extended by later ones,
// so a locked email is released exactly window after its first failure.
type RedisLoginThrottle struct {
	client    redis.Cmdable
	threshold int64
	window    time.Duration
}

// NewRedisLoginThrottle locks an email after threshold failures within window.
func NewRedisLoginThrottle(client redis.Cmdable, threshold int, window time.Duration) *RedisLoginThrottle {
	return &RedisLoginThrottle{client: client, threshold: int64(threshold), window: window}
}

// failureKey hashes the email so addresses never appear in key names.
func failureKey(email string) string {
	return constants.RedisPrefixLoginFailures + sec.HashToken(email)
}

// Locked reports whether email reached the threshold in the current window.
func (throttle *RedisLoginThrottle) Locked(context context.Context, email string) (bool, time.Duration, error) {
	if throttle.threshold <= 0 {
		return false, 0, nil
	}

	key := failureKey(email)

	count, err := throttle.client.Get(context, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("redis_login_throttle_get_failed: %w", err)
	}

	if count < throttle.threshold {
		return false, 0, nil
	}

	ttl, err := throttle.client.TTL(context, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis_login_throttle_ttl_failed: %w", err)
	}
	if ttl < 0 {
		ttl = throttle.window
	}

	return true, ttl, nil
}

// RecordFailure increments the failure counter, opening the window on the first.
func (throttle *RedisLoginThrottle) RecordFailure(context context.Context, email string) error {
	key := failureKey(email)

	_, err := throttle.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Incr(context, key)
		pipe.ExpireNX(context, key, throttle.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_login_throttle_incr_failed: %w", err)
	}

	return nil
}

// Clear drops the failure counter.
func (throttle *RedisLoginThrottle) Clear(context context.Context, email string) error {
	if err := throttle.client.Del(context, failureKey(email)).Err(); err != nil {
		return fmt.Errorf("redis_login_throttle_clear_failed: %w", err)
	}
	return nil
}
