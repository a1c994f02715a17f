// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Session Data Access

// Session is an established login. ID is the opaque value handed to the
// client; stores persist only its hash.
type Session struct {
	ID         string
	AccountID  string
	Persistent bool
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// SessionStore defines the contract for volatile login sessions.
type SessionStore interface {

	/*
		Create issues a new session for accountID.

		Description: Persistent sessions expire ttl after creation. Ephemeral
		sessions expire after ttl of inactivity; every [SessionStore.Resolve]
		pushes the deadline forward.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - persistent: bool
		  - ttl: time.Duration

		Returns:
		  - *Session: with the opaque ID to hand to the client
		  - error: Storage failures
	*/
	Create(context context.Context, accountID string, persistent bool, ttl time.Duration) (*Session, error)

	// Resolve returns the live session for id, or NOT_FOUND.
	Resolve(context context.Context, id string) (*Session, error)

	// Revoke deletes one session. Unknown IDs are not an error.
	Revoke(context context.Context, id string) error

	// RevokeAll deletes every session of accountID.
	RevokeAll(context context.Context, accountID string) error
}

// # Login Throttle

// LoginThrottle counts consecutive failed logins per email.
type LoginThrottle interface {

	// Locked reports whether email is locked out and for how much longer.
	Locked(context context.Context, email string) (bool, time.Duration, error)

	// RecordFailure counts one failed attempt for email.
	RecordFailure(context context.Context, email string) error

	// Clear forgets past failures for email.
	Clear(context context.Context, email string) error
}
