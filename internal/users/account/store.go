// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"time"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
)

// # Error Codes

const (
	// CodeDuplicateEmail marks a registration against an existing email.
	CodeDuplicateEmail = "DUPLICATE_EMAIL"

	// CodeTokenCollision marks a token that is already bound to another account.
	CodeTokenCollision = "TOKEN_COLLISION"

	// CodeVerificationRevoke marks an attempt to clear email_verified.
	CodeVerificationRevoke = "VERIFICATION_REVOKE_FORBIDDEN"
)

// ErrDuplicateEmail is returned by [Store.Create] when the email is taken.
var ErrDuplicateEmail = apperr.Conflict("Email is already registered").WithCode(CodeDuplicateEmail)

// errTokenCollision is returned when a token is already bound to another account.
var errTokenCollision = apperr.Conflict("Token is already in use").WithCode(CodeTokenCollision)

// ErrVerificationRevoke is returned by [Store.Update] when email_verified
// would be written as false.
var ErrVerificationRevoke = apperr.State(CodeVerificationRevoke, "Email verification cannot be revoked")

// # Account Data Access

// Store defines the durable persistence contract for accounts.
//
// Lookups return an [apperr.AppError] with code NOT_FOUND when nothing matches.
type Store interface {

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - account: *Account (ID and DateJoined already set)

		Returns:
		  - error: ErrDuplicateEmail, a token collision, or storage failures
	*/
	Create(context context.Context, account *Account) error

	// FindByID returns the account with the given surrogate ID.
	FindByID(context context.Context, id string) (*Account, error)

	// FindByEmail returns the account registered under the normalized email.
	FindByEmail(context context.Context, email string) (*Account, error)

	// FindByVerificationToken returns the account holding the verification token.
	FindByVerificationToken(context context.Context, token string) (*Account, error)

	// FindByResetToken returns the account holding the reset token.
	FindByResetToken(context context.Context, token string) (*Account, error)

	/*
		Update persists only the named fields of account.

		Description: Unnamed fields are left untouched in storage so concurrent
		writers of unrelated fields do not clobber each other. An empty field
		list is a no-op. email_verified only moves to true here; naming it
		with a false value fails before anything is written.

		Parameters:
		  - context: context.Context
		  - account: *Account (source of the new values, matched by ID)
		  - fields: ...Field

		Returns:
		  - error: NOT_FOUND, a token collision, VERIFICATION_REVOKE_FORBIDDEN or storage failures
	*/
	Update(context context.Context, account *Account, fields ...Field) error

	/*
		ConsumeVerificationToken atomically marks the holder of token verified
		and clears the token.

		Description: Matches only unverified accounts. Of two concurrent calls
		with the same token exactly one succeeds; the other gets NOT_FOUND.

		Returns:
		  - *Account: the account after the transition
		  - error: NOT_FOUND when no unverified account holds the token
	*/
	ConsumeVerificationToken(context context.Context, token string) (*Account, error)

	/*
		ConsumeResetToken atomically replaces the password hash of the holder of
		token and clears the token, provided the token was issued after
		issuedAfter.

		Returns:
		  - *Account: the account after the transition
		  - error: NOT_FOUND when no account holds a fresh enough token
	*/
	ConsumeResetToken(context context.Context, token, passwordHash string, issuedAfter time.Time) (*Account, error)

	// PurgeExpiredResetTokens clears reset tokens issued at or before cutoff and
	// returns how many were cleared.
	PurgeExpiredResetTokens(context context.Context, cutoff time.Time) (int64, error)
}
