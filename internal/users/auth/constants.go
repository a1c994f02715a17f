// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// TokenLength is the byte length of verification and reset tokens.
	TokenLength = 32

	// DefaultResetTokenTTL is how long a password reset link stays usable.
	DefaultResetTokenTTL = 24 * time.Hour

	// DefaultRememberTTL is the lifetime of a "remember me" session.
	DefaultRememberTTL = 30 * 24 * time.Hour

	// DefaultEphemeralTTL is the idle lifetime of a browser-session login.
	DefaultEphemeralTTL = 12 * time.Hour

	// tokenIssueAttempts bounds retries on the astronomically unlikely
	// event of a token collision.
	tokenIssueAttempts = 3
)

// # Error Codes

const (
	CodeUnknownAccount     = "UNKNOWN_ACCOUNT"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodePasswordMismatch   = "PASSWORD_MISMATCH"
	CodeTermsNotAccepted   = "TERMS_NOT_ACCEPTED"
	CodeTokenNotFound      = "TOKEN_NOT_FOUND"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeSessionInvalid     = "SESSION_INVALID"
)
