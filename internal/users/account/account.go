// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account defines the Account record and its durable store.

An Account is one registrant, identified by a case-normalized email. Besides
the profile and credential it carries two token sub-states (email verification
and password reset) that the auth workflows move through.

# Architecture

  - Entities: [Account], [Field] identifiers for partial updates.
  - Store: [Store] contract with Postgres and in-memory implementations.
  - Service/Handler: the authenticated "me" surface (profile, preferences).

Invariants enforced by every [Store]:

  - email is unique across all accounts.
  - a present verification or reset token is unique across all accounts.
  - consuming a token is a single atomic read-and-clear.
*/
package account

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/yomira-accounts/pkg/pointer"
)

// # Domain Entities

// Account represents a registered member.
type Account struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	PasswordHash  string `json:"-"` // Explicitly omitted from JSON for security.
	EmailVerified bool   `json:"email_verified"`

	// Verification sub-state. The token itself never leaves the server in JSON.
	VerificationToken  *string    `json:"-"`
	VerificationSentAt *time.Time `json:"email_verification_sent_at,omitempty"`

	// Reset sub-state.
	ResetToken  *string    `json:"-"`
	ResetSentAt *time.Time `json:"-"`

	NotifyOnLogin           bool       `json:"notify_on_login"`
	LastLoginNotificationAt *time.Time `json:"last_login_notification,omitempty"`

	IsActive      bool       `json:"is_active"`
	TermsAccepted bool       `json:"terms_accepted"`
	Newsletter    bool       `json:"newsletter_subscription"`
	DateJoined    time.Time  `json:"date_joined"`
	LastLoginAt   *time.Time `json:"last_login,omitempty"`
}

// FullName joins first and last name.
func (account *Account) FullName() string {
	return strings.TrimSpace(account.FirstName + " " + account.LastName)
}

// Clone returns a deep copy. Stores hand out clones so callers never alias
// stored state.
func (account *Account) Clone() *Account {
	if account == nil {
		return nil
	}
	clone := *account
	clone.VerificationToken = pointer.Clone(account.VerificationToken)
	clone.VerificationSentAt = pointer.Clone(account.VerificationSentAt)
	clone.ResetToken = pointer.Clone(account.ResetToken)
	clone.ResetSentAt = pointer.Clone(account.ResetSentAt)
	clone.LastLoginNotificationAt = pointer.Clone(account.LastLoginNotificationAt)
	clone.LastLoginAt = pointer.Clone(account.LastLoginAt)
	return &clone
}

// # Field Identifiers

// Field names a mutable column for [Store.Update].
type Field string

const (
	FieldFirstName               Field = "first_name"
	FieldLastName                Field = "last_name"
	FieldPasswordHash            Field = "password_hash"
	FieldEmailVerified           Field = "email_verified"
	FieldVerificationToken       Field = "email_verification_token"
	FieldVerificationSentAt      Field = "email_verification_sent_at"
	FieldResetToken              Field = "password_reset_token"
	FieldResetSentAt             Field = "password_reset_sent_at"
	FieldNotifyOnLogin           Field = "notify_on_login"
	FieldLastLoginNotificationAt Field = "last_login_notification"
	FieldIsActive                Field = "is_active"
	FieldNewsletter              Field = "newsletter_subscription"
	FieldLastLoginAt             Field = "last_login"
)

// # Normalization

// NormalizeEmail trims and case-folds an address so lookups are
// case-insensitive. A Caser is stateful, so one is built per call.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// NormalizeName trims and converts a name to Unicode NFC.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
