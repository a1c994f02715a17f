// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the account lifecycle workflows.

It drives registration, login, email verification and password reset over
the account [account.Store], issuing single-use tokens and server-side
sessions along the way.

Architecture:

  - Service: Orchestrates the workflows (Register, Authenticate, Verify, Reset).
  - Repository: [SessionStore] and [LoginThrottle] contracts backed by Redis.
  - Delivery: Emails go through a [Notifier]; verification and reset mails
    are sent synchronously, login and reset confirmations in the background.

Lifecycle transitions:

  - unverified -> verified, via Verify.
  - active -> locked-out-by-policy, via repeated failed logins.
  - reset pending -> completed, via CompleteReset.

A token is always persisted on the account before any email discloses it.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/yomira-accounts/internal/notify"
	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-accounts/internal/platform/sec"
	"github.com/taibuivan/yomira-accounts/internal/platform/validate"
	"github.com/taibuivan/yomira-accounts/internal/users/account"
	"github.com/taibuivan/yomira-accounts/internal/users/password"
	"github.com/taibuivan/yomira-accounts/pkg/uuid"
)

// # Contracts & Types

// Notifier delivers emails. [notify.Dispatcher] satisfies it.
type Notifier interface {
	// Send delivers synchronously under the notifier's timeout.
	Send(context context.Context, message notify.Message) error
	// Go delivers in the background and reports the outcome to onDone.
	Go(context context.Context, message notify.Message, onDone func(context.Context, error))
}

// Settings are the tunables of the workflows.
type Settings struct {
	// PublicBaseURL prefixes links in emails, e.g. https://accounts.example.com.
	PublicBaseURL string
	ResetTokenTTL time.Duration
	RememberTTL   time.Duration
	EphemeralTTL  time.Duration
}

// Dependencies wires a [Service]. Throttle may be nil to disable lockout.
type Dependencies struct {
	Accounts account.Store
	Sessions SessionStore
	Throttle LoginThrottle
	Notifier Notifier
	Hasher   sec.PasswordHasher
	Policy   *password.Policy
	Settings Settings

	// Now defaults to time.Now.
	Now func() time.Time
}

// Service implements the account lifecycle use cases.
type Service struct {
	accounts account.Store
	sessions SessionStore
	throttle LoginThrottle
	notifier Notifier
	hasher   sec.PasswordHasher
	policy   *password.Policy
	settings Settings
	now      func() time.Time
}

// NewService constructs a new [Service], filling unset settings with defaults.
func NewService(dependencies Dependencies) *Service {
	settings := dependencies.Settings
	if settings.ResetTokenTTL <= 0 {
		settings.ResetTokenTTL = DefaultResetTokenTTL
	}
	if settings.RememberTTL <= 0 {
		settings.RememberTTL = DefaultRememberTTL
	}
	if settings.EphemeralTTL <= 0 {
		settings.EphemeralTTL = DefaultEphemeralTTL
	}
	settings.PublicBaseURL = strings.TrimRight(settings.PublicBaseURL, "/")

	policy := dependencies.Policy
	if policy == nil {
		policy = password.DefaultPolicy()
	}

	hasher := dependencies.Hasher
	if hasher == nil {
		hasher = sec.NewBcryptHasher(0)
	}

	now := dependencies.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		accounts: dependencies.Accounts,
		sessions: dependencies.Sessions,
		throttle: dependencies.Throttle,
		notifier: dependencies.Notifier,
		hasher:   hasher,
		policy:   policy,
		settings: settings,
		now:      func() time.Time { return now().UTC() },
	}
}

// DeliveryStatus reports whether a synchronous email went out.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email                string
	FirstName            string
	LastName             string
	Password             string
	PasswordConfirmation string
	TermsAccepted        bool
	Newsletter           bool
}

// RegistrationResult is the outcome of a successful registration. Warning is
// set when the verification email could not be delivered.
type RegistrationResult struct {
	Account           *account.Account
	VerificationEmail DeliveryStatus
	Warning           *apperr.AppError
}

/*
Register validates, hashes, and persists a brand new account.

Description: Checks run in a fixed order and the first failing stage is
reported: field format, duplicate email, password policy, confirmation,
terms. On success the account is stored with its verification token and the
verification email is sent synchronously. A failed email is surfaced as a
warning and never unwinds the account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *RegistrationResult: Created account and email delivery status
  - error: Validation, DUPLICATE_EMAIL, WEAK_PASSWORD, PASSWORD_MISMATCH,
    TERMS_NOT_ACCEPTED or storage failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (result *RegistrationResult, err error) {
	defer func() { registrations.WithLabelValues(outcome(err)).Inc() }()

	email := account.NormalizeEmail(input.Email)
	firstName := account.NormalizeName(input.FirstName)
	lastName := account.NormalizeName(input.LastName)

	// 1. Presence and format
	v := &validate.Validator{}
	v.Required("email", email).Email("email", email).MaxLen("email", email, 254).
		Required("first_name", firstName).MaxLen("first_name", firstName, 150).
		Required("last_name", lastName).MaxLen("last_name", lastName, 150).
		Required("password", input.Password).
		Required("password_confirmation", input.PasswordConfirmation)
	if err := v.Err(); err != nil {
		return nil, err
	}

	// 2. Duplicate email. The unique index still arbitrates races below.
	if _, err := service.accounts.FindByEmail(context, email); err == nil {
		return nil, account.ErrDuplicateEmail
	} else if !apperr.HasCode(err, "NOT_FOUND") {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	// 3. Policy, 4. confirmation, 5. terms
	if violations := service.policy.Validate(input.Password); len(violations) > 0 {
		return nil, errWeakPassword(violations)
	}
	if input.Password != input.PasswordConfirmation {
		return nil, errPasswordMismatch()
	}
	if !input.TermsAccepted {
		return nil, errTermsNotAccepted()
	}

	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	now := service.now()
	created := &account.Account{
		ID:            uuid.New(),
		Email:         email,
		FirstName:     firstName,
		LastName:      lastName,
		PasswordHash:  hashedPassword,
		IsActive:      true,
		TermsAccepted: true,
		Newsletter:    input.Newsletter,
		DateJoined:    now,
	}

	if err := service.createWithToken(context, created, now); err != nil {
		if apperr.HasCode(err, account.CodeDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	logger := ctxutil.GetLogger(context)
	logger.Info("account_registered", slog.String("account_id", created.ID))

	result = &RegistrationResult{Account: created, VerificationEmail: DeliverySent}
	if err := service.sendVerification(context, created); err != nil {
		result.VerificationEmail = DeliveryFailed
		result.Warning = apperr.Notification(err)
	}

	return result, nil
}

// createWithToken assigns a fresh verification token and persists acc,
// retrying on token collisions.
func (service *Service) createWithToken(context context.Context, acc *account.Account, now time.Time) error {
	var err error
	for range tokenIssueAttempts {
		var token string
		if token, err = sec.GenerateSecureToken(TokenLength); err != nil {
			return err
		}
		acc.VerificationToken = &token
		acc.VerificationSentAt = &now

		if err = service.accounts.Create(context, acc); !apperr.HasCode(err, account.CodeTokenCollision) {
			return err
		}
	}
	return err
}

// updateWithToken assigns a fresh token through assign and persists fields,
// retrying on token collisions.
func (service *Service) updateWithToken(context context.Context, acc *account.Account, assign func(token string), fields ...account.Field) error {
	var err error
	for range tokenIssueAttempts {
		var token string
		if token, err = sec.GenerateSecureToken(TokenLength); err != nil {
			return err
		}
		assign(token)

		if err = service.accounts.Update(context, acc, fields...); !apperr.HasCode(err, account.CodeTokenCollision) {
			return err
		}
	}
	return err
}

// sendVerification emails the verification link of acc synchronously.
func (service *Service) sendVerification(context context.Context, acc *account.Account) error {
	return service.notifier.Send(context, notify.Message{
		Template:  notify.TemplateVerification,
		Recipient: acc.Email,
		Payload: map[string]any{
			"Name":            acc.FullName(),
			"VerificationURL": service.link("/api/v1/auth/verify-email/" + url.PathEscape(*acc.VerificationToken)),
		},
	})
}

// link builds an absolute URL under the public base.
func (service *Service) link(path string) string {
	return service.settings.PublicBaseURL + path
}
