// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/taibuivan/yomira-accounts/internal/notify"
	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-accounts/internal/platform/validate"
	"github.com/taibuivan/yomira-accounts/internal/users/account"
	"github.com/taibuivan/yomira-accounts/pkg/pointer"
)

// # Email Verification

// VerifyOutcome is the result of presenting a verification token.
type VerifyOutcome string

const (
	Verified        VerifyOutcome = "verified"
	AlreadyVerified VerifyOutcome = "already_verified"
)

/*
Verify consumes a verification token.

Description: The token is consumed by a single conditional update, so two
concurrent calls cannot both verify. On a miss a follow-up lookup tells an
already verified holder apart from an unknown token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - VerifyOutcome: Verified or AlreadyVerified
  - error: TOKEN_NOT_FOUND or storage failures
*/
func (service *Service) Verify(context context.Context, token string) (result VerifyOutcome, err error) {
	defer func() {
		label := outcome(err)
		if err == nil {
			label = string(result)
		}
		verifications.WithLabelValues(label).Inc()
	}()

	if token == "" {
		return "", errTokenNotFound()
	}

	verified, err := service.accounts.ConsumeVerificationToken(context, token)
	if err == nil {
		ctxutil.GetLogger(context).Info("account_email_verified", slog.String("account_id", verified.ID))
		return Verified, nil
	}
	if !apperr.HasCode(err, "NOT_FOUND") {
		return "", fmt.Errorf("auth_service_verify_failed: %w", err)
	}

	holder, err := service.accounts.FindByVerificationToken(context, token)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return "", errTokenNotFound()
		}
		return "", fmt.Errorf("auth_service_verify_lookup_failed: %w", err)
	}
	if holder.EmailVerified {
		return AlreadyVerified, nil
	}

	return "", errTokenNotFound()
}

// DeliveryResult reports a synchronous email delivery.
type DeliveryResult struct {
	Status  DeliveryStatus
	Warning *apperr.AppError
}

func deliveryResult(err error) *DeliveryResult {
	if err != nil {
		return &DeliveryResult{Status: DeliveryFailed, Warning: apperr.Notification(err)}
	}
	return &DeliveryResult{Status: DeliverySent}
}

/*
ResendVerification issues a fresh verification token and emails it.

Description: The previous token stops working because the column is
overwritten.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *DeliveryResult: Email delivery status
  - error: UNKNOWN_ACCOUNT, ALREADY_VERIFIED or storage failures
*/
func (service *Service) ResendVerification(context context.Context, email string) (*DeliveryResult, error) {
	acc, err := service.lookupByEmail(context, email)
	if err != nil {
		return nil, err
	}
	if acc.EmailVerified {
		return nil, errAlreadyVerified()
	}

	now := service.now()
	err = service.updateWithToken(context, acc, func(token string) {
		acc.VerificationToken = &token
		acc.VerificationSentAt = &now
	}, account.FieldVerificationToken, account.FieldVerificationSentAt)
	if err != nil {
		return nil, fmt.Errorf("auth_service_resend_verification_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("verification_reissued", slog.String("account_id", acc.ID))

	return deliveryResult(service.sendVerification(context, acc)), nil
}

// # Password Recovery

/*
RequestPasswordReset issues a reset token and emails the reset link.

Description: Unknown and inactive accounts both report UNKNOWN_ACCOUNT. The
HTTP layer masks this so responses do not reveal which emails exist.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *DeliveryResult: Email delivery status
  - error: UNKNOWN_ACCOUNT or storage failures
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (result *DeliveryResult, err error) {
	defer func() { resets.WithLabelValues("request", outcome(err)).Inc() }()

	acc, err := service.lookupByEmail(context, email)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive {
		return nil, errUnknownAccount()
	}

	now := service.now()
	err = service.updateWithToken(context, acc, func(token string) {
		acc.ResetToken = &token
		acc.ResetSentAt = &now
	}, account.FieldResetToken, account.FieldResetSentAt)
	if err != nil {
		return nil, fmt.Errorf("auth_service_reset_request_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("password_reset_requested", slog.String("account_id", acc.ID))

	sendErr := service.notifier.Send(context, notify.Message{
		Template:  notify.TemplatePasswordReset,
		Recipient: acc.Email,
		Payload: map[string]any{
			"Name":      acc.FullName(),
			"ResetURL":  service.link("/reset-password?token=" + url.QueryEscape(pointer.Val(acc.ResetToken))),
			"ExpiresIn": service.settings.ResetTokenTTL.String(),
		},
	})

	return deliveryResult(sendErr), nil
}

// CompleteResetInput carries the token and the replacement password.
type CompleteResetInput struct {
	Token                string
	Password             string
	PasswordConfirmation string
}

/*
CompleteReset replaces the password of the token holder.

Description: The token is looked up first, so an unknown token never causes
a write. Then expiry, policy and confirmation are checked, and the password
is swapped by an atomic consume that also requires the token to be within
its window. Every session of the account is revoked and a confirmation
email is sent in the background.

Parameters:
  - context: context.Context
  - input: CompleteResetInput

Returns:
  - error: TOKEN_NOT_FOUND, TOKEN_EXPIRED, WEAK_PASSWORD, PASSWORD_MISMATCH
    or storage failures
*/
func (service *Service) CompleteReset(context context.Context, input CompleteResetInput) (err error) {
	defer func() { resets.WithLabelValues("complete", outcome(err)).Inc() }()

	if input.Token == "" {
		return errTokenNotFound()
	}

	holder, err := service.accounts.FindByResetToken(context, input.Token)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return errTokenNotFound()
		}
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	now := service.now()
	cutoff := now.Add(-service.settings.ResetTokenTTL)
	if holder.ResetSentAt == nil || !holder.ResetSentAt.After(cutoff) {
		return errTokenExpired()
	}

	if violations := service.policy.Validate(input.Password); len(violations) > 0 {
		return errWeakPassword(violations)
	}
	if input.Password != input.PasswordConfirmation {
		return errPasswordMismatch()
	}

	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	updated, err := service.accounts.ConsumeResetToken(context, input.Token, hashedPassword, cutoff)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return errTokenNotFound()
		}
		return fmt.Errorf("auth_service_reset_consume_failed: %w", err)
	}

	logger := ctxutil.GetLogger(context)
	logger.Info("password_reset_completed", slog.String("account_id", updated.ID))

	if err := service.sessions.RevokeAll(context, updated.ID); err != nil {
		logger.Error("password_reset_session_revocation_failed",
			slog.String("account_id", updated.ID),
			slog.Any("error", err),
		)
	}

	service.notifier.Go(context, notify.Message{
		Template:  notify.TemplateResetConfirmation,
		Recipient: updated.Email,
		Payload: map[string]any{
			"Name":      updated.FullName(),
			"ChangedAt": now.Format(time.RFC1123),
		},
	}, nil)

	return nil
}

/*
PurgeExpiredResetTokens clears reset tokens whose window has lapsed.

Returns:
  - int64: Number of tokens cleared
  - error: Storage failures
*/
func (service *Service) PurgeExpiredResetTokens(context context.Context) (int64, error) {
	cutoff := service.now().Add(-service.settings.ResetTokenTTL)

	purged, err := service.accounts.PurgeExpiredResetTokens(context, cutoff)
	if err != nil {
		return 0, fmt.Errorf("auth_service_purge_reset_tokens_failed: %w", err)
	}

	if purged > 0 {
		ctxutil.GetLogger(context).Info("reset_tokens_purged", slog.Int64("count", purged))
	}

	return purged, nil
}

// lookupByEmail validates and resolves an email, mapping a miss to
// UNKNOWN_ACCOUNT.
func (service *Service) lookupByEmail(context context.Context, email string) (*account.Account, error) {
	email = account.NormalizeEmail(email)

	v := &validate.Validator{}
	v.Required("email", email).Email("email", email)
	if err := v.Err(); err != nil {
		return nil, err
	}

	acc, err := service.accounts.FindByEmail(context, email)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, errUnknownAccount()
		}
		return nil, fmt.Errorf("auth_service_account_lookup_failed: %w", err)
	}
	return acc, nil
}
