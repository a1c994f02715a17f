// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/taibuivan/yomira-accounts/internal/notify"
	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-accounts/internal/platform/sec"
	"github.com/taibuivan/yomira-accounts/internal/platform/validate"
	"github.com/taibuivan/yomira-accounts/internal/users/account"
)

// # Authentication Flow

// ClientInfo describes where a login came from. It only feeds the login
// notification.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
	Remember bool
	Client   ClientInfo
}

// LoginResult represents a successfully established session.
type LoginResult struct {
	Account *account.Account
	Session *Session
}

/*
Authenticate validates credentials and establishes a session.

Description: Failures are deliberately distinguishable: an unknown email,
an inactive account and a wrong password each carry their own code. A
success clears the failure counter, stamps last_login and, when the owner
opted in, sends a login notification in the background.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Account and the new session
  - error: UNKNOWN_ACCOUNT, ACCOUNT_INACTIVE, INVALID_CREDENTIALS,
    ACCOUNT_LOCKED or internal failures
*/
func (service *Service) Authenticate(context context.Context, input LoginInput) (result *LoginResult, err error) {
	defer func() { logins.WithLabelValues(outcome(err)).Inc() }()

	email := account.NormalizeEmail(input.Email)

	v := &validate.Validator{}
	v.Required("email", email).Required("password", input.Password)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := service.checkLockout(context, email); err != nil {
		return nil, err
	}

	acc, err := service.accounts.FindByEmail(context, email)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			service.recordFailure(context, email)
			return nil, errUnknownAccount()
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !acc.IsActive {
		return nil, errAccountInactive()
	}

	if !service.hasher.Check(input.Password, acc.PasswordHash) {
		service.recordFailure(context, email)
		return nil, errInvalidCredentials()
	}

	if service.throttle != nil {
		if err := service.throttle.Clear(context, email); err != nil {
			ctxutil.GetLogger(context).Warn("login_throttle_clear_failed", slog.Any("error", err))
		}
	}

	ttl := service.settings.EphemeralTTL
	if input.Remember {
		ttl = service.settings.RememberTTL
	}

	session, err := service.sessions.Create(context, acc.ID, input.Remember, ttl)
	if err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	now := service.now()
	acc.LastLoginAt = &now
	if err := service.accounts.Update(context, acc, account.FieldLastLoginAt); err != nil {
		// A failed login must not leave a live session behind.
		if revokeErr := service.sessions.Revoke(context, session.ID); revokeErr != nil {
			ctxutil.GetLogger(context).Error("session_revoke_failed",
				slog.String("account_id", acc.ID),
				slog.Any("error", revokeErr),
			)
		}
		return nil, fmt.Errorf("auth_service_last_login_update_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("account_logged_in",
		slog.String("account_id", acc.ID),
		slog.Bool("persistent", input.Remember),
	)

	if acc.NotifyOnLogin {
		service.notifyLogin(context, acc.Clone(), input.Client, now)
	}

	return &LoginResult{Account: acc, Session: session}, nil
}

// checkLockout rejects emails that exceeded the failure threshold.
func (service *Service) checkLockout(context context.Context, email string) error {
	if service.throttle == nil {
		return nil
	}

	locked, retryAfter, err := service.throttle.Locked(context, email)
	if err != nil {
		// Fails open when Redis is unreachable.
		ctxutil.GetLogger(context).Warn("login_throttle_check_failed", slog.Any("error", err))
		return nil
	}
	if locked {
		return errAccountLocked(int(math.Ceil(retryAfter.Seconds())))
	}
	return nil
}

func (service *Service) recordFailure(context context.Context, email string) {
	if service.throttle == nil {
		return
	}
	if err := service.throttle.RecordFailure(context, email); err != nil {
		ctxutil.GetLogger(context).Warn("login_throttle_record_failed", slog.Any("error", err))
	}
}

// notifyLogin sends the login notification in the background and stamps
// last_login_notification once it is delivered.
func (service *Service) notifyLogin(requestContext context.Context, acc *account.Account, client ClientInfo, loginTime time.Time) {
	userAgent := client.UserAgent
	if userAgent == "" {
		userAgent = "Unknown"
	}

	message := notify.Message{
		Template:  notify.TemplateLoginNotification,
		Recipient: acc.Email,
		Payload: map[string]any{
			"Name":      acc.FullName(),
			"LoginTime": loginTime.Format(time.RFC1123),
			"IPAddress": client.IP,
			"UserAgent": userAgent,
		},
	}

	// The callback receives a context detached from the request.
	service.notifier.Go(requestContext, message, func(context context.Context, err error) {
		if err != nil {
			return
		}

		now := service.now()
		acc.LastLoginNotificationAt = &now
		if err := service.accounts.Update(context, acc, account.FieldLastLoginNotificationAt); err != nil {
			ctxutil.GetLogger(context).Error("login_notification_stamp_failed",
				slog.String("account_id", acc.ID),
				slog.Any("error", err),
			)
		}
	})
}

// # Session Management

/*
Logout revokes the session. Unknown sessions are ignored so logout is
idempotent.
*/
func (service *Service) Logout(context context.Context, sessionID string) error {
	if err := service.sessions.Revoke(context, sessionID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

/*
CurrentSession resolves an opaque session ID to its principal.

Returns:
  - *sec.Principal: The session owner
  - error: SESSION_INVALID or storage failures
*/
func (service *Service) CurrentSession(context context.Context, sessionID string) (*sec.Principal, error) {
	session, err := service.sessions.Resolve(context, sessionID)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, errSessionInvalid()
		}
		return nil, fmt.Errorf("auth_service_session_resolve_failed: %w", err)
	}

	return &sec.Principal{
		AccountID:  session.AccountID,
		SessionID:  session.ID,
		Persistent: session.Persistent,
	}, nil
}
