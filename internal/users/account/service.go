// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/yomira-accounts/internal/platform/ctxutil"
)

// # Service Layer

// Service serves the authenticated "me" surface: the account dashboard and
// notification preferences.
type Service struct {
	store Store
}

// NewService constructs a new [Service] over store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

/*
Profile retrieves the full private view of an account.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Account: The stored account
  - error: Not found or execution failures
*/
func (service *Service) Profile(context context.Context, accountID string) (*Account, error) {
	account, err := service.store.FindByID(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_profile_failed: %w", err)
	}
	return account, nil
}

// PreferencesInput carries the optional toggles of a preferences update.
// A nil field is left unchanged.
type PreferencesInput struct {
	NotifyOnLogin *bool
	Newsletter    *bool
}

/*
UpdatePreferences applies the provided toggles through a partial update.

Description: Only the toggled columns are written, so a concurrent login that
stamps last_login is never overwritten by a stale copy.

Parameters:
  - context: context.Context
  - accountID: string
  - input: PreferencesInput

Returns:
  - *Account: The account after the change
  - error: Not found or storage failures
*/
func (service *Service) UpdatePreferences(context context.Context, accountID string, input PreferencesInput) (*Account, error) {
	account, err := service.store.FindByID(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_preferences_lookup_failed: %w", err)
	}

	var fields []Field
	if input.NotifyOnLogin != nil {
		account.NotifyOnLogin = *input.NotifyOnLogin
		fields = append(fields, FieldNotifyOnLogin)
	}
	if input.Newsletter != nil {
		account.Newsletter = *input.Newsletter
		fields = append(fields, FieldNewsletter)
	}

	if err := service.store.Update(context, account, fields...); err != nil {
		return nil, fmt.Errorf("account_service_preferences_update_failed: %w", err)
	}

	if len(fields) > 0 {
		ctxutil.GetLogger(context).Info("account_preferences_updated",
			slog.String("account_id", accountID),
			slog.Bool("notify_on_login", account.NotifyOnLogin),
			slog.Bool("newsletter", account.Newsletter),
		)
	}

	return account, nil
}
