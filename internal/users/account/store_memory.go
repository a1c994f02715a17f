// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/pkg/pointer"
)

// MemoryStore is an in-process [Store] for tests and local tooling.
//
// A single mutex guards every index, so each operation, token consumption
// included, is atomic with respect to the others.
type MemoryStore struct {
	mu           sync.Mutex
	byID         map[string]*Account
	byEmail      map[string]string
	byVerifToken map[string]string
	byResetToken map[string]string
}

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:         make(map[string]*Account),
		byEmail:      make(map[string]string),
		byVerifToken: make(map[string]string),
		byResetToken: make(map[string]string),
	}
}

// Create stores a copy of account.
func (store *MemoryStore) Create(_ context.Context, account *Account) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	email := NormalizeEmail(account.Email)
	if _, taken := store.byEmail[email]; taken {
		return ErrDuplicateEmail
	}
	if _, taken := store.byID[account.ID]; taken {
		return apperr.Conflict("Account already exists")
	}
	if err := store.checkTokens(account); err != nil {
		return err
	}

	stored := account.Clone()
	stored.Email = email
	store.byID[stored.ID] = stored
	store.byEmail[email] = stored.ID
	store.indexTokens(stored)

	return nil
}

// FindByID returns a copy of the account with the given ID.
func (store *MemoryStore) FindByID(_ context.Context, id string) (*Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.lookup(id, true)
}

// FindByEmail returns a copy of the account registered under email.
func (store *MemoryStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	id, ok := store.byEmail[NormalizeEmail(email)]
	return store.lookup(id, ok)
}

// FindByVerificationToken returns a copy of the holder of token.
func (store *MemoryStore) FindByVerificationToken(_ context.Context, token string) (*Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	id, ok := store.byVerifToken[token]
	return store.lookup(id, ok)
}

// FindByResetToken returns a copy of the holder of token.
func (store *MemoryStore) FindByResetToken(_ context.Context, token string) (*Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	id, ok := store.byResetToken[token]
	return store.lookup(id, ok)
}

// Update copies the named fields from account onto the stored record.
func (store *MemoryStore) Update(_ context.Context, account *Account, fields ...Field) error {
	if len(fields) == 0 {
		return nil
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	current, ok := store.byID[account.ID]
	if !ok {
		return apperr.NotFound("Account")
	}

	next := current.Clone()
	for _, field := range fields {
		if err := applyField(next, account, field); err != nil {
			return err
		}
	}

	if err := store.checkTokens(next); err != nil {
		return err
	}

	store.unindexTokens(current)
	store.byID[next.ID] = next
	store.indexTokens(next)

	return nil
}

// ConsumeVerificationToken marks the holder of token verified and clears it.
func (store *MemoryStore) ConsumeVerificationToken(_ context.Context, token string) (*Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	id, ok := store.byVerifToken[token]
	if !ok || store.byID[id].EmailVerified {
		return nil, apperr.NotFound("Verification token")
	}

	account := store.byID[id]
	delete(store.byVerifToken, token)
	account.EmailVerified = true
	account.VerificationToken = nil

	return account.Clone(), nil
}

// ConsumeResetToken replaces the password of the holder of a fresh token.
func (store *MemoryStore) ConsumeResetToken(_ context.Context, token, passwordHash string, issuedAfter time.Time) (*Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	id, ok := store.byResetToken[token]
	if !ok {
		return nil, apperr.NotFound("Reset token")
	}

	account := store.byID[id]
	if account.ResetSentAt == nil || !account.ResetSentAt.After(issuedAfter) {
		return nil, apperr.NotFound("Reset token")
	}

	delete(store.byResetToken, token)
	account.PasswordHash = passwordHash
	account.ResetToken = nil

	return account.Clone(), nil
}

// PurgeExpiredResetTokens clears reset tokens issued at or before cutoff.
func (store *MemoryStore) PurgeExpiredResetTokens(_ context.Context, cutoff time.Time) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var purged int64
	for token, id := range store.byResetToken {
		account := store.byID[id]
		if account.ResetSentAt != nil && account.ResetSentAt.After(cutoff) {
			continue
		}
		delete(store.byResetToken, token)
		account.ResetToken = nil
		purged++
	}

	return purged, nil
}

// # Index Maintenance

func (store *MemoryStore) lookup(id string, ok bool) (*Account, error) {
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	account, ok := store.byID[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	return account.Clone(), nil
}

// checkTokens rejects tokens already held by a different account.
func (store *MemoryStore) checkTokens(account *Account) error {
	if account.VerificationToken != nil {
		if holder, ok := store.byVerifToken[*account.VerificationToken]; ok && holder != account.ID {
			return errTokenCollision
		}
	}
	if account.ResetToken != nil {
		if holder, ok := store.byResetToken[*account.ResetToken]; ok && holder != account.ID {
			return errTokenCollision
		}
	}
	return nil
}

func (store *MemoryStore) indexTokens(account *Account) {
	if account.VerificationToken != nil {
		store.byVerifToken[*account.VerificationToken] = account.ID
	}
	if account.ResetToken != nil {
		store.byResetToken[*account.ResetToken] = account.ID
	}
}

func (store *MemoryStore) unindexTokens(account *Account) {
	if account.VerificationToken != nil {
		delete(store.byVerifToken, *account.VerificationToken)
	}
	if account.ResetToken != nil {
		delete(store.byResetToken, *account.ResetToken)
	}
}

// applyField copies one field from source to target.
func applyField(target, source *Account, field Field) error {
	switch field {
	case FieldFirstName:
		target.FirstName = source.FirstName
	case FieldLastName:
		target.LastName = source.LastName
	case FieldPasswordHash:
		target.PasswordHash = source.PasswordHash
	case FieldEmailVerified:
		if !source.EmailVerified {
			return ErrVerificationRevoke
		}
		target.EmailVerified = true
	case FieldVerificationToken:
		target.VerificationToken = pointer.Clone(source.VerificationToken)
	case FieldVerificationSentAt:
		target.VerificationSentAt = pointer.Clone(source.VerificationSentAt)
	case FieldResetToken:
		target.ResetToken = pointer.Clone(source.ResetToken)
	case FieldResetSentAt:
		target.ResetSentAt = pointer.Clone(source.ResetSentAt)
	case FieldNotifyOnLogin:
		target.NotifyOnLogin = source.NotifyOnLogin
	case FieldLastLoginNotificationAt:
		target.LastLoginNotificationAt = pointer.Clone(source.LastLoginNotificationAt)
	case FieldIsActive:
		target.IsActive = source.IsActive
	case FieldNewsletter:
		target.Newsletter = source.Newsletter
	case FieldLastLoginAt:
		target.LastLoginAt = pointer.Clone(source.LastLoginAt)
	default:
		return fmt.Errorf("memory_account_store_unknown_field: %q", field)
	}
	return nil
}
