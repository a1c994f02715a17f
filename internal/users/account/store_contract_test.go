// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/users/account"
	"github.com/taibuivan/yomira-accounts/pkg/pointer"
	"github.com/taibuivan/yomira-accounts/pkg/uuid"
)

// newAccount builds a valid, unverified account for store tests.
func newAccount(email string) *account.Account {
	return &account.Account{
		ID:                 uuid.New(),
		Email:              email,
		FirstName:          "Alice",
		LastName:           "Liddell",
		PasswordHash:       "$2a$04$hash",
		VerificationToken:  pointer.To("verify-" + email),
		VerificationSentAt: pointer.To(time.Now().UTC().Truncate(time.Microsecond)),
		IsActive:           true,
		TermsAccepted:      true,
		DateJoined:         time.Now().UTC().Truncate(time.Microsecond),
	}
}

// runStoreContract exercises the guarantees every [account.Store] must keep.
func runStoreContract(t *testing.T, newStore func(t *testing.T) account.Store) {
	ctx := context.Background()

	t.Run("create_then_find_by_email_is_case_insensitive", func(t *testing.T) {
		store := newStore(t)
		created := newAccount("Alice@Example.com")
		require.NoError(t, store.Create(ctx, created))

		found, err := store.FindByEmail(ctx, "alice@example.COM")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "alice@example.com", found.Email)
	})

	t.Run("duplicate_email_is_typed_conflict", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Create(ctx, newAccount("bob@example.com")))

		err := store.Create(ctx, newAccount("BOB@example.com"))
		assert.True(t, apperr.HasCode(err, account.CodeDuplicateEmail), "got %v", err)
	})

	t.Run("concurrent_create_has_exactly_one_winner", func(t *testing.T) {
		store := newStore(t)

		var wins, duplicates atomic.Int32
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.Create(ctx, newAccount("race@example.com"))
				switch {
				case err == nil:
					wins.Add(1)
				case apperr.HasCode(err, account.CodeDuplicateEmail):
					duplicates.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
		assert.Equal(t, int32(7), duplicates.Load())
	})

	t.Run("unknown_lookups_are_not_found", func(t *testing.T) {
		store := newStore(t)

		_, err := store.FindByEmail(ctx, "nobody@example.com")
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
		_, err = store.FindByVerificationToken(ctx, "missing")
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
		_, err = store.FindByResetToken(ctx, "missing")
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
		_, err = store.FindByID(ctx, uuid.New())
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
	})

	t.Run("partial_update_touches_only_named_fields", func(t *testing.T) {
		store := newStore(t)
		created := newAccount("carol@example.com")
		require.NoError(t, store.Create(ctx, created))

		stale := created.Clone()
		stale.FirstName = "Changed"
		stale.NotifyOnLogin = true
		require.NoError(t, store.Update(ctx, stale, account.FieldNotifyOnLogin))

		found, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, found.NotifyOnLogin)
		assert.Equal(t, "Alice", found.FirstName)
	})

	t.Run("email_verified_cannot_be_cleared", func(t *testing.T) {
		store := newStore(t)
		created := newAccount("erin@example.com")
		require.NoError(t, store.Create(ctx, created))
		verified, err := store.ConsumeVerificationToken(ctx, *created.VerificationToken)
		require.NoError(t, err)

		verified.EmailVerified = false
		verified.Newsletter = true
		err = store.Update(ctx, verified, account.FieldNewsletter, account.FieldEmailVerified)
		assert.True(t, apperr.HasCode(err, account.CodeVerificationRevoke), "got %v", err)

		found, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, found.EmailVerified)
		assert.False(t, found.Newsletter)
	})

	t.Run("update_of_missing_row_is_not_found", func(t *testing.T) {
		store := newStore(t)
		err := store.Update(ctx, newAccount("ghost@example.com"), account.FieldNewsletter)
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
	})

	t.Run("verification_token_consumed_once", func(t *testing.T) {
		store := newStore(t)
		created := newAccount("dave@example.com")
		require.NoError(t, store.Create(ctx, created))
		token := *created.VerificationToken

		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 6 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := store.ConsumeVerificationToken(ctx, token); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())

		found, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, found.EmailVerified)
		assert.Nil(t, found.VerificationToken)

		_, err = store.FindByVerificationToken(ctx, token)
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
	})

	t.Run("reset_token_respects_issue_window", func(t *testing.T) {
		store := newStore(t)
		created := newAccount("erin@example.com")
		require.NoError(t, store.Create(ctx, created))

		issued := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Microsecond)
		created.ResetToken = pointer.To("reset-erin")
		created.ResetSentAt = &issued
		require.NoError(t, store.Update(ctx, created, account.FieldResetToken, account.FieldResetSentAt))

		_, err := store.ConsumeResetToken(ctx, "reset-erin", "new-hash", issued.Add(time.Minute))
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"), "token issued before the cutoff must not match")

		updated, err := store.ConsumeResetToken(ctx, "reset-erin", "new-hash", issued.Add(-time.Minute))
		require.NoError(t, err)
		assert.Equal(t, "new-hash", updated.PasswordHash)
		assert.Nil(t, updated.ResetToken)

		_, err = store.ConsumeResetToken(ctx, "reset-erin", "other-hash", issued.Add(-time.Minute))
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
	})

	t.Run("token_collision_is_rejected", func(t *testing.T) {
		store := newStore(t)
		first := newAccount("frank@example.com")
		require.NoError(t, store.Create(ctx, first))

		second := newAccount("grace@example.com")
		second.VerificationToken = first.VerificationToken
		err := store.Create(ctx, second)
		assert.True(t, apperr.HasCode(err, account.CodeTokenCollision), "got %v", err)
	})

	t.Run("purge_clears_only_expired_reset_tokens", func(t *testing.T) {
		store := newStore(t)
		now := time.Now().UTC().Truncate(time.Microsecond)

		old := newAccount("old@example.com")
		old.ResetToken = pointer.To("reset-old")
		old.ResetSentAt = pointer.To(now.Add(-48 * time.Hour))
		require.NoError(t, store.Create(ctx, old))

		fresh := newAccount("fresh@example.com")
		fresh.ResetToken = pointer.To("reset-fresh")
		fresh.ResetSentAt = pointer.To(now.Add(-time.Hour))
		require.NoError(t, store.Create(ctx, fresh))

		purged, err := store.PurgeExpiredResetTokens(ctx, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), purged)

		_, err = store.FindByResetToken(ctx, "reset-old")
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
		_, err = store.FindByResetToken(ctx, "reset-fresh")
		assert.NoError(t, err)
	})
}
