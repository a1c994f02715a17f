// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/platform/database/schema"
	"github.com/taibuivan/yomira-accounts/internal/platform/dberr"
	"github.com/taibuivan/yomira-accounts/internal/platform/postgres"
)

// # Repository Implementation

// PostgresStore implements [Store] on the users.account table.
//
// # Atomicity
//
// Token consumption is a single conditional UPDATE ... RETURNING statement.
// Postgres re-evaluates the WHERE clause after a concurrent writer commits, so
// a second caller presenting the same token matches zero rows.
type PostgresStore struct {
	pool postgres.Querier
}

// NewPostgresStore creates a new PostgreSQL implementation of [Store].
func NewPostgresStore(pool postgres.Querier) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var accountTable = schema.UserAccount

// selectColumns lists every column in [scanAccount] order.
var selectColumns = strings.Join(accountTable.Columns(), ", ")

/*
Create persists a new account into the users.account table.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: ErrDuplicateEmail, token collision or storage failure
*/
func (store *PostgresStore) Create(context context.Context, account *Account) error {
	placeholders := make([]string, len(accountTable.Columns()))
	for index := range placeholders {
		placeholders[index] = fmt.Sprintf("$%d", index+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		accountTable.Table, selectColumns, strings.Join(placeholders, ", "))

	_, err := store.pool.Exec(context, query,
		account.ID,
		account.Email,
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		account.EmailVerified,
		account.VerificationToken,
		account.VerificationSentAt,
		account.ResetToken,
		account.ResetSentAt,
		account.NotifyOnLogin,
		account.LastLoginNotificationAt,
		account.IsActive,
		account.TermsAccepted,
		account.Newsletter,
		account.DateJoined,
		account.LastLoginAt,
	)
	if err != nil {
		return classifyWriteError(err, "postgres_account_store_create_failed")
	}

	return nil
}

// FindByID retrieves an account by surrogate ID.
func (store *PostgresStore) FindByID(context context.Context, id string) (*Account, error) {
	return store.findOne(context, accountTable.ID, id)
}

// FindByEmail retrieves an account by normalized email.
func (store *PostgresStore) FindByEmail(context context.Context, email string) (*Account, error) {
	return store.findOne(context, accountTable.Email, NormalizeEmail(email))
}

// FindByVerificationToken retrieves the account holding a verification token.
func (store *PostgresStore) FindByVerificationToken(context context.Context, token string) (*Account, error) {
	return store.findOne(context, accountTable.VerificationToken, token)
}

// FindByResetToken retrieves the account holding a reset token.
func (store *PostgresStore) FindByResetToken(context context.Context, token string) (*Account, error) {
	return store.findOne(context, accountTable.ResetToken, token)
}

// findOne runs a single-row lookup on an indexed column.
func (store *PostgresStore) findOne(context context.Context, column string, value string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, accountTable.Table, column)

	account, err := scanAccount(store.pool.QueryRow(context, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_account_store_find_failed: %w", err)
	}

	return account, nil
}

/*
Update persists only the named fields.

Description: Builds "SET a = $2, b = $3" from the field list. Unknown fields
are rejected before touching the database.

Parameters:
  - context: context.Context
  - account: *Account
  - fields: ...Field

Returns:
  - error: NOT_FOUND if the row vanished, token collision, or storage failure
*/
func (store *PostgresStore) Update(context context.Context, account *Account, fields ...Field) error {
	if len(fields) == 0 {
		return nil
	}

	assignments := make([]string, 0, len(fields))
	arguments := []any{account.ID}

	for _, field := range fields {
		column, value, err := columnValue(account, field)
		if err != nil {
			return err
		}
		arguments = append(arguments, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(arguments)))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1`,
		accountTable.Table, strings.Join(assignments, ", "), accountTable.ID)

	tag, err := store.pool.Exec(context, query, arguments...)
	if err != nil {
		return classifyWriteError(err, "postgres_account_store_update_failed")
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}

/*
ConsumeVerificationToken verifies the holder of token in one statement.

Returns:
  - *Account: row after the update
  - error: NOT_FOUND if no unverified account holds the token
*/
func (store *PostgresStore) ConsumeVerificationToken(context context.Context, token string) (*Account, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = TRUE, %s = NULL
		WHERE %s = $1 AND %s = FALSE
		RETURNING %s`,
		accountTable.Table,
		accountTable.EmailVerified, accountTable.VerificationToken,
		accountTable.VerificationToken, accountTable.EmailVerified,
		selectColumns,
	)

	account, err := scanAccount(store.pool.QueryRow(context, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Verification token")
		}
		return nil, fmt.Errorf("postgres_account_store_consume_verification_failed: %w", err)
	}

	return account, nil
}

/*
ConsumeResetToken replaces the password of the holder of a fresh token.

Returns:
  - *Account: row after the update
  - error: NOT_FOUND if no account holds a token issued after issuedAfter
*/
func (store *PostgresStore) ConsumeResetToken(context context.Context, token, passwordHash string, issuedAfter time.Time) (*Account, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NULL
		WHERE %s = $1 AND %s > $3
		RETURNING %s`,
		accountTable.Table,
		accountTable.Password, accountTable.ResetToken,
		accountTable.ResetToken, accountTable.ResetSentAt,
		selectColumns,
	)

	account, err := scanAccount(store.pool.QueryRow(context, query, token, passwordHash, issuedAfter))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Reset token")
		}
		return nil, fmt.Errorf("postgres_account_store_consume_reset_failed: %w", err)
	}

	return account, nil
}

// PurgeExpiredResetTokens clears reset tokens issued at or before cutoff.
func (store *PostgresStore) PurgeExpiredResetTokens(context context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = NULL
		WHERE %s IS NOT NULL AND (%s IS NULL OR %s <= $1)`,
		accountTable.Table,
		accountTable.ResetToken,
		accountTable.ResetToken, accountTable.ResetSentAt, accountTable.ResetSentAt,
	)

	tag, err := store.pool.Exec(context, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres_account_store_purge_failed: %w", err)
	}

	return tag.RowsAffected(), nil
}

// # Row Mapping

// scanAccount hydrates an [Account] from a row in [schema.UserAccountTable.Columns] order.
func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.PasswordHash,
		&account.EmailVerified,
		&account.VerificationToken,
		&account.VerificationSentAt,
		&account.ResetToken,
		&account.ResetSentAt,
		&account.NotifyOnLogin,
		&account.LastLoginNotificationAt,
		&account.IsActive,
		&account.TermsAccepted,
		&account.Newsletter,
		&account.DateJoined,
		&account.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// columnValue maps a [Field] to its column and the value held by account.
func columnValue(account *Account, field Field) (string, any, error) {
	switch field {
	case FieldFirstName:
		return accountTable.FirstName, account.FirstName, nil
	case FieldLastName:
		return accountTable.LastName, account.LastName, nil
	case FieldPasswordHash:
		return accountTable.Password, account.PasswordHash, nil
	case FieldEmailVerified:
		if !account.EmailVerified {
			return "", nil, ErrVerificationRevoke
		}
		return accountTable.EmailVerified, true, nil
	case FieldVerificationToken:
		return accountTable.VerificationToken, account.VerificationToken, nil
	case FieldVerificationSentAt:
		return accountTable.VerificationSentAt, account.VerificationSentAt, nil
	case FieldResetToken:
		return accountTable.ResetToken, account.ResetToken, nil
	case FieldResetSentAt:
		return accountTable.ResetSentAt, account.ResetSentAt, nil
	case FieldNotifyOnLogin:
		return accountTable.NotifyOnLogin, account.NotifyOnLogin, nil
	case FieldLastLoginNotificationAt:
		return accountTable.LastLoginNotificationAt, account.LastLoginNotificationAt, nil
	case FieldIsActive:
		return accountTable.IsActive, account.IsActive, nil
	case FieldNewsletter:
		return accountTable.Newsletter, account.Newsletter, nil
	case FieldLastLoginAt:
		return accountTable.LastLoginAt, account.LastLoginAt, nil
	}
	return "", nil, fmt.Errorf("postgres_account_store_unknown_field: %q", field)
}

// classifyWriteError turns unique violations into typed conflicts.
func classifyWriteError(err error, operation string) error {
	if constraint, ok := dberr.UniqueViolation(err); ok {
		switch constraint {
		case accountTable.EmailKey:
			return ErrDuplicateEmail.WithCause(err)
		case accountTable.VerificationTokenKey, accountTable.ResetTokenKey:
			return errTokenCollision.WithCause(err)
		}
		return dberr.Wrap(err, "Account")
	}
	return fmt.Errorf("%s: %w", operation, err)
}
