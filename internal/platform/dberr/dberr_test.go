// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/platform/dberr"
)

/*
TestWrap classifies driver errors into the application taxonomy.
*/
func TestWrap(t *testing.T) {
	uniqueErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "account_email_key"}

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no_rows", pgx.ErrNoRows, "NOT_FOUND"},
		{"wrapped_no_rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), "NOT_FOUND"},
		{"unique_violation", uniqueErr, "CONFLICT"},
		{"other", errors.New("connection reset"), "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := apperr.As(dberr.Wrap(tt.err, "Account"))
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "Account"))
}

/*
TestUniqueViolation exposes the constraint name.
*/
func TestUniqueViolation(t *testing.T) {
	constraint, ok := dberr.UniqueViolation(fmt.Errorf("insert: %w",
		&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "account_email_key"}))
	assert.True(t, ok)
	assert.Equal(t, "account_email_key", constraint)

	_, ok = dberr.UniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
	assert.False(t, ok)
}
