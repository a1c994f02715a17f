// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
)

/*
TestAppError_Constructors checks the status and code of each taxonomy constructor.
*/
func TestAppError_Constructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		code   string
		status int
	}{
		{"not_found", apperr.NotFound("Account"), "NOT_FOUND", http.StatusNotFound},
		{"conflict", apperr.Conflict("taken"), "CONFLICT", http.StatusConflict},
		{"validation", apperr.ValidationError("bad"), "VALIDATION_ERROR", http.StatusBadRequest},
		{"state", apperr.State("ALREADY_VERIFIED", "done"), "ALREADY_VERIFIED", http.StatusConflict},
		{"gone", apperr.Gone("TOKEN_EXPIRED", "late"), "TOKEN_EXPIRED", http.StatusGone},
		{"notification", apperr.Notification(errors.New("smtp down")), "NOTIFICATION_FAILED", http.StatusBadGateway},
		{"internal", apperr.Internal(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

/*
TestAppError_WithCode verifies that specialization does not mutate the original.
*/
func TestAppError_WithCode(t *testing.T) {
	base := apperr.NotFound("Account")
	specific := base.WithCode("UNKNOWN_ACCOUNT")

	assert.Equal(t, "NOT_FOUND", base.Code)
	assert.Equal(t, "UNKNOWN_ACCOUNT", specific.Code)
	assert.Equal(t, base.Message, specific.Message)
}

/*
TestAppError_HasCode walks wrapped chains.
*/
func TestAppError_HasCode(t *testing.T) {
	wrapped := fmt.Errorf("auth_service_login_failed: %w", apperr.Conflict("x").WithCode("DUPLICATE_EMAIL"))

	require.True(t, apperr.IsAppError(wrapped))
	assert.True(t, apperr.HasCode(wrapped, "DUPLICATE_EMAIL"))
	assert.False(t, apperr.HasCode(wrapped, "CONFLICT"))
	assert.False(t, apperr.HasCode(errors.New("plain"), "DUPLICATE_EMAIL"))
}
