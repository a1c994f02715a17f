// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr is the error vocabulary shared by the account workflows and
the HTTP layer.

Workflows return an [*AppError] for every outcome a client can act on; the
respond package turns it into a status and a JSON envelope. Anything else is
treated as an internal failure.

Taxonomy:

  - Validation: field-level input problems the user can fix (400).
  - Conflict: duplicate identity such as an email already registered (409).
  - NotFound: unknown account or token (404).
  - State: transitions that no longer apply, e.g. an expired token (409/410).
  - Notification: a best-effort delivery failure, carried as a warning only.

*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the accounts API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "DUPLICATE_EMAIL").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field failures for VALIDATION_ERROR style responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Code identifies the failed rule (e.g. "missing_uppercase"). Optional.
	Code string `json:"code,omitempty"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCode returns a copy of the error carrying a more specific machine code.
//
// Example:
//
//	apperr.NotFound("Account").WithCode("UNKNOWN_ACCOUNT")
func (e *AppError) WithCode(code string) *AppError {
	clone := *e
	clone.Code = code
	return &clone
}

// WithCause returns a copy of the error with cause attached for logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// newError builds an [AppError] with no cause or details.
func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// # Client Errors (4xx)

// NotFound reports an unknown resource, e.g. NotFound("Account") reads
// "Account not found".
func NotFound(resource string) *AppError {
	return newError(http.StatusNotFound, "NOT_FOUND", resource+" not found")
}

// Unauthorized reports missing or rejected credentials (401).
func Unauthorized(message string) *AppError {
	return newError(http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Forbidden reports a known caller that may not proceed (403).
func Forbidden(message string) *AppError {
	return newError(http.StatusForbidden, "FORBIDDEN", message)
}

// Conflict reports a duplicate identity such as a registered email (409).
func Conflict(message string) *AppError {
	return newError(http.StatusConflict, "CONFLICT", message)
}

// State reports a transition that does not apply to the resource as it is
// now, such as verifying an email twice. The code is always caller-chosen.
func State(code, message string) *AppError {
	return newError(http.StatusConflict, code, message)
}

// Gone reports something that existed but has lapsed, like a reset token (410).
func Gone(code, message string) *AppError {
	return newError(http.StatusGone, code, message)
}

// ValidationError reports input the client can fix (400), optionally per field.
func ValidationError(message string, details ...FieldError) *AppError {
	appError := newError(http.StatusBadRequest, "VALIDATION_ERROR", message)
	appError.Details = details
	return appError
}

// RateLimited reports a throttled caller and when to retry (429).
func RateLimited(retryAfterSeconds int) *AppError {
	return newError(http.StatusTooManyRequests, "RATE_LIMITED",
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// # Server Errors (5xx)

// Internal hides an unexpected failure behind a generic message. The cause
// is kept for logs only.
func Internal(cause error) *AppError {
	return newError(http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred").WithCause(cause)
}

// Notification describes an email that could not be delivered (502).
//
// Workflows attach it to their result as a warning and never return it as
// the primary error.
func Notification(cause error) *AppError {
	return newError(http.StatusBadGateway, "NOTIFICATION_FAILED", "The notification email could not be delivered").WithCause(cause)
}

// # Helpers

// IsAppError reports whether err wraps an [*AppError].
func IsAppError(err error) bool {
	return As(err) != nil
}

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError
	}
	return nil
}

// HasCode reports whether err wraps an [*AppError] carrying code.
// Workflow tests and handlers branch on codes rather than messages.
func HasCode(err error, code string) bool {
	appError := As(err)
	return appError != nil && appError.Code == code
}
