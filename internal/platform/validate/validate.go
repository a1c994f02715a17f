// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate collects field-level input failures into a single
// VALIDATION_ERROR.
//
// Rules never short-circuit, so one response lists every failing field of a
// registration or reset form, including the password policy violations that
// callers append with [Validator.Add].
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
)

// ErrInvalidJSON is returned when a request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

// Validator accumulates failures. The zero value is ready to use; it is not
// safe for concurrent use.
type Validator struct {
	failures []apperr.FieldError
}

// # Rules

// Required fails when value is empty after trimming.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.fail(field, "required", "This field is required")
	}
	return v
}

// MaxLen fails when value has more than limit characters (not bytes).
func (v *Validator) MaxLen(field, value string, limit int) *Validator {
	if utf8.RuneCountInString(value) > limit {
		v.fail(field, "too_long", fmt.Sprintf("Maximum %d characters", limit))
	}
	return v
}

// Email fails unless value is a bare address. "Alice <alice@example.com>"
// parses as RFC 5322 but is rejected: the account identifier is the address
// alone. Empty values are left to [Validator.Required].
func (v *Validator) Email(field, value string) *Validator {
	if value == "" {
		return v
	}
	if address, err := mail.ParseAddress(value); err != nil || address.Address != value {
		v.fail(field, "invalid_email", "Must be a valid email address")
	}
	return v
}

// Custom records message against field when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.fail(field, "", message)
	}
	return v
}

// Add appends failures produced elsewhere, such as password policy violations.
func (v *Validator) Add(failures ...apperr.FieldError) *Validator {
	v.failures = append(v.failures, failures...)
	return v
}

// # Result

// Failed reports whether any rule has failed so far.
func (v *Validator) Failed() bool {
	return len(v.failures) > 0
}

// Err returns VALIDATION_ERROR carrying every failure, or nil.
func (v *Validator) Err() error {
	if !v.Failed() {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.failures...)
}

func (v *Validator) fail(field, code, message string) {
	v.failures = append(v.failures, apperr.FieldError{Field: field, Code: code, Message: message})
}
