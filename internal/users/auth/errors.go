// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/users/password"
)

func errUnknownAccount() *apperr.AppError {
	return apperr.NotFound("Account").WithCode(CodeUnknownAccount)
}

func errAccountInactive() *apperr.AppError {
	return apperr.Forbidden("Account is inactive").WithCode(CodeAccountInactive)
}

func errInvalidCredentials() *apperr.AppError {
	return apperr.Unauthorized("Incorrect password").WithCode(CodeInvalidCredentials)
}

func errAccountLocked(retryAfterSeconds int) *apperr.AppError {
	return apperr.RateLimited(retryAfterSeconds).WithCode(CodeAccountLocked)
}

func errWeakPassword(violations []password.Violation) *apperr.AppError {
	return apperr.ValidationError("Password does not meet the requirements", password.FieldErrors(violations)...).
		WithCode(CodeWeakPassword)
}

func errPasswordMismatch() *apperr.AppError {
	return apperr.ValidationError("Passwords do not match", apperr.FieldError{
		Field:   "password_confirmation",
		Code:    "mismatch",
		Message: "Must match the password",
	}).WithCode(CodePasswordMismatch)
}

func errTermsNotAccepted() *apperr.AppError {
	return apperr.ValidationError("Terms and conditions must be accepted", apperr.FieldError{
		Field:   "terms_accepted",
		Code:    "required",
		Message: "You must accept the terms and conditions",
	}).WithCode(CodeTermsNotAccepted)
}

func errTokenNotFound() *apperr.AppError {
	return apperr.NotFound("Token").WithCode(CodeTokenNotFound)
}

func errTokenExpired() *apperr.AppError {
	return apperr.Gone(CodeTokenExpired, "The link has expired, request a new one")
}

func errAlreadyVerified() *apperr.AppError {
	return apperr.State(CodeAlreadyVerified, "Email is already verified")
}

func errSessionInvalid() *apperr.AppError {
	return apperr.Unauthorized("Session is invalid or expired").WithCode(CodeSessionInvalid)
}
