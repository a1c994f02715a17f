// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/platform/constants"
	"github.com/taibuivan/yomira-accounts/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/yomira-accounts/internal/platform/request"
	"github.com/taibuivan/yomira-accounts/internal/platform/respond"
	"github.com/taibuivan/yomira-accounts/internal/users/account"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// It is strictly responsible for transport concerns: payload decoding,
// status codes and the session cookie.
type Handler struct {
	authService  *Service
	cookieSecure bool
}

// NewHandler constructs a new [Handler]. cookieSecure sets the Secure flag
// on the session cookie.
func NewHandler(service *Service, cookieSecure bool) *Handler {
	return &Handler{authService: service, cookieSecure: cookieSecure}
}

// Routes returns a [chi.Router] mounted under /api/v1/auth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/verify-email/{token}", handler.verifyEmailLink)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/resend-verification", handler.resendVerification)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	return router
}

// # Request Payloads

type registerRequest struct {
	Email                string `json:"email"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	TermsAccepted        bool   `json:"terms_accepted"`
	Newsletter           bool   `json:"newsletter_subscription"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember_me"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// # Response Payloads

type warningResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toWarning(appError *apperr.AppError) *warningResponse {
	if appError == nil {
		return nil
	}
	return &warningResponse{Code: appError.Code, Message: appError.Message}
}

type registerResponse struct {
	Account           *account.Account `json:"account"`
	VerificationEmail DeliveryStatus   `json:"verification_email"`
	Warning           *warningResponse `json:"warning,omitempty"`
}

type loginResponse struct {
	Account   *account.Account `json:"account"`
	ExpiresAt *string          `json:"session_expires_at,omitempty"`
}

type deliveryResponse struct {
	VerificationEmail DeliveryStatus   `json:"verification_email"`
	Warning           *warningResponse `json:"warning,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// forgotPasswordMessage is returned whether or not the email is known.
const forgotPasswordMessage = "If an account exists for this email, a password reset link has been sent"

/*
POST /api/v1/auth/register.

Request:
  - Body: registerRequest

Response:
  - 201: registerResponse (verification_email "sent" or "failed")
  - 400: VALIDATION_ERROR, WEAK_PASSWORD, PASSWORD_MISMATCH, TERMS_NOT_ACCEPTED
  - 409: DUPLICATE_EMAIL
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:                input.Email,
		FirstName:            input.FirstName,
		LastName:             input.LastName,
		Password:             input.Password,
		PasswordConfirmation: input.PasswordConfirmation,
		TermsAccepted:        input.TermsAccepted,
		Newsletter:           input.Newsletter,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, registerResponse{
		Account:           result.Account,
		VerificationEmail: result.VerificationEmail,
		Warning:           toWarning(result.Warning),
	})
}

/*
POST /api/v1/auth/login.

Description: Sets the session_id cookie. "Remember me" sessions carry an
Expires attribute; others are browser-session cookies.

Response:
  - 200: loginResponse
  - 401: INVALID_CREDENTIALS
  - 403: ACCOUNT_INACTIVE
  - 404: UNKNOWN_ACCOUNT
  - 429: ACCOUNT_LOCKED
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Authenticate(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
		Remember: input.Remember,
		Client: ClientInfo{
			IP:        requestutil.ClientIP(request),
			UserAgent: requestutil.UserAgent(request),
		},
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cookie := handler.sessionCookie(result.Session.ID)
	response := loginResponse{Account: result.Account}
	if result.Session.Persistent {
		cookie.Expires = result.Session.ExpiresAt
		expiresAt := result.Session.ExpiresAt.Format(http.TimeFormat)
		response.ExpiresAt = &expiresAt
	}
	http.SetCookie(writer, cookie)

	respond.OK(writer, response)
}

/*
POST /api/v1/auth/logout.

Response:
  - 204: Session revoked and cookie cleared
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil {
		if err := handler.authService.Logout(request.Context(), cookie.Value); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	cleared := handler.sessionCookie("")
	cleared.MaxAge = -1
	http.SetCookie(writer, cleared)

	respond.NoContent(writer)
}

/*
GET /api/v1/auth/verify-email/{token}.

Description: Target of the link in the verification email.

Response:
  - 200: statusResponse ("verified" or "already_verified")
  - 404: TOKEN_NOT_FOUND
*/
func (handler *Handler) verifyEmailLink(writer http.ResponseWriter, request *http.Request) {
	handler.verify(writer, request, requestutil.Param(request, "token"))
}

/*
POST /api/v1/auth/verify-email.

Request:
  - Body: tokenRequest
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.verify(writer, request, input.Token)
}

func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request, token string) {
	result, err := handler.authService.Verify(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, statusResponse{Status: string(result)})
}

/*
POST /api/v1/auth/resend-verification.

Response:
  - 200: deliveryResponse
  - 404: UNKNOWN_ACCOUNT
  - 409: ALREADY_VERIFIED
*/
func (handler *Handler) resendVerification(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.ResendVerification(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, deliveryResponse{VerificationEmail: result.Status, Warning: toWarning(result.Warning)})
}

/*
POST /api/v1/auth/forgot-password.

Description: Always answers with the same message for well-formed emails so
the endpoint cannot be used to probe which addresses are registered.

Response:
  - 200: messageResponse
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.RequestPasswordReset(request.Context(), input.Email)
	switch {
	case apperr.HasCode(err, CodeUnknownAccount):
		// Masked.
	case err != nil:
		respond.Error(writer, request, err)
		return
	case result.Status == DeliveryFailed:
		ctxutil.GetLogger(request.Context()).Warn("password_reset_email_undelivered",
			slog.String("code", result.Warning.Code),
		)
	}

	respond.OK(writer, messageResponse{Message: forgotPasswordMessage})
}

/*
POST /api/v1/auth/reset-password.

Response:
  - 200: messageResponse
  - 400: WEAK_PASSWORD, PASSWORD_MISMATCH
  - 404: TOKEN_NOT_FOUND
  - 410: TOKEN_EXPIRED
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.CompleteReset(request.Context(), CompleteResetInput{
		Token:                input.Token,
		Password:             input.Password,
		PasswordConfirmation: input.PasswordConfirmation,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Password updated, sign in with your new password"})
}

// sessionCookie builds the session cookie skeleton shared by login and logout.
func (handler *Handler) sessionCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    value,
		Path:     constants.SessionCookiePath,
		HttpOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
