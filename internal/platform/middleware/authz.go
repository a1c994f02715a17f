// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/platform/constants"
	"github.com/taibuivan/yomira-accounts/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-accounts/internal/platform/respond"
	"github.com/taibuivan/yomira-accounts/internal/platform/sec"
)

// SessionResolver maps an opaque session ID to its principal.
//
// Defined here so the middleware does not import the auth workflows and
// tests can inject a stub.
type SessionResolver interface {
	CurrentSession(context context.Context, sessionID string) (*sec.Principal, error)
}

// Authenticate resolves the session cookie into a principal.
//
// # Flow
//  1. No cookie: the request proceeds as anonymous.
//  2. Unknown or expired session: the request proceeds as anonymous.
//  3. Live session: [*sec.Principal] is injected into the request context.
//
// Storage failures abort with 500 rather than silently downgrading the
// caller to anonymous.
func Authenticate(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			cookie, err := request.Cookie(constants.SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			principal, err := resolver.CurrentSession(request.Context(), cookie.Value)
			if err != nil {
				if appError := apperr.As(err); appError != nil && appError.HTTPStatus == http.StatusUnauthorized {
					ctxutil.GetLogger(request.Context()).Debug("session_cookie_rejected", slog.String("code", appError.Code))
					next.ServeHTTP(writer, request)
					return
				}
				respond.Error(writer, request, err)
				return
			}

			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
