// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/yomira-accounts/internal/platform/request"
	"github.com/taibuivan/yomira-accounts/internal/platform/respond"
	"github.com/taibuivan/yomira-accounts/internal/platform/validate"
)

// Handler implements the HTTP layer for the signed-in account.
//
// All routes expect the RequireAuth middleware in front of them.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] mounted under /api/v1/me.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.getMe)
	router.Patch("/preferences", handler.updatePreferences)

	return router
}

/*
GET /api/v1/me.

Description: Retrieves the full private view of the authenticated account.

Response:
  - 200: Account
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.Profile(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// updatePreferencesRequest defines the expected JSON payload.
type updatePreferencesRequest struct {
	NotifyOnLogin *bool `json:"notify_on_login"`
	Newsletter    *bool `json:"newsletter_subscription"`
}

/*
PATCH /api/v1/me/preferences.

Request:
  - body: updatePreferencesRequest (at least one toggle)

Response:
  - 200: Account: The updated account
  - 400: ErrInvalidJSON/Validation
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updatePreferences(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updatePreferencesRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Custom("preferences", input.NotifyOnLogin == nil && input.Newsletter == nil, "At least one preference must be provided")
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.UpdatePreferences(request.Context(), accountID, PreferencesInput{
		NotifyOnLogin: input.NotifyOnLogin,
		Newsletter:    input.Newsletter,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}
