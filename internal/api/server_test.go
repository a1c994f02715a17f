// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/yomira-accounts/internal/api"
	"github.com/taibuivan/yomira-accounts/internal/notify"
	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/platform/config"
	"github.com/taibuivan/yomira-accounts/internal/platform/constants"
	"github.com/taibuivan/yomira-accounts/internal/platform/sec"
	"github.com/taibuivan/yomira-accounts/internal/users/account"
	"github.com/taibuivan/yomira-accounts/internal/users/auth"
)

type sessionMap struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
}

func (store *sessionMap) Create(_ context.Context, accountID string, persistent bool, ttl time.Duration) (*auth.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	id, err := sec.GenerateSecureToken(sec.MinTokenBytes)
	if err != nil {
		return nil, err
	}
	session := &auth.Session{ID: id, AccountID: accountID, Persistent: persistent, ExpiresAt: time.Now().Add(ttl)}
	store.sessions[id] = session
	return session, nil
}

func (store *sessionMap) Resolve(_ context.Context, id string) (*auth.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if session, ok := store.sessions[id]; ok {
		return session, nil
	}
	return nil, apperr.NotFound("Session")
}

func (store *sessionMap) Revoke(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.sessions, id)
	return nil
}

func (store *sessionMap) RevokeAll(context.Context, string) error { return nil }

func newTestServer(t *testing.T, health api.HealthDependencies) (http.Handler, *account.MemoryStore) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	accounts := account.NewMemoryStore()
	dispatcher := notify.NewDispatcher(notify.SenderFunc(func(context.Context, notify.Message) error { return nil }), time.Second, logger)
	t.Cleanup(func() { _ = dispatcher.Close(context.Background()) })

	authService := auth.NewService(auth.Dependencies{
		Accounts: accounts,
		Sessions: &sessionMap{sessions: make(map[string]*auth.Session)},
		Notifier: dispatcher,
		Hasher:   sec.NewBcryptHasher(bcrypt.MinCost),
	})

	liveness, readiness := api.NewHealthHandlers(health, logger)
	cfg := &config.Config{ServerPort: "0", Environment: "test"}

	server := api.NewServer(ctx, cfg, logger, authService, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, false),
		Account:   account.NewHandler(account.NewService(accounts)),
	})
	return server.Handler(), accounts
}

func do(handler http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.RemoteAddr = "192.0.2.10:4000"
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestServer_HealthProbes(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		handler, _ := newTestServer(t, api.HealthDependencies{
			CheckDatabase: func(context.Context) error { return nil },
			CheckCache:    func(context.Context) error { return nil },
		})

		assert.Equal(t, http.StatusOK, do(handler, http.MethodGet, "/health", "").Code)

		recorder := do(handler, http.MethodGet, "/ready", "")
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"status":"ready"`)
	})

	t.Run("degraded", func(t *testing.T) {
		handler, _ := newTestServer(t, api.HealthDependencies{
			CheckDatabase: func(context.Context) error { return nil },
			CheckCache:    func(context.Context) error { return errors.New("redis: connection refused") },
		})

		recorder := do(handler, http.MethodGet, "/ready", "")
		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"status":"degraded"`)
		assert.Contains(t, recorder.Body.String(), "connection refused")
	})
}

func TestServer_SessionFlow(t *testing.T) {
	handler, accounts := newTestServer(t, api.HealthDependencies{})

	recorder := do(handler, http.MethodGet, "/api/v1/me/", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = do(handler, http.MethodPost, "/api/v1/auth/register", `{
		"email": "zoe@example.com", "first_name": "Zoe", "last_name": "Quinn",
		"password": "Secure#2025", "password_confirmation": "Secure#2025", "terms_accepted": true
	}`)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	assert.NotEmpty(t, recorder.Header().Get(constants.HeaderXRequestID))

	recorder = do(handler, http.MethodPost, "/api/v1/auth/login", `{"email":"zoe@example.com","password":"Secure#2025"}`)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var session *http.Cookie
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.SessionCookieName {
			session = cookie
		}
	}
	require.NotNil(t, session)

	recorder = do(handler, http.MethodGet, "/api/v1/me/", "", session)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"email":"zoe@example.com"`)

	recorder = do(handler, http.MethodPatch, "/api/v1/me/preferences", `{"notify_on_login":true}`, session)
	require.Equal(t, http.StatusOK, recorder.Code)
	stored, err := accounts.FindByEmail(context.Background(), "zoe@example.com")
	require.NoError(t, err)
	assert.True(t, stored.NotifyOnLogin)

	recorder = do(handler, http.MethodPost, "/api/v1/auth/logout", "", session)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = do(handler, http.MethodGet, "/api/v1/me/", "", session)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	handler, _ := newTestServer(t, api.HealthDependencies{})

	do(handler, http.MethodGet, "/health", "")
	recorder := do(handler, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "accounts_http_requests_total")
}

func TestServer_UnknownRoutes(t *testing.T) {
	handler, _ := newTestServer(t, api.HealthDependencies{})

	recorder := do(handler, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"code":"ROUTE_NOT_FOUND"`)

	recorder = do(handler, http.MethodDelete, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"code":"METHOD_NOT_ALLOWED"`)
}
