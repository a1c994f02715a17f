// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api assembles the accounts HTTP surface: the middleware chain, the
probes, the Prometheus scrape target and the versioned account routes.

Route map:

	GET  /health, /ready, /metrics
	/api/v1/auth/*   anonymous account lifecycle (register, login, verify, reset)
	/api/v1/me/*     session-bound profile and preferences
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/platform/config"
	"github.com/taibuivan/yomira-accounts/internal/platform/constants"
	"github.com/taibuivan/yomira-accounts/internal/platform/middleware"
	"github.com/taibuivan/yomira-accounts/internal/platform/respond"
	"github.com/taibuivan/yomira-accounts/internal/users/account"
	"github.com/taibuivan/yomira-accounts/internal/users/auth"
)

// Server owns the router and the underlying [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Handlers groups the handler sets mounted by [NewServer].
type Handlers struct {
	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc

	// Auth serves the anonymous lifecycle routes.
	Auth *auth.Handler

	// Account serves /me and is wrapped in [middleware.RequireAuth].
	Account *account.Handler
}

/*
NewServer builds the router and the [http.Server] around it.

Parameters:
  - context: context.Context stopping background middleware loops
  - cfg: *config.Config
  - log: *slog.Logger
  - sessions: middleware.SessionResolver (the auth service)
  - h: Handlers

Returns:
  - *Server: Not yet listening
*/
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, sessions middleware.SessionResolver, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Metrics())
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Route").WithCode("ROUTE_NOT_FOUND"))
	})
	r.MethodNotAllowed(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, &apperr.AppError{
			Code:       "METHOD_NOT_ALLOWED",
			Message:    request.Method + " is not supported on this route",
			HTTPStatus: http.StatusMethodNotAllowed,
		})
	})

	// # Probes
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// # Account API
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Authenticate(sessions))

		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/me", middleware.RequireAuth(h.Account.Routes()))
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		},
	}
}

// Handler exposes the root router for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops. After [Server.Shutdown] it
// returns [http.ErrServerClosed].
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits up to timeout for
// in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
