// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/yomira-accounts/internal/platform/respond"
)

// readinessTimeout bounds all dependency checks of one /ready call.
const readinessTimeout = 3 * time.Second

// HealthDependencies holds the checks behind /ready. A nil check is skipped.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool holding accounts.
	CheckDatabase func(context.Context) error

	// CheckCache pings the Redis client holding sessions and lockouts.
	CheckCache func(context.Context) error
}

type healthHandler struct {
	checks []namedCheck
	logger *slog.Logger
}

type namedCheck struct {
	name  string
	probe func(context.Context) error
}

type checkResult struct {
	Name      string `json:"name"`
	IsOK      bool   `json:"ok"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status string        `json:"status"`
	Checks []checkResult `json:"checks"`
}

// NewHealthHandlers creates the /health and /ready handlers.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{logger: logger}
	for _, check := range []namedCheck{
		{name: "postgres", probe: deps.CheckDatabase},
		{name: "redis", probe: deps.CheckCache},
	} {
		if check.probe != nil {
			handler.checks = append(handler.checks, check)
		}
	}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health. It never touches a dependency.
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// readiness handles GET /ready, probing every dependency in parallel.
// Any failing probe turns the response into 503 "degraded".
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	context, cancel := context.WithTimeout(request.Context(), readinessTimeout)
	defer cancel()

	results := make([]checkResult, len(handler.checks))

	var group errgroup.Group
	for index, check := range handler.checks {
		group.Go(func() error {
			startTime := time.Now()
			err := check.probe(context)

			results[index] = checkResult{Name: check.name, IsOK: err == nil, LatencyMS: time.Since(startTime).Milliseconds()}
			if err != nil {
				results[index].Error = err.Error()
				handler.logger.Error("readiness_check_failed", slog.String("dependency", check.name), slog.Any("error", err))
			}
			return nil
		})
	}
	_ = group.Wait()

	response := readinessResponse{Status: "ready", Checks: results}
	httpStatus := http.StatusOK
	for _, result := range results {
		if !result.IsOK {
			response.Status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: response})
}
