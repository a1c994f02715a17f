// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
)

// Metrics for the account workflows. Outcome labels are error codes, or
// "success".
var (
	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "accounts_registrations_total",
		Help: "Total number of registration attempts by outcome",
	}, []string{"outcome"})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "accounts_logins_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "accounts_verifications_total",
		Help: "Total number of email verification attempts by outcome",
	}, []string{"outcome"})

	resets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "accounts_password_resets_total",
		Help: "Total number of password reset steps by stage and outcome",
	}, []string{"stage", "outcome"})
)

// outcome maps an error to a bounded label value.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if appError := apperr.As(err); appError != nil {
		return appError.Code
	}
	return "error"
}
