// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery outcomes.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// deliveries counts notifications by template and outcome.
var deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "accounts_notifications_total",
	Help: "Total number of account notifications by template and outcome",
}, []string{"template", "outcome"})

func recordDelivery(template Template, err error) {
	outcome := OutcomeSent
	if err != nil {
		outcome = OutcomeFailed
	}
	deliveries.WithLabelValues(string(template), outcome).Inc()
}
