// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

// Package metrics provides Prometheus instrumentation for the realtime
// service: connection lifecycle, event delivery, call sessions, and the
// HTTP control surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_connections_active",
			Help: "Current number of open websocket connections",
		},
	)

	ConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_connections_total",
			Help: "Total websocket connection attempts by outcome",
		},
		[]string{"outcome"}, // "accepted", "auth_missing", "auth_invalid", "upgrade_error"
	)

	UsersOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_users_online",
			Help: "Current number of users with a registered presence entry",
		},
	)

	// Event delivery metrics
	EventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_delivered_total",
			Help: "Total events delivered to connected clients by event type",
		},
		[]string{"event"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_dropped_total",
			Help: "Total events dropped by event type and reason",
		},
		[]string{"event", "reason"}, // reason: "offline", "buffer_full"
	)

	// Call session metrics
	CallsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_calls_active",
			Help: "Current number of tracked call sessions",
		},
	)

	CallsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_calls_started_total",
			Help: "Total call sessions registered",
		},
	)

	CallsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_calls_ended_total",
			Help: "Total call sessions removed by end reason",
		},
		[]string{"reason"}, // "hangup", "rejected", "user_disconnected", "expired"
	)

	// API metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "realtime_api_request_duration_seconds",
			Help:    "Duration of HTTP API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_api_requests_active",
			Help: "Current number of in-flight HTTP API requests",
		},
	)
)

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, path string, status int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIRequestsActive.Inc()
	} else {
		APIRequestsActive.Dec()
	}
}

// RecordDelivery records the outcome of a targeted event delivery.
func RecordDelivery(event string, delivered bool) {
	if delivered {
		EventsDelivered.WithLabelValues(event).Inc()
	} else {
		EventsDropped.WithLabelValues(event, "offline").Inc()
	}
}
