// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

// Package metrics provides Prometheus metrics for observability.
//
// Metrics are exposed at the /metrics endpoint in Prometheus text format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Session Metrics
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "progress_active_sessions",
			Help: "Current number of active playback sessions",
		},
	)

	SessionsReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_sessions_reaped_total",
			Help: "Total number of idle sessions closed by the reaper",
		},
	)

	PlayerEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_player_events_total",
			Help: "Total number of player events ingested",
		},
		[]string{"kind"},
	)

	SeeksFiltered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_seeks_filtered_total",
			Help: "Total number of cursor deltas discarded as seeks/scrubs",
		},
	)

	// Checkpoint Metrics
	CheckpointsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_checkpoints_total",
			Help: "Total number of checkpoint persistence attempts",
		},
		[]string{"trigger", "outcome"},
	)

	CheckpointDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "progress_checkpoint_duration_seconds",
			Help:    "Checkpoint persistence duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	LessonsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_lessons_completed_total",
			Help: "Total number of lesson completion transitions",
		},
	)

	// Store Metrics
	StoreBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_circuit_breaker_state",
			Help: "Store circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	StoreErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Total number of store operation failures",
		},
	)

	// WebSocket Metrics
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connected_clients",
			Help: "Current number of connected WebSocket clients",
		},
	)
)
