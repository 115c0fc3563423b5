// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package api

import (
	"net/http"
	"time"

	"github.com/mentis-edu/mentis/internal/models"
)

// HealthStatus is the payload of the composite health endpoint.
type HealthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	StoreConnected bool    `json:"store_connected"`
	ActiveSessions int     `json:"active_sessions"`
	Uptime         float64 `json:"uptime_seconds"`
}

// Health reports overall service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	storeConnected := h.store != nil && h.store.Ping() == nil

	status := "healthy"
	if !storeConnected {
		status = "degraded"
	}

	health := HealthStatus{
		Status:         status,
		Version:        "1.0.0",
		StoreConnected: storeConnected,
		ActiveSessions: h.manager.Active(),
		Uptime:         time.Since(h.startTime).Seconds(),
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive is the liveness probe: the process is up and serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "alive"},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady is the readiness probe: the store must answer.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.store == nil || h.store.Ping() != nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Store is not ready", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "ready"},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
