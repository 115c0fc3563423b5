// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mentis-edu/mentis/internal/analytics"
	"github.com/mentis-edu/mentis/internal/config"
	"github.com/mentis-edu/mentis/internal/logging"
	"github.com/mentis-edu/mentis/internal/progress"
	"github.com/mentis-edu/mentis/internal/store"
	ws "github.com/mentis-edu/mentis/internal/websocket"
)

// Handler aggregates the services behind the HTTP endpoints.
type Handler struct {
	cfg       *config.Config
	manager   *progress.Manager
	store     *store.Store
	analytics *analytics.Service
	bookmarks *progress.BookmarkService
	wsHub     *ws.Hub
	startTime time.Time
}

// NewHandler creates a Handler wired to the given services. wsHub may be
// nil, in which case the WebSocket endpoint responds 503.
func NewHandler(
	cfg *config.Config,
	manager *progress.Manager,
	st *store.Store,
	analyticsSvc *analytics.Service,
	bookmarks *progress.BookmarkService,
	wsHub *ws.Hub,
) *Handler {
	return &Handler{
		cfg:       cfg,
		manager:   manager,
		store:     st,
		analytics: analyticsSvc,
		bookmarks: bookmarks,
		wsHub:     wsHub,
		startTime: time.Now(),
	}
}

// WebSocket upgrades the connection and attaches the client to the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	ws.NewClient(h.wsHub, conn).Start()
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout against slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins.
// Browser WebSockets always include Origin; an empty Origin means a
// non-browser client, which we accept since CORS does not apply to it.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	// If config is nil, allow by default (tests/development)
	if h.cfg == nil {
		return true
	}

	for _, allowed := range h.cfg.Server.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected: origin not allowed")
	return false
}
