// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

// Package main is the entry point for the Mentis server.
//
// Mentis tracks learner progress for self-hosted education platforms:
// it ingests raw player events, converts them into authentic watch time,
// checkpoints progress, and serves per-lesson, per-course, and per-learner
// views over a REST API with WebSocket push for completions.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered loading via Koanf v2 (defaults, YAML, env)
//  2. Progress store: BadgerDB key-value store for checkpoints
//  3. Event bus: in-process Watermill pub/sub for completion events
//  4. Session manager: per-session playback tracking with an idle reaper
//  5. WebSocket hub and relay: real-time push to connected clients
//  6. HTTP server: REST API under /api/v1 plus /metrics
//
// All long-running components run under a suture supervisor tree, so a
// crash in one layer restarts that layer without taking the process down.
//
// # Configuration
//
// Settings come from MENTIS_-prefixed environment variables, an optional
// config.yaml (path overridable via CONFIG_PATH), and built-in defaults —
// highest priority first. See internal/config.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains,
// every active session gets a final checkpoint, and the store closes last.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mentis-edu/mentis/internal/analytics"
	"github.com/mentis-edu/mentis/internal/api"
	"github.com/mentis-edu/mentis/internal/config"
	"github.com/mentis-edu/mentis/internal/eventbus"
	"github.com/mentis-edu/mentis/internal/logging"
	"github.com/mentis-edu/mentis/internal/progress"
	"github.com/mentis-edu/mentis/internal/store"
	"github.com/mentis-edu/mentis/internal/supervisor"
	"github.com/mentis-edu/mentis/internal/supervisor/services"
	ws "github.com/mentis-edu/mentis/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("store_path", cfg.Store.Path).
		Str("addr", cfg.Server.Addr()).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Mentis")

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open progress store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Msg("Progress store opened")

	bus := eventbus.New()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session manager with config-driven tracking parameters.
	mgrCfg := progress.DefaultManagerConfig()
	mgrCfg.Session.SeekThreshold = cfg.Tracking.SeekThreshold
	mgrCfg.Session.CheckpointInterval = cfg.Tracking.CheckpointInterval.Seconds()
	mgrCfg.Session.CompletionPercent = cfg.Tracking.CompletionPercent
	mgrCfg.Session.FinalFlushTimeout = cfg.Tracking.FinalFlushTimeout
	mgrCfg.IdleTimeout = cfg.Tracking.IdleTimeout
	manager := progress.NewManager(mgrCfg, st, bus)

	wsHub := ws.NewHub()
	relay := ws.NewRelay(wsHub, bus)

	handler := api.NewHandler(cfg, manager, st, analytics.NewService(st), progress.NewBookmarkService(st), wsHub)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	// Bridge zerolog to slog for sutureslog.
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddTrackingService(services.NewTrackingService(manager))
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(relay)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
