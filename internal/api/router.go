// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mentis-edu/mentis/internal/config"
	"github.com/mentis-edu/mentis/internal/middleware"
)

// Router builds the chi route tree for the service.
type Router struct {
	handler *Handler
	cfg     *config.Config
}

// NewRouter creates a Router around the given handler.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup assembles the full route tree with global and per-group
// middleware. Rate limits are keyed by client IP; the event ingest group
// gets a higher allowance than the read endpoints since players emit
// time updates continuously.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.corsOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints: lightly limited, no metrics instrumentation.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.rateLimit(60, time.Minute))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Event ingest: players send a time_update roughly every second.
	r.Route("/api/v1/events", func(r chi.Router) {
		r.Use(router.rateLimit(600, time.Minute))
		r.Use(middleware.PrometheusMetrics)
		r.Post("/", router.handler.IngestEvent)
	})

	// Read and write endpoints for progress state.
	r.Route("/api/v1/learners/{learnerID}", func(r chi.Router) {
		r.Use(router.rateLimit(router.cfg.API.RateLimitReqs, router.cfg.API.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)

		r.Route("/lessons/{lessonID}", func(r chi.Router) {
			r.Get("/", router.handler.LessonProgress)
			r.Post("/complete", router.handler.MarkComplete)
			r.Post("/bookmarks", router.handler.AddBookmark)
			r.Get("/bookmarks", router.handler.ListBookmarks)
			r.Get("/bookmarks/{bookmarkID}/jump", router.handler.JumpBookmark)
		})

		r.Route("/courses/{courseID}", func(r chi.Router) {
			r.Put("/enrollment", router.handler.PutEnrollment)
			r.Get("/progress", router.handler.CourseProgress)
		})

		r.Get("/analytics", router.handler.LearnerAnalytics)
	})

	// WebSocket push channel.
	r.Get("/api/v1/ws", router.handler.WebSocket)

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (router *Router) corsOrigins() []string {
	if router.cfg == nil || len(router.cfg.Server.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return router.cfg.Server.CORSOrigins
}

// rateLimit returns an IP-keyed limiter, or a no-op when rate limiting
// is disabled in config.
func (router *Router) rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if router.cfg != nil && router.cfg.API.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests", nil)
		}),
	)
}
