// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mentis-edu/mentis/internal/metrics"
)

// PrometheusMetrics records request counts and latency for every route.
// The route pattern (e.g. /api/v1/learners/{learnerID}/lessons/{lessonID})
// is used as the endpoint label so path parameters don't explode
// cardinality.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapper, r)

		endpoint := routePattern(r)
		duration := time.Since(start)

		metrics.APIRequestsTotal.WithLabelValues(
			r.Method, endpoint, strconv.Itoa(wrapper.statusCode),
		).Inc()
		metrics.APIRequestDuration.WithLabelValues(
			r.Method, endpoint,
		).Observe(duration.Seconds())
	})
}

// routePattern returns the chi route pattern, falling back to the raw
// path when the request never matched a route.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code
func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
