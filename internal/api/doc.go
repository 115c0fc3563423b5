// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

// Package api exposes the HTTP surface of the progress tracker.
//
// The router is built on chi with CORS and per-group rate limiting.
// Every response uses the models.APIResponse envelope. Player event
// ingest is asynchronous: POST /api/v1/events returns 202 once the
// event is accepted by the session manager, and clients observe
// checkpoint results through the read endpoints or the WebSocket
// channel.
package api
