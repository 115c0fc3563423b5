// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

// Package websocket pushes progress events to connected browsers.
//
// The Hub fans broadcast messages out to every registered Client; the
// Relay subscribes to the in-process event bus and turns lesson
// completion and checkpoint events into hub broadcasts. Both run as
// supervised services, so a failure in either restarts independently
// of the HTTP layer.
package websocket
