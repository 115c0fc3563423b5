// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

// Package logging provides centralized zerolog-based structured logging.
//
// All Mentis components log through this package: a single global zerolog
// logger configured once at startup, emitting JSON in production and
// human-readable console output in development.
//
// # Quick Start
//
//	import "github.com/mentis-edu/mentis/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("learner_id", learnerID).Msg("session started")
//	logging.Error().Err(err).Msg("checkpoint failed")
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	logging.Info().Str("lesson", id).Int("seconds", n).Msg("checkpoint")  // Correct
//	logging.Info().Msgf("checkpoint %d for %s", n, id)                    // Avoid
//
// The package also provides an slog adapter so libraries that require a
// *slog.Logger (suture's sutureslog event hook) write through zerolog.
package logging
