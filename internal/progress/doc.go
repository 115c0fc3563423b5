// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

// Package progress implements the learner progress tracking engine.
//
// The engine converts a noisy stream of media-player events into durable
// per-lesson completion records:
//
//	player events → SampleFilter → Accumulator → checkpoint (Session)
//	                                    ↓
//	                          status transitions (advanceStatus)
//	                                    ↓
//	                     completion event on the message bus
//
// A Session owns the in-memory state for one learner×lesson playback
// session: the seek filter, the watch-time accumulator, and the checkpoint
// scheduler. Checkpoints carry full snapshots and persist asynchronously so
// that a slow or failing store never blocks accumulation; failed writes are
// retried on the next trigger with nothing lost.
//
// The Manager routes incoming events to sessions, enforces the
// one-active-session-per-learner-per-lesson model, and reaps idle sessions.
// BookmarkService handles bookmark creation and lookup, which bypasses
// checkpoint batching entirely.
package progress
