// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

// Package store persists progress records in an embedded BadgerDB key-value
// store.
//
// Key layout:
//
//	progress:<learner>:<lesson>          LessonProgress JSON
//	courseidx:<learner>:<course>:<lesson> lesson id (course membership index)
//	enroll:<learner>:<course>            Enrollment JSON
//	activity:<learner>:<YYYY-MM-DD>      daily activity marker (streak source)
//
// UpsertLesson carries the monotonic last-writer-wins guard: a checkpoint
// whose accumulated watch time is older than what is already stored is
// discarded, so out-of-order or retried checkpoints can never roll state
// back. Status, observed-max cursor and percent watched are merged
// monotonically for the same reason.
package store
