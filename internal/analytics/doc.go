// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

// Package analytics derives course-level and learner-level aggregates from
// lesson progress records.
//
// The aggregation functions are pure: given the same records they always
// produce the same result, and they never touch storage themselves. The
// Service wraps them with reads from the store, recomputing on every
// request; correctness never depends on caching.
package analytics
