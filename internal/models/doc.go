// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

// Package models defines the data types shared across Mentis components.
//
// The central type is LessonProgress, the durable per-learner-per-lesson
// record written by checkpoints. CourseProgress and ProgressAnalytics are
// derived views computed from LessonProgress and Enrollment records; they
// have no independent write path.
package models
