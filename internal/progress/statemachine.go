// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package progress

import (
	"time"

	"github.com/mentis-edu/mentis/internal/models"
)

// DefaultCompletionPercent is the percent-watched threshold at which a
// lesson transitions to completed.
const DefaultCompletionPercent = 90

// advanceStatus applies the lesson status state machine to a record and
// reports whether the completion transition fired.
//
// Transitions are monotonic forward only:
//
//	not_started → in_progress    on the first checkpoint
//	in_progress → completed      once, when PercentWatched >= threshold
//
// A record that is already completed is never touched, regardless of the
// current percentage: a later rewind must not demote the lesson, and a
// retried checkpoint must not fire the completion signal again.
func advanceStatus(record *models.LessonProgress, completionPercent int, now time.Time) (completedNow bool) {
	if completionPercent <= 0 {
		completionPercent = DefaultCompletionPercent
	}

	switch record.Status {
	case models.StatusCompleted:
		return false
	case "", models.StatusNotStarted:
		record.Status = models.StatusInProgress
	case models.StatusInProgress:
		// stays until the threshold is reached
	}

	if record.PercentWatched >= completionPercent {
		record.Status = models.StatusCompleted
		t := now.UTC()
		record.CompletedAt = &t
		return true
	}
	return false
}

// ForceComplete marks a record completed regardless of percentage, used for
// the learner's explicit mark-complete action. Returns true when the record
// transitioned; calling it on an already-completed record is a no-op.
func ForceComplete(record *models.LessonProgress, now time.Time) bool {
	if record.Status == models.StatusCompleted {
		return false
	}
	record.Status = models.StatusCompleted
	t := now.UTC()
	record.CompletedAt = &t
	return true
}
