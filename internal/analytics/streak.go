// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package analytics

import (
	"time"

	"github.com/mentis-edu/mentis/internal/store"
)

// CurrentStreak counts consecutive calendar days (UTC) with at least one
// qualifying checkpoint, scanning backward from today.
//
// The run may end today or yesterday: a learner who studied every day
// through last night still holds their streak this morning. The first day
// with no qualifying activity before that breaks the run to 0.
func CurrentStreak(activityDays map[string]bool, now time.Time) int {
	day := now.UTC().Truncate(24 * time.Hour)

	// No activity today: the streak may still be alive from yesterday.
	if !activityDays[day.Format(store.DayFormat)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for activityDays[day.Format(store.DayFormat)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
