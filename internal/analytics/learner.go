// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package analytics

import (
	"time"

	"github.com/mentis-edu/mentis/internal/models"
)

// LearnerAnalyticsFor rolls up a learner's course-level aggregates into
// cross-course statistics for dashboards.
//
// Pure and deterministic: recomputing on unchanged inputs yields an
// identical result. Empty inputs yield zeroed aggregates, never nil
// propagation into percentage math.
func LearnerAnalyticsFor(learnerID string, courses []*models.CourseProgress, activityDays map[string]bool, now time.Time) *models.ProgressAnalytics {
	pa := &models.ProgressAnalytics{
		LearnerID:    learnerID,
		TotalCourses: len(courses),
	}

	for _, course := range courses {
		if course.Completed() {
			pa.CompletedCourses++
		}
		pa.TotalLessons += course.TotalLessons
		pa.CompletedLessons += course.CompletedLessons
		pa.TotalAssignments += course.TotalAssignments
		pa.SubmittedAssignments += course.SubmittedAssignments
		pa.TotalTimeSpent += course.TotalTimeSpent
	}

	if pa.TotalLessons > 0 {
		pa.CompletionRate = float64(pa.CompletedLessons) / float64(pa.TotalLessons) * 100
	}
	pa.CurrentStreak = CurrentStreak(activityDays, now)
	pa.Achievements = Evaluate(pa)
	return pa
}
