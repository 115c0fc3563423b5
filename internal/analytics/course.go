// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package analytics

import (
	"math"

	"github.com/mentis-edu/mentis/internal/models"
)

// CourseProgressFor rolls up a learner's lesson records within one course.
//
// Pure function: enrollment supplies the denominators (total lessons,
// assignments) and the lesson records supply the numerators. A nil
// enrollment or a course with zero lessons yields a zero percentage, never
// a division error.
func CourseProgressFor(learnerID, courseID string, enrollment *models.Enrollment, lessons []*models.LessonProgress) *models.CourseProgress {
	cp := &models.CourseProgress{
		LearnerID: learnerID,
		CourseID:  courseID,
	}
	if enrollment != nil {
		cp.EnrollmentDate = enrollment.EnrolledAt
		cp.TotalLessons = enrollment.TotalLessons
		cp.TotalAssignments = enrollment.TotalAssignments
		cp.SubmittedAssignments = enrollment.SubmittedAssignments
	}

	for _, lesson := range lessons {
		if lesson.Status == models.StatusCompleted {
			cp.CompletedLessons++
		}
		cp.TotalTimeSpent += lesson.TimeSpent
	}

	if cp.TotalLessons > 0 {
		cp.CompletionPercentage = int(math.Round(
			float64(cp.CompletedLessons) / float64(cp.TotalLessons) * 100))
	}
	return cp
}
