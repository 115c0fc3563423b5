// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mentis-edu/mentis/internal/models"
)

func lesson(id string, status models.LessonStatus, timeSpent float64) *models.LessonProgress {
	return &models.LessonProgress{
		LearnerID: "learner-1",
		CourseID:  "course-1",
		LessonID:  id,
		Status:    status,
		TimeSpent: timeSpent,
	}
}

func TestCourseProgressFor(t *testing.T) {
	enrollment := &models.Enrollment{
		LearnerID:            "learner-1",
		CourseID:             "course-1",
		EnrolledAt:           time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		TotalLessons:         8,
		TotalAssignments:     4,
		SubmittedAssignments: 2,
	}
	lessons := []*models.LessonProgress{
		lesson("l1", models.StatusCompleted, 600),
		lesson("l2", models.StatusCompleted, 450),
		lesson("l3", models.StatusInProgress, 120),
	}

	cp := CourseProgressFor("learner-1", "course-1", enrollment, lessons)

	assert.Equal(t, 8, cp.TotalLessons)
	assert.Equal(t, 2, cp.CompletedLessons)
	assert.Equal(t, 25, cp.CompletionPercentage) // round(2/8*100)
	assert.Equal(t, 1170.0, cp.TotalTimeSpent)
	assert.Equal(t, 2, cp.SubmittedAssignments)
	assert.Equal(t, enrollment.EnrolledAt, cp.EnrollmentDate)
}

func TestCourseProgressForZeroLessons(t *testing.T) {
	enrollment := &models.Enrollment{TotalLessons: 0}

	cp := CourseProgressFor("learner-1", "course-1", enrollment, nil)

	assert.Equal(t, 0, cp.CompletionPercentage, "zero-lesson course must be 0, never NaN")
	assert.Equal(t, 0, cp.CompletedLessons)
	assert.Equal(t, 0.0, cp.TotalTimeSpent)
}

func TestCourseProgressForNilEnrollment(t *testing.T) {
	lessons := []*models.LessonProgress{
		lesson("l1", models.StatusCompleted, 300),
	}

	cp := CourseProgressFor("learner-1", "course-1", nil, lessons)

	assert.Equal(t, 0, cp.TotalLessons)
	assert.Equal(t, 1, cp.CompletedLessons)
	assert.Equal(t, 0, cp.CompletionPercentage, "unknown denominator yields 0")
	assert.Equal(t, 300.0, cp.TotalTimeSpent)
}

func TestCourseProgressForRounding(t *testing.T) {
	enrollment := &models.Enrollment{TotalLessons: 3}
	lessons := []*models.LessonProgress{
		lesson("l1", models.StatusCompleted, 0),
		lesson("l2", models.StatusCompleted, 0),
	}

	cp := CourseProgressFor("learner-1", "course-1", enrollment, lessons)
	assert.Equal(t, 67, cp.CompletionPercentage) // round(2/3*100)
}

func TestCourseProgressDeterministic(t *testing.T) {
	enrollment := &models.Enrollment{TotalLessons: 5}
	lessons := []*models.LessonProgress{
		lesson("l1", models.StatusCompleted, 100),
		lesson("l2", models.StatusInProgress, 50),
	}

	a := CourseProgressFor("learner-1", "course-1", enrollment, lessons)
	b := CourseProgressFor("learner-1", "course-1", enrollment, lessons)
	assert.Equal(t, a, b, "pure function must be deterministic")
}
