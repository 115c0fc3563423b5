// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/mentis-edu/mentis/internal/models"
	"github.com/mentis-edu/mentis/internal/store"
)

// Reader is the read surface the aggregators need. The badger store
// satisfies it.
type Reader interface {
	ListLessonsByCourse(ctx context.Context, learnerID, courseID string) ([]*models.LessonProgress, error)
	GetEnrollment(ctx context.Context, learnerID, courseID string) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, learnerID string) ([]*models.Enrollment, error)
	ActivityDays(ctx context.Context, learnerID string) (map[string]bool, error)
}

// Service computes aggregates on read. No caching: the aggregation is cheap
// relative to request volume, and recompute-on-read keeps the derived views
// trivially consistent with the underlying records.
type Service struct {
	reader Reader
}

// NewService creates an analytics service over the given reader.
func NewService(reader Reader) *Service {
	return &Service{reader: reader}
}

// CourseProgress recomputes the derived course view for a learner.
// A learner with no enrollment record gets zeroed denominators.
func (s *Service) CourseProgress(ctx context.Context, learnerID, courseID string) (*models.CourseProgress, error) {
	enrollment, err := s.reader.GetEnrollment(ctx, learnerID, courseID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	lessons, err := s.reader.ListLessonsByCourse(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}

	return CourseProgressFor(learnerID, courseID, enrollment, lessons), nil
}

// LearnerAnalytics recomputes the derived cross-course view for a learner.
func (s *Service) LearnerAnalytics(ctx context.Context, learnerID string) (*models.ProgressAnalytics, error) {
	enrollments, err := s.reader.ListEnrollments(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	courses := make([]*models.CourseProgress, 0, len(enrollments))
	for _, enrollment := range enrollments {
		lessons, err := s.reader.ListLessonsByCourse(ctx, learnerID, enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		courses = append(courses, CourseProgressFor(learnerID, enrollment.CourseID, enrollment, lessons))
	}

	activityDays, err := s.reader.ActivityDays(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	return LearnerAnalyticsFor(learnerID, courses, activityDays, time.Now()), nil
}
