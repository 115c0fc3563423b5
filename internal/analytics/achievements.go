// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package analytics

import "github.com/mentis-edu/mentis/internal/models"

// achievementRule is a threshold-crossing predicate over the learner
// aggregate. Achievements are derived facts, not stored state, so
// re-evaluating them is always consistent with current data.
type achievementRule struct {
	badge models.Achievement
	holds func(*models.ProgressAnalytics) bool
}

var achievementRules = []achievementRule{
	{
		badge: models.Achievement{
			Code:        "first_course",
			Name:        "First Course",
			Description: "Completed your first course",
		},
		holds: func(pa *models.ProgressAnalytics) bool { return pa.CompletedCourses >= 1 },
	},
	{
		badge: models.Achievement{
			Code:        "course_collector",
			Name:        "Course Collector",
			Description: "Completed five courses",
		},
		holds: func(pa *models.ProgressAnalytics) bool { return pa.CompletedCourses >= 5 },
	},
	{
		badge: models.Achievement{
			Code:        "ten_lessons",
			Name:        "Getting Going",
			Description: "Completed ten lessons",
		},
		holds: func(pa *models.ProgressAnalytics) bool { return pa.CompletedLessons >= 10 },
	},
	{
		badge: models.Achievement{
			Code:        "hundred_lessons",
			Name:        "Centurion",
			Description: "Completed one hundred lessons",
		},
		holds: func(pa *models.ProgressAnalytics) bool { return pa.CompletedLessons >= 100 },
	},
	{
		badge: models.Achievement{
			Code:        "week_streak",
			Name:        "Week Streak",
			Description: "Studied seven days in a row",
		},
		holds: func(pa *models.ProgressAnalytics) bool { return pa.CurrentStreak >= 7 },
	},
	{
		badge: models.Achievement{
			Code:        "month_streak",
			Name:        "Month Streak",
			Description: "Studied thirty days in a row",
		},
		holds: func(pa *models.ProgressAnalytics) bool { return pa.CurrentStreak >= 30 },
	},
	{
		badge: models.Achievement{
			Code:        "marathon",
			Name:        "Marathon Learner",
			Description: "Ten hours of watch time",
		},
		holds: func(pa *models.ProgressAnalytics) bool { return pa.TotalTimeSpent >= 10*3600 },
	},
	{
		badge: models.Achievement{
			Code:        "high_achiever",
			Name:        "High Achiever",
			Description: "Completion rate of 90% or better",
		},
		holds: func(pa *models.ProgressAnalytics) bool {
			return pa.TotalLessons > 0 && pa.CompletionRate >= 90
		},
	},
}

// Evaluate returns the badges the learner's aggregate currently earns, in
// rule order.
func Evaluate(pa *models.ProgressAnalytics) []models.Achievement {
	earned := make([]models.Achievement, 0, len(achievementRules))
	for _, rule := range achievementRules {
		if rule.holds(pa) {
			earned = append(earned, rule.badge)
		}
	}
	return earned
}
