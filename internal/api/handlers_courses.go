// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mentis-edu/mentis/internal/models"
	"github.com/mentis-edu/mentis/internal/validation"
)

// PutEnrollmentRequest is the payload written by the enrollment service
// when a learner joins a course or the course structure changes.
type PutEnrollmentRequest struct {
	TotalLessons         int `json:"total_lessons" validate:"gte=0"`
	TotalAssignments     int `json:"total_assignments" validate:"gte=0"`
	SubmittedAssignments int `json:"submitted_assignments" validate:"gte=0"`
}

// PutEnrollment upserts the enrollment record for a learner/course pair.
func (h *Handler) PutEnrollment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	learnerID := chi.URLParam(r, "learnerID")
	courseID := chi.URLParam(r, "courseID")

	var req PutEnrollmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	enrollment := &models.Enrollment{
		LearnerID:            learnerID,
		CourseID:             courseID,
		EnrolledAt:           time.Now().UTC(),
		TotalLessons:         req.TotalLessons,
		TotalAssignments:     req.TotalAssignments,
		SubmittedAssignments: req.SubmittedAssignments,
	}

	if existing, err := h.store.GetEnrollment(r.Context(), learnerID, courseID); err == nil {
		enrollment.EnrolledAt = existing.EnrolledAt
	}

	if err := h.store.PutEnrollment(r.Context(), enrollment); err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to store enrollment", err)
		return
	}

	respondSuccess(w, http.StatusOK, enrollment, start)
}

// CourseProgress returns the aggregated progress for a learner's course.
// Available even for learners with no recorded activity yet: the
// aggregate is all zeros in that case.
func (h *Handler) CourseProgress(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	learnerID := chi.URLParam(r, "learnerID")
	courseID := chi.URLParam(r, "courseID")

	aggregate, err := h.analytics.CourseProgress(r.Context(), learnerID, courseID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to compute course progress", err)
		return
	}

	respondSuccess(w, http.StatusOK, aggregate, start)
}

// LearnerAnalytics returns the learner's cross-course analytics: per-course
// aggregates, completion rate, current streak and achievements.
func (h *Handler) LearnerAnalytics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	learnerID := chi.URLParam(r, "learnerID")

	result, err := h.analytics.LearnerAnalytics(r.Context(), learnerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to compute analytics", err)
		return
	}

	respondSuccess(w, http.StatusOK, result, start)
}
