// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mentis-edu/mentis/internal/models"
	"github.com/mentis-edu/mentis/internal/progress"
	"github.com/mentis-edu/mentis/internal/store"
	"github.com/mentis-edu/mentis/internal/validation"
)

// lessonProgressResponse is a LessonProgress plus the resume hint players
// feed to seekTo on reopen.
type lessonProgressResponse struct {
	*models.LessonProgress
	ResumeFrom float64 `json:"resume_from"`
}

func lessonResponse(record *models.LessonProgress) *lessonProgressResponse {
	return &lessonProgressResponse{
		LessonProgress: record,
		ResumeFrom:     record.ResumeFrom(),
	}
}

// LessonProgress returns the progress record for one learner/lesson pair.
// A live session snapshot wins over the stored record so readers see
// unsaved watch time.
func (h *Handler) LessonProgress(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	learnerID := chi.URLParam(r, "learnerID")
	lessonID := chi.URLParam(r, "lessonID")

	if record := h.manager.Snapshot(learnerID, lessonID); record != nil {
		respondSuccess(w, http.StatusOK, lessonResponse(record), start)
		return
	}

	record, err := h.store.GetLesson(r.Context(), learnerID, lessonID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "No progress recorded for this lesson", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to read progress", err)
		return
	}

	respondSuccess(w, http.StatusOK, lessonResponse(record), start)
}

// MarkComplete marks a lesson completed regardless of watch percentage.
// Idempotent: completing a completed lesson is a no-op success.
func (h *Handler) MarkComplete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	learnerID := chi.URLParam(r, "learnerID")
	lessonID := chi.URLParam(r, "lessonID")
	courseID := r.URL.Query().Get("course_id")
	if courseID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "course_id query parameter is required", nil)
		return
	}

	record, err := h.manager.MarkComplete(r.Context(), learnerID, courseID, lessonID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to mark lesson complete", err)
		return
	}

	respondSuccess(w, http.StatusOK, lessonResponse(record), start)
}

// AddBookmarkRequest is the payload for creating a bookmark.
type AddBookmarkRequest struct {
	Timestamp float64 `json:"timestamp" validate:"gte=0"`
	Title     string  `json:"title" validate:"required,max=200"`
	Note      string  `json:"note,omitempty" validate:"max=2000"`
}

// AddBookmark creates a bookmark on a lesson's progress record.
func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	learnerID := chi.URLParam(r, "learnerID")
	lessonID := chi.URLParam(r, "lessonID")

	var req AddBookmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	bookmark, err := h.bookmarks.Add(r.Context(), learnerID, lessonID, req.Timestamp, req.Title, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(w, http.StatusNotFound, "NOT_FOUND", "No progress recorded for this lesson", nil)
		case errors.Is(err, progress.ErrEmptyBookmarkTitle), errors.Is(err, progress.ErrBookmarkOutOfRange):
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		default:
			respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to add bookmark", err)
		}
		return
	}

	respondSuccess(w, http.StatusCreated, bookmark, start)
}

// ListBookmarks returns all bookmarks on a lesson's progress record.
func (h *Handler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	learnerID := chi.URLParam(r, "learnerID")
	lessonID := chi.URLParam(r, "lessonID")

	bookmarks, err := h.bookmarks.List(r.Context(), learnerID, lessonID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "No progress recorded for this lesson", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to list bookmarks", err)
		return
	}

	respondSuccess(w, http.StatusOK, bookmarks, start)
}

// JumpBookmark resolves a bookmark to the playback position the player
// should seek to.
func (h *Handler) JumpBookmark(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	learnerID := chi.URLParam(r, "learnerID")
	lessonID := chi.URLParam(r, "lessonID")
	bookmarkID := chi.URLParam(r, "bookmarkID")

	position, err := h.bookmarks.Jump(r.Context(), learnerID, lessonID, bookmarkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, progress.ErrBookmarkNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Bookmark not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to resolve bookmark", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]float64{"position": position}, start)
}
