// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package api

import (
	"net/http"
	"time"

	"github.com/mentis-edu/mentis/internal/progress"
	"github.com/mentis-edu/mentis/internal/validation"
)

// IngestEvent accepts a single player event and feeds it to the session
// manager. Responds 202: checkpointing is asynchronous and the effect is
// observable through the read endpoints.
func (h *Handler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var ev progress.PlayerEvent
	if err := decodeJSON(r, &ev); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	if verr := validation.ValidateStruct(&ev); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	if err := h.manager.HandleEvent(r.Context(), &ev); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Event rejected", err)
		return
	}

	respondSuccess(w, http.StatusAccepted, map[string]string{
		"session": ev.SessionKey(),
	}, start)
}
