// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package progress

import (
	"testing"
	"time"

	"github.com/mentis-edu/mentis/internal/models"
)

func TestAdvanceStatusFirstCheckpoint(t *testing.T) {
	record := &models.LessonProgress{Status: models.StatusNotStarted, PercentWatched: 10}

	if advanceStatus(record, 90, time.Now()) {
		t.Error("completion must not fire at 10%")
	}
	if record.Status != models.StatusInProgress {
		t.Errorf("status = %v, want in_progress", record.Status)
	}
}

func TestAdvanceStatusCompletionFiresOnce(t *testing.T) {
	record := &models.LessonProgress{Status: models.StatusInProgress, PercentWatched: 90}

	if !advanceStatus(record, 90, time.Now()) {
		t.Fatal("completion should fire at threshold")
	}
	if record.Status != models.StatusCompleted {
		t.Fatalf("status = %v, want completed", record.Status)
	}
	if record.CompletedAt == nil {
		t.Fatal("CompletedAt should be set on completion")
	}

	completedAt := *record.CompletedAt

	// A retried checkpoint must be a no-op.
	if advanceStatus(record, 90, time.Now().Add(time.Hour)) {
		t.Error("completion fired twice")
	}
	if !record.CompletedAt.Equal(completedAt) {
		t.Error("CompletedAt changed on retried transition")
	}
}

func TestAdvanceStatusNeverRegresses(t *testing.T) {
	now := time.Now().UTC()
	record := &models.LessonProgress{
		Status:         models.StatusCompleted,
		PercentWatched: 25, // learner rewound after completing
		CompletedAt:    &now,
	}

	if advanceStatus(record, 90, time.Now()) {
		t.Error("completed lesson must not re-fire")
	}
	if record.Status != models.StatusCompleted {
		t.Errorf("status regressed to %v", record.Status)
	}
}

func TestAdvanceStatusDirectToCompleted(t *testing.T) {
	// A fresh record can reach the threshold on its very first checkpoint.
	record := &models.LessonProgress{PercentWatched: 95}

	if !advanceStatus(record, 90, time.Now()) {
		t.Error("completion should fire immediately at 95%")
	}
}

func TestForceCompleteIdempotent(t *testing.T) {
	record := &models.LessonProgress{Status: models.StatusInProgress, PercentWatched: 40}

	if !ForceComplete(record, time.Now()) {
		t.Fatal("first ForceComplete should transition")
	}
	if ForceComplete(record, time.Now()) {
		t.Error("second ForceComplete should be a no-op")
	}
	if record.Status != models.StatusCompleted {
		t.Errorf("status = %v, want completed", record.Status)
	}
}
