// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package validation

import (
	"strings"
	"testing"
)

type bookmarkRequest struct {
	Timestamp float64 `validate:"gte=0"`
	Title     string  `validate:"required,max=200"`
	Note      string  `validate:"max=2000"`
}

type eventRequest struct {
	EventType string  `validate:"required,oneof=time_update play pause ended navigate"`
	Position  float64 `validate:"gte=0"`
}

func TestValidateStructPasses(t *testing.T) {
	req := bookmarkRequest{Timestamp: 42.5, Title: "Key concept"}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructSingleError(t *testing.T) {
	req := bookmarkRequest{Timestamp: 42.5}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for missing title")
	}

	if got := len(err.Errors()); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
	if err.Errors()[0].Field() != "Title" {
		t.Errorf("expected Title field, got %s", err.Errors()[0].Field())
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR code, got %s", apiErr.Code)
	}
	if apiErr.Details["field"] != "Title" {
		t.Errorf("expected field detail Title, got %v", apiErr.Details["field"])
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	req := eventRequest{EventType: "rewind", Position: -3}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if got := len(err.Errors()); got != 2 {
		t.Fatalf("expected 2 errors, got %d", got)
	}

	apiErr := err.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("expected fields detail for multiple errors")
	}
	if !strings.Contains(apiErr.Message, "EventType") || !strings.Contains(apiErr.Message, "Position") {
		t.Errorf("combined message should mention both fields: %s", apiErr.Message)
	}
}

func TestTranslateOneof(t *testing.T) {
	req := eventRequest{EventType: "bogus", Position: 0}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Errors()[0].Error()
	if !strings.Contains(msg, "must be one of") {
		t.Errorf("expected oneof message, got %q", msg)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator should return the same instance")
	}
}
