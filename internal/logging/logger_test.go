// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"disabled", zerolog.Disabled},
		{"INFO", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("learner_id", "l-1").Msg("session started")

	out := buf.String()
	if !strings.Contains(out, `"learner_id":"l-1"`) {
		t.Errorf("expected structured field in output, got %q", out)
	}
	if !strings.Contains(out, `"message":"session started"`) {
		t.Errorf("expected message in output, got %q", out)
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	orig := Logger()
	defer SetLogger(orig)

	SetLogger(NewTestLogger(&buf))
	Info().Msg("captured")

	if !strings.Contains(buf.String(), "captured") {
		t.Errorf("expected log output to be captured, got %q", buf.String())
	}
}

func TestSlogHandlerWritesToZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	slogger := slog.New(NewSlogHandlerWithLogger(logger))
	slogger.Info("supervisor event", slog.String("service", "hub"))

	out := buf.String()
	if !strings.Contains(out, "supervisor event") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, `"service":"hub"`) {
		t.Errorf("expected attr in output, got %q", out)
	}
}

func TestSlogHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	slogger := slog.New(NewSlogHandlerWithLogger(logger)).WithGroup("restart")
	slogger.Warn("service backoff", slog.Int("count", 3))

	if !strings.Contains(buf.String(), `"restart.count":3`) {
		t.Errorf("expected grouped attr, got %q", buf.String())
	}
}
