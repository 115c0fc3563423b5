// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package eventbus

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/mentis-edu/mentis/internal/logging"
)

// watermillLogger adapts Watermill's LoggerAdapter onto zerolog.
type watermillLogger struct {
	fields watermill.LogFields
}

func newWatermillLogger() watermill.LoggerAdapter {
	return &watermillLogger{}
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	ev := logging.Error().Err(err)
	for k, v := range l.fields.Add(fields) {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	ev := logging.Debug() // watermill's Info is noisy; demote to debug
	for k, v := range l.fields.Add(fields) {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	ev := logging.Debug()
	for k, v := range l.fields.Add(fields) {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	ev := logging.Debug()
	for k, v := range l.fields.Add(fields) {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{fields: l.fields.Add(fields)}
}
