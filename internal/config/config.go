// Mentis - Learner Progress Tracking for Education Platforms
// Copyright 2026 Mentis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mentis-edu/mentis

package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Mentis server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Tracking TrackingConfig `koanf:"tracking"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
	CORSOrigins []string      `koanf:"cors_origins"`
}

// StoreConfig holds progress store settings.
// An empty Path opens an in-memory store, used by tests and demos.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// TrackingConfig holds playback tracking tunables.
type TrackingConfig struct {
	// SeekThreshold is the largest forward position jump (seconds) still
	// counted as authentic watching. Larger jumps are treated as seeks.
	SeekThreshold float64 `koanf:"seek_threshold"`

	// CheckpointInterval is how much unsaved watch time accumulates
	// before a checkpoint is persisted.
	CheckpointInterval time.Duration `koanf:"checkpoint_interval"`

	// CompletionPercent is the watched percentage at which a lesson is
	// marked completed.
	CompletionPercent int `koanf:"completion_percent"`

	// IdleTimeout is how long a session may go without events before the
	// reaper flushes and discards it.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// FinalFlushTimeout bounds the synchronous checkpoint performed when
	// a session ends.
	FinalFlushTimeout time.Duration `koanf:"final_flush_timeout"`
}

// APIConfig holds API behavior settings.
type APIConfig struct {
	DefaultPageSize   int           `koanf:"default_page_size"`
	MaxPageSize       int           `koanf:"max_page_size"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8480,
			Timeout:     30 * time.Second,
			Environment: "development",
			CORSOrigins: []string{"*"},
		},
		Store: StoreConfig{
			Path: "/data/mentis",
		},
		Tracking: TrackingConfig{
			SeekThreshold:      5.0,
			CheckpointInterval: 30 * time.Second,
			CompletionPercent:  90,
			IdleTimeout:        5 * time.Minute,
			FinalFlushTimeout:  2 * time.Second,
		},
		API: APIConfig{
			DefaultPageSize:   20,
			MaxPageSize:       100,
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	if c.Tracking.SeekThreshold <= 0 {
		return fmt.Errorf("tracking.seek_threshold must be positive, got %g", c.Tracking.SeekThreshold)
	}
	if c.Tracking.CheckpointInterval <= 0 {
		return fmt.Errorf("tracking.checkpoint_interval must be positive, got %s", c.Tracking.CheckpointInterval)
	}
	if c.Tracking.CompletionPercent < 1 || c.Tracking.CompletionPercent > 100 {
		return fmt.Errorf("tracking.completion_percent must be between 1 and 100, got %d", c.Tracking.CompletionPercent)
	}
	if c.Tracking.IdleTimeout <= 0 {
		return fmt.Errorf("tracking.idle_timeout must be positive, got %s", c.Tracking.IdleTimeout)
	}

	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
