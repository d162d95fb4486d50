// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

// Package config loads and validates Tidesweep configuration from defaults,
// an optional YAML file, and TIDESWEEP_* environment variables (in that
// order of precedence, later layers winning).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the gateway.
type Config struct {
	Upstream  UpstreamConfig  `koanf:"upstream"`
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Geocode   GeocodeConfig   `koanf:"geocode"`
	Weather   WeatherConfig   `koanf:"weather"`
	Detection DetectionConfig `koanf:"detection"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// UpstreamConfig describes the cleanup platform API the gateway mediates.
//
// Base URL resolution: BaseURL wins when set; otherwise the URL is derived
// from Hostname plus Port; otherwise http://localhost:8000. This mirrors the
// resolution rule UI clients used before the gateway existed, so deployments
// that only set a hostname keep working.
type UpstreamConfig struct {
	BaseURL        string        `koanf:"base_url" validate:"omitempty,url"`
	Hostname       string        `koanf:"hostname"`
	Port           string        `koanf:"port"`
	Timeout        time.Duration `koanf:"timeout" validate:"min=1s"`
	RetryAttempts  int           `koanf:"retry_attempts" validate:"min=0,max=10"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
}

// ServerConfig holds the gateway's own HTTP listener settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
}

// StoreConfig holds the durable (BadgerDB) store settings.
// InMemory is used by tests; production deployments persist to Path.
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// GeocodeConfig holds reverse-geocoding settings. MaxConcurrent bounds the
// number of in-flight lookups against the upstream geocoding endpoint.
type GeocodeConfig struct {
	Endpoint       string        `koanf:"endpoint" validate:"omitempty,url"`
	Language       string        `koanf:"language"`
	MaxConcurrent  int           `koanf:"max_concurrent" validate:"min=1,max=64"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	RatePerSecond  float64       `koanf:"rate_per_second" validate:"min=0"`
}

// WeatherConfig holds OpenWeatherMap settings for cleanup-day conditions.
// The free tier allows 1000 calls/day, so current-conditions responses are
// cached; an empty APIKey leaves the endpoints mounted but every lookup
// failing with the provider's 401.
type WeatherConfig struct {
	Endpoint       string        `koanf:"endpoint" validate:"omitempty,url"`
	APIKey         string        `koanf:"api_key"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// DetectionConfig holds the live waste-detection poller settings.
type DetectionConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval" validate:"min=100ms"`
	// FrameMaxAge is how stale a pushed camera frame may be before the
	// poller treats the frame source as not ready and pauses.
	FrameMaxAge time.Duration `koanf:"frame_max_age"`
}

// SecurityConfig holds CORS and rate-limiting settings for the gateway API.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:        "",
			Hostname:       "",
			Port:           "8000",
			Timeout:        30 * time.Second,
			RetryAttempts:  5,
			RetryBaseDelay: 1 * time.Second,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    3857,
			Timeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Path:     "/data/tidesweep",
			InMemory: false,
		},
		Geocode: GeocodeConfig{
			Endpoint:       "https://nominatim.openstreetmap.org",
			Language:       "en",
			MaxConcurrent:  5,
			RequestTimeout: 5 * time.Second,
			RatePerSecond:  1,
		},
		Weather: WeatherConfig{
			Endpoint:       "https://api.openweathermap.org/data/2.5",
			APIKey:         "",
			RequestTimeout: 10 * time.Second,
		},
		Detection: DetectionConfig{
			Enabled:     false,
			Interval:    1500 * time.Millisecond,
			FrameMaxAge: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for structural validity.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
