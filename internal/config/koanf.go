// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tidesweep/config.yaml",
	"/etc/tidesweep/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "TIDESWEEP_CONFIG"

// envPrefix is stripped from environment variables before mapping.
const envPrefix = "TIDESWEEP_"

// Load assembles configuration from three layers: struct defaults, an
// optional YAML file, and TIDESWEEP_* environment variables (highest
// priority), then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile searches the override env var, then the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps flattened environment names to koanf paths for keys whose
// section boundary cannot be inferred from underscores alone.
var envMappings = map[string]string{
	"upstream_base_url":         "upstream.base_url",
	"upstream_hostname":         "upstream.hostname",
	"upstream_port":             "upstream.port",
	"upstream_timeout":          "upstream.timeout",
	"upstream_retry_attempts":   "upstream.retry_attempts",
	"upstream_retry_base_delay": "upstream.retry_base_delay",
	"server_host":               "server.host",
	"server_port":               "server.port",
	"server_timeout":            "server.timeout",
	"store_path":                "store.path",
	"store_in_memory":           "store.in_memory",
	"geocode_endpoint":          "geocode.endpoint",
	"geocode_language":          "geocode.language",
	"geocode_max_concurrent":    "geocode.max_concurrent",
	"geocode_request_timeout":   "geocode.request_timeout",
	"geocode_rate_per_second":   "geocode.rate_per_second",
	"weather_endpoint":          "weather.endpoint",
	"weather_api_key":           "weather.api_key",
	"weather_request_timeout":   "weather.request_timeout",
	"detection_enabled":         "detection.enabled",
	"detection_interval":        "detection.interval",
	"detection_frame_max_age":   "detection.frame_max_age",
	"cors_origins":              "security.cors_origins",
	"rate_limit_requests":       "security.rate_limit_requests",
	"rate_limit_window":         "security.rate_limit_window",
	"rate_limit_disabled":       "security.rate_limit_disabled",
	"log_level":                 "logging.level",
	"log_format":                "logging.format",
	"log_caller":                "logging.caller",
}

// envTransform converts TIDESWEEP_SERVER_PORT style names to koanf paths.
// Unknown names are dropped so unrelated environment variables with the
// prefix cannot corrupt nested config sections.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
