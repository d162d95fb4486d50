// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package service

import (
	"context"
	"time"

	"github.com/danakm/tidesweep/internal/cache"
	"github.com/danakm/tidesweep/internal/geo"
	"github.com/danakm/tidesweep/internal/logging"
	"github.com/danakm/tidesweep/internal/weather"
)

// weatherTTL keeps current conditions for ten minutes. The provider's
// free tier is 1000 calls/day, and conditions do not change faster.
const weatherTTL = 10 * time.Minute

// ConditionsProvider is the weather client surface the service consumes.
type ConditionsProvider interface {
	Current(ctx context.Context, lat, lng float64) (*weather.Observation, error)
	Forecast(ctx context.Context, lat, lng float64) ([]weather.ForecastEntry, error)
}

// WeatherService serves cleanup-day conditions with the memory tier in
// front of the provider. There is no durable or demo tier: stale weather
// is worse than no weather.
type WeatherService struct {
	provider ConditionsProvider
	memory   *cache.Memory
}

// NewWeatherService builds a WeatherService from its dependencies.
func NewWeatherService(provider ConditionsProvider, memory *cache.Memory) *WeatherService {
	return &WeatherService{provider: provider, memory: memory}
}

// WeatherResult is the outcome of a current-conditions lookup.
type WeatherResult struct {
	Success        bool                 `json:"success"`
	Weather        *weather.Observation `json:"weather"`
	Recommendation string               `json:"recommendation,omitempty"`
	Suitable       bool                 `json:"suitable"`
	Source         Source               `json:"source,omitempty"`
	Error          string               `json:"error,omitempty"`
}

// ForecastResult is the outcome of a forecast lookup. A provider failure
// degrades to an empty forecast with a warning rather than an error; the
// forecast is decoration on the campaign page, never load-bearing.
type ForecastResult struct {
	Success  bool                    `json:"success"`
	Forecast []weather.ForecastEntry `json:"forecast"`
	Source   Source                  `json:"source,omitempty"`
	Warning  string                  `json:"warning,omitempty"`
}

// GetCurrentWeather returns the conditions at the coordinates, with the
// cleanup recommendation and suitability verdict derived from them.
func (s *WeatherService) GetCurrentWeather(ctx context.Context, lat, lng float64) WeatherResult {
	key := weatherCacheKey("weather:current", lat, lng)

	if v, ok := s.memory.Get(key); ok {
		if obs, ok := v.(*weather.Observation); ok {
			recordCacheHit("memory")
			recordSource("weather", SourceMemory)
			return currentResult(obs, SourceMemory)
		}
	}
	recordCacheMiss("memory")

	obs, err := s.provider.Current(ctx, lat, lng)
	if err != nil {
		logging.Warn().Err(err).Float64("lat", lat).Float64("lng", lng).Msg("Weather lookup failed")
		recordSource("weather", sourceFailure)
		return WeatherResult{Error: errMessage(err)}
	}

	s.memory.Set(key, obs, weatherTTL)
	recordSource("weather", SourceAPI)
	return currentResult(obs, SourceAPI)
}

// GetForecast returns up to 24 hours of 3-hour forecast slots.
func (s *WeatherService) GetForecast(ctx context.Context, lat, lng float64) ForecastResult {
	key := weatherCacheKey("weather:forecast", lat, lng)

	if v, ok := s.memory.Get(key); ok {
		if entries, ok := v.([]weather.ForecastEntry); ok {
			recordCacheHit("memory")
			recordSource("weather-forecast", SourceMemory)
			return ForecastResult{Success: true, Forecast: entries, Source: SourceMemory}
		}
	}
	recordCacheMiss("memory")

	entries, err := s.provider.Forecast(ctx, lat, lng)
	if err != nil {
		logging.Warn().Err(err).Msg("Weather forecast failed, serving empty forecast")
		recordSource("weather-forecast", sourceFailure)
		return ForecastResult{Success: true, Forecast: []weather.ForecastEntry{}, Warning: errMessage(err)}
	}

	s.memory.Set(key, entries, weatherTTL)
	recordSource("weather-forecast", SourceAPI)
	return ForecastResult{Success: true, Forecast: entries, Source: SourceAPI}
}

func currentResult(obs *weather.Observation, source Source) WeatherResult {
	return WeatherResult{
		Success:        true,
		Weather:        obs,
		Recommendation: weather.Recommendation(obs),
		Suitable:       weather.Suitable(obs),
		Source:         source,
	}
}

// weatherCacheKey rounds coordinates to two decimals (about a kilometer)
// so nearby callers share an entry.
func weatherCacheKey(prefix string, lat, lng float64) string {
	return cache.CreateKey(prefix, map[string]interface{}{
		"lat": geo.RoundDecimals(lat, 2),
		"lng": geo.RoundDecimals(lng, 2),
	})
}
