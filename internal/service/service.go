// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package service

import (
	"time"

	"github.com/danakm/tidesweep/internal/cache"
	"github.com/danakm/tidesweep/internal/metrics"
	"github.com/danakm/tidesweep/internal/transform"
	"github.com/danakm/tidesweep/internal/upstream"
)

// Source tags where a result's data came from. Clients use it to
// distinguish fresh data from degraded fallbacks.
type Source string

const (
	// SourceMemory means the in-process cache answered.
	SourceMemory Source = "memory"
	// SourceAPI means the upstream platform answered and both cache
	// tiers were refreshed.
	SourceAPI Source = "api"
	// SourceLocalCache means the upstream failed and a durable-cache
	// entry inside its staleness window was served instead.
	SourceLocalCache Source = "local-cache"
	// SourceMockData means every real tier failed and built-in demo
	// data was served.
	SourceMockData Source = "mock-data"
	// SourceAPIFallback means the primary upstream path failed but a
	// secondary endpoint produced the answer.
	SourceAPIFallback Source = "api-fallback"

	// sourceFailure is a metrics-only label for requests no tier could
	// serve; failed results carry no source tag on the wire.
	sourceFailure Source = "failure"
)

// Cache policy. The memory tier is short-lived; the durable tier outlives
// it and additionally serves entries past their TTL up to a per-entity
// staleness cutoff when the upstream is unreachable.
const (
	memoryTTL = time.Minute

	campaignDurableTTL  = 15 * time.Minute
	volunteerDurableTTL = 10 * time.Minute
	reportDurableTTL    = 10 * time.Minute

	campaignStaleMaxAge  = time.Hour
	volunteerStaleMaxAge = 10 * time.Minute
	reportStaleMaxAge    = 12 * time.Hour
)

// Durable-tier keys. Listing caches are stored whole under one key per
// entity; memory keys additionally encode query parameters.
const (
	campaignsDurableKey  = "campaigns"
	volunteersDurableKey = "volunteers"
	reportsDurableKey    = "trash-reports"
)

const demoDataWarning = "Using demo data - API unavailable"

// Deps bundles what every service needs. Resolver may be nil when address
// resolution is not wanted (transforms then fall back to payload labels).
type Deps struct {
	API      upstream.API
	Memory   *cache.Memory
	Durable  *cache.Durable
	Resolver transform.AddressResolver
	Reports  *ReportStore
}

// recordSource bumps the per-entity fallback counter; called once per
// service result so the source distribution is visible in metrics.
func recordSource(entity string, source Source) {
	metrics.FallbackSource.WithLabelValues(entity, string(source)).Inc()
}

func recordCacheHit(tier string) {
	metrics.CacheHits.WithLabelValues(tier).Inc()
}

func recordCacheMiss(tier string) {
	metrics.CacheMisses.WithLabelValues(tier).Inc()
}

// errMessage is the client-facing form of an internal error.
func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
