// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

// Package metrics defines the gateway's Prometheus instrumentation:
// cache efficiency per tier, fallback-source distribution, geocoder
// queue pressure, upstream circuit breaker state, HTTP latency, and
// detection loop outcomes.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidesweep_cache_hits_total",
			Help: "Total cache hits by tier (memory, durable)",
		},
		[]string{"tier"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidesweep_cache_misses_total",
			Help: "Total cache misses by tier (memory, durable)",
		},
		[]string{"tier"},
	)

	// Fallback Metrics
	FallbackSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidesweep_fallback_source_total",
			Help: "Which source ultimately served each entity fetch",
		},
		[]string{"entity", "source"}, // source: memory, api, local-cache, mock-data, api-fallback
	)

	// Geocoder Metrics
	GeocodeInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tidesweep_geocode_in_flight",
			Help: "Reverse-geocode lookups currently in flight",
		},
	)

	GeocodeQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tidesweep_geocode_queue_depth",
			Help: "Reverse-geocode lookups waiting for a dispatch slot",
		},
	)

	GeocodeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidesweep_geocode_lookups_total",
			Help: "Completed reverse-geocode lookups by result",
		},
		[]string{"result"}, // cached, resolved, fallback
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tidesweep_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidesweep_circuit_breaker_requests_total",
			Help: "Circuit breaker request outcomes",
		},
		[]string{"breaker", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidesweep_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"breaker", "from", "to"},
	)

	// Upstream API Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tidesweep_upstream_request_duration_seconds",
			Help:    "Duration of upstream platform API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)

	// Gateway HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tidesweep_http_request_duration_seconds",
			Help:    "Duration of gateway HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidesweep_http_requests_total",
			Help: "Total gateway HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Detection Loop Metrics
	DetectionCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidesweep_detection_cycles_total",
			Help: "Live detection cycles by outcome (success, skipped, failure)",
		},
		[]string{"outcome"},
	)

	DetectionCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tidesweep_detection_cycle_duration_seconds",
			Help:    "Duration of completed live detection cycles",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 3, 5},
		},
	)

	// WebSocket Metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tidesweep_websocket_connections",
			Help: "Currently connected overlay stream clients",
		},
	)
)

// RecordHTTPRequest records one gateway request in both the latency
// histogram and the request counter.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
}

// RecordUpstreamRequest records one upstream platform API call.
func RecordUpstreamRequest(endpoint string, status int, duration time.Duration) {
	UpstreamRequestDuration.WithLabelValues(endpoint, strconv.Itoa(status)).Observe(duration.Seconds())
}
