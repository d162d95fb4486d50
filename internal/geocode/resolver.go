// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

// Package geocode resolves coordinates to human-readable addresses via a
// Nominatim-compatible endpoint. The resolver never fails: any error,
// non-2xx status, or undecodable payload resolves to the "Unknown
// location" fallback so normalization can always complete.
//
// Lookups are dispatched by a fixed pool of workers reading one FIFO
// queue, which bounds concurrency against the geocoding endpoint without
// starving queued requests. Identical in-flight lookups are coalesced,
// and resolved addresses are cached for a day keyed by coordinates
// rounded to five decimals plus the language tag.
package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/danakm/tidesweep/internal/cache"
	"github.com/danakm/tidesweep/internal/config"
	"github.com/danakm/tidesweep/internal/geo"
	"github.com/danakm/tidesweep/internal/logging"
	"github.com/danakm/tidesweep/internal/metrics"
	"github.com/danakm/tidesweep/internal/models"
)

// cacheTTL bounds how long a resolved address is reused. The client-era
// design kept the cache unbounded for a browser session; a long-running
// server needs expiry.
const cacheTTL = 24 * time.Hour

// queueCapacity bounds the dispatch queue. Enqueueing blocks when full,
// which backpressures bulk normalization instead of growing without
// limit.
const queueCapacity = 1024

// reverseResponse is the Nominatim reverse endpoint's payload.
type reverseResponse struct {
	Address     *StructuredAddress `json:"address"`
	DisplayName string             `json:"display_name"`
}

type lookup struct {
	key      string
	lat, lng float64
	done     chan struct{}
	address  string
}

// Resolver is the bounded-concurrency reverse geocoder.
type Resolver struct {
	endpoint string
	language string
	client   *http.Client
	limiter  *rate.Limiter
	cache    *cache.Memory

	mu      sync.Mutex
	pending map[string]*lookup
	closed  bool

	queue chan *lookup
	wg    sync.WaitGroup

	// enqueuers tracks Resolve calls that passed the closed check but
	// have not finished sending on queue. Close waits for them before
	// closing the channel.
	enqueuers sync.WaitGroup
}

// NewResolver starts a resolver with cfg.MaxConcurrent dispatch workers.
// Call Close when done to stop the workers.
func NewResolver(cfg config.GeocodeConfig) *Resolver {
	r := &Resolver{
		endpoint: cfg.Endpoint,
		language: cfg.Language,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.MaxConcurrent),
		cache:    cache.NewMemory(),
		pending:  make(map[string]*lookup),
		queue:    make(chan *lookup, queueCapacity),
	}

	for i := 0; i < cfg.MaxConcurrent; i++ {
		r.wg.Add(1)
		go r.worker()
	}

	return r
}

// Resolve returns an address for the coordinates. It never returns an
// error: on any failure the result is the "Unknown location" fallback.
// Cancelling ctx stops waiting but does not cancel a dispatched lookup;
// the result still lands in the cache for the next caller.
func (r *Resolver) Resolve(ctx context.Context, lat, lng float64) string {
	key := cacheKey(lat, lng, r.language)

	if cached, ok := r.cache.Get(key); ok {
		metrics.GeocodeLookups.WithLabelValues("cached").Inc()
		return cached.(string)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return models.UnknownAddress
	}
	entry, inFlight := r.pending[key]
	if !inFlight {
		entry = &lookup{key: key, lat: lat, lng: lng, done: make(chan struct{})}
		r.pending[key] = entry
		// Registered while mu is held, before closed can flip.
		r.enqueuers.Add(1)
	}
	r.mu.Unlock()

	if !inFlight {
		metrics.GeocodeQueueDepth.Inc()
		select {
		case r.queue <- entry:
			r.enqueuers.Done()
		case <-ctx.Done():
			// Could not even enqueue; unwind the pending entry so a
			// later caller can retry.
			r.enqueuers.Done()
			metrics.GeocodeQueueDepth.Dec()
			r.mu.Lock()
			delete(r.pending, key)
			r.mu.Unlock()
			return models.UnknownAddress
		}
	}

	select {
	case <-entry.done:
		return entry.address
	case <-ctx.Done():
		return models.UnknownAddress
	}
}

// worker drains the queue. One worker handles one lookup at a time, so
// the pool size is the in-flight cap.
func (r *Resolver) worker() {
	defer r.wg.Done()
	for entry := range r.queue {
		metrics.GeocodeQueueDepth.Dec()
		metrics.GeocodeInFlight.Inc()
		entry.address = r.fetch(entry.lat, entry.lng)
		metrics.GeocodeInFlight.Dec()

		if entry.address != models.UnknownAddress {
			r.cache.Set(entry.key, entry.address, cacheTTL)
			metrics.GeocodeLookups.WithLabelValues("resolved").Inc()
		} else {
			// Failures are not cached; the next caller retries.
			metrics.GeocodeLookups.WithLabelValues("fallback").Inc()
		}

		r.mu.Lock()
		delete(r.pending, entry.key)
		r.mu.Unlock()
		close(entry.done)
	}
}

// fetch performs one reverse-geocode call.
func (r *Resolver) fetch(lat, lng float64) string {
	ctx, cancel := context.WithTimeout(context.Background(), r.client.Timeout+time.Second)
	defer cancel()

	if err := r.limiter.Wait(ctx); err != nil {
		return models.UnknownAddress
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("zoom", "18")
	params.Set("addressdetails", "1")
	params.Set("accept-language", r.language)

	reqURL := r.endpoint + "/reverse?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return models.UnknownAddress
	}

	resp, err := r.client.Do(req)
	if err != nil {
		logging.Debug().Err(err).Float64("lat", lat).Float64("lng", lng).Msg("Reverse geocode request failed")
		return models.UnknownAddress
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Debug().Int("status", resp.StatusCode).Msg("Reverse geocode returned non-OK status")
		return models.UnknownAddress
	}

	var payload reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logging.Debug().Err(err).Msg("Reverse geocode response undecodable")
		return models.UnknownAddress
	}

	return ComposeAddress(payload.Address, payload.DisplayName, models.UnknownAddress)
}

// Close stops accepting lookups and waits for in-flight work to finish.
// Resolve calls made after Close return the fallback immediately.
func (r *Resolver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	// Any Resolve that won the race against closed gets to finish its
	// send before the queue closes.
	r.enqueuers.Wait()
	close(r.queue)
	r.wg.Wait()
}

// cacheKey rounds coordinates to five decimals (about one meter) so that
// jittered GPS fixes of the same spot share a cache entry.
func cacheKey(lat, lng float64, language string) string {
	return fmt.Sprintf("%.5f,%.5f:%s", geo.RoundDecimals(lat, 5), geo.RoundDecimals(lng, 5), language)
}
