// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

// Package transform normalizes raw platform payloads into the internal
// model types. Transformers return nil for nil payloads and never fail:
// every derived field has a default, and the only suspension point is the
// reverse-geocode lookup for records that arrive with coordinates but no
// address.
package transform

import (
	"context"
	"math"
	"time"

	"github.com/danakm/tidesweep/internal/geo"
	"github.com/danakm/tidesweep/internal/models"
	"github.com/danakm/tidesweep/internal/upstream"
)

// usdToAed is the fixed display-currency conversion rate.
const usdToAed = 3.67

// timeNow is swappable for deterministic timeline tests.
var timeNow = time.Now

// AddressResolver turns coordinates into an address. Implemented by
// geocode.Resolver; stubbed in tests.
type AddressResolver interface {
	Resolve(ctx context.Context, lat, lng float64) string
}

// Options carries per-call transform context. ReferenceLocation enables
// the distanceKm annotation; MatchScore attaches a similarity score to
// volunteers; PointID supplies an entity ID when the payload carries none.
type Options struct {
	ReferenceLocation *geo.Point
	MatchScore        *float64
	PointID           string
}

// ConvertUsdToAed converts a USD amount to whole AED at the fixed rate.
// Non-finite inputs convert to 0; the conversion never propagates NaN.
func ConvertUsdToAed(usd float64) int {
	if math.IsNaN(usd) || math.IsInf(usd, 0) {
		return 0
	}
	return int(math.Round(usd * usdToAed))
}

// InferPriority maps a 0-10 score to its priority tier.
func InferPriority(score float64) models.Priority {
	switch {
	case score >= 8.5:
		return models.PriorityCritical
	case score >= 6.5:
		return models.PriorityHigh
	case score >= 4:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// daysRemaining returns whole days until endDate, never negative. An
// empty or unparseable date yields 0.
func daysRemaining(endDate string) int {
	if endDate == "" {
		return 0
	}
	end, ok := parseDate(endDate)
	if !ok {
		return 0
	}
	diff := end.Sub(timeNow())
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// parseDate accepts the two date shapes the platform emits.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeLocation builds a Location from a raw payload. Address
// resolution prefers a payload-supplied structured address, then the
// payload display label, then reverse geocoding (only when coordinates
// exist), then the literal unknown-location fallback.
func normalizeLocation(ctx context.Context, p *upstream.LocationPayload, resolver AddressResolver) models.Location {
	if p == nil {
		return models.UnknownLocation()
	}

	loc := models.Location{
		Lat:     p.LatValue(),
		Lng:     p.LngValue(),
		Address: p.SuppliedAddress(),
	}
	// Coordinates come as a pair or not at all.
	if loc.Lat == nil || loc.Lng == nil {
		loc.Lat, loc.Lng = nil, nil
	}

	if loc.Address == "" {
		if loc.Lat != nil && loc.Lng != nil && resolver != nil {
			loc.Address = resolver.Resolve(ctx, *loc.Lat, *loc.Lng)
		}
		if loc.Address == "" {
			loc.Address = models.UnknownAddress
		}
	}
	return loc
}

// distanceFrom computes the 1-decimal distance annotation, or nil when
// either end lacks coordinates.
func distanceFrom(ref *geo.Point, loc models.Location) *float64 {
	if ref == nil {
		return nil
	}
	p, ok := loc.Coordinates()
	if !ok {
		return nil
	}
	d := geo.RoundDecimals(geo.Distance(*ref, p), 1)
	return &d
}
