// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/danakm/tidesweep/internal/geo"
)

// queryInt parses an integer query parameter, returning fallback when the
// parameter is absent or malformed.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// queryFloat parses a float query parameter.
func queryFloat(r *http.Request, key string, fallback float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

// queryBool parses a boolean query parameter. Absent or malformed means
// false.
func queryBool(r *http.Request, key string) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && value
}

// queryLocation reads lat/lng query parameters into a geo.Point. Both must
// be present and parse for a location to be returned.
func queryLocation(r *http.Request) *geo.Point {
	q := r.URL.Query()
	latRaw, lngRaw := q.Get("lat"), q.Get("lng")
	if lngRaw == "" {
		lngRaw = q.Get("lon")
	}
	if latRaw == "" || lngRaw == "" {
		return nil
	}
	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lng, lngErr := strconv.ParseFloat(lngRaw, 64)
	if latErr != nil || lngErr != nil {
		return nil
	}
	return &geo.Point{Lat: lat, Lng: lng}
}

// locationFromCoords wraps a lat/lng pair in a geo.Point.
func locationFromCoords(lat, lng float64) *geo.Point {
	return &geo.Point{Lat: lat, Lng: lng}
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
