// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package models

import "github.com/danakm/tidesweep/internal/geo"

// UnknownAddress is the terminal address fallback. Location.Address is
// never empty: when nothing upstream and no geocoder can name a place,
// this literal is used.
const UnknownAddress = "Unknown location"

// Location is a normalized geographic reference. Lat and Lng are pointers
// because a record may carry an address with no usable coordinates; both
// are set or both are nil after normalization.
type Location struct {
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Address     string   `json:"address"`
	Country     string   `json:"country,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
}

// Coordinates returns the location's point when both latitude and
// longitude are present. It satisfies geo.Locatable for the entity types
// that embed Location.
func (l Location) Coordinates() (geo.Point, bool) {
	if l.Lat == nil || l.Lng == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *l.Lat, Lng: *l.Lng}, true
}

// UnknownLocation returns a location with no coordinates and the fallback
// address.
func UnknownLocation() Location {
	return Location{Address: UnknownAddress}
}
