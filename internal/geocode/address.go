// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package geocode

import "strings"

// StructuredAddress is the address detail block a Nominatim-compatible
// reverse-geocode endpoint returns.
type StructuredAddress struct {
	HouseNumber   string `json:"house_number,omitempty"`
	Road          string `json:"road,omitempty"`
	Neighbourhood string `json:"neighbourhood,omitempty"`
	Suburb        string `json:"suburb,omitempty"`
	City          string `json:"city,omitempty"`
	Town          string `json:"town,omitempty"`
	State         string `json:"state,omitempty"`
	Country       string `json:"country,omitempty"`
	CountryCode   string `json:"country_code,omitempty"`
}

// ComposeAddress builds a human-readable address from the structured
// block. Segment order is significant: house number with road, then
// neighbourhood (suburb as substitute), then city (town as substitute),
// then state and country, skipping any segment that repeats one already
// taken. When no segments are present the display name is used, and
// failing that, fallback.
func ComposeAddress(addr *StructuredAddress, displayName, fallback string) string {
	if addr == nil {
		if displayName != "" {
			return displayName
		}
		return fallback
	}

	var parts []string
	add := func(segment string) {
		if segment == "" {
			return
		}
		for _, existing := range parts {
			if existing == segment {
				return
			}
		}
		parts = append(parts, segment)
	}

	switch {
	case addr.HouseNumber != "" && addr.Road != "":
		add(addr.HouseNumber + " " + addr.Road)
	case addr.Road != "":
		add(addr.Road)
	}

	if addr.Neighbourhood != "" {
		add(addr.Neighbourhood)
	} else {
		add(addr.Suburb)
	}

	if addr.City != "" {
		add(addr.City)
	} else {
		add(addr.Town)
	}

	add(addr.State)
	add(addr.Country)

	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	if displayName != "" {
		return displayName
	}
	return fallback
}
