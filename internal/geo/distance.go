// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

// Package geo provides the coordinate types and distance math used across
// the gateway: Haversine distance, distance-based sorting and filtering,
// and the platform's default map center.
package geo

import (
	"math"
	"sort"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Dubai is the default map center used when a caller supplies no location.
var Dubai = Point{Lat: 25.2048, Lng: 55.2708}

// DefaultRadiusKm is the default search radius for proximity queries.
const DefaultRadiusKm = 25.0

// Locatable is implemented by domain records that may carry coordinates.
// The second return is false when the record's location never resolved.
type Locatable interface {
	Coordinates() (Point, bool)
}

// Distance returns the great-circle distance between two points in
// kilometers, using the Haversine formula with a 6371 km Earth radius.
// Distance(p, p) is exactly 0.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180.0
	lon1 := a.Lng * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	lon2 := b.Lng * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	const earthRadiusKm = 6371.0
	return earthRadiusKm * c
}

// SortByDistance orders items by ascending distance from origin, in place.
// Items without resolvable coordinates sort after all located items; the
// sort is stable, so relative order within each group is preserved.
func SortByDistance[T Locatable](items []T, origin Point) {
	type keyed struct {
		item     T
		located  bool
		distance float64
	}
	keys := make([]keyed, len(items))
	for i, item := range items {
		keys[i] = keyed{item: item}
		if p, ok := item.Coordinates(); ok {
			keys[i].located = true
			keys[i].distance = Distance(origin, p)
		}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.located != b.located {
			return a.located
		}
		if !a.located {
			return false
		}
		return a.distance < b.distance
	})

	for i := range keys {
		items[i] = keys[i].item
	}
}

// FilterByDistance returns the items within radiusKm of origin. The
// boundary is inclusive: an item exactly radiusKm away is kept. Items
// without coordinates are dropped. The input slice is not modified.
func FilterByDistance[T Locatable](items []T, origin Point, radiusKm float64) []T {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		p, ok := item.Coordinates()
		if !ok {
			continue
		}
		if Distance(origin, p) <= radiusKm {
			kept = append(kept, item)
		}
	}
	return kept
}

// Bounds is a latitude/longitude box enclosing a set of points.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// defaultBoundsPad sizes the box returned when there is nothing to
// enclose: the default center plus roughly a kilometer each way.
const defaultBoundsPad = 0.01

// BoundsAround returns the smallest box containing every locatable item,
// plus the optional reference point when items exist. With no items, or
// when nothing resolves to coordinates, it returns the padded box around
// the Dubai default center.
func BoundsAround[T Locatable](items []T, reference *Point) Bounds {
	if len(items) == 0 {
		return defaultBounds()
	}

	points := make([]Point, 0, len(items)+1)
	for _, item := range items {
		if p, ok := item.Coordinates(); ok {
			points = append(points, p)
		}
	}
	if reference != nil {
		points = append(points, *reference)
	}
	if len(points) == 0 {
		return defaultBounds()
	}

	b := Bounds{North: points[0].Lat, South: points[0].Lat, East: points[0].Lng, West: points[0].Lng}
	for _, p := range points[1:] {
		b.North = math.Max(b.North, p.Lat)
		b.South = math.Min(b.South, p.Lat)
		b.East = math.Max(b.East, p.Lng)
		b.West = math.Min(b.West, p.Lng)
	}
	return b
}

func defaultBounds() Bounds {
	return Bounds{
		North: Dubai.Lat + defaultBoundsPad,
		South: Dubai.Lat - defaultBoundsPad,
		East:  Dubai.Lng + defaultBoundsPad,
		West:  Dubai.Lng - defaultBoundsPad,
	}
}

// RoundDecimals rounds v to the given number of decimal places.
func RoundDecimals(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
