// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package models

import "github.com/danakm/tidesweep/internal/geo"

// Badge is a volunteer's recognition tier, a pure function of their
// cleanup count. It is recomputed whenever the count changes, never
// stored on its own.
type Badge string

const (
	BadgeLegend   Badge = "Legend"
	BadgeChampion Badge = "Champion"
	BadgeExpert   Badge = "Expert"
	BadgeAdvocate Badge = "Advocate"
	BadgeRookie   Badge = "Rookie"
)

// BadgeForCleanupCount maps a past-cleanup count to its badge tier.
func BadgeForCleanupCount(count int) Badge {
	switch {
	case count >= 50:
		return BadgeLegend
	case count >= 35:
		return BadgeChampion
	case count >= 20:
		return BadgeExpert
	case count >= 10:
		return BadgeAdvocate
	default:
		return BadgeRookie
	}
}

// Volunteer is a normalized volunteer profile. DistanceKm and MatchScore
// are query-relative annotations: they are nil unless the lookup that
// produced this snapshot supplied a reference location or a match score.
type Volunteer struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email,omitempty"`
	Phone              string   `json:"phone,omitempty"`
	Skills             []string `json:"skills"`
	ExperienceLevel    string   `json:"experienceLevel"`
	MaterialsExpertise []string `json:"materialsExpertise,omitempty"`
	Specializations    []string `json:"specializations,omitempty"`
	EquipmentOwned     []string `json:"equipmentOwned,omitempty"`
	Location           Location `json:"location"`
	Available          bool     `json:"available"`
	PastCleanupCount   int      `json:"pastCleanupCount"`
	HoursContributed   int      `json:"hoursContributed"`
	Badge              Badge    `json:"badge"`
	Rank               int      `json:"rank,omitempty"`
	Bio                string   `json:"bio,omitempty"`
	ProfilePictureURL  string   `json:"profilePictureUrl,omitempty"`
	DistanceKm         *float64 `json:"distanceKm"`
	MatchScore         *float64 `json:"matchScore"`
}

// Coordinates implements geo.Locatable.
func (v *Volunteer) Coordinates() (geo.Point, bool) {
	return v.Location.Coordinates()
}
