// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package models

import (
	"math"

	"github.com/danakm/tidesweep/internal/geo"
)

// Campaign status values as served by the upstream platform.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Priority is a campaign's urgency tier, derived from its numeric hotspot
// score unless the campaign is completed.
type Priority string

const (
	PriorityCritical  Priority = "critical"
	PriorityHigh      Priority = "high"
	PriorityMedium    Priority = "medium"
	PriorityLow       Priority = "low"
	PriorityCompleted Priority = "completed"
)

// Organizer identifies who runs a campaign.
type Organizer struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Participant is a volunteer attached to a campaign.
type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Funding holds a campaign's fundraising state in the display currency.
// Amounts are whole AED regardless of the currency the platform stores.
type Funding struct {
	Current  int    `json:"current"`
	Goal     int    `json:"goal"`
	Currency string `json:"currency"`
}

// ESGImpact summarizes a campaign's estimated environmental impact.
type ESGImpact struct {
	ItemsCollected int     `json:"itemsCollected"`
	AreaCleaned    float64 `json:"areaCleaned"`
	CO2Saved       int     `json:"co2Saved"`
}

// Timeline holds a campaign's schedule. StartDate and EndDate are the
// upstream date strings passed through untouched; DaysRemaining is derived
// at transform time and is never negative.
type Timeline struct {
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	DurationDays  int    `json:"durationDays"`
	DaysRemaining int    `json:"daysRemaining"`
}

// Campaign is a normalized cleanup campaign.
type Campaign struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        string        `json:"status"`
	Location      Location      `json:"location"`
	Priority      Priority      `json:"priority"`
	Image         string        `json:"image"`
	HeroImage     string        `json:"heroImage,omitempty"`
	Date          string        `json:"date"`
	Organizer     Organizer     `json:"organizer"`
	Funding       Funding       `json:"funding"`
	Volunteers    []Participant `json:"volunteers"`
	VolunteerGoal int           `json:"volunteerGoal"`
	ESGImpact     ESGImpact     `json:"esgImpact"`
	Timeline      Timeline      `json:"timeline"`
	DistanceKm    *float64      `json:"distanceKm,omitempty"`

	// Display fields filled by DeriveDisplay.
	FundingProgress   int    `json:"fundingProgress"`
	VolunteerProgress int    `json:"volunteerProgress"`
	StatusBadge       string `json:"statusBadge,omitempty"`
}

// Status badges for campaign list displays.
const (
	BadgeExpired = "expired"
	BadgeUrgent  = "urgent"
	BadgeFunded  = "funded"
)

// DeriveDisplay fills the display fields from the campaign's funding,
// volunteer and timeline state. Call it again after mutating any of
// those.
func (c *Campaign) DeriveDisplay() {
	c.FundingProgress = progressPct(c.Funding.Current, c.Funding.Goal)
	c.VolunteerProgress = progressPct(len(c.Volunteers), c.VolunteerGoal)

	switch {
	case c.Status == StatusCompleted || c.Timeline.DaysRemaining == 0:
		c.StatusBadge = BadgeExpired
	case c.Timeline.DaysRemaining <= 7:
		c.StatusBadge = BadgeUrgent
	case c.FundingProgress >= 100:
		c.StatusBadge = BadgeFunded
	default:
		c.StatusBadge = ""
	}
}

// progressPct returns current/goal as a whole percent capped at 100.
// A zero or negative goal reports zero progress.
func progressPct(current, goal int) int {
	if goal <= 0 {
		return 0
	}
	pct := int(math.Round(float64(current) / float64(goal) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Coordinates implements geo.Locatable.
func (c *Campaign) Coordinates() (geo.Point, bool) {
	return c.Location.Coordinates()
}
