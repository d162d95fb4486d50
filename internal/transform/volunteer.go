// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package transform

import (
	"context"

	"github.com/danakm/tidesweep/internal/geo"
	"github.com/danakm/tidesweep/internal/models"
	"github.com/danakm/tidesweep/internal/upstream"
)

// Volunteer normalizes a raw volunteer payload. Returns nil for a nil
// payload. The badge is always derived from the cleanup count at
// transform time, never taken from the wire, so a stale stored badge can
// never disagree with the count.
func Volunteer(ctx context.Context, payload *upstream.VolunteerPayload, resolver AddressResolver, opts Options) *models.Volunteer {
	if payload == nil {
		return nil
	}

	rawLocation := payload.Location
	if rawLocation == nil && payload.Metadata != nil {
		rawLocation = payload.Metadata.Location
	}
	location := normalizeLocation(ctx, rawLocation, resolver)

	id := payload.UserID
	if id == "" {
		id = payload.ID
	}

	count := 0
	switch {
	case payload.PastCleanupCount != nil:
		count = *payload.PastCleanupCount
	case payload.Stats != nil:
		count = payload.Stats.Cleanups
	}

	experience := payload.ExperienceLevel
	if experience == "" {
		experience = "beginner"
	}

	skills := payload.Skills
	if skills == nil {
		skills = []string{}
	}

	v := &models.Volunteer{
		ID:                 id,
		Name:               payload.Name,
		Email:              payload.Email,
		Phone:              payload.Phone,
		Skills:             skills,
		ExperienceLevel:    experience,
		MaterialsExpertise: payload.MaterialsExpertise,
		Specializations:    payload.Specializations,
		EquipmentOwned:     payload.EquipmentOwned,
		Location:           location,
		Available:          payload.Available == nil || *payload.Available,
		PastCleanupCount:   count,
		HoursContributed:   payload.HoursContributed,
		Badge:              models.BadgeForCleanupCount(count),
		Rank:               payload.Rank,
		Bio:                payload.Bio,
		ProfilePictureURL:  payload.ProfilePictureURL,
		DistanceKm:         distanceFrom(opts.ReferenceLocation, location),
	}

	if opts.MatchScore != nil {
		score := geo.RoundDecimals(*opts.MatchScore, 3)
		v.MatchScore = &score
	}

	return v
}
