// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package transform

import (
	"context"
	"fmt"
	"math"

	"github.com/danakm/tidesweep/internal/models"
	"github.com/danakm/tidesweep/internal/upstream"
)

const (
	defaultVolunteerGoal    = 25
	defaultDurationDays     = 30
	maxGeneratedVolunteers  = 8
	defaultCampaignTitle    = "Tidesweep Campaign"
	defaultCampaignSummary  = "Community cleanup campaign managed via Tidesweep."
	defaultOrganizerName    = "Tidesweep Operations"
	defaultOrganizerAvatar  = "🌱"
	defaultPriorityScore    = 5.0
)

var priorityEmoji = map[models.Priority]string{
	models.PriorityCritical:  "🚨",
	models.PriorityHigh:      "🔥",
	models.PriorityMedium:    "🌿",
	models.PriorityLow:       "🧹",
	models.PriorityCompleted: "✅",
}

var generatedAvatars = []string{"🧑‍🤝‍🧑", "🧑🏻", "🧑🏽", "🧑🏾"}

// Campaign normalizes a raw campaign payload. Returns nil for a nil
// payload; callers filter nils before further processing.
func Campaign(ctx context.Context, payload *upstream.CampaignPayload, resolver AddressResolver, opts Options) *models.Campaign {
	if payload == nil {
		return nil
	}

	location := normalizeLocation(ctx, payload.Location, resolver)

	score := defaultPriorityScore
	switch {
	case payload.Hotspot != nil && payload.Hotspot.AveragePriority != nil:
		score = *payload.Hotspot.AveragePriority
	case payload.PriorityScore != nil:
		score = *payload.PriorityScore
	}

	status := payload.Status
	if status == "" {
		status = models.StatusActive
	}
	priority := InferPriority(score)
	if status == models.StatusCompleted {
		priority = models.PriorityCompleted
	}

	organizer := models.Organizer{Name: defaultOrganizerName, Avatar: defaultOrganizerAvatar}
	if payload.Organizer != nil {
		organizer = models.Organizer{Name: payload.Organizer.Name, Avatar: payload.Organizer.Avatar}
	}

	var timeline upstream.TimelinePayload
	if payload.Timeline != nil {
		timeline = *payload.Timeline
	}
	startDate := timeline.StartDate
	if startDate == "" {
		startDate = payload.CreatedAt
	}
	durationDays := timeline.DurationDays
	if durationDays == 0 {
		durationDays = defaultDurationDays
	}

	var goals upstream.GoalsPayload
	if payload.Goals != nil {
		goals = *payload.Goals
	}
	volunteerGoal := goals.VolunteerGoal
	if volunteerGoal == 0 {
		volunteerGoal = payload.VolunteerGoal
	}
	if volunteerGoal == 0 {
		volunteerGoal = defaultVolunteerGoal
	}

	id := payload.CampaignID
	if id == "" {
		id = opts.PointID
	}
	if id == "" {
		id = payload.ID
	}

	title := payload.CampaignName
	if title == "" {
		title = payload.Title
	}
	if title == "" {
		title = defaultCampaignTitle
	}

	description := payload.Description
	if description == "" && payload.Hotspot != nil {
		description = payload.Hotspot.Summary
	}
	if description == "" {
		description = defaultCampaignSummary
	}

	var materials []string
	if payload.Hotspot != nil {
		materials = payload.Hotspot.Materials
	}

	var impact upstream.ImpactEstimatesPayload
	if payload.ImpactEstimates != nil {
		impact = *payload.ImpactEstimates
	}
	areaCleaned := impact.EstimatedVolunteerHours / 10
	if impact.EstimatedAreaCleanedKm2 != nil {
		areaCleaned = *impact.EstimatedAreaCleanedKm2
	}

	campaign := &models.Campaign{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      status,
		Location:    location,
		Priority:    priority,
		Image:       campaignImage(priority, materials),
		Date:        startDate,
		Organizer:   organizer,
		Funding: models.Funding{
			Current:  ConvertUsdToAed(floatOrZero(goals.CurrentFundingUSD)),
			Goal:     ConvertUsdToAed(floatOrZero(goals.TargetFundingUSD)),
			Currency: "AED",
		},
		Volunteers:    buildParticipants(payload, goals.CurrentVolunteers),
		VolunteerGoal: volunteerGoal,
		ESGImpact: models.ESGImpact{
			ItemsCollected: int(math.Round(floatOrZero(impact.EstimatedWasteKg))),
			AreaCleaned:    areaCleaned,
			CO2Saved:       int(math.Round(floatOrZero(impact.EstimatedCO2ReductionKg))),
		},
		Timeline: models.Timeline{
			StartDate:     startDate,
			EndDate:       timeline.EndDate,
			DurationDays:  durationDays,
			DaysRemaining: daysRemaining(timeline.EndDate),
		},
		DistanceKm: distanceFrom(opts.ReferenceLocation, location),
	}
	campaign.DeriveDisplay()
	return campaign
}

// buildParticipants maps the payload's participant list, or when the list
// is absent, synthesizes placeholder participants from the volunteer
// count, capped so campaign cards stay readable.
func buildParticipants(payload *upstream.CampaignPayload, fallbackCount int) []models.Participant {
	idBase := payload.CampaignID
	if idBase == "" {
		idBase = "vol"
	}

	if len(payload.Participants) > 0 {
		participants := make([]models.Participant, len(payload.Participants))
		for i, p := range payload.Participants {
			participant := models.Participant{ID: p.ID, Name: p.Name, Avatar: p.Avatar}
			if participant.Avatar == "" {
				participant.Avatar = "🧑"
			}
			if participant.ID == "" {
				participant.ID = fmt.Sprintf("%s_%d", idBase, i)
			}
			participants[i] = participant
		}
		return participants
	}

	count := fallbackCount
	if count > maxGeneratedVolunteers {
		count = maxGeneratedVolunteers
	}
	participants := make([]models.Participant, count)
	for i := 0; i < count; i++ {
		participants[i] = models.Participant{
			ID:     fmt.Sprintf("%s_%d", idBase, i),
			Name:   fmt.Sprintf("Volunteer %d", i+1),
			Avatar: generatedAvatars[i%len(generatedAvatars)],
		}
	}
	return participants
}

// campaignImage picks the card emoji: urgency first, then the dominant
// material.
func campaignImage(priority models.Priority, materials []string) string {
	if priority == models.PriorityCritical {
		return "🚨"
	}
	if priority == models.PriorityHigh {
		return "🔥"
	}
	if len(materials) > 0 {
		switch materials[0] {
		case "plastic":
			return "🧴"
		case "metal":
			return "⚙️"
		case "organic":
			return "🌿"
		case "hazardous":
			return "☢️"
		}
	}
	if emoji, ok := priorityEmoji[priority]; ok {
		return emoji
	}
	return "♻️"
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
