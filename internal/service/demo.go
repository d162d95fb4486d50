// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package service

import (
	"time"

	"github.com/danakm/tidesweep/internal/models"
)

// Demo data served when the platform is unreachable and the caches are
// cold. Entries are generated fresh per call so timelines stay plausible
// and callers can mutate their copies safely.

func demoLocation(lat, lng float64, address string) models.Location {
	return models.Location{
		Lat:         &lat,
		Lng:         &lng,
		Address:     address,
		Country:     "United Arab Emirates",
		CountryCode: "ae",
	}
}

func demoCampaigns() []*models.Campaign {
	now := time.Now().UTC()
	start := now.Format(time.RFC3339)
	day := func(days int) string {
		return now.AddDate(0, 0, days).Format(time.RFC3339)
	}

	campaigns := []*models.Campaign{
		{
			ID:          "demo-campaign-1",
			Title:       "Dubai Marina Beach Cleanup",
			Description: "Join us for a comprehensive beach cleanup at Dubai Marina",
			Status:      models.StatusActive,
			Location:    demoLocation(25.0657, 55.1413, "Dubai Marina Beach, Dubai, UAE"),
			Priority:    models.PriorityMedium,
			Image:       "🏖️",
			Date:        day(1),
			Organizer:   models.Organizer{Name: "Tidesweep Community", Avatar: "🌊"},
			Funding:     models.Funding{Current: 750, Goal: 1200, Currency: "AED"},
			Volunteers: []models.Participant{
				{ID: "demo-volunteer-1", Name: "Ahmed Al-Rashid", Avatar: "🧑"},
				{ID: "demo-volunteer-2", Name: "Sarah Johnson", Avatar: "🧑"},
				{ID: "demo-volunteer-3", Name: "Omar Hassan", Avatar: "🧑"},
			},
			VolunteerGoal: 15,
			ESGImpact:     models.ESGImpact{ItemsCollected: 0, AreaCleaned: 2.5, CO2Saved: 13},
			Timeline:      models.Timeline{StartDate: start, EndDate: day(1), DurationDays: 1, DaysRemaining: 1},
		},
		{
			ID:          "demo-campaign-2",
			Title:       "Al Barsha Park Plastic Drive",
			Description: "Focus on plastic waste removal and recycling education",
			Status:      models.StatusActive,
			Location:    demoLocation(25.1048, 55.1952, "Al Barsha Park, Dubai, UAE"),
			Priority:    models.PriorityLow,
			Image:       "♻️",
			Date:        day(7),
			Organizer:   models.Organizer{Name: "Green Dubai Initiative", Avatar: "🌱"},
			Funding:     models.Funding{Current: 400, Goal: 800, Currency: "AED"},
			Volunteers: []models.Participant{
				{ID: "demo-volunteer-4", Name: "Fatima Al-Zahra", Avatar: "🧑"},
				{ID: "demo-volunteer-5", Name: "John Smith", Avatar: "🧑"},
			},
			VolunteerGoal: 10,
			ESGImpact:     models.ESGImpact{ItemsCollected: 0, AreaCleaned: 1.5, CO2Saved: 8},
			Timeline:      models.Timeline{StartDate: start, EndDate: day(7), DurationDays: 7, DaysRemaining: 7},
		},
		{
			ID:            "demo-campaign-3",
			Title:         "Downtown Dubai Street Cleanup",
			Description:   "Urban cleanup focusing on high-traffic areas",
			Status:        models.StatusActive,
			Location:      demoLocation(25.1972, 55.2744, "Downtown Dubai, UAE"),
			Priority:      models.PriorityHigh,
			Image:         "🏙️",
			Date:          day(30),
			Organizer:     models.Organizer{Name: "Dubai Municipality", Avatar: "🏢"},
			Funding:       models.Funding{Current: 200, Goal: 1500, Currency: "AED"},
			Volunteers:    []models.Participant{},
			VolunteerGoal: 20,
			ESGImpact:     models.ESGImpact{ItemsCollected: 0, AreaCleaned: 4, CO2Saved: 20},
			Timeline:      models.Timeline{StartDate: start, EndDate: day(30), DurationDays: 30, DaysRemaining: 30},
		},
	}
	for _, c := range campaigns {
		c.DeriveDisplay()
	}
	return campaigns
}

func demoVolunteers() []*models.Volunteer {
	volunteers := []*models.Volunteer{
		{
			ID:                 "demo-volunteer-1",
			Name:               "Ahmed Al-Rashid",
			Skills:             []string{"beach cleanup", "team coordination"},
			ExperienceLevel:    "expert",
			MaterialsExpertise: []string{"plastic", "mixed"},
			Location:           demoLocation(25.0657, 55.1413, "Dubai Marina, Dubai, UAE"),
			Available:          true,
			PastCleanupCount:   52,
		},
		{
			ID:                 "demo-volunteer-2",
			Name:               "Sarah Johnson",
			Skills:             []string{"recycling education"},
			ExperienceLevel:    "advanced",
			MaterialsExpertise: []string{"plastic"},
			Location:           demoLocation(25.1048, 55.1952, "Al Barsha, Dubai, UAE"),
			Available:          true,
			PastCleanupCount:   37,
		},
		{
			ID:                 "demo-volunteer-3",
			Name:               "Omar Hassan",
			Skills:             []string{"waste sorting"},
			ExperienceLevel:    "intermediate",
			MaterialsExpertise: []string{"metal", "mixed"},
			Location:           demoLocation(25.1972, 55.2744, "Downtown Dubai, UAE"),
			Available:          false,
			PastCleanupCount:   21,
		},
		{
			ID:               "demo-volunteer-4",
			Name:             "Fatima Al-Zahra",
			Skills:           []string{"general cleanup"},
			ExperienceLevel:  "beginner",
			Location:         demoLocation(25.2048, 55.2708, "Dubai, UAE"),
			Available:        true,
			PastCleanupCount: 6,
		},
	}
	for _, v := range volunteers {
		v.Badge = models.BadgeForCleanupCount(v.PastCleanupCount)
	}
	return volunteers
}
