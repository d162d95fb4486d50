// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/danakm/tidesweep/internal/geo"
)

// FeedService assembles the dashboard feed: campaigns, volunteers, recent
// reports, and the leaderboard loaded in parallel with settle-all
// semantics. One failing section degrades the feed; it does not fail it.
type FeedService struct {
	campaigns  *CampaignService
	volunteers *VolunteerService
	reports    *TrashReportService
}

// NewFeedService builds a feed service over the per-entity services.
func NewFeedService(campaigns *CampaignService, volunteers *VolunteerService, reports *TrashReportService) *FeedService {
	return &FeedService{campaigns: campaigns, volunteers: volunteers, reports: reports}
}

// FeedOptions controls how much of each section to load. Zero limits mean
// each section's default. Location, when set, annotates volunteers and
// reports with distances.
type FeedOptions struct {
	Location         *geo.Point
	CampaignLimit    int
	VolunteerLimit   int
	ReportLimit      int
	LeaderboardLimit int
}

// FeedResult is the assembled feed. Success is true when at least one
// section loaded; Warning aggregates the problems of degraded or failed
// sections.
type FeedResult struct {
	Success     bool              `json:"success"`
	Campaigns   CampaignsResult   `json:"campaigns"`
	Volunteers  VolunteersResult  `json:"volunteers"`
	Reports     ReportsResult     `json:"reports"`
	Leaderboard LeaderboardResult `json:"leaderboard"`
	Warning     string            `json:"warning,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// Load fetches all feed sections concurrently. Every section settles:
// section errors are captured in the per-section results, never returned
// through the group.
func (s *FeedService) Load(ctx context.Context, opts FeedOptions) FeedResult {
	var result FeedResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.Campaigns = s.campaigns.GetActiveCampaigns(gctx, CampaignListOptions{Limit: opts.CampaignLimit})
		return nil
	})
	g.Go(func() error {
		result.Volunteers = s.volunteers.GetVolunteers(gctx, VolunteerListOptions{
			Limit:    opts.VolunteerLimit,
			Location: opts.Location,
		})
		return nil
	})
	g.Go(func() error {
		result.Reports = s.reports.GetRecent(gctx, ReportListOptions{
			Limit:    opts.ReportLimit,
			Location: opts.Location,
		})
		return nil
	})
	g.Go(func() error {
		result.Leaderboard = s.volunteers.GetLeaderboard(gctx, opts.LeaderboardLimit, false)
		return nil
	})
	// Closures always return nil; Wait only propagates ctx errors.
	_ = g.Wait()

	var warnings []string
	addProblem := func(section, warning, errMsg string) {
		switch {
		case errMsg != "":
			warnings = append(warnings, section+": "+errMsg)
		case warning != "":
			warnings = append(warnings, section+": "+warning)
		}
	}
	addProblem("campaigns", result.Campaigns.Warning, result.Campaigns.Error)
	addProblem("volunteers", result.Volunteers.Warning, result.Volunteers.Error)
	addProblem("reports", result.Reports.Warning, result.Reports.Error)
	addProblem("leaderboard", result.Leaderboard.Warning, result.Leaderboard.Error)
	result.Warning = strings.Join(warnings, "; ")

	result.Success = result.Campaigns.Success || result.Volunteers.Success ||
		result.Reports.Success || result.Leaderboard.Success
	if !result.Success {
		result.Error = "all feed sections failed"
	}
	return result
}
