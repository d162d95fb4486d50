// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/danakm/tidesweep/internal/cache"
	"github.com/danakm/tidesweep/internal/logging"
	"github.com/danakm/tidesweep/internal/models"
	"github.com/danakm/tidesweep/internal/transform"
	"github.com/danakm/tidesweep/internal/upstream"
)

const defaultCampaignLimit = 120

// Creation defaults applied when the caller leaves a field zero.
const (
	createDefaultFundingUSD   = 500
	createDefaultVolunteers   = 10
	createDefaultDurationDays = 30
)

// CampaignService serves normalized campaigns through the layered fallback
// chain and proxies campaign creation to the platform.
type CampaignService struct {
	deps Deps
}

// NewCampaignService builds a campaign service over deps.
func NewCampaignService(deps Deps) *CampaignService {
	return &CampaignService{deps: deps}
}

// CampaignListOptions controls a campaign listing.
type CampaignListOptions struct {
	// Limit caps the result; zero means the default of 120.
	Limit int
	// ForceRefresh skips the memory tier and always hits the upstream.
	ForceRefresh bool
}

// CampaignsResult is the outcome of a campaign listing.
type CampaignsResult struct {
	Success   bool               `json:"success"`
	Campaigns []*models.Campaign `json:"campaigns"`
	Count     int                `json:"count"`
	Source    Source             `json:"source,omitempty"`
	Warning   string             `json:"warning,omitempty"`
	Error     string             `json:"error,omitempty"`
	Message   string             `json:"message,omitempty"`
}

// CampaignResult is the outcome of a single-campaign lookup.
type CampaignResult struct {
	Success  bool             `json:"success"`
	Campaign *models.Campaign `json:"campaign"`
	Source   Source           `json:"source,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// CampaignCreateResult is the outcome of a campaign creation.
type CampaignCreateResult struct {
	Success   bool             `json:"success"`
	Campaign  *models.Campaign `json:"campaign"`
	Message   string           `json:"message,omitempty"`
	NextSteps []string         `json:"nextSteps,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// ESGResult is the outcome of a platform-impact lookup.
type ESGResult struct {
	Success bool                        `json:"success"`
	Metrics *upstream.ESGImpactResponse `json:"metrics"`
	Error   string                      `json:"error,omitempty"`
}

// GetCampaigns returns all campaigns (active and completed), newest first.
// On upstream failure it falls back to durable-cache entries up to an hour
// old, then to demo data; the result is tagged with whichever tier served.
func (s *CampaignService) GetCampaigns(ctx context.Context, opts CampaignListOptions) CampaignsResult {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultCampaignLimit
	}
	key := cache.CreateKey("campaigns", map[string]interface{}{"limit": limit})

	if !opts.ForceRefresh {
		if v, ok := s.deps.Memory.Get(key); ok {
			if campaigns, ok := v.([]*models.Campaign); ok {
				recordCacheHit("memory")
				recordSource("campaigns", SourceMemory)
				return CampaignsResult{Success: true, Campaigns: campaigns, Count: len(campaigns), Source: SourceMemory}
			}
		}
		recordCacheMiss("memory")
	}

	campaigns, err := s.fetchCampaigns(ctx)
	if err == nil {
		// The durable tier keeps the uncapped listing so an offline read
		// can serve any limit; only the served slice is capped.
		if derr := s.deps.Durable.Set(campaignsDurableKey, campaigns, campaignDurableTTL); derr != nil {
			logging.Warn().Err(derr).Msg("Failed to persist campaigns to durable cache")
		}
		if limit < len(campaigns) {
			campaigns = campaigns[:limit]
		}
		s.deps.Memory.Set(key, campaigns, memoryTTL)
		recordSource("campaigns", SourceAPI)
		return CampaignsResult{Success: true, Campaigns: campaigns, Count: len(campaigns), Source: SourceAPI}
	}
	logging.Warn().Err(err).Msg("Campaign fetch failed, trying durable cache")

	if stored, ok := s.storedCampaigns(campaignStaleMaxAge); ok {
		if limit < len(stored) {
			stored = stored[:limit]
		}
		recordCacheHit("durable")
		recordSource("campaigns", SourceLocalCache)
		return CampaignsResult{Success: true, Campaigns: stored, Count: len(stored), Source: SourceLocalCache, Warning: errMessage(err)}
	}
	recordCacheMiss("durable")

	demo := demoCampaigns()
	recordSource("campaigns", SourceMockData)
	return CampaignsResult{Success: true, Campaigns: demo, Count: len(demo), Source: SourceMockData, Warning: demoDataWarning}
}

// GetActiveCampaigns returns campaigns that are neither completed nor out
// of days. It shares GetCampaigns' fallback behavior and source tagging.
func (s *CampaignService) GetActiveCampaigns(ctx context.Context, opts CampaignListOptions) CampaignsResult {
	result := s.GetCampaigns(ctx, opts)
	if !result.Success {
		return result
	}

	active := make([]*models.Campaign, 0, len(result.Campaigns))
	for _, c := range result.Campaigns {
		if c.Status == models.StatusCompleted {
			continue
		}
		if c.Timeline.DaysRemaining == 0 {
			continue
		}
		active = append(active, c)
	}

	result.Campaigns = active
	result.Count = len(active)
	result.Message = "Active campaigns loaded"
	return result
}

// GetCampaignByID looks up one campaign: memory first, then the durable
// campaign listing, then the upstream by-ID endpoint.
func (s *CampaignService) GetCampaignByID(ctx context.Context, id string, forceRefresh bool) CampaignResult {
	if id == "" {
		return CampaignResult{Error: "campaign ID is required"}
	}

	key := cache.CreateKey("campaign", map[string]interface{}{"id": id})

	if !forceRefresh {
		if v, ok := s.deps.Memory.Get(key); ok {
			if campaign, ok := v.(*models.Campaign); ok {
				recordCacheHit("memory")
				recordSource("campaign", SourceMemory)
				return CampaignResult{Success: true, Campaign: campaign, Source: SourceMemory}
			}
		}
		recordCacheMiss("memory")

		if stored, ok := s.storedCampaigns(campaignDurableTTL); ok {
			for _, c := range stored {
				if c.ID == id {
					s.deps.Memory.Set(key, c, memoryTTL)
					recordCacheHit("durable")
					recordSource("campaign", SourceLocalCache)
					return CampaignResult{Success: true, Campaign: c, Source: SourceLocalCache}
				}
			}
		}
	}

	payload, err := s.deps.API.GetCampaign(ctx, id)
	if err != nil {
		recordSource("campaign", sourceFailure)
		return CampaignResult{Error: errMessage(err)}
	}

	campaign := transform.Campaign(ctx, payload, s.deps.Resolver, transform.Options{PointID: id})
	if campaign == nil {
		recordSource("campaign", sourceFailure)
		return CampaignResult{Error: fmt.Sprintf("campaign %s: empty response", id)}
	}

	s.deps.Memory.Set(key, campaign, memoryTTL)
	recordSource("campaign", SourceAPI)
	return CampaignResult{Success: true, Campaign: campaign, Source: SourceAPI}
}

// CreateCampaign creates a cleanup campaign from hotspot data. The write
// goes straight to the platform; on success the campaign listing caches are
// invalidated and the created campaign is remembered in the local store.
func (s *CampaignService) CreateCampaign(ctx context.Context, req upstream.CreateCampaignRequest) CampaignCreateResult {
	if req.CampaignName == "" {
		return CampaignCreateResult{Error: "campaign name is required"}
	}
	if req.TargetFundingUSD <= 0 {
		req.TargetFundingUSD = createDefaultFundingUSD
	}
	if req.VolunteerGoal <= 0 {
		req.VolunteerGoal = createDefaultVolunteers
	}
	if req.DurationDays <= 0 {
		req.DurationDays = createDefaultDurationDays
	}

	resp, err := s.deps.API.CreateCampaign(ctx, req)
	if err != nil {
		return CampaignCreateResult{Error: errMessage(err)}
	}

	campaign := transform.Campaign(ctx, resp.Campaign, s.deps.Resolver, transform.Options{})

	s.deps.Memory.DeletePrefix("campaigns")
	if derr := s.deps.Durable.Delete(campaignsDurableKey); derr != nil {
		logging.Warn().Err(derr).Msg("Failed to invalidate durable campaign cache")
	}

	if campaign != nil && s.deps.Reports != nil {
		if serr := s.deps.Reports.AddOwnCampaign(campaign); serr != nil {
			logging.Warn().Err(serr).Msg("Failed to store created campaign locally")
		}
	}

	return CampaignCreateResult{
		Success:   true,
		Campaign:  campaign,
		Message:   resp.Message,
		NextSteps: resp.NextSteps,
	}
}

// GetESGImpact returns the platform-wide impact summary. No caching: the
// numbers change with every report and the endpoint is cheap.
func (s *CampaignService) GetESGImpact(ctx context.Context) ESGResult {
	metrics, err := s.deps.API.GetESGImpact(ctx)
	if err != nil {
		return ESGResult{Error: errMessage(err)}
	}
	return ESGResult{Success: true, Metrics: metrics}
}

// fetchCampaigns pulls the full campaign set from the platform, transforms
// it, and returns it newest-first, capped at limit.
func (s *CampaignService) fetchCampaigns(ctx context.Context) ([]*models.Campaign, error) {
	payloads, err := s.deps.API.GetCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("load campaigns: %w", err)
	}

	campaigns := make([]*models.Campaign, 0, len(payloads))
	for i := range payloads {
		if c := transform.Campaign(ctx, &payloads[i], s.deps.Resolver, transform.Options{}); c != nil {
			campaigns = append(campaigns, c)
		}
	}

	sort.SliceStable(campaigns, func(i, j int) bool {
		return campaignStartTime(campaigns[i]).After(campaignStartTime(campaigns[j]))
	})
	return campaigns, nil
}

// storedCampaigns reads the durable campaign listing, accepting entries up
// to maxAge old regardless of their original TTL.
func (s *CampaignService) storedCampaigns(maxAge time.Duration) ([]*models.Campaign, bool) {
	var stored []*models.Campaign
	lookup, err := s.deps.Durable.Get(campaignsDurableKey, &stored)
	if err != nil {
		logging.Warn().Err(err).Msg("Durable campaign read failed")
		return nil, false
	}
	if !lookup.Found || len(stored) == 0 {
		return nil, false
	}
	if lookup.Age(time.Now()) > maxAge {
		return nil, false
	}
	return stored, true
}

// campaignStartTime parses a campaign's start for sorting; unparseable
// dates sort last.
func campaignStartTime(c *models.Campaign) time.Time {
	for _, candidate := range []string{c.Timeline.StartDate, c.Date} {
		if candidate == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
