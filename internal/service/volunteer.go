// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/danakm/tidesweep/internal/cache"
	"github.com/danakm/tidesweep/internal/geo"
	"github.com/danakm/tidesweep/internal/logging"
	"github.com/danakm/tidesweep/internal/models"
	"github.com/danakm/tidesweep/internal/transform"
	"github.com/danakm/tidesweep/internal/upstream"
)

const (
	// maxVolunteerFetch caps how many volunteers one upstream call may
	// return; larger requests are clamped, not rejected.
	maxVolunteerFetch = 256

	defaultLeaderboardLimit = 10
	defaultOpportunityLimit = 20

	// Similarity-search defaults for the /find-volunteers fallback.
	fallbackSearchRadiusKm = 10.0
	defaultMinMatchScore   = 0.2
)

const leaderboardFallbackWarning = "Volunteer API unavailable, using leaderboard endpoint"

// VolunteerService serves volunteer profiles, the leaderboard, and
// opportunity matching.
type VolunteerService struct {
	deps Deps
}

// NewVolunteerService builds a volunteer service over deps.
func NewVolunteerService(deps Deps) *VolunteerService {
	return &VolunteerService{deps: deps}
}

// VolunteerListOptions controls a volunteer listing. When Location is set
// the memory tier is bypassed: cached lists carry no distance annotations
// for an arbitrary reference point.
type VolunteerListOptions struct {
	Limit         int
	Location      *geo.Point
	RadiusKm      float64
	AvailableOnly bool
	ForceRefresh  bool
}

// VolunteersResult is the outcome of a volunteer listing.
type VolunteersResult struct {
	Success    bool                `json:"success"`
	Volunteers []*models.Volunteer `json:"volunteers"`
	Count      int                 `json:"count"`
	Source     Source              `json:"source,omitempty"`
	Warning    string              `json:"warning,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// LeaderboardResult is the outcome of a leaderboard request. Entries carry
// their 1-based rank.
type LeaderboardResult struct {
	Success         bool                `json:"success"`
	Leaderboard     []*models.Volunteer `json:"leaderboard"`
	TotalVolunteers int                 `json:"totalVolunteers"`
	GeneratedAt     string              `json:"generatedAt,omitempty"`
	Source          Source              `json:"source,omitempty"`
	Warning         string              `json:"warning,omitempty"`
	Error           string              `json:"error,omitempty"`
}

// CleanupTask describes the work a cleanup needs, for matching against
// volunteer profiles.
type CleanupTask struct {
	PrimaryMaterial      string   `json:"primaryMaterial"`
	EstimatedVolume      string   `json:"estimatedVolume"`
	Description          string   `json:"description"`
	PriorityScore        float64  `json:"priorityScore"`
	RecommendedEquipment []string `json:"recommendedEquipment"`
}

// OpportunityRequest asks for volunteers suited to a cleanup task near a
// location. Location is required.
type OpportunityRequest struct {
	Task     CleanupTask
	Location *geo.Point
	RadiusKm float64
	Limit    int
	MinScore float64
}

// OpportunitiesResult is the outcome of an opportunity search. Count is the
// number of candidates scored, which may exceed len(Opportunities).
type OpportunitiesResult struct {
	Success       bool                `json:"success"`
	Opportunities []*models.Volunteer `json:"opportunities"`
	Count         int                 `json:"count"`
	Source        Source              `json:"source,omitempty"`
	Warning       string              `json:"warning,omitempty"`
	Error         string              `json:"error,omitempty"`
}

// WriteResult is the outcome of a cache-invalidating write operation.
type WriteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GetVolunteers lists volunteers ordered by cleanup count. Location-less
// requests are served from cache when possible; location-filtered requests
// always go upstream so distances are computed against the caller's point.
func (s *VolunteerService) GetVolunteers(ctx context.Context, opts VolunteerListOptions) VolunteersResult {
	limit := opts.Limit
	if limit <= 0 || limit > maxVolunteerFetch {
		limit = maxVolunteerFetch
	}

	if opts.Location == nil && !opts.ForceRefresh {
		if v, ok := s.deps.Memory.Get(volunteersDurableKey); ok {
			if volunteers, ok := v.([]*models.Volunteer); ok {
				recordCacheHit("memory")
				recordSource("volunteers", SourceMemory)
				sliced := capVolunteers(volunteers, limit)
				return VolunteersResult{Success: true, Volunteers: sliced, Count: len(sliced), Source: SourceMemory}
			}
		}
		recordCacheMiss("memory")
	}

	volunteers, err := s.fetchVolunteers(ctx, maxVolunteerFetch, opts.Location, opts.RadiusKm, opts.AvailableOnly)
	if err == nil {
		sliced := capVolunteers(volunteers, limit)
		recordSource("volunteers", SourceAPI)
		return VolunteersResult{Success: true, Volunteers: sliced, Count: len(sliced), Source: SourceAPI}
	}
	logging.Warn().Err(err).Msg("Volunteer fetch failed, trying durable cache")

	if stored, ok := s.storedVolunteers(volunteerStaleMaxAge); ok {
		recordCacheHit("durable")
		recordSource("volunteers", SourceLocalCache)
		sliced := capVolunteers(stored, limit)
		return VolunteersResult{Success: true, Volunteers: sliced, Count: len(sliced), Source: SourceLocalCache, Warning: errMessage(err)}
	}
	recordCacheMiss("durable")

	demo := capVolunteers(demoVolunteers(), limit)
	recordSource("volunteers", SourceMockData)
	return VolunteersResult{Success: true, Volunteers: demo, Count: len(demo), Source: SourceMockData, Warning: demoDataWarning}
}

// GetLeaderboard returns the top volunteers ranked by cleanup count. The
// board is derived locally from the volunteer listing; the platform's raw
// /leaderboard endpoint is only consulted when that derivation fails.
func (s *VolunteerService) GetLeaderboard(ctx context.Context, limit int, forceRefresh bool) LeaderboardResult {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	key := cache.CreateKey("leaderboard", map[string]interface{}{"limit": limit})

	if !forceRefresh {
		if v, ok := s.deps.Memory.Get(key); ok {
			if board, ok := v.([]*models.Volunteer); ok {
				recordCacheHit("memory")
				recordSource("leaderboard", SourceMemory)
				return LeaderboardResult{
					Success:         true,
					Leaderboard:     board,
					TotalVolunteers: len(board),
					GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
					Source:          SourceMemory,
				}
			}
		}
		recordCacheMiss("memory")
	}

	fetchLimit := limit * 2
	if fetchLimit < 50 {
		fetchLimit = 50
	}
	volunteers, err := s.fetchVolunteers(ctx, fetchLimit, nil, 0, false)
	if err == nil {
		board := buildLeaderboard(volunteers, limit)
		s.deps.Memory.Set(key, board, memoryTTL)
		recordSource("leaderboard", SourceAPI)
		return LeaderboardResult{
			Success:         true,
			Leaderboard:     board,
			TotalVolunteers: len(volunteers),
			GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
			Source:          SourceAPI,
		}
	}
	logging.Warn().Err(err).Msg("Leaderboard derivation failed, trying fallbacks")

	if stored, ok := s.storedVolunteers(volunteerStaleMaxAge); ok {
		recordSource("leaderboard", SourceLocalCache)
		return LeaderboardResult{
			Success:         true,
			Leaderboard:     buildLeaderboard(stored, limit),
			TotalVolunteers: len(stored),
			GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
			Source:          SourceLocalCache,
			Warning:         errMessage(err),
		}
	}

	resp, apiErr := s.deps.API.GetLeaderboard(ctx, limit)
	if apiErr != nil {
		recordSource("leaderboard", sourceFailure)
		return LeaderboardResult{Error: errMessage(apiErr), Leaderboard: []*models.Volunteer{}}
	}

	board := make([]*models.Volunteer, 0, len(resp.Leaderboard))
	for i := range resp.Leaderboard {
		if v := transform.Volunteer(ctx, &resp.Leaderboard[i], s.deps.Resolver, transform.Options{}); v != nil {
			v.Rank = len(board) + 1
			board = append(board, v)
		}
	}
	recordSource("leaderboard", SourceAPIFallback)
	return LeaderboardResult{
		Success:         true,
		Leaderboard:     board,
		TotalVolunteers: resp.TotalVolunteers,
		GeneratedAt:     resp.GeneratedAt,
		Source:          SourceAPIFallback,
		Warning:         leaderboardFallbackWarning,
	}
}

// CreateProfile creates or updates a volunteer profile on the platform and
// invalidates the volunteer caches.
func (s *VolunteerService) CreateProfile(ctx context.Context, req upstream.VolunteerProfileRequest) WriteResult {
	if req.Name == "" {
		return WriteResult{Error: "volunteer name is required"}
	}
	if req.ExperienceLevel == "" {
		req.ExperienceLevel = "beginner"
	}
	if req.Skills == nil {
		req.Skills = []string{}
	}

	if err := s.deps.API.CreateVolunteerProfile(ctx, req); err != nil {
		return WriteResult{Error: errMessage(err)}
	}

	s.invalidate()
	return WriteResult{Success: true, Message: "Volunteer profile saved"}
}

// UpdateAvailability flips a volunteer's availability on the platform and
// invalidates the volunteer caches.
func (s *VolunteerService) UpdateAvailability(ctx context.Context, userID string, available bool) WriteResult {
	if userID == "" {
		return WriteResult{Error: "user ID is required"}
	}

	if err := s.deps.API.UpdateAvailability(ctx, userID, available); err != nil {
		return WriteResult{Error: errMessage(err)}
	}

	s.invalidate()
	return WriteResult{Success: true, Message: "Availability updated"}
}

// FindCleanupOpportunities scores available volunteers near a location
// against a cleanup task. Scoring happens locally over the volunteer
// listing; the platform's similarity search is the fallback path.
func (s *VolunteerService) FindCleanupOpportunities(ctx context.Context, req OpportunityRequest) OpportunitiesResult {
	if req.Location == nil {
		return OpportunitiesResult{
			Error:         "valid location coordinates are required to locate opportunities",
			Opportunities: []*models.Volunteer{},
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultOpportunityLimit
	}
	radius := req.RadiusKm
	if radius <= 0 {
		radius = geo.DefaultRadiusKm
	}

	fetchLimit := limit * 2
	if fetchLimit < 40 {
		fetchLimit = 40
	}

	volunteers, err := s.fetchVolunteers(ctx, fetchLimit, req.Location, radius, true)
	if err == nil {
		scored := make([]*models.Volunteer, 0, len(volunteers))
		for _, v := range volunteers {
			copied := *v
			score := matchScore(req.Task, v)
			copied.MatchScore = &score
			scored = append(scored, &copied)
		}
		sort.SliceStable(scored, func(i, j int) bool {
			return *scored[i].MatchScore > *scored[j].MatchScore
		})

		total := len(scored)
		if limit < len(scored) {
			scored = scored[:limit]
		}
		recordSource("opportunities", SourceAPI)
		return OpportunitiesResult{Success: true, Opportunities: scored, Count: total, Source: SourceAPI}
	}
	logging.Warn().Err(err).Msg("Opportunity scoring failed, trying similarity search")

	fallbackRadius := req.RadiusKm
	if fallbackRadius <= 0 {
		fallbackRadius = fallbackSearchRadiusKm
	}
	minScore := req.MinScore
	if minScore <= 0 {
		minScore = defaultMinMatchScore
	}

	resp, apiErr := s.deps.API.FindVolunteers(ctx, upstream.FindVolunteersRequest{
		ReportData: map[string]interface{}{
			"primary_material":       req.Task.PrimaryMaterial,
			"estimated_volume":       req.Task.EstimatedVolume,
			"description":            req.Task.Description,
			"cleanup_priority_score": req.Task.PriorityScore,
		},
		Location: &upstream.LocationPayload{
			Lat: &req.Location.Lat,
			Lng: &req.Location.Lng,
		},
		RadiusKm:      fallbackRadius,
		Limit:         limit,
		MinMatchScore: minScore,
	})
	if apiErr != nil {
		recordSource("opportunities", sourceFailure)
		return OpportunitiesResult{Error: errMessage(apiErr), Opportunities: []*models.Volunteer{}}
	}

	matches := make([]*models.Volunteer, 0, len(resp.Volunteers))
	for i := range resp.Volunteers {
		m := &resp.Volunteers[i]
		v := transform.Volunteer(ctx, &m.VolunteerPayload, s.deps.Resolver, transform.Options{
			ReferenceLocation: req.Location,
			MatchScore:        &m.MatchScore,
		})
		if v != nil {
			matches = append(matches, v)
		}
	}
	count := resp.Count
	if count == 0 {
		count = len(matches)
	}
	recordSource("opportunities", SourceAPIFallback)
	return OpportunitiesResult{Success: true, Opportunities: matches, Count: count, Source: SourceAPIFallback, Warning: errMessage(err)}
}

// fetchVolunteers pulls volunteers from the platform ordered by cleanup
// count and writes the full list through both cache tiers when no location
// filter skews it.
func (s *VolunteerService) fetchVolunteers(ctx context.Context, limit int, location *geo.Point, radiusKm float64, availableOnly bool) ([]*models.Volunteer, error) {
	if limit <= 0 || limit > maxVolunteerFetch {
		limit = maxVolunteerFetch
	}

	query := upstream.VolunteerQuery{Limit: limit, AvailableOnly: availableOnly}
	if location != nil {
		query.Lat = &location.Lat
		query.Lon = &location.Lng
		query.RadiusKm = radiusKm
		if query.RadiusKm <= 0 {
			query.RadiusKm = geo.DefaultRadiusKm
		}
	}

	payloads, err := s.deps.API.GetVolunteers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch volunteers: %w", err)
	}

	volunteers := make([]*models.Volunteer, 0, len(payloads))
	for i := range payloads {
		if v := transform.Volunteer(ctx, &payloads[i], s.deps.Resolver, transform.Options{ReferenceLocation: location}); v != nil {
			volunteers = append(volunteers, v)
		}
	}

	sort.SliceStable(volunteers, func(i, j int) bool {
		return volunteers[i].PastCleanupCount > volunteers[j].PastCleanupCount
	})

	if len(volunteers) > 0 && location == nil && !availableOnly {
		s.deps.Memory.Set(volunteersDurableKey, volunteers, memoryTTL)
		if derr := s.deps.Durable.Set(volunteersDurableKey, volunteers, volunteerDurableTTL); derr != nil {
			logging.Warn().Err(derr).Msg("Failed to persist volunteers to durable cache")
		}
	}
	return volunteers, nil
}

func (s *VolunteerService) storedVolunteers(maxAge time.Duration) ([]*models.Volunteer, bool) {
	var stored []*models.Volunteer
	lookup, err := s.deps.Durable.Get(volunteersDurableKey, &stored)
	if err != nil {
		logging.Warn().Err(err).Msg("Durable volunteer read failed")
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

func (s *VolunteerService) invalidate() {
	s.deps.Memory.Delete(volunteersDurableKey)
	s.deps.Memory.DeletePrefix("leaderboard")
	if err := s.deps.Durable.Delete(volunteersDurableKey); err != nil {
		logging.Warn().Err(err).Msg("Failed to invalidate durable volunteer cache")
	}
}

// buildLeaderboard copies the top volunteers and assigns 1-based ranks.
// Entries are copied so cached lists are never mutated.
func buildLeaderboard(volunteers []*models.Volunteer, limit int) []*models.Volunteer {
	if limit > len(volunteers) {
		limit = len(volunteers)
	}
	board := make([]*models.Volunteer, 0, limit)
	for i := 0; i < limit; i++ {
		ranked := *volunteers[i]
		ranked.Rank = i + 1
		board = append(board, &ranked)
	}
	return board
}

func capVolunteers(volunteers []*models.Volunteer, limit int) []*models.Volunteer {
	if limit > 0 && limit < len(volunteers) {
		return volunteers[:limit]
	}
	return volunteers
}

// experienceRank orders experience levels for complexity matching.
var experienceRank = map[string]int{
	"beginner":     1,
	"intermediate": 2,
	"advanced":     3,
	"expert":       4,
}

// matchScore rates how well a volunteer fits a cleanup task, 0 to 1.
// Weights: materials expertise 0.3, experience vs. task complexity 0.2,
// equipment overlap up to 0.2, specialization mention 0.15, availability
// 0.15.
func matchScore(task CleanupTask, v *models.Volunteer) float64 {
	score := 0.0

	for _, material := range v.MaterialsExpertise {
		if material == task.PrimaryMaterial {
			score += 0.3
			break
		}
	}

	complexity := task.PriorityScore
	if complexity == 0 {
		complexity = 5
	}
	exp := experienceRank[v.ExperienceLevel]
	if exp == 0 {
		exp = 1
	}
	if complexity <= float64(exp)*2.5 {
		score += 0.2
	}

	if len(task.RecommendedEquipment) > 0 {
		matched := 0
		for _, item := range task.RecommendedEquipment {
			needle := strings.ToLower(item)
			for _, owned := range v.EquipmentOwned {
				if strings.Contains(strings.ToLower(owned), needle) {
					matched++
					break
				}
			}
		}
		score += float64(matched) / float64(len(task.RecommendedEquipment)) * 0.2
	}

	description := strings.ToLower(task.Description)
	for _, spec := range v.Specializations {
		if spec != "" && strings.Contains(description, strings.ToLower(spec)) {
			score += 0.15
			break
		}
	}

	if v.Available {
		score += 0.15
	}

	if score > 1 {
		return 1
	}
	return score
}
