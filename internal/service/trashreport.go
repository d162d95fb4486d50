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

	"github.com/google/uuid"

	"github.com/danakm/tidesweep/internal/cache"
	"github.com/danakm/tidesweep/internal/geo"
	"github.com/danakm/tidesweep/internal/logging"
	"github.com/danakm/tidesweep/internal/models"
	"github.com/danakm/tidesweep/internal/transform"
	"github.com/danakm/tidesweep/internal/upstream"
)

const (
	defaultReportLimit = 25
	// minReportFetch over-fetches so sorting and the local slice see the
	// full recent window, not just the first page the platform returns.
	minReportFetch = 200

	defaultHotspotWindowDays = 30
	defaultHotspotMinReports = 3
)

// TrashReportService serves waste-analysis reports and proxies image
// analysis and hotspot detection to the platform.
type TrashReportService struct {
	deps Deps
}

// NewTrashReportService builds a trash-report service over deps.
func NewTrashReportService(deps Deps) *TrashReportService {
	return &TrashReportService{deps: deps}
}

// ReportListOptions controls a report listing. When Location is set the
// memory tier is bypassed and results carry distance annotations.
type ReportListOptions struct {
	Limit    int
	Location *geo.Point
}

// ReportsResult is the outcome of a report listing. Unlike campaigns and
// volunteers there is no demo-data tier: an unreachable upstream with a
// cold cache is a hard failure.
type ReportsResult struct {
	Success bool                  `json:"success"`
	Reports []*models.TrashReport `json:"reports"`
	Count   int                   `json:"count"`
	Source  Source                `json:"source,omitempty"`
	Warning string                `json:"warning,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// AnalysisRequest submits an image for waste analysis.
type AnalysisRequest struct {
	Image    []byte
	Filename string
	Location *upstream.LocationPayload
	Notes    string
	UserID   string
	UseYolo  bool
}

// AnalysisResult is the outcome of an image analysis.
type AnalysisResult struct {
	Success    bool                 `json:"success"`
	ReportID   string               `json:"reportId,omitempty"`
	Report     *models.TrashReport  `json:"report,omitempty"`
	Detections []upstream.Detection `json:"detections,omitempty"`
	Message    string               `json:"message,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// HotspotResult is the outcome of a hotspot check.
type HotspotResult struct {
	Success        bool     `json:"success"`
	IsHotspot      bool     `json:"isHotspot"`
	SimilarReports int      `json:"similarReports"`
	ReportIDs      []string `json:"reportIds,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// GetRecent lists recent reports, newest first. Location-filtered requests
// always hit the upstream; cache tiers hold only the unfiltered listing.
func (s *TrashReportService) GetRecent(ctx context.Context, opts ReportListOptions) ReportsResult {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultReportLimit
	}
	key := cache.CreateKey("trash-reports", map[string]interface{}{"limit": limit})

	if opts.Location == nil {
		if v, ok := s.deps.Memory.Get(key); ok {
			if reports, ok := v.([]*models.TrashReport); ok {
				recordCacheHit("memory")
				recordSource("trash-reports", SourceMemory)
				return ReportsResult{Success: true, Reports: reports, Count: len(reports), Source: SourceMemory}
			}
		}
		recordCacheMiss("memory")
	}

	reports, err := s.fetchReports(ctx, limit, opts.Location)
	if err == nil {
		if opts.Location == nil {
			s.deps.Memory.Set(key, reports, memoryTTL)
			if derr := s.deps.Durable.Set(reportsDurableKey, reports, reportDurableTTL); derr != nil {
				logging.Warn().Err(derr).Msg("Failed to persist trash reports to durable cache")
			}
		}
		recordSource("trash-reports", SourceAPI)
		return ReportsResult{Success: true, Reports: reports, Count: len(reports), Source: SourceAPI}
	}
	logging.Warn().Err(err).Msg("Trash report fetch failed, trying durable cache")

	var stored []*models.TrashReport
	lookup, derr := s.deps.Durable.Get(reportsDurableKey, &stored)
	if derr == nil && lookup.Found && len(stored) > 0 && lookup.Age(time.Now()) <= reportStaleMaxAge {
		if limit < len(stored) {
			stored = stored[:limit]
		}
		recordCacheHit("durable")
		recordSource("trash-reports", SourceLocalCache)
		return ReportsResult{Success: true, Reports: stored, Count: len(stored), Source: SourceLocalCache, Warning: errMessage(err)}
	}
	recordCacheMiss("durable")

	recordSource("trash-reports", sourceFailure)
	return ReportsResult{Error: errMessage(err), Reports: []*models.TrashReport{}}
}

// AnalyzeImage runs the platform's waste detector on an image and records
// the resulting report in the local store.
func (s *TrashReportService) AnalyzeImage(ctx context.Context, req AnalysisRequest) AnalysisResult {
	if len(req.Image) == 0 {
		return AnalysisResult{Error: "image file is required to create a trash report"}
	}
	filename := req.Filename
	if filename == "" {
		filename = "upload.jpg"
	}

	fields := upstream.MultipartFields{
		Location: req.Location,
		Notes:    req.Notes,
		UserID:   req.UserID,
	}
	resp, err := s.deps.API.DetectWaste(ctx, req.Image, filename, fields, req.UseYolo)
	if err != nil {
		return AnalysisResult{Error: errMessage(err)}
	}

	reportID := resp.ReportID
	if reportID == "" {
		reportID = uuid.NewString()
	}

	var report *models.TrashReport
	if resp.Analysis != nil {
		payload := &upstream.TrashReportPayload{
			Metadata: resp.Analysis,
			Location: resp.Location,
		}
		report = transform.TrashReport(ctx, payload, s.deps.Resolver, transform.Options{PointID: reportID})
		if report != nil && s.deps.Reports != nil {
			if serr := s.deps.Reports.AddAnalysis(report); serr != nil {
				logging.Warn().Err(serr).Msg("Failed to store analysis report locally")
			}
		}
	}

	// New data invalidates the recent listing.
	s.deps.Memory.DeletePrefix("trash-reports")

	return AnalysisResult{
		Success:    true,
		ReportID:   reportID,
		Report:     report,
		Detections: resp.Detections,
		Message:    resp.Message,
	}
}

// DetectHotspots checks whether a cleanup task's location is a recurring
// trash hotspot.
func (s *TrashReportService) DetectHotspots(ctx context.Context, task CleanupTask, location *geo.Point, windowDays, minReports int) HotspotResult {
	if windowDays <= 0 {
		windowDays = defaultHotspotWindowDays
	}
	if minReports <= 0 {
		minReports = defaultHotspotMinReports
	}

	reportData := map[string]interface{}{
		"primary_material":       task.PrimaryMaterial,
		"estimated_volume":       task.EstimatedVolume,
		"description":            task.Description,
		"cleanup_priority_score": task.PriorityScore,
	}
	if location != nil {
		reportData["location"] = map[string]float64{"lat": location.Lat, "lon": location.Lng}
	}

	resp, err := s.deps.API.DetectHotspots(ctx, upstream.HotspotRequest{
		ReportData:        reportData,
		TimeWindowDays:    windowDays,
		MinSimilarReports: minReports,
	})
	if err != nil {
		return HotspotResult{Error: errMessage(err)}
	}

	return HotspotResult{
		Success:        true,
		IsHotspot:      resp.IsHotspot,
		SimilarReports: resp.SimilarReports,
		ReportIDs:      resp.ReportIDs,
		Summary:        resp.Summary,
	}
}

// fetchReports over-fetches recent reports, transforms and sorts them
// newest first, and caps the result at limit.
func (s *TrashReportService) fetchReports(ctx context.Context, limit int, location *geo.Point) ([]*models.TrashReport, error) {
	fetchLimit := limit
	if fetchLimit < minReportFetch {
		fetchLimit = minReportFetch
	}

	query := upstream.TrashReportQuery{Limit: fetchLimit}
	if location != nil {
		query.Lat = &location.Lat
		query.Lon = &location.Lng
	}

	payloads, err := s.deps.API.GetTrashReports(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch trash reports: %w", err)
	}

	reports := make([]*models.TrashReport, 0, len(payloads))
	for i := range payloads {
		if r := transform.TrashReport(ctx, &payloads[i], s.deps.Resolver, transform.Options{ReferenceLocation: location}); r != nil {
			reports = append(reports, r)
		}
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reportTime(reports[i]).After(reportTime(reports[j]))
	})

	if limit > 0 && limit < len(reports) {
		reports = reports[:limit]
	}
	return reports, nil
}

// reportTime parses a report's timestamp for sorting; unparseable
// timestamps sort last.
func reportTime(r *models.TrashReport) time.Time {
	if r.Timestamp == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, r.Timestamp); err == nil {
			return t
		}
	}
	return time.Time{}
}
