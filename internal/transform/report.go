// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package transform

import (
	"context"

	"github.com/danakm/tidesweep/internal/models"
	"github.com/danakm/tidesweep/internal/upstream"
)

const defaultReportDescription = "Cleanup report generated by waste analysis."

// TrashReport normalizes a raw waste-analysis report. Returns nil for a
// nil payload. Every field may arrive top-level or nested under metadata
// depending on which backend path produced the record; top-level wins.
func TrashReport(ctx context.Context, payload *upstream.TrashReportPayload, resolver AddressResolver, opts Options) *models.TrashReport {
	if payload == nil {
		return nil
	}

	var meta upstream.TrashReportMetadataPayload
	if payload.Metadata != nil {
		meta = *payload.Metadata
	}

	rawLocation := meta.Location
	if rawLocation == nil {
		rawLocation = payload.Location
	}
	location := normalizeLocation(ctx, rawLocation, resolver)

	id := payload.ReportID
	if id == "" {
		id = payload.ID
	}
	if id == "" {
		id = opts.PointID
	}

	priority := 5.0
	switch {
	case payload.CleanupPriorityScore != nil:
		priority = *payload.CleanupPriorityScore
	case meta.CleanupPriorityScore != nil:
		priority = *meta.CleanupPriorityScore
	}

	recyclable := false
	switch {
	case payload.Recyclable != nil:
		recyclable = *payload.Recyclable
	case meta.Recyclable != nil:
		recyclable = *meta.Recyclable
	}

	timestamp := payload.Timestamp
	if timestamp == "" {
		timestamp = meta.AnalyzedAt
	}
	if timestamp == "" {
		timestamp = meta.Timestamp
	}

	confidence := payload.ConfidenceScore
	if confidence == nil {
		confidence = meta.ConfidenceScore
	}

	equipment := payload.RecommendedEquipment
	if equipment == nil {
		equipment = meta.RecommendedEquipment
	}
	if equipment == nil {
		equipment = []string{}
	}

	return &models.TrashReport{
		ID:                   id,
		PrimaryMaterial:      firstNonEmpty(payload.PrimaryMaterial, meta.PrimaryMaterial, "mixed"),
		EstimatedVolume:      firstNonEmpty(payload.EstimatedVolume, meta.EstimatedVolume, "medium"),
		Description:          firstNonEmpty(payload.Description, meta.Description, defaultReportDescription),
		CleanupPriority:      priority,
		Recyclable:           recyclable,
		RiskLevel:            firstNonEmpty(payload.EnvironmentalRiskLevel, meta.EnvironmentalRiskLevel, "medium"),
		RecommendedEquipment: equipment,
		Location:             location,
		Timestamp:            timestamp,
		ConfidenceScore:      confidence,
		DistanceKm:           distanceFrom(opts.ReferenceLocation, location),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
