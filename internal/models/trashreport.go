// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package models

import "github.com/danakm/tidesweep/internal/geo"

// TrashReport is a normalized waste-analysis report produced by the
// platform's detection pipeline.
type TrashReport struct {
	ID                   string   `json:"id"`
	PrimaryMaterial      string   `json:"primaryMaterial"`
	EstimatedVolume      string   `json:"estimatedVolume"`
	Description          string   `json:"description"`
	CleanupPriority      float64  `json:"cleanupPriority"`
	Recyclable           bool     `json:"recyclable"`
	RiskLevel            string   `json:"riskLevel"`
	RecommendedEquipment []string `json:"recommendedEquipment"`
	Location             Location `json:"location"`
	Timestamp            string   `json:"timestamp"`
	ConfidenceScore      *float64 `json:"confidenceScore,omitempty"`
	DistanceKm           *float64 `json:"distanceKm,omitempty"`
}

// Coordinates implements geo.Locatable.
func (r *TrashReport) Coordinates() (geo.Point, bool) {
	return r.Location.Coordinates()
}
