// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package api

import (
	"net/http"

	"github.com/danakm/tidesweep/internal/service"
)

// handleFeed serves GET /api/v1/feed: campaigns, volunteers, reports, and
// leaderboard loaded concurrently, each section degrading independently.
func (router *Router) handleFeed(w http.ResponseWriter, r *http.Request) {
	result := router.feed.Load(r.Context(), service.FeedOptions{
		Location:         queryLocation(r),
		CampaignLimit:    queryInt(r, "campaign_limit", 0),
		VolunteerLimit:   queryInt(r, "volunteer_limit", 0),
		ReportLimit:      queryInt(r, "report_limit", 0),
		LeaderboardLimit: queryInt(r, "leaderboard_limit", 0),
	})
	writeJSON(w, statusFor(result.Success), result)
}

// reverseGeocodeResponse is the GET /geocode/reverse payload.
type reverseGeocodeResponse struct {
	Success bool    `json:"success"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// handleReverseGeocode serves GET /api/v1/geocode/reverse. Resolution
// never fails: an unreachable geocoder yields "Unknown location".
func (router *Router) handleReverseGeocode(w http.ResponseWriter, r *http.Request) {
	location := queryLocation(r)
	if location == nil {
		writeError(w, r, http.StatusBadRequest, "lat and lng are required")
		return
	}

	address := router.resolver.Resolve(r.Context(), location.Lat, location.Lng)
	writeJSON(w, http.StatusOK, reverseGeocodeResponse{
		Success: true,
		Lat:     location.Lat,
		Lng:     location.Lng,
		Address: address,
	})
}
