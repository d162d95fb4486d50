// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danakm/tidesweep/internal/service"
	"github.com/danakm/tidesweep/internal/upstream"
)

// handleListVolunteers serves GET /api/v1/volunteers.
func (router *Router) handleListVolunteers(w http.ResponseWriter, r *http.Request) {
	result := router.volunteers.GetVolunteers(r.Context(), service.VolunteerListOptions{
		Limit:         queryInt(r, "limit", 0),
		Location:      queryLocation(r),
		RadiusKm:      queryFloat(r, "radius_km", 0),
		AvailableOnly: queryBool(r, "available"),
		ForceRefresh:  queryBool(r, "refresh"),
	})
	writeJSON(w, statusFor(result.Success), result)
}

// handleLeaderboard serves GET /api/v1/leaderboard.
func (router *Router) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	result := router.volunteers.GetLeaderboard(r.Context(), queryInt(r, "limit", 0), queryBool(r, "refresh"))
	writeJSON(w, statusFor(result.Success), result)
}

// handleCreateProfile serves POST /api/v1/volunteers/profile.
func (router *Router) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req upstream.VolunteerProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result := router.volunteers.CreateProfile(r.Context(), req)
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, result)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// availabilityBody is the PUT /volunteers/{id}/availability request.
type availabilityBody struct {
	Available bool `json:"available"`
}

// handleUpdateAvailability serves PUT /api/v1/volunteers/{id}/availability.
func (router *Router) handleUpdateAvailability(w http.ResponseWriter, r *http.Request) {
	var body availabilityBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result := router.volunteers.UpdateAvailability(r.Context(), chi.URLParam(r, "id"), body.Available)
	writeJSON(w, statusFor(result.Success), result)
}

// opportunityBody is the POST /volunteers/opportunities request.
type opportunityBody struct {
	Task     service.CleanupTask `json:"task"`
	Lat      *float64            `json:"lat"`
	Lng      *float64            `json:"lng"`
	RadiusKm float64             `json:"radiusKm"`
	Limit    int                 `json:"limit"`
	MinScore float64             `json:"minScore"`
}

// handleFindOpportunities serves POST /api/v1/volunteers/opportunities.
func (router *Router) handleFindOpportunities(w http.ResponseWriter, r *http.Request) {
	var body opportunityBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if body.Lat == nil || body.Lng == nil {
		writeError(w, r, http.StatusBadRequest, "lat and lng are required")
		return
	}

	result := router.volunteers.FindCleanupOpportunities(r.Context(), service.OpportunityRequest{
		Task:     body.Task,
		Location: locationFromCoords(*body.Lat, *body.Lng),
		RadiusKm: body.RadiusKm,
		Limit:    body.Limit,
		MinScore: body.MinScore,
	})
	writeJSON(w, statusFor(result.Success), result)
}
