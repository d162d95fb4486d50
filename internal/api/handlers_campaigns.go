// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danakm/tidesweep/internal/geo"
	"github.com/danakm/tidesweep/internal/service"
	"github.com/danakm/tidesweep/internal/upstream"
)

// handleListCampaigns serves GET /api/v1/campaigns.
func (router *Router) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	result := router.campaigns.GetCampaigns(r.Context(), service.CampaignListOptions{
		Limit:        queryInt(r, "limit", 0),
		ForceRefresh: queryBool(r, "refresh"),
	})
	writeJSON(w, statusFor(result.Success), result)
}

// handleActiveCampaigns serves GET /api/v1/campaigns/active.
func (router *Router) handleActiveCampaigns(w http.ResponseWriter, r *http.Request) {
	result := router.campaigns.GetActiveCampaigns(r.Context(), service.CampaignListOptions{
		Limit:        queryInt(r, "limit", 0),
		ForceRefresh: queryBool(r, "refresh"),
	})
	writeJSON(w, statusFor(result.Success), result)
}

// handleCampaignBounds serves GET /api/v1/campaigns/map-bounds: the box a
// map viewport needs to fit every campaign, plus the caller's own
// location when lat/lng are supplied.
func (router *Router) handleCampaignBounds(w http.ResponseWriter, r *http.Request) {
	result := router.campaigns.GetCampaigns(r.Context(), service.CampaignListOptions{
		ForceRefresh: queryBool(r, "refresh"),
	})
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, result)
		return
	}

	bounds := geo.BoundsAround(result.Campaigns, queryLocation(r))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"bounds":  bounds,
		"source":  result.Source,
	})
}

// handleGetCampaign serves GET /api/v1/campaigns/{id}.
func (router *Router) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	result := router.campaigns.GetCampaignByID(r.Context(), chi.URLParam(r, "id"), queryBool(r, "refresh"))
	writeJSON(w, statusFor(result.Success), result)
}

// handleCreateCampaign serves POST /api/v1/campaigns.
func (router *Router) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req upstream.CreateCampaignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.CampaignName == "" {
		writeError(w, r, http.StatusBadRequest, "campaign_name is required")
		return
	}

	result := router.campaigns.CreateCampaign(r.Context(), req)
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, result)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// handleESGImpact serves GET /api/v1/campaigns/esg-impact.
func (router *Router) handleESGImpact(w http.ResponseWriter, r *http.Request) {
	result := router.campaigns.GetESGImpact(r.Context())
	writeJSON(w, statusFor(result.Success), result)
}
