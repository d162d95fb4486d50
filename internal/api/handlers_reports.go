// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/danakm/tidesweep/internal/geo"
	"github.com/danakm/tidesweep/internal/service"
	"github.com/danakm/tidesweep/internal/upstream"
)

// maxImageBytes bounds uploaded analysis images.
const maxImageBytes = 10 << 20

// handleListReports serves GET /api/v1/trash-reports.
func (router *Router) handleListReports(w http.ResponseWriter, r *http.Request) {
	result := router.reports.GetRecent(r.Context(), service.ReportListOptions{
		Limit:    queryInt(r, "limit", 0),
		Location: queryLocation(r),
	})
	writeJSON(w, statusFor(result.Success), result)
}

// handleAnalyzeImage serves POST /api/v1/trash-reports/analyze. The body
// is a multipart form with an "image" file field plus optional lat, lng,
// notes, user_id, and use_yolo fields.
func (router *Router) handleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "image file is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to read image")
		return
	}

	req := service.AnalysisRequest{
		Image:    image,
		Filename: header.Filename,
		Notes:    r.FormValue("notes"),
		UserID:   r.FormValue("user_id"),
		UseYolo:  r.FormValue("use_yolo") == "true",
	}
	if location := formLocation(r); location != nil {
		req.Location = location
	}

	result := router.reports.AnalyzeImage(r.Context(), req)
	writeJSON(w, statusFor(result.Success), result)
}

// hotspotBody is the POST /trash-reports/hotspots request.
type hotspotBody struct {
	Task       service.CleanupTask `json:"task"`
	Lat        *float64            `json:"lat"`
	Lng        *float64            `json:"lng"`
	WindowDays int                 `json:"windowDays"`
	MinReports int                 `json:"minReports"`
}

// handleDetectHotspots serves POST /api/v1/trash-reports/hotspots.
func (router *Router) handleDetectHotspots(w http.ResponseWriter, r *http.Request) {
	var body hotspotBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var location *geo.Point
	if body.Lat != nil && body.Lng != nil {
		location = locationFromCoords(*body.Lat, *body.Lng)
	}

	result := router.reports.DetectHotspots(r.Context(), body.Task, location, body.WindowDays, body.MinReports)
	writeJSON(w, statusFor(result.Success), result)
}

// formLocation reads lat/lng multipart form fields.
func formLocation(r *http.Request) *upstream.LocationPayload {
	latRaw, lngRaw := r.FormValue("lat"), r.FormValue("lng")
	if latRaw == "" || lngRaw == "" {
		return nil
	}
	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lng, lngErr := strconv.ParseFloat(lngRaw, 64)
	if latErr != nil || lngErr != nil {
		return nil
	}
	return &upstream.LocationPayload{Lat: &lat, Lng: &lng}
}
