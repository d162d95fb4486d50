// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package api

import "net/http"

// handleCurrentWeather serves GET /api/v1/weather/current.
func (router *Router) handleCurrentWeather(w http.ResponseWriter, r *http.Request) {
	location := queryLocation(r)
	if location == nil {
		writeError(w, r, http.StatusBadRequest, "lat and lng are required")
		return
	}

	result := router.weather.GetCurrentWeather(r.Context(), location.Lat, location.Lng)
	writeJSON(w, statusFor(result.Success), result)
}

// handleWeatherForecast serves GET /api/v1/weather/forecast. Forecast
// results always succeed; provider failures degrade to an empty list.
func (router *Router) handleWeatherForecast(w http.ResponseWriter, r *http.Request) {
	location := queryLocation(r)
	if location == nil {
		writeError(w, r, http.StatusBadRequest, "lat and lng are required")
		return
	}

	result := router.weather.GetForecast(r.Context(), location.Lat, location.Lng)
	writeJSON(w, http.StatusOK, result)
}
