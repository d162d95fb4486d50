// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string `json:"status"`
	Upstream  string `json:"upstream,omitempty"`
	Timestamp string `json:"timestamp"`
}

// handleHealthLive serves GET /api/v1/health/live: the gateway process is
// up. No upstream dependency is consulted.
func (router *Router) handleHealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleHealthReady serves GET /api/v1/health/ready. The gateway stays
// ready when the platform is down (it degrades to cached and demo data),
// so upstream state is reported but never fails the probe.
func (router *Router) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	upstreamStatus := "ok"
	if err := router.platform.Health(r.Context()); err != nil {
		upstreamStatus = "unreachable"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Upstream:  upstreamStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
