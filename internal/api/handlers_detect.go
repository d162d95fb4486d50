// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package api

import (
	"io"
	"net/http"

	gorilla "github.com/gorilla/websocket"

	"github.com/danakm/tidesweep/internal/logging"
	"github.com/danakm/tidesweep/internal/websocket"
)

// maxFrameBytes bounds pushed camera frames.
const maxFrameBytes = 2 << 20

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// CORS already gates browser clients at the HTTP layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handlePushFrame serves POST /api/v1/detect/frame: a multipart form with
// a "frame" file field and optional lat/lng fields. The poller analyzes
// the most recent frame on its next cycle.
func (router *Router) handlePushFrame(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFrameBytes)
	if err := r.ParseMultipartForm(maxFrameBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("frame")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "frame file is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	frame, err := io.ReadAll(file)
	if err != nil || len(frame) == 0 {
		writeError(w, r, http.StatusBadRequest, "failed to read frame")
		return
	}

	router.frames.Push(frame, formLocation(r))
	writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}

// handleOverlayState serves GET /api/v1/detect/state.
func (router *Router) handleOverlayState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, router.poller.Snapshot())
}

// handleStartDetection serves POST /api/v1/detect/start.
func (router *Router) handleStartDetection(w http.ResponseWriter, r *http.Request) {
	router.poller.Start()
	if router.hub != nil {
		router.hub.BroadcastDetectionStatus(true)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": true})
}

// handleStopDetection serves POST /api/v1/detect/stop. With ?clear=true
// the overlay is blanked instead of frozen on its last detections.
func (router *Router) handleStopDetection(w http.ResponseWriter, r *http.Request) {
	if queryBool(r, "clear") {
		router.poller.StopAndClear()
		router.frames.Clear()
	} else {
		router.poller.Stop()
	}
	if router.hub != nil {
		router.hub.BroadcastDetectionStatus(false)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": false})
}

// handleOverlayStream serves GET /api/v1/detect/stream, upgrading to a
// websocket that receives every overlay-state change.
func (router *Router) handleOverlayStream(w http.ResponseWriter, r *http.Request) {
	if router.hub == nil {
		writeError(w, r, http.StatusNotFound, "overlay stream is not enabled")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("Overlay stream upgrade failed")
		return
	}

	client := websocket.NewClient(router.hub, conn)
	router.hub.Register <- client
	client.Start()
}
