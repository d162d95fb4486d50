// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

// Package api exposes the gateway's HTTP surface: normalized campaign,
// volunteer, and trash-report data under /api/v1, the live-detection
// overlay stream, health probes, and Prometheus metrics.
//
// Service results already carry their success flag, fallback source tag,
// and warning text; handlers serialize them as-is and only choose the
// HTTP status.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/danakm/tidesweep/internal/logging"
	"github.com/danakm/tidesweep/internal/middleware"
)

// maxBodyBytes bounds JSON request bodies. Image uploads use their own
// multipart limit.
const maxBodyBytes = 1 << 20

// errorBody is the JSON shape for requests rejected by the gateway
// itself, before a service result exists.
type errorBody struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorBody{
		Error:     message,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

// decodeJSON reads a size-limited JSON body into out.
func decodeJSON(r *http.Request, out interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()
	if err := json.NewDecoder(body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return errors.New("invalid JSON body")
	}
	return nil
}

// statusFor maps a service result to an HTTP status: fallback tiers still
// produce 200s, only a fully failed result becomes a gateway error.
func statusFor(success bool) int {
	if success {
		return http.StatusOK
	}
	return http.StatusBadGateway
}
