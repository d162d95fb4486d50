// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package detect

import (
	"sync"
	"time"

	"github.com/danakm/tidesweep/internal/upstream"
)

// Frame is one camera frame pushed by a client, with optional capture
// location.
type Frame struct {
	Data       []byte
	Location   *upstream.LocationPayload
	CapturedAt time.Time
}

// FrameSource holds the most recent frame pushed over HTTP. Frames older
// than maxAge are treated as absent so a client that stopped pushing does
// not keep the poller analyzing its last image forever.
type FrameSource struct {
	mu     sync.RWMutex
	frame  Frame
	hasOne bool
	maxAge time.Duration
	now    func() time.Time
}

// NewFrameSource builds a frame source with the given staleness bound.
// maxAge <= 0 means frames never expire.
func NewFrameSource(maxAge time.Duration) *FrameSource {
	return &FrameSource{maxAge: maxAge, now: time.Now}
}

// Push replaces the current frame.
func (s *FrameSource) Push(data []byte, location *upstream.LocationPayload) {
	s.mu.Lock()
	s.frame = Frame{Data: data, Location: location, CapturedAt: s.now()}
	s.hasOne = len(data) > 0
	s.mu.Unlock()
}

// Latest returns the current frame, or false when none has been pushed or
// the last one is stale.
func (s *FrameSource) Latest() (Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasOne {
		return Frame{}, false
	}
	if s.maxAge > 0 && s.now().Sub(s.frame.CapturedAt) > s.maxAge {
		return Frame{}, false
	}
	return s.frame, true
}

// Clear drops the current frame.
func (s *FrameSource) Clear() {
	s.mu.Lock()
	s.frame = Frame{}
	s.hasOne = false
	s.mu.Unlock()
}
