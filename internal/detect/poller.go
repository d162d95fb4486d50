// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

/*
poller.go - Live Waste-Detection Poller

Drives the camera overlay: at a fixed interval the poller takes the most
recent frame pushed by a client, submits it to the platform's lightweight
detector, and publishes the resulting overlay state. One detection request
is in flight at a time; a tick that lands while the previous request is
still running is skipped, never queued.
*/

package detect

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danakm/tidesweep/internal/logging"
	"github.com/danakm/tidesweep/internal/metrics"
	"github.com/danakm/tidesweep/internal/upstream"
)

// Detector runs lightweight detection on one frame. Implemented by the
// upstream client and its circuit-breaker wrapper.
type Detector interface {
	DetectLiveFrame(ctx context.Context, frame []byte, location *upstream.LocationPayload, includeSummary bool) (*upstream.LiveDetectResponse, error)
}

// Overlay is the published detection state. Err is set and Detections
// cleared when the last cycle failed.
type Overlay struct {
	Detections      []upstream.Detection       `json:"detections"`
	Summary         *upstream.DetectionSummary `json:"summary,omitempty"`
	FrameDimensions *upstream.FrameDimensions  `json:"frameDimensions,omitempty"`
	LatencyMs       float64                    `json:"latencyMs"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
	Err             string                     `json:"error,omitempty"`
	Active          bool                       `json:"active"`
}

// session is one Start..Stop span. The cancelled flag is the guard that
// keeps a response from a cycle started before Stop from mutating overlay
// state after it.
type session struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// Poller polls the detector with the latest pushed frame.
type Poller struct {
	source   *FrameSource
	detector Detector
	interval time.Duration

	mu      sync.RWMutex
	running bool
	current *session
	state   Overlay
	wg      sync.WaitGroup

	inFlight atomic.Bool

	// onUpdate, when set, receives every overlay change; the websocket
	// hub uses it to push state to connected clients.
	onUpdate func(Overlay)
}

// NewPoller builds a poller over a frame source and detector.
func NewPoller(source *FrameSource, detector Detector, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 1500 * time.Millisecond
	}
	return &Poller{source: source, detector: detector, interval: interval}
}

// SetOnUpdate sets the overlay-change callback. Call before Start.
func (p *Poller) SetOnUpdate(callback func(Overlay)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = callback
}

// Start begins polling: one immediate cycle, then one per interval.
// Starting a running poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{ctx: ctx, cancel: cancel}
	p.running = true
	p.current = sess
	p.state.Active = true
	p.mu.Unlock()

	logging.Info().Dur("interval", p.interval).Msg("Starting detection poller")

	p.wg.Add(1)
	go p.pollLoop(sess)
}

// Stop halts polling and invalidates any in-flight cycle. The overlay
// keeps its last detections: stopping pauses the overlay, it does not
// blank it.
func (p *Poller) Stop() {
	p.stop(false)
}

// StopAndClear halts polling and blanks the overlay, for preconditions
// whose failure invalidates what is on screen (camera gone, frame source
// replaced) rather than merely pausing it.
func (p *Poller) StopAndClear() {
	p.stop(true)
}

func (p *Poller) stop(clear bool) {
	p.mu.Lock()
	if !p.running {
		if clear {
			p.state = Overlay{}
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()
		return
	}
	sess := p.current
	p.running = false
	p.current = nil
	p.state.Active = false
	if clear {
		p.state = Overlay{}
	}
	p.mu.Unlock()

	// Order matters: mark cancelled before releasing the context so a
	// cycle that unblocks on cancellation finds the flag already set.
	sess.cancelled.Store(true)
	sess.cancel()
	p.wg.Wait()

	logging.Info().Bool("cleared", clear).Msg("Detection poller stopped")
}

// Running reports whether a polling session is active.
func (p *Poller) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Snapshot returns a copy of the current overlay state.
func (p *Poller) Snapshot() Overlay {
	p.mu.RLock()
	defer p.mu.RUnlock()
	state := p.state
	state.Detections = append([]upstream.Detection(nil), p.state.Detections...)
	return state
}

// Serve runs the poller under a supervisor: it starts polling, blocks
// until ctx is cancelled, then stops without clearing the overlay.
// Stop/Start over the HTTP API still work while Serve blocks.
func (p *Poller) Serve(ctx context.Context) error {
	p.Start()
	<-ctx.Done()
	p.Stop()
	return ctx.Err()
}

func (p *Poller) String() string { return "detection-poller" }

func (p *Poller) pollLoop(sess *session) {
	defer p.wg.Done()

	// Immediate first cycle.
	p.cycle(sess)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sess.ctx.Done():
			return
		case <-ticker.C:
			p.cycle(sess)
		}
	}
}

// cycle runs one detection attempt. The request itself runs detached from
// the tick loop so a slow platform stretches latency, not the schedule;
// ticks that land mid-request are skipped.
func (p *Poller) cycle(sess *session) {
	if !p.inFlight.CompareAndSwap(false, true) {
		metrics.DetectionCycles.WithLabelValues("skipped").Inc()
		return
	}

	frame, ok := p.source.Latest()
	if !ok {
		p.inFlight.Store(false)
		metrics.DetectionCycles.WithLabelValues("no_frame").Inc()
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)

		start := time.Now()
		resp, err := p.detector.DetectLiveFrame(sess.ctx, frame.Data, frame.Location, false)
		elapsed := time.Since(start)
		metrics.DetectionCycleDuration.Observe(elapsed.Seconds())

		if sess.cancelled.Load() {
			metrics.DetectionCycles.WithLabelValues("cancelled").Inc()
			return
		}

		if err != nil {
			metrics.DetectionCycles.WithLabelValues("failure").Inc()
			logging.Debug().Err(err).Msg("Detection cycle failed")
			p.publish(sess, Overlay{
				Detections: []upstream.Detection{},
				UpdatedAt:  time.Now(),
				Err:        err.Error(),
				Active:     true,
			})
			return
		}

		metrics.DetectionCycles.WithLabelValues("success").Inc()
		latency := elapsed.Seconds() * 1000
		if resp.LatencyMs != nil {
			latency = *resp.LatencyMs
		}
		p.publish(sess, Overlay{
			Detections:      resp.Detections,
			Summary:         resp.DetectionSummary,
			FrameDimensions: resp.FrameDimensions,
			LatencyMs:       latency,
			UpdatedAt:       time.Now(),
			Active:          true,
		})
	}()
}

// publish replaces the overlay state unless the session was cancelled
// between the response arriving and the lock being taken.
func (p *Poller) publish(sess *session, state Overlay) {
	p.mu.Lock()
	if sess.cancelled.Load() {
		p.mu.Unlock()
		return
	}
	p.state = state
	callback := p.onUpdate
	p.mu.Unlock()

	if callback != nil {
		callback(state)
	}
}
