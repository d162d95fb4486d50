// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package detect

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danakm/tidesweep/internal/upstream"
)

// fakeDetector serializes detection calls through channels so tests can
// hold a cycle in flight and release it at a chosen moment. Calls abort
// on context cancellation unless ignoreCancel is set, which models a
// platform response arriving after the poller gave up on it.
type fakeDetector struct {
	calls        atomic.Int64
	started      chan struct{}
	release      chan struct{}
	ignoreCancel bool
	respond      func(call int64) (*upstream.LiveDetectResponse, error)
}

func newFakeDetector(respond func(call int64) (*upstream.LiveDetectResponse, error)) *fakeDetector {
	return &fakeDetector{
		started: make(chan struct{}, 64),
		release: make(chan struct{}, 64),
		respond: respond,
	}
}

func (d *fakeDetector) DetectLiveFrame(ctx context.Context, _ []byte, _ *upstream.LocationPayload, _ bool) (*upstream.LiveDetectResponse, error) {
	call := d.calls.Add(1)
	select {
	case d.started <- struct{}{}:
	default:
	}
	if d.ignoreCancel {
		<-d.release
		return d.respond(call)
	}
	select {
	case <-d.release:
		return d.respond(call)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func detectionsResponse(labels ...string) *upstream.LiveDetectResponse {
	resp := &upstream.LiveDetectResponse{}
	for _, label := range labels {
		resp.Detections = append(resp.Detections, upstream.Detection{Label: label})
	}
	return resp
}

func pushedSource(t *testing.T) *FrameSource {
	t.Helper()
	source := NewFrameSource(0)
	source.Push([]byte("frame"), nil)
	return source
}

func waitOverlay(t *testing.T, updates <-chan Overlay) Overlay {
	t.Helper()
	select {
	case state := <-updates:
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for overlay update")
		return Overlay{}
	}
}

func TestPollerPublishesDetections(t *testing.T) {
	detector := newFakeDetector(func(int64) (*upstream.LiveDetectResponse, error) {
		return detectionsResponse("plastic_bottle", "aluminum_can"), nil
	})
	poller := NewPoller(pushedSource(t), detector, time.Hour)
	updates := make(chan Overlay, 4)
	poller.SetOnUpdate(func(state Overlay) { updates <- state })

	poller.Start()
	defer poller.Stop()
	detector.release <- struct{}{}

	state := waitOverlay(t, updates)
	if len(state.Detections) != 2 || state.Detections[0].Label != "plastic_bottle" {
		t.Errorf("Detections = %+v", state.Detections)
	}
	if state.Err != "" || !state.Active {
		t.Errorf("Err = %q, Active = %v", state.Err, state.Active)
	}
	if snap := poller.Snapshot(); len(snap.Detections) != 2 {
		t.Errorf("Snapshot().Detections = %+v", snap.Detections)
	}
}

func TestPollerSkipsWhileCycleInFlight(t *testing.T) {
	detector := newFakeDetector(func(int64) (*upstream.LiveDetectResponse, error) {
		return detectionsResponse(), nil
	})
	poller := NewPoller(pushedSource(t), detector, 5*time.Millisecond)

	poller.Start()
	<-detector.started

	// Several ticks elapse while the first cycle is held open; each must
	// be skipped rather than queued behind it.
	time.Sleep(60 * time.Millisecond)
	if calls := detector.calls.Load(); calls != 1 {
		t.Errorf("calls while first cycle in flight = %d, want 1", calls)
	}

	detector.release <- struct{}{}
	poller.Stop()
}

func TestPollerFailureClearsDetections(t *testing.T) {
	detector := newFakeDetector(func(call int64) (*upstream.LiveDetectResponse, error) {
		if call == 1 {
			return detectionsResponse("glass_bottle"), nil
		}
		return nil, errors.New("detector offline")
	})
	poller := NewPoller(pushedSource(t), detector, 5*time.Millisecond)
	updates := make(chan Overlay, 16)
	poller.SetOnUpdate(func(state Overlay) { updates <- state })

	poller.Start()
	defer poller.Stop()
	detector.release <- struct{}{}

	first := waitOverlay(t, updates)
	if len(first.Detections) != 1 {
		t.Fatalf("first overlay Detections = %+v", first.Detections)
	}

	<-detector.started // initial call
	<-detector.started // failing call
	detector.release <- struct{}{}

	failed := waitOverlay(t, updates)
	if failed.Err != "detector offline" {
		t.Errorf("Err = %q, want %q", failed.Err, "detector offline")
	}
	if len(failed.Detections) != 0 {
		t.Errorf("Detections after failure = %+v, want empty", failed.Detections)
	}
}

// A response for a cycle started before Stop must not touch overlay state
// once the poller has been cancelled, however late it lands.
func TestPollerLateResponseAfterStopDoesNotMutateState(t *testing.T) {
	detector := newFakeDetector(func(int64) (*upstream.LiveDetectResponse, error) {
		return detectionsResponse("stale_result"), nil
	})
	detector.ignoreCancel = true
	poller := NewPoller(pushedSource(t), detector, time.Hour)
	updates := make(chan Overlay, 4)
	poller.SetOnUpdate(func(state Overlay) { updates <- state })

	poller.Start()
	<-detector.started

	stopped := make(chan struct{})
	go func() {
		poller.Stop()
		close(stopped)
	}()

	// Give Stop time to set the cancelled flag, then let the held call
	// return its detections.
	time.Sleep(20 * time.Millisecond)
	detector.release <- struct{}{}

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return")
	}

	if snap := poller.Snapshot(); len(snap.Detections) != 0 {
		t.Errorf("Snapshot().Detections = %+v, want none from cancelled cycle", snap.Detections)
	}
	select {
	case state := <-updates:
		t.Errorf("overlay update published after cancellation: %+v", state)
	default:
	}
}

func TestPollerStopKeepsOverlayStopAndClearBlanksIt(t *testing.T) {
	detector := newFakeDetector(func(int64) (*upstream.LiveDetectResponse, error) {
		return detectionsResponse("plastic_bag"), nil
	})
	poller := NewPoller(pushedSource(t), detector, time.Hour)
	updates := make(chan Overlay, 4)
	poller.SetOnUpdate(func(state Overlay) { updates <- state })

	poller.Start()
	detector.release <- struct{}{}
	waitOverlay(t, updates)

	poller.Stop()
	snap := poller.Snapshot()
	if len(snap.Detections) != 1 {
		t.Errorf("Snapshot().Detections after Stop = %+v, want last result kept", snap.Detections)
	}
	if snap.Active {
		t.Error("Active = true after Stop")
	}

	poller.StopAndClear()
	if snap := poller.Snapshot(); len(snap.Detections) != 0 {
		t.Errorf("Snapshot().Detections after StopAndClear = %+v, want empty", snap.Detections)
	}
}

func TestPollerIdlesWithoutFrame(t *testing.T) {
	detector := newFakeDetector(func(int64) (*upstream.LiveDetectResponse, error) {
		return detectionsResponse(), nil
	})
	poller := NewPoller(NewFrameSource(0), detector, 5*time.Millisecond)

	poller.Start()
	time.Sleep(40 * time.Millisecond)
	poller.Stop()

	if calls := detector.calls.Load(); calls != 0 {
		t.Errorf("calls with no frame pushed = %d, want 0", calls)
	}
}

func TestFrameSourceStaleness(t *testing.T) {
	source := NewFrameSource(50 * time.Millisecond)
	current := time.Unix(1_700_000_000, 0)
	source.now = func() time.Time { return current }

	if _, ok := source.Latest(); ok {
		t.Error("Latest() ok before any push")
	}

	source.Push([]byte("frame"), nil)
	if frame, ok := source.Latest(); !ok || string(frame.Data) != "frame" {
		t.Errorf("Latest() = %+v, %v", frame, ok)
	}

	current = current.Add(51 * time.Millisecond)
	if _, ok := source.Latest(); ok {
		t.Error("Latest() ok for stale frame")
	}

	source.Push([]byte("fresh"), nil)
	source.Clear()
	if _, ok := source.Latest(); ok {
		t.Error("Latest() ok after Clear")
	}
}
