// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/danakm/tidesweep/internal/logging"
)

// HTTPServer matches *http.Server's lifecycle methods.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService adapts an HTTP server's blocking ListenAndServe to suture's
// context-aware Serve.
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPService wraps a server for supervision.
func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service. http.ErrServerClosed is the expected
// outcome of a graceful shutdown and is not treated as a failure.
func (h *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTPService) String() string { return "http-server" }

// ContextRunner matches the websocket hub's RunWithContext.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// HubService supervises the overlay websocket hub.
type HubService struct {
	hub ContextRunner
}

// NewHubService wraps a hub for supervision.
func NewHubService(hub ContextRunner) *HubService {
	return &HubService{hub: hub}
}

// Serve implements suture.Service.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

func (s *HubService) String() string { return "overlay-hub" }

// badgerGCInterval is how often value-log garbage collection runs.
const badgerGCInterval = 10 * time.Minute

// badgerGCDiscardRatio rewrites a value-log file when at least this
// fraction of it is stale.
const badgerGCDiscardRatio = 0.5

// BadgerGCService periodically runs badger value-log garbage collection
// so expired cache entries and trimmed report lists reclaim disk space.
type BadgerGCService struct {
	db       *badger.DB
	interval time.Duration
}

// NewBadgerGCService wraps a badger DB for supervised maintenance.
func NewBadgerGCService(db *badger.DB) *BadgerGCService {
	return &BadgerGCService{db: db, interval: badgerGCInterval}
}

// Serve implements suture.Service. RunValueLogGC returning ErrNoRewrite
// means nothing needed collecting, which is the common case.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Repeat until a pass finds nothing to rewrite.
			for {
				err := s.db.RunValueLogGC(badgerGCDiscardRatio)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					logging.Warn().Err(err).Msg("Badger value-log GC failed")
				}
				break
			}
		}
	}
}

func (s *BadgerGCService) String() string { return "badger-gc" }
