// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

// Package main is the entry point for the Tidesweep gateway: it loads
// configuration, opens the durable store, wires the upstream client and
// services, and runs everything under a suture supervisor until SIGINT
// or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/danakm/tidesweep/internal/api"
	"github.com/danakm/tidesweep/internal/cache"
	"github.com/danakm/tidesweep/internal/config"
	"github.com/danakm/tidesweep/internal/detect"
	"github.com/danakm/tidesweep/internal/geocode"
	"github.com/danakm/tidesweep/internal/logging"
	"github.com/danakm/tidesweep/internal/service"
	"github.com/danakm/tidesweep/internal/supervisor"
	"github.com/danakm/tidesweep/internal/upstream"
	"github.com/danakm/tidesweep/internal/weather"
	"github.com/danakm/tidesweep/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Gateway exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("upstream", cfg.Upstream.ResolveBaseURL()).
		Int("port", cfg.Server.Port).
		Bool("detection", cfg.Detection.Enabled).
		Msg("Starting Tidesweep gateway")

	db, err := cache.OpenBadger(cfg.Store.Path, cfg.Store.InMemory)
	if err != nil {
		return fmt.Errorf("open durable store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close durable store")
		}
	}()

	resolver := geocode.NewResolver(cfg.Geocode)
	defer resolver.Close()

	platform := upstream.NewBreaker(upstream.NewClient(cfg.Upstream))

	deps := service.Deps{
		API:      platform,
		Memory:   cache.NewMemory(),
		Durable:  cache.NewDurable(db),
		Resolver: resolver,
		Reports:  service.NewReportStore(db),
	}
	campaigns := service.NewCampaignService(deps)
	volunteers := service.NewVolunteerService(deps)
	reports := service.NewTrashReportService(deps)
	users := service.NewUserService(deps)
	feed := service.NewFeedService(campaigns, volunteers, reports)
	conditions := service.NewWeatherService(weather.NewClient(cfg.Weather), deps.Memory)

	routerDeps := api.RouterDeps{
		Security:   cfg.Security,
		Campaigns:  campaigns,
		Volunteers: volunteers,
		Reports:    reports,
		Users:      users,
		Feed:       feed,
		Weather:    conditions,
		Resolver:   resolver,
		Platform:   platform,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDetectionService(supervisor.NewBadgerGCService(db))

	if cfg.Detection.Enabled {
		frames := detect.NewFrameSource(cfg.Detection.FrameMaxAge)
		poller := detect.NewPoller(frames, platform, cfg.Detection.Interval)
		hub := websocket.NewHub()
		poller.SetOnUpdate(func(state detect.Overlay) {
			hub.BroadcastOverlay(state)
		})

		routerDeps.Frames = frames
		routerDeps.Poller = poller
		routerDeps.Hub = hub
		tree.AddDetectionService(supervisor.NewHubService(hub))
		tree.AddDetectionService(poller)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(routerDeps).Handler(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logging.Info().Msg("Tidesweep gateway stopped")
	return nil
}
