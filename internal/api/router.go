// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danakm/tidesweep/internal/config"
	"github.com/danakm/tidesweep/internal/detect"
	"github.com/danakm/tidesweep/internal/geocode"
	"github.com/danakm/tidesweep/internal/middleware"
	"github.com/danakm/tidesweep/internal/service"
	"github.com/danakm/tidesweep/internal/upstream"
	"github.com/danakm/tidesweep/internal/websocket"
)

// Router assembles the gateway's HTTP surface.
type Router struct {
	security config.SecurityConfig

	campaigns  *service.CampaignService
	volunteers *service.VolunteerService
	reports    *service.TrashReportService
	users      *service.UserService
	feed       *service.FeedService
	weather    *service.WeatherService

	resolver *geocode.Resolver
	platform upstream.API

	poller *detect.Poller
	frames *detect.FrameSource
	hub    *websocket.Hub
}

// RouterDeps carries everything the router needs. Poller, Frames, and Hub
// may be nil when live detection is disabled; the detect routes then
// respond 404.
type RouterDeps struct {
	Security   config.SecurityConfig
	Campaigns  *service.CampaignService
	Volunteers *service.VolunteerService
	Reports    *service.TrashReportService
	Users      *service.UserService
	Feed       *service.FeedService
	Weather    *service.WeatherService
	Resolver   *geocode.Resolver
	Platform   upstream.API
	Poller     *detect.Poller
	Frames     *detect.FrameSource
	Hub        *websocket.Hub
}

// NewRouter builds a Router from its dependencies.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		security:   deps.Security,
		campaigns:  deps.Campaigns,
		volunteers: deps.Volunteers,
		reports:    deps.Reports,
		users:      deps.Users,
		feed:       deps.Feed,
		weather:    deps.Weather,
		resolver:   deps.Resolver,
		platform:   deps.Platform,
		poller:     deps.Poller,
		frames:     deps.Frames,
		hub:        deps.Hub,
	}
}

// Handler builds the chi route tree.
func (router *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.security.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}))

	// Health and metrics stay outside the rate limiter so probes and
	// scrapers are never throttled behind client traffic.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", router.handleHealthLive)
		r.Get("/ready", router.handleHealthReady)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.rateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", router.handleListCampaigns)
			r.Post("/", router.handleCreateCampaign)
			r.Get("/active", router.handleActiveCampaigns)
			r.Get("/map-bounds", router.handleCampaignBounds)
			r.Get("/esg-impact", router.handleESGImpact)
			r.Get("/{id}", router.handleGetCampaign)
		})

		r.Route("/volunteers", func(r chi.Router) {
			r.Get("/", router.handleListVolunteers)
			r.Post("/profile", router.handleCreateProfile)
			r.Put("/{id}/availability", router.handleUpdateAvailability)
			r.Post("/opportunities", router.handleFindOpportunities)
		})
		r.Get("/leaderboard", router.handleLeaderboard)

		r.Route("/trash-reports", func(r chi.Router) {
			r.Get("/", router.handleListReports)
			r.Post("/analyze", router.handleAnalyzeImage)
			r.Post("/hotspots", router.handleDetectHotspots)
		})

		r.Get("/feed", router.handleFeed)

		r.Route("/weather", func(r chi.Router) {
			r.Get("/current", router.handleCurrentWeather)
			r.Get("/forecast", router.handleWeatherForecast)
		})
		r.Get("/geocode/reverse", router.handleReverseGeocode)

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", router.handleRegister)
			r.Post("/login", router.handleLogin)
			r.Get("/me", router.handleCurrentUser)
			r.Put("/me", router.handleUpdateProfile)
			r.Post("/follow", router.handleFollow)
			r.Delete("/follow/{id}", router.handleUnfollow)
			r.Get("/search", router.handleSearchUsers)
			r.Get("/recommended", router.handleRecommendedUsers)
			r.Get("/{id}", router.handleUserProfile)
		})

		if router.poller != nil {
			r.Route("/detect", func(r chi.Router) {
				r.Post("/frame", router.handlePushFrame)
				r.Get("/state", router.handleOverlayState)
				r.Post("/start", router.handleStartDetection)
				r.Post("/stop", router.handleStopDetection)
				r.Get("/stream", router.handleOverlayStream)
			})
		}
	})

	return r
}

func (router *Router) rateLimit() func(http.Handler) http.Handler {
	if router.security.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	window := router.security.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(
		router.security.RateLimitRequests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
		}),
	)
}
