// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danakm/tidesweep/internal/cache"
	"github.com/danakm/tidesweep/internal/config"
	"github.com/danakm/tidesweep/internal/detect"
	"github.com/danakm/tidesweep/internal/geocode"
	"github.com/danakm/tidesweep/internal/service"
	"github.com/danakm/tidesweep/internal/upstream"
	"github.com/danakm/tidesweep/internal/weather"
	"github.com/danakm/tidesweep/internal/websocket"
)

var errNotWired = errors.New("endpoint not wired in this test")

// mockAPI implements upstream.API with per-endpoint function fields; an
// unset endpoint fails with errNotWired.
type mockAPI struct {
	health        func(ctx context.Context) error
	campaigns     func(ctx context.Context) ([]upstream.CampaignPayload, error)
	campaign      func(ctx context.Context, id string) (*upstream.CampaignPayload, error)
	create        func(ctx context.Context, req upstream.CreateCampaignRequest) (*upstream.CampaignResponse, error)
	esgImpact     func(ctx context.Context) (*upstream.ESGImpactResponse, error)
	volunteers    func(ctx context.Context, q upstream.VolunteerQuery) ([]upstream.VolunteerPayload, error)
	createProfile func(ctx context.Context, req upstream.VolunteerProfileRequest) error
	updateAvail   func(ctx context.Context, userID string, available bool) error
	leaderboard   func(ctx context.Context, limit int) (*upstream.LeaderboardResponse, error)
	findVols      func(ctx context.Context, req upstream.FindVolunteersRequest) (*upstream.FindVolunteersResponse, error)
	trashReports  func(ctx context.Context, q upstream.TrashReportQuery) ([]upstream.TrashReportPayload, error)
	detectWaste   func(ctx context.Context, image []byte, filename string, fields upstream.MultipartFields, useYolo bool) (*upstream.DetectResponse, error)
	detectLive    func(ctx context.Context, frame []byte, location *upstream.LocationPayload, includeSummary bool) (*upstream.LiveDetectResponse, error)
	hotspots      func(ctx context.Context, req upstream.HotspotRequest) (*upstream.HotspotResponse, error)
	register      func(ctx context.Context, req upstream.RegisterRequest) (*upstream.AuthResponse, error)
	login         func(ctx context.Context, email, password string) (*upstream.AuthResponse, error)
	currentUser   func(ctx context.Context, token string) (*upstream.UserPayload, error)
	updateProfile func(ctx context.Context, token string, updates map[string]interface{}) (*upstream.UserPayload, error)
	follow        func(ctx context.Context, token, followeeName string) (*upstream.FollowResponse, error)
	unfollow      func(ctx context.Context, token, followeeID string) (*upstream.FollowResponse, error)
	search        func(ctx context.Context, query string, limit int) ([]upstream.UserPayload, error)
	profile       func(ctx context.Context, userID string) (*upstream.UserPayload, error)
	recommended   func(ctx context.Context, token string, limit int) (*upstream.RecommendationsResponse, error)
}

var _ upstream.API = (*mockAPI)(nil)

func (m *mockAPI) Health(ctx context.Context) error {
	if m.health == nil {
		return errNotWired
	}
	return m.health(ctx)
}

func (m *mockAPI) GetCampaigns(ctx context.Context) ([]upstream.CampaignPayload, error) {
	if m.campaigns == nil {
		return nil, errNotWired
	}
	return m.campaigns(ctx)
}

func (m *mockAPI) GetCampaign(ctx context.Context, id string) (*upstream.CampaignPayload, error) {
	if m.campaign == nil {
		return nil, errNotWired
	}
	return m.campaign(ctx, id)
}

func (m *mockAPI) CreateCampaign(ctx context.Context, req upstream.CreateCampaignRequest) (*upstream.CampaignResponse, error) {
	if m.create == nil {
		return nil, errNotWired
	}
	return m.create(ctx, req)
}

func (m *mockAPI) GetESGImpact(ctx context.Context) (*upstream.ESGImpactResponse, error) {
	if m.esgImpact == nil {
		return nil, errNotWired
	}
	return m.esgImpact(ctx)
}

func (m *mockAPI) GetVolunteers(ctx context.Context, q upstream.VolunteerQuery) ([]upstream.VolunteerPayload, error) {
	if m.volunteers == nil {
		return nil, errNotWired
	}
	return m.volunteers(ctx, q)
}

func (m *mockAPI) CreateVolunteerProfile(ctx context.Context, req upstream.VolunteerProfileRequest) error {
	if m.createProfile == nil {
		return errNotWired
	}
	return m.createProfile(ctx, req)
}

func (m *mockAPI) UpdateAvailability(ctx context.Context, userID string, available bool) error {
	if m.updateAvail == nil {
		return errNotWired
	}
	return m.updateAvail(ctx, userID, available)
}

func (m *mockAPI) GetLeaderboard(ctx context.Context, limit int) (*upstream.LeaderboardResponse, error) {
	if m.leaderboard == nil {
		return nil, errNotWired
	}
	return m.leaderboard(ctx, limit)
}

func (m *mockAPI) FindVolunteers(ctx context.Context, req upstream.FindVolunteersRequest) (*upstream.FindVolunteersResponse, error) {
	if m.findVols == nil {
		return nil, errNotWired
	}
	return m.findVols(ctx, req)
}

func (m *mockAPI) GetTrashReports(ctx context.Context, q upstream.TrashReportQuery) ([]upstream.TrashReportPayload, error) {
	if m.trashReports == nil {
		return nil, errNotWired
	}
	return m.trashReports(ctx, q)
}

func (m *mockAPI) DetectWaste(ctx context.Context, image []byte, filename string, fields upstream.MultipartFields, useYolo bool) (*upstream.DetectResponse, error) {
	if m.detectWaste == nil {
		return nil, errNotWired
	}
	return m.detectWaste(ctx, image, filename, fields, useYolo)
}

func (m *mockAPI) DetectLiveFrame(ctx context.Context, frame []byte, location *upstream.LocationPayload, includeSummary bool) (*upstream.LiveDetectResponse, error) {
	if m.detectLive == nil {
		return nil, errNotWired
	}
	return m.detectLive(ctx, frame, location, includeSummary)
}

func (m *mockAPI) DetectHotspots(ctx context.Context, req upstream.HotspotRequest) (*upstream.HotspotResponse, error) {
	if m.hotspots == nil {
		return nil, errNotWired
	}
	return m.hotspots(ctx, req)
}

func (m *mockAPI) Register(ctx context.Context, req upstream.RegisterRequest) (*upstream.AuthResponse, error) {
	if m.register == nil {
		return nil, errNotWired
	}
	return m.register(ctx, req)
}

func (m *mockAPI) Login(ctx context.Context, email, password string) (*upstream.AuthResponse, error) {
	if m.login == nil {
		return nil, errNotWired
	}
	return m.login(ctx, email, password)
}

func (m *mockAPI) GetCurrentUser(ctx context.Context, token string) (*upstream.UserPayload, error) {
	if m.currentUser == nil {
		return nil, errNotWired
	}
	return m.currentUser(ctx, token)
}

func (m *mockAPI) UpdateProfile(ctx context.Context, token string, updates map[string]interface{}) (*upstream.UserPayload, error) {
	if m.updateProfile == nil {
		return nil, errNotWired
	}
	return m.updateProfile(ctx, token, updates)
}

func (m *mockAPI) FollowUser(ctx context.Context, token, followeeName string) (*upstream.FollowResponse, error) {
	if m.follow == nil {
		return nil, errNotWired
	}
	return m.follow(ctx, token, followeeName)
}

func (m *mockAPI) UnfollowUser(ctx context.Context, token, followeeID string) (*upstream.FollowResponse, error) {
	if m.unfollow == nil {
		return nil, errNotWired
	}
	return m.unfollow(ctx, token, followeeID)
}

func (m *mockAPI) SearchUsers(ctx context.Context, query string, limit int) ([]upstream.UserPayload, error) {
	if m.search == nil {
		return nil, errNotWired
	}
	return m.search(ctx, query, limit)
}

func (m *mockAPI) GetUserProfile(ctx context.Context, userID string) (*upstream.UserPayload, error) {
	if m.profile == nil {
		return nil, errNotWired
	}
	return m.profile(ctx, userID)
}

func (m *mockAPI) GetRecommendedUsers(ctx context.Context, token string, limit int) (*upstream.RecommendationsResponse, error) {
	if m.recommended == nil {
		return nil, errNotWired
	}
	return m.recommended(ctx, token, limit)
}

// testRouterOptions tweaks newTestRouter.
type testRouterOptions struct {
	detection bool
	detector  detect.Detector
	geocodeEP string
}

// newTestRouter wires a full router over in-memory caches and the mock
// platform.
// stubConditions serves fixed pleasant weather for handler tests.
type stubConditions struct{}

func (*stubConditions) Current(context.Context, float64, float64) (*weather.Observation, error) {
	return &weather.Observation{Temperature: 26, Condition: "Clear"}, nil
}

func (*stubConditions) Forecast(context.Context, float64, float64) ([]weather.ForecastEntry, error) {
	return []weather.ForecastEntry{{Time: 1756510000, Temperature: 27, Condition: "Clear"}}, nil
}

func newTestRouter(t *testing.T, platform upstream.API, opts testRouterOptions) *Router {
	t.Helper()

	db, err := cache.OpenBadger("", true)
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	deps := service.Deps{
		API:     platform,
		Memory:  cache.NewMemory(),
		Durable: cache.NewDurable(db),
		Reports: service.NewReportStore(db),
	}
	campaigns := service.NewCampaignService(deps)
	volunteers := service.NewVolunteerService(deps)
	reports := service.NewTrashReportService(deps)
	users := service.NewUserService(deps)

	endpoint := opts.geocodeEP
	if endpoint == "" {
		endpoint = "http://127.0.0.1:1" // unreachable: resolves to the fallback address
	}
	resolver := geocode.NewResolver(config.GeocodeConfig{
		Endpoint:       endpoint,
		Language:       "en",
		MaxConcurrent:  2,
		RequestTimeout: 200 * time.Millisecond,
		RatePerSecond:  1000,
	})
	t.Cleanup(resolver.Close)

	routerDeps := RouterDeps{
		Security: config.SecurityConfig{
			RateLimitRequests: 1000,
			RateLimitWindow:   time.Minute,
		},
		Campaigns:  campaigns,
		Volunteers: volunteers,
		Reports:    reports,
		Users:      users,
		Feed:       service.NewFeedService(campaigns, volunteers, reports),
		Weather:    service.NewWeatherService(&stubConditions{}, deps.Memory),
		Resolver:   resolver,
		Platform:   platform,
	}

	if opts.detection {
		detector := opts.detector
		if detector == nil {
			detector = platform
		}
		frames := detect.NewFrameSource(0)
		routerDeps.Frames = frames
		routerDeps.Poller = detect.NewPoller(frames, detector, time.Hour)
		routerDeps.Hub = websocket.NewHub()
	}

	return NewRouter(routerDeps)
}
