// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/danakm/tidesweep/internal/cache"
	"github.com/danakm/tidesweep/internal/upstream"
)

var errNotWired = errors.New("endpoint not wired in this test")

// mockAPI implements upstream.API through per-endpoint function fields;
// endpoints a test does not wire fail loudly.
type mockAPI struct {
	health          func() error
	campaigns       func() ([]upstream.CampaignPayload, error)
	campaign        func(id string) (*upstream.CampaignPayload, error)
	createCampaign  func(req upstream.CreateCampaignRequest) (*upstream.CampaignResponse, error)
	esgImpact       func() (*upstream.ESGImpactResponse, error)
	volunteers      func(q upstream.VolunteerQuery) ([]upstream.VolunteerPayload, error)
	createProfile   func(req upstream.VolunteerProfileRequest) error
	updateAvail     func(userID string, available bool) error
	leaderboard     func(limit int) (*upstream.LeaderboardResponse, error)
	findVolunteers  func(req upstream.FindVolunteersRequest) (*upstream.FindVolunteersResponse, error)
	trashReports    func(q upstream.TrashReportQuery) ([]upstream.TrashReportPayload, error)
	detectWaste     func(image []byte, filename string, fields upstream.MultipartFields, useYolo bool) (*upstream.DetectResponse, error)
	detectLive      func(frame []byte) (*upstream.LiveDetectResponse, error)
	detectHotspots  func(req upstream.HotspotRequest) (*upstream.HotspotResponse, error)
	register        func(req upstream.RegisterRequest) (*upstream.AuthResponse, error)
	login           func(email, password string) (*upstream.AuthResponse, error)
	currentUser     func(token string) (*upstream.UserPayload, error)
	updateProfile   func(token string, updates map[string]interface{}) (*upstream.UserPayload, error)
	followUser      func(token, followeeName string) (*upstream.FollowResponse, error)
	unfollowUser    func(token, followeeID string) (*upstream.FollowResponse, error)
	searchUsers     func(query string, limit int) ([]upstream.UserPayload, error)
	userProfile     func(userID string) (*upstream.UserPayload, error)
	recommendations func(token string, limit int) (*upstream.RecommendationsResponse, error)
}

func (m *mockAPI) Health(ctx context.Context) error {
	if m.health == nil {
		return errNotWired
	}
	return m.health()
}

func (m *mockAPI) GetCampaigns(ctx context.Context) ([]upstream.CampaignPayload, error) {
	if m.campaigns == nil {
		return nil, errNotWired
	}
	return m.campaigns()
}

func (m *mockAPI) GetCampaign(ctx context.Context, id string) (*upstream.CampaignPayload, error) {
	if m.campaign == nil {
		return nil, errNotWired
	}
	return m.campaign(id)
}

func (m *mockAPI) CreateCampaign(ctx context.Context, req upstream.CreateCampaignRequest) (*upstream.CampaignResponse, error) {
	if m.createCampaign == nil {
		return nil, errNotWired
	}
	return m.createCampaign(req)
}

func (m *mockAPI) GetESGImpact(ctx context.Context) (*upstream.ESGImpactResponse, error) {
	if m.esgImpact == nil {
		return nil, errNotWired
	}
	return m.esgImpact()
}

func (m *mockAPI) GetVolunteers(ctx context.Context, q upstream.VolunteerQuery) ([]upstream.VolunteerPayload, error) {
	if m.volunteers == nil {
		return nil, errNotWired
	}
	return m.volunteers(q)
}

func (m *mockAPI) CreateVolunteerProfile(ctx context.Context, req upstream.VolunteerProfileRequest) error {
	if m.createProfile == nil {
		return errNotWired
	}
	return m.createProfile(req)
}

func (m *mockAPI) UpdateAvailability(ctx context.Context, userID string, available bool) error {
	if m.updateAvail == nil {
		return errNotWired
	}
	return m.updateAvail(userID, available)
}

func (m *mockAPI) GetLeaderboard(ctx context.Context, limit int) (*upstream.LeaderboardResponse, error) {
	if m.leaderboard == nil {
		return nil, errNotWired
	}
	return m.leaderboard(limit)
}

func (m *mockAPI) FindVolunteers(ctx context.Context, req upstream.FindVolunteersRequest) (*upstream.FindVolunteersResponse, error) {
	if m.findVolunteers == nil {
		return nil, errNotWired
	}
	return m.findVolunteers(req)
}

func (m *mockAPI) GetTrashReports(ctx context.Context, q upstream.TrashReportQuery) ([]upstream.TrashReportPayload, error) {
	if m.trashReports == nil {
		return nil, errNotWired
	}
	return m.trashReports(q)
}

func (m *mockAPI) DetectWaste(ctx context.Context, image []byte, filename string, fields upstream.MultipartFields, useYolo bool) (*upstream.DetectResponse, error) {
	if m.detectWaste == nil {
		return nil, errNotWired
	}
	return m.detectWaste(image, filename, fields, useYolo)
}

func (m *mockAPI) DetectLiveFrame(ctx context.Context, frame []byte, location *upstream.LocationPayload, includeSummary bool) (*upstream.LiveDetectResponse, error) {
	if m.detectLive == nil {
		return nil, errNotWired
	}
	return m.detectLive(frame)
}

func (m *mockAPI) DetectHotspots(ctx context.Context, req upstream.HotspotRequest) (*upstream.HotspotResponse, error) {
	if m.detectHotspots == nil {
		return nil, errNotWired
	}
	return m.detectHotspots(req)
}

func (m *mockAPI) Register(ctx context.Context, req upstream.RegisterRequest) (*upstream.AuthResponse, error) {
	if m.register == nil {
		return nil, errNotWired
	}
	return m.register(req)
}

func (m *mockAPI) Login(ctx context.Context, email, password string) (*upstream.AuthResponse, error) {
	if m.login == nil {
		return nil, errNotWired
	}
	return m.login(email, password)
}

func (m *mockAPI) GetCurrentUser(ctx context.Context, token string) (*upstream.UserPayload, error) {
	if m.currentUser == nil {
		return nil, errNotWired
	}
	return m.currentUser(token)
}

func (m *mockAPI) UpdateProfile(ctx context.Context, token string, updates map[string]interface{}) (*upstream.UserPayload, error) {
	if m.updateProfile == nil {
		return nil, errNotWired
	}
	return m.updateProfile(token, updates)
}

func (m *mockAPI) FollowUser(ctx context.Context, token, followeeName string) (*upstream.FollowResponse, error) {
	if m.followUser == nil {
		return nil, errNotWired
	}
	return m.followUser(token, followeeName)
}

func (m *mockAPI) UnfollowUser(ctx context.Context, token, followeeID string) (*upstream.FollowResponse, error) {
	if m.unfollowUser == nil {
		return nil, errNotWired
	}
	return m.unfollowUser(token, followeeID)
}

func (m *mockAPI) SearchUsers(ctx context.Context, query string, limit int) ([]upstream.UserPayload, error) {
	if m.searchUsers == nil {
		return nil, errNotWired
	}
	return m.searchUsers(query, limit)
}

func (m *mockAPI) GetUserProfile(ctx context.Context, userID string) (*upstream.UserPayload, error) {
	if m.userProfile == nil {
		return nil, errNotWired
	}
	return m.userProfile(userID)
}

func (m *mockAPI) GetRecommendedUsers(ctx context.Context, token string, limit int) (*upstream.RecommendationsResponse, error) {
	if m.recommendations == nil {
		return nil, errNotWired
	}
	return m.recommendations(token, limit)
}

var _ upstream.API = (*mockAPI)(nil)

// newTestDeps wires a mock API to real in-memory cache tiers.
func newTestDeps(t *testing.T, api upstream.API) Deps {
	t.Helper()

	db, err := cache.OpenBadger("", true)
	if err != nil {
		t.Fatalf("open in-memory badger: %v", err)
	}
	t.Cleanup(func() {
		if cerr := db.Close(); cerr != nil {
			t.Errorf("close badger: %v", cerr)
		}
	})

	return Deps{
		API:     api,
		Memory:  cache.NewMemory(),
		Durable: cache.NewDurable(db),
		Reports: NewReportStore(db),
	}
}

func f(v float64) *float64 { return &v }
