// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package api

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/danakm/tidesweep/internal/upstream"
)

func doRequest(t *testing.T, handler http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

func TestCampaignListEndpoint(t *testing.T) {
	platform := &mockAPI{
		campaigns: func(context.Context) ([]upstream.CampaignPayload, error) {
			return []upstream.CampaignPayload{
				{CampaignID: "c-1", CampaignName: "Marina Cleanup"},
				{CampaignID: "c-2", CampaignName: "Park Cleanup"},
			}, nil
		},
	}
	handler := newTestRouter(t, platform, testRouterOptions{}).Handler()

	rec, body := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["success"] != true || body["count"] != float64(2) {
		t.Errorf("success = %v, count = %v", body["success"], body["count"])
	}
	if body["source"] != "api" {
		t.Errorf("source = %v, want api", body["source"])
	}
}

func TestCampaignListServesDemoDataWhenPlatformDown(t *testing.T) {
	platform := &mockAPI{
		campaigns: func(context.Context) ([]upstream.CampaignPayload, error) {
			return nil, errors.New("connection refused")
		},
	}
	handler := newTestRouter(t, platform, testRouterOptions{}).Handler()

	rec, body := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["source"] != "mock-data" {
		t.Errorf("source = %v, want mock-data", body["source"])
	}
	if body["warning"] != "Using demo data - API unavailable" {
		t.Errorf("warning = %v", body["warning"])
	}
}

func TestCreateCampaignEndpoint(t *testing.T) {
	platform := &mockAPI{
		create: func(_ context.Context, req upstream.CreateCampaignRequest) (*upstream.CampaignResponse, error) {
			return &upstream.CampaignResponse{
				Campaign: &upstream.CampaignPayload{CampaignID: "c-new", CampaignName: req.CampaignName},
			}, nil
		},
	}
	handler := newTestRouter(t, platform, testRouterOptions{}).Handler()

	rec, _ := doRequest(t, handler, httptest.NewRequest(http.MethodPost, "/api/v1/campaigns",
		strings.NewReader(`{"campaign_name":"Creek Cleanup"}`)))
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201; body = %s", rec.Code, rec.Body.String())
	}

	rec, body := doRequest(t, handler, httptest.NewRequest(http.MethodPost, "/api/v1/campaigns",
		strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status without name = %d, want 400", rec.Code)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	count := 40
	available := true
	platform := &mockAPI{
		volunteers: func(context.Context, upstream.VolunteerQuery) ([]upstream.VolunteerPayload, error) {
			return []upstream.VolunteerPayload{
				{UserID: "v-1", Name: "Amira", Available: &available, PastCleanupCount: &count},
			}, nil
		},
	}
	handler := newTestRouter(t, platform, testRouterOptions{}).Handler()

	rec, body := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard?limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
}

func TestFindOpportunitiesRequiresCoordinates(t *testing.T) {
	handler := newTestRouter(t, &mockAPI{}, testRouterOptions{}).Handler()

	rec, _ := doRequest(t, handler, httptest.NewRequest(http.MethodPost, "/api/v1/volunteers/opportunities",
		strings.NewReader(`{"task":{"primaryMaterial":"plastic"}}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLoginEndpointStatuses(t *testing.T) {
	platform := &mockAPI{
		login: func(_ context.Context, email, _ string) (*upstream.AuthResponse, error) {
			if email == "dana@example.com" {
				return &upstream.AuthResponse{
					User:  &upstream.UserPayload{ID: "u-1", Name: "Dana"},
					Token: "session-token",
				}, nil
			}
			return nil, errors.New("invalid credentials")
		},
	}
	handler := newTestRouter(t, platform, testRouterOptions{}).Handler()

	rec, body := doRequest(t, handler, httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"email":"dana@example.com","password":"pw"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["token"] != "session-token" {
		t.Errorf("token = %v", body["token"])
	}

	rec, _ = doRequest(t, handler, httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"email":"wrong@example.com","password":"pw"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestCurrentUserRequiresBearerToken(t *testing.T) {
	handler := newTestRouter(t, &mockAPI{}, testRouterOptions{}).Handler()

	rec, _ := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSearchUsersRequiresQuery(t *testing.T) {
	handler := newTestRouter(t, &mockAPI{}, testRouterOptions{}).Handler()

	rec, _ := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/users/search", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestReverseGeocodeEndpoint(t *testing.T) {
	handler := newTestRouter(t, &mockAPI{}, testRouterOptions{}).Handler()

	rec, _ := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/geocode/reverse", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status without coords = %d, want 400", rec.Code)
	}

	// The resolver points at an unreachable endpoint; resolution still
	// succeeds with the fallback address.
	rec, body := doRequest(t, handler, httptest.NewRequest(http.MethodGet,
		"/api/v1/geocode/reverse?lat=25.2048&lng=55.2708", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["address"] != "Unknown location" {
		t.Errorf("address = %v, want Unknown location", body["address"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	platform := &mockAPI{
		health: func(context.Context) error { return errors.New("connection refused") },
	}
	handler := newTestRouter(t, platform, testRouterOptions{}).Handler()

	rec, body := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("live: status = %d, body = %v", rec.Code, body)
	}

	rec, body = doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: status = %d", rec.Code)
	}
	if body["upstream"] != "unreachable" {
		t.Errorf("upstream = %v, want unreachable", body["upstream"])
	}
}

func TestTrashReportsHardFailure(t *testing.T) {
	platform := &mockAPI{
		trashReports: func(context.Context, upstream.TrashReportQuery) ([]upstream.TrashReportPayload, error) {
			return nil, errors.New("connection refused")
		},
	}
	handler := newTestRouter(t, platform, testRouterOptions{}).Handler()

	rec, body := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/trash-reports", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestAnalyzeEndpointRequiresImage(t *testing.T) {
	handler := newTestRouter(t, &mockAPI{}, testRouterOptions{}).Handler()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("notes", "no image attached")
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/trash-reports/analyze", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec, _ := doRequest(t, handler, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDetectRoutesAbsentWhenDisabled(t *testing.T) {
	handler := newTestRouter(t, &mockAPI{}, testRouterOptions{}).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/detect/state", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDetectFramePushAndState(t *testing.T) {
	handler := newTestRouter(t, &mockAPI{}, testRouterOptions{detection: true}).Handler()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("frame", "frame.jpg")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	_, _ = part.Write([]byte("jpeg-bytes"))
	_ = form.WriteField("lat", "25.2048")
	_ = form.WriteField("lng", "55.2708")
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect/frame", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec, body := doRequest(t, handler, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["accepted"] != true {
		t.Errorf("accepted = %v", body["accepted"])
	}

	rec, body = doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/detect/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("state: status = %d", rec.Code)
	}
	if body["active"] != false {
		t.Errorf("active = %v, want false before start", body["active"])
	}
}

func TestFeedEndpoint(t *testing.T) {
	count := 12
	available := true
	platform := &mockAPI{
		campaigns: func(context.Context) ([]upstream.CampaignPayload, error) {
			return []upstream.CampaignPayload{{CampaignID: "c-1", CampaignName: "Marina Cleanup"}}, nil
		},
		volunteers: func(context.Context, upstream.VolunteerQuery) ([]upstream.VolunteerPayload, error) {
			return []upstream.VolunteerPayload{
				{UserID: "v-1", Name: "Amira", Available: &available, PastCleanupCount: &count},
			}, nil
		},
		trashReports: func(context.Context, upstream.TrashReportQuery) ([]upstream.TrashReportPayload, error) {
			return []upstream.TrashReportPayload{{ReportID: "r-1"}}, nil
		},
	}
	handler := newTestRouter(t, platform, testRouterOptions{}).Handler()

	rec, body := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	campaigns, ok := body["campaigns"].(map[string]interface{})
	if !ok || campaigns["count"] != float64(1) {
		t.Errorf("campaigns section = %v", body["campaigns"])
	}
}

func TestCampaignMapBoundsEndpoint(t *testing.T) {
	coord := func(v float64) *float64 { return &v }
	platform := &mockAPI{
		campaigns: func(context.Context) ([]upstream.CampaignPayload, error) {
			return []upstream.CampaignPayload{
				{
					CampaignID:   "c-north",
					CampaignName: "Marina Cleanup",
					Location:     &upstream.LocationPayload{Lat: coord(25.4), Lng: coord(55.5), Address: "Dubai Marina"},
				},
				{
					CampaignID:   "c-south",
					CampaignName: "Creek Cleanup",
					Location:     &upstream.LocationPayload{Lat: coord(25.1), Lng: coord(55.1), Address: "Dubai Creek"},
				},
			}, nil
		},
	}
	handler := newTestRouter(t, platform, testRouterOptions{}).Handler()

	// The caller's own position stretches the box east.
	rec, body := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/map-bounds?lat=25.2&lng=55.9", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	bounds, ok := body["bounds"].(map[string]interface{})
	if !ok {
		t.Fatalf("bounds missing from body: %v", body)
	}
	if bounds["north"] != 25.4 || bounds["south"] != 25.1 || bounds["east"] != 55.9 || bounds["west"] != 55.1 {
		t.Errorf("bounds = %v", bounds)
	}
	if body["source"] != "api" {
		t.Errorf("source = %v, want api", body["source"])
	}
}

func TestCurrentWeatherEndpoint(t *testing.T) {
	handler := newTestRouter(t, &mockAPI{}, testRouterOptions{}).Handler()

	rec, _ := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/weather/current", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status without coords = %d, want 400", rec.Code)
	}

	rec, body := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?lat=25.2&lng=55.27", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["success"] != true || body["source"] != "api" {
		t.Errorf("success = %v, source = %v", body["success"], body["source"])
	}
	if body["suitable"] != true {
		t.Errorf("suitable = %v, want true", body["suitable"])
	}
	if body["recommendation"] != "Perfect weather for outdoor activities! Enjoy!" {
		t.Errorf("recommendation = %v", body["recommendation"])
	}
}

func TestWeatherForecastEndpoint(t *testing.T) {
	handler := newTestRouter(t, &mockAPI{}, testRouterOptions{}).Handler()

	rec, body := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/api/v1/weather/forecast?lat=25.2&lng=55.27", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	slots, ok := body["forecast"].([]interface{})
	if !ok || len(slots) != 1 {
		t.Fatalf("forecast = %v, want one slot", body["forecast"])
	}
}
