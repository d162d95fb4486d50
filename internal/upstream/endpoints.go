// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// API is the full platform surface the gateway consumes. It is implemented
// by Client and by Breaker, and by mocks in tests.
//
// All methods accept a context for cancellation and return an error on
// HTTP failure, non-2xx status, or JSON decode failure.
type API interface {
	Health(ctx context.Context) error

	// Campaigns
	GetCampaigns(ctx context.Context) ([]CampaignPayload, error)
	GetCampaign(ctx context.Context, id string) (*CampaignPayload, error)
	CreateCampaign(ctx context.Context, req CreateCampaignRequest) (*CampaignResponse, error)
	GetESGImpact(ctx context.Context) (*ESGImpactResponse, error)

	// Volunteers
	GetVolunteers(ctx context.Context, q VolunteerQuery) ([]VolunteerPayload, error)
	CreateVolunteerProfile(ctx context.Context, req VolunteerProfileRequest) error
	UpdateAvailability(ctx context.Context, userID string, available bool) error
	GetLeaderboard(ctx context.Context, limit int) (*LeaderboardResponse, error)
	FindVolunteers(ctx context.Context, req FindVolunteersRequest) (*FindVolunteersResponse, error)

	// Trash reports and detection
	GetTrashReports(ctx context.Context, q TrashReportQuery) ([]TrashReportPayload, error)
	DetectWaste(ctx context.Context, image []byte, filename string, fields MultipartFields, useYolo bool) (*DetectResponse, error)
	DetectLiveFrame(ctx context.Context, frame []byte, location *LocationPayload, includeSummary bool) (*LiveDetectResponse, error)
	DetectHotspots(ctx context.Context, req HotspotRequest) (*HotspotResponse, error)

	// Users and auth
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	GetCurrentUser(ctx context.Context, token string) (*UserPayload, error)
	UpdateProfile(ctx context.Context, token string, updates map[string]interface{}) (*UserPayload, error)
	FollowUser(ctx context.Context, token, followeeName string) (*FollowResponse, error)
	UnfollowUser(ctx context.Context, token, followeeID string) (*FollowResponse, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]UserPayload, error)
	GetUserProfile(ctx context.Context, userID string) (*UserPayload, error)
	GetRecommendedUsers(ctx context.Context, token string, limit int) (*RecommendationsResponse, error)
}

// Health verifies platform connectivity.
func (c *Client) Health(ctx context.Context) error {
	return c.getJSON(ctx, "/health", nil, "", nil)
}

// GetCampaigns fetches all campaign records.
func (c *Client) GetCampaigns(ctx context.Context) ([]CampaignPayload, error) {
	var resp CampaignsResponse
	if err := c.getJSON(ctx, "/campaigns", nil, "", &resp); err != nil {
		return nil, err
	}
	return resp.Campaigns, nil
}

// GetCampaign fetches one campaign by ID.
func (c *Client) GetCampaign(ctx context.Context, id string) (*CampaignPayload, error) {
	var resp CampaignResponse
	if err := c.getJSON(ctx, "/campaigns/"+url.PathEscape(id), nil, "", &resp); err != nil {
		return nil, err
	}
	if resp.Campaign == nil {
		return nil, fmt.Errorf("campaign %s: empty response", id)
	}
	return resp.Campaign, nil
}

// CreateCampaignRequest is the body for POST /campaign/create. Funding is
// in USD on the wire; the platform owns currency handling for creation.
type CreateCampaignRequest struct {
	HotspotReportIDs []string         `json:"hotspot_report_ids"`
	Location         *LocationPayload `json:"location,omitempty"`
	CampaignName     string           `json:"campaign_name"`
	TargetFundingUSD float64          `json:"target_funding_usd"`
	VolunteerGoal    int              `json:"volunteer_goal"`
	DurationDays     int              `json:"duration_days"`
}

// CreateCampaign creates a cleanup campaign from hotspot data.
func (c *Client) CreateCampaign(ctx context.Context, req CreateCampaignRequest) (*CampaignResponse, error) {
	var resp CampaignResponse
	if err := c.sendJSON(ctx, "POST", "/campaign/create", req, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetESGImpact fetches the platform-wide environmental impact summary.
func (c *Client) GetESGImpact(ctx context.Context) (*ESGImpactResponse, error) {
	var resp ESGImpactResponse
	if err := c.getJSON(ctx, "/impact/esg", nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VolunteerQuery filters GET /volunteers. Lat and Lon must both be set for
// the radius filter to apply.
type VolunteerQuery struct {
	Limit         int
	Lat           *float64
	Lon           *float64
	RadiusKm      float64
	AvailableOnly bool
}

// GetVolunteers fetches volunteer records, optionally filtered by radius
// and availability.
func (c *Client) GetVolunteers(ctx context.Context, q VolunteerQuery) ([]VolunteerPayload, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.Lat != nil && q.Lon != nil {
		params.Set("lat", strconv.FormatFloat(*q.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(*q.Lon, 'f', -1, 64))
		params.Set("radius_km", strconv.FormatFloat(q.RadiusKm, 'f', -1, 64))
	}
	if q.AvailableOnly {
		params.Set("available_only", "true")
	}

	var resp VolunteersResponse
	if err := c.getJSON(ctx, "/volunteers", params, "", &resp); err != nil {
		return nil, err
	}
	return resp.Volunteers, nil
}

// VolunteerProfileRequest is the body for POST /volunteer-profile.
type VolunteerProfileRequest struct {
	UserID             string           `json:"user_id"`
	Name               string           `json:"name"`
	Skills             []string         `json:"skills"`
	ExperienceLevel    string           `json:"experience_level"`
	MaterialsExpertise []string         `json:"materials_expertise"`
	Specializations    []string         `json:"specializations"`
	EquipmentOwned     []string         `json:"equipment_owned"`
	Location           *LocationPayload `json:"location,omitempty"`
	Available          bool             `json:"available"`
	PastCleanupCount   int              `json:"past_cleanup_count"`
}

// CreateVolunteerProfile creates or updates a volunteer profile.
func (c *Client) CreateVolunteerProfile(ctx context.Context, req VolunteerProfileRequest) error {
	return c.sendJSON(ctx, "POST", "/volunteer-profile", req, "", nil)
}

// UpdateAvailability flips a volunteer's availability flag.
func (c *Client) UpdateAvailability(ctx context.Context, userID string, available bool) error {
	body := map[string]bool{"available": available}
	return c.sendJSON(ctx, "PUT", "/volunteer/"+url.PathEscape(userID)+"/availability", body, "", nil)
}

// GetLeaderboard fetches the platform-computed volunteer leaderboard.
func (c *Client) GetLeaderboard(ctx context.Context, limit int) (*LeaderboardResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var resp LeaderboardResponse
	if err := c.getJSON(ctx, "/leaderboard", params, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FindVolunteersRequest is the body for POST /find-volunteers.
type FindVolunteersRequest struct {
	ReportData    map[string]interface{} `json:"report_data"`
	Location      *LocationPayload       `json:"location,omitempty"`
	RadiusKm      float64                `json:"radius_km"`
	Limit         int                    `json:"limit"`
	MinMatchScore float64                `json:"min_match_score"`
}

// FindVolunteers runs a similarity search for volunteers suited to a
// cleanup.
func (c *Client) FindVolunteers(ctx context.Context, req FindVolunteersRequest) (*FindVolunteersResponse, error) {
	var resp FindVolunteersResponse
	if err := c.sendJSON(ctx, "POST", "/find-volunteers", req, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TrashReportQuery filters GET /trash-reports.
type TrashReportQuery struct {
	Limit int
	Lat   *float64
	Lon   *float64
}

// GetTrashReports fetches recent waste-analysis reports.
func (c *Client) GetTrashReports(ctx context.Context, q TrashReportQuery) ([]TrashReportPayload, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.Lat != nil && q.Lon != nil {
		params.Set("lat", strconv.FormatFloat(*q.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(*q.Lon, 'f', -1, 64))
	}

	var resp TrashReportsResponse
	if err := c.getJSON(ctx, "/trash-reports", params, "", &resp); err != nil {
		return nil, err
	}
	return resp.Reports, nil
}

// DetectWaste submits an image for full waste analysis (detector plus
// report generation). The image is sent as the "file" multipart field.
func (c *Client) DetectWaste(ctx context.Context, image []byte, filename string, fields MultipartFields, useYolo bool) (*DetectResponse, error) {
	if fields.Extra == nil {
		fields.Extra = map[string]string{}
	}
	fields.Extra["use_yolo"] = strconv.FormatBool(useYolo)

	var resp DetectResponse
	if err := c.postMultipart(ctx, "/detect-waste", filename, image, fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DetectLiveFrame runs the lightweight detector on a single video frame.
// Summary aggregation is skipped when includeSummary is false to keep the
// round trip inside the polling interval.
func (c *Client) DetectLiveFrame(ctx context.Context, frame []byte, location *LocationPayload, includeSummary bool) (*LiveDetectResponse, error) {
	fields := MultipartFields{Location: location}
	if !includeSummary {
		fields.Extra = map[string]string{"include_summary": "false"}
	}

	var resp LiveDetectResponse
	if err := c.postMultipart(ctx, "/detect-waste/live", "frame.jpg", frame, fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HotspotRequest is the body for POST /detect-hotspots.
type HotspotRequest struct {
	ReportData        map[string]interface{} `json:"report_data"`
	TimeWindowDays    int                    `json:"time_window_days"`
	MinSimilarReports int                    `json:"min_similar_reports"`
}

// DetectHotspots checks whether a report's location is a recurring trash
// hotspot.
func (c *Client) DetectHotspots(ctx context.Context, req HotspotRequest) (*HotspotResponse, error) {
	var resp HotspotResponse
	if err := c.sendJSON(ctx, "POST", "/detect-hotspots", req, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a platform account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.sendJSON(ctx, "POST", "/auth/register", req, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates against the platform.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.sendJSON(ctx, "POST", "/auth/login", body, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCurrentUser fetches the account behind token.
func (c *Client) GetCurrentUser(ctx context.Context, token string) (*UserPayload, error) {
	var resp UserResponse
	if err := c.getJSON(ctx, "/auth/me", nil, token, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// UpdateProfile applies partial profile updates to the authenticated
// account.
func (c *Client) UpdateProfile(ctx context.Context, token string, updates map[string]interface{}) (*UserPayload, error) {
	var resp UserResponse
	if err := c.sendJSON(ctx, "PUT", "/auth/me", updates, token, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// FollowUser follows another account by display name.
func (c *Client) FollowUser(ctx context.Context, token, followeeName string) (*FollowResponse, error) {
	body := map[string]string{"followee_name": followeeName}
	var resp FollowResponse
	if err := c.sendJSON(ctx, "POST", "/users/follow", body, token, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UnfollowUser unfollows an account by ID.
func (c *Client) UnfollowUser(ctx context.Context, token, followeeID string) (*FollowResponse, error) {
	body := map[string]string{"followee_id": followeeID}
	var resp FollowResponse
	if err := c.sendJSON(ctx, "POST", "/users/unfollow", body, token, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchUsers searches accounts by name or email.
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) ([]UserPayload, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))

	var resp UsersResponse
	if err := c.getJSON(ctx, "/users/search", params, "", &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// GetUserProfile fetches a public profile by user ID.
func (c *Client) GetUserProfile(ctx context.Context, userID string) (*UserPayload, error) {
	var resp UserResponse
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(userID)+"/profile", nil, "", &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// GetRecommendedUsers fetches personalized follow recommendations.
func (c *Client) GetRecommendedUsers(ctx context.Context, token string, limit int) (*RecommendationsResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var resp RecommendationsResponse
	if err := c.getJSON(ctx, "/users/recommended", params, token, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
