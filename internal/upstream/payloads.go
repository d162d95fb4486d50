// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

/*
payloads.go - Upstream Platform Payload Types

Raw wire types for the cleanup platform API. The platform's vector-store
backend is loose about field names (lat vs latitude, lon vs lng vs
longitude, top-level vs metadata-nested report fields), so these structs
model every variant the backend has been observed to emit. Normalization
into the internal/models types happens in internal/transform, not here.
*/
package upstream

import "github.com/goccy/go-json"

// LocationPayload is a raw location as the platform emits it. Coordinate
// field names vary by endpoint; use LatValue/LngValue to coalesce.
type LocationPayload struct {
	Lat       *float64 `json:"lat,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
	Label     string   `json:"label,omitempty"`
}

// LatValue returns the first latitude variant present.
func (p *LocationPayload) LatValue() *float64 {
	if p == nil {
		return nil
	}
	if p.Lat != nil {
		return p.Lat
	}
	return p.Latitude
}

// LngValue returns the first longitude variant present, preferring lng,
// then lon, then longitude.
func (p *LocationPayload) LngValue() *float64 {
	if p == nil {
		return nil
	}
	if p.Lng != nil {
		return p.Lng
	}
	if p.Lon != nil {
		return p.Lon
	}
	return p.Longitude
}

// SuppliedAddress returns the payload's address or label, address first.
func (p *LocationPayload) SuppliedAddress() string {
	if p == nil {
		return ""
	}
	if p.Address != "" {
		return p.Address
	}
	return p.Label
}

// HotspotPayload describes the detection cluster a campaign was created
// from.
type HotspotPayload struct {
	AveragePriority *float64 `json:"average_priority,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Materials       []string `json:"materials,omitempty"`
	ReportCount     int      `json:"report_count,omitempty"`
}

// GoalsPayload holds a campaign's volunteer and funding targets. Funding
// amounts are in USD on the wire.
type GoalsPayload struct {
	VolunteerGoal     int      `json:"volunteer_goal,omitempty"`
	CurrentVolunteers int      `json:"current_volunteers,omitempty"`
	CurrentFundingUSD *float64 `json:"current_funding_usd,omitempty"`
	TargetFundingUSD  *float64 `json:"target_funding_usd,omitempty"`
}

// TimelinePayload is a campaign's raw schedule.
type TimelinePayload struct {
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	DurationDays int    `json:"duration_days,omitempty"`
}

// ImpactEstimatesPayload holds the platform's projected campaign impact.
type ImpactEstimatesPayload struct {
	EstimatedWasteKg        *float64 `json:"estimated_waste_kg,omitempty"`
	EstimatedAreaCleanedKm2 *float64 `json:"estimated_area_cleaned_km2,omitempty"`
	EstimatedVolunteerHours float64  `json:"estimated_volunteer_hours,omitempty"`
	EstimatedCO2ReductionKg *float64 `json:"estimated_co2_reduction_kg,omitempty"`
}

// OrganizerPayload identifies a campaign's organizer.
type OrganizerPayload struct {
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// ParticipantPayload is one campaign participant. The platform emits
// either a full object or a bare name string; UnmarshalJSON accepts both.
type ParticipantPayload struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// UnmarshalJSON accepts both the object form and the bare-string form.
func (p *ParticipantPayload) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*p = ParticipantPayload{Name: name}
		return nil
	}

	type plain ParticipantPayload
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = ParticipantPayload(obj)
	return nil
}

// CampaignPayload is a raw campaign record. ID and title each have two
// field variants depending on which backend path produced the record.
type CampaignPayload struct {
	CampaignID      string                  `json:"campaign_id,omitempty"`
	ID              string                  `json:"id,omitempty"`
	CampaignName    string                  `json:"campaign_name,omitempty"`
	Title           string                  `json:"title,omitempty"`
	Description     string                  `json:"description,omitempty"`
	Status          string                  `json:"status,omitempty"`
	Location        *LocationPayload        `json:"location,omitempty"`
	Hotspot         *HotspotPayload         `json:"hotspot,omitempty"`
	Goals           *GoalsPayload           `json:"goals,omitempty"`
	Timeline        *TimelinePayload        `json:"timeline,omitempty"`
	ImpactEstimates *ImpactEstimatesPayload `json:"impact_estimates,omitempty"`
	Organizer       *OrganizerPayload       `json:"organizer,omitempty"`
	Participants    []ParticipantPayload    `json:"participants,omitempty"`
	PriorityScore   *float64                `json:"priority_score,omitempty"`
	VolunteerGoal   int                     `json:"volunteer_goal,omitempty"`
	CreatedAt       string                  `json:"created_at,omitempty"`
}

// VolunteerStatsPayload is the nested stats block some volunteer records
// carry instead of a top-level cleanup count.
type VolunteerStatsPayload struct {
	Cleanups int `json:"cleanups,omitempty"`
}

// VolunteerMetadataPayload holds fields some backend paths nest under
// metadata.
type VolunteerMetadataPayload struct {
	Location *LocationPayload `json:"location,omitempty"`
}

// VolunteerPayload is a raw volunteer record.
type VolunteerPayload struct {
	UserID             string                    `json:"user_id,omitempty"`
	ID                 string                    `json:"id,omitempty"`
	Name               string                    `json:"name,omitempty"`
	Email              string                    `json:"email,omitempty"`
	Phone              string                    `json:"phone,omitempty"`
	Skills             []string                  `json:"skills,omitempty"`
	ExperienceLevel    string                    `json:"experience_level,omitempty"`
	MaterialsExpertise []string                  `json:"materials_expertise,omitempty"`
	Specializations    []string                  `json:"specializations,omitempty"`
	EquipmentOwned     []string                  `json:"equipment_owned,omitempty"`
	Location           *LocationPayload          `json:"location,omitempty"`
	Metadata           *VolunteerMetadataPayload `json:"metadata,omitempty"`
	Available          *bool                     `json:"available,omitempty"`
	PastCleanupCount   *int                      `json:"past_cleanup_count,omitempty"`
	Stats              *VolunteerStatsPayload    `json:"stats,omitempty"`
	HoursContributed   int                       `json:"hours_contributed,omitempty"`
	Rank               int                       `json:"rank,omitempty"`
	Bio                string                    `json:"bio,omitempty"`
	ProfilePictureURL  string                    `json:"profile_picture_url,omitempty"`
}

// TrashReportMetadataPayload holds report fields that arrive nested under
// metadata on some backend paths; each mirrors a top-level field.
type TrashReportMetadataPayload struct {
	PrimaryMaterial        string           `json:"primary_material,omitempty"`
	EstimatedVolume        string           `json:"estimated_volume,omitempty"`
	Description            string           `json:"description,omitempty"`
	CleanupPriorityScore   *float64         `json:"cleanup_priority_score,omitempty"`
	Recyclable             *bool            `json:"recyclable,omitempty"`
	EnvironmentalRiskLevel string           `json:"environmental_risk_level,omitempty"`
	RecommendedEquipment   []string         `json:"recommended_equipment,omitempty"`
	Location               *LocationPayload `json:"location,omitempty"`
	AnalyzedAt             string           `json:"analyzed_at,omitempty"`
	Timestamp              string           `json:"timestamp,omitempty"`
	ConfidenceScore        *float64         `json:"confidence_score,omitempty"`
}

// TrashReportPayload is a raw waste-analysis report.
type TrashReportPayload struct {
	ReportID               string                      `json:"report_id,omitempty"`
	ID                     string                      `json:"id,omitempty"`
	PrimaryMaterial        string                      `json:"primary_material,omitempty"`
	EstimatedVolume        string                      `json:"estimated_volume,omitempty"`
	Description            string                      `json:"description,omitempty"`
	CleanupPriorityScore   *float64                    `json:"cleanup_priority_score,omitempty"`
	Recyclable             *bool                       `json:"recyclable,omitempty"`
	EnvironmentalRiskLevel string                      `json:"environmental_risk_level,omitempty"`
	RecommendedEquipment   []string                    `json:"recommended_equipment,omitempty"`
	Location               *LocationPayload            `json:"location,omitempty"`
	Metadata               *TrashReportMetadataPayload `json:"metadata,omitempty"`
	Timestamp              string                      `json:"timestamp,omitempty"`
	ConfidenceScore        *float64                    `json:"confidence_score,omitempty"`
}

// Response envelopes.

// CampaignsResponse wraps GET /campaigns.
type CampaignsResponse struct {
	Campaigns []CampaignPayload `json:"campaigns"`
}

// CampaignResponse wraps GET /campaigns/{id} and POST /campaign/create.
type CampaignResponse struct {
	Campaign  *CampaignPayload `json:"campaign"`
	Message   string           `json:"message,omitempty"`
	NextSteps []string         `json:"next_steps,omitempty"`
}

// VolunteersResponse wraps GET /volunteers.
type VolunteersResponse struct {
	Volunteers []VolunteerPayload `json:"volunteers"`
}

// LeaderboardResponse wraps GET /leaderboard.
type LeaderboardResponse struct {
	Leaderboard     []VolunteerPayload `json:"leaderboard"`
	TotalVolunteers int                `json:"total_volunteers"`
	GeneratedAt     string             `json:"generated_at"`
}

// TrashReportsResponse wraps GET /trash-reports.
type TrashReportsResponse struct {
	Reports []TrashReportPayload `json:"reports"`
}

// Detection is one bounding box from the waste detector.
type Detection struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Box        []float64 `json:"box,omitempty"`
}

// DetectionSummary aggregates one detection pass.
type DetectionSummary struct {
	TotalDetections int            `json:"total_detections"`
	Materials       map[string]int `json:"materials,omitempty"`
}

// FrameDimensions reports the analyzed frame size.
type FrameDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DetectResponse wraps POST /detect-waste.
type DetectResponse struct {
	ReportID         string                      `json:"report_id,omitempty"`
	Analysis         *TrashReportMetadataPayload `json:"analysis,omitempty"`
	Detections       []Detection                 `json:"detections,omitempty"`
	DetectionSummary *DetectionSummary           `json:"detection_summary,omitempty"`
	AnnotatedImage   string                      `json:"annotated_image,omitempty"`
	Location         *LocationPayload            `json:"location,omitempty"`
	Message          string                      `json:"message,omitempty"`
}

// LiveDetectResponse wraps POST /detect-waste/live.
type LiveDetectResponse struct {
	Detections       []Detection       `json:"detections"`
	DetectionSummary *DetectionSummary `json:"detection_summary,omitempty"`
	FrameDimensions  *FrameDimensions  `json:"frame_dimensions,omitempty"`
	LatencyMs        *float64          `json:"latency_ms,omitempty"`
}

// VolunteerMatch is one scored result from POST /find-volunteers.
type VolunteerMatch struct {
	VolunteerPayload
	MatchScore float64 `json:"match_score"`
}

// FindVolunteersResponse wraps POST /find-volunteers.
type FindVolunteersResponse struct {
	Volunteers []VolunteerMatch `json:"volunteers"`
	Count      int              `json:"count,omitempty"`
}

// HotspotResponse wraps POST /detect-hotspots.
type HotspotResponse struct {
	IsHotspot      bool     `json:"is_hotspot"`
	SimilarReports int      `json:"similar_reports,omitempty"`
	ReportIDs      []string `json:"report_ids,omitempty"`
	Summary        string   `json:"summary,omitempty"`
}

// ESGImpactResponse wraps GET /impact/esg.
type ESGImpactResponse struct {
	ItemsCollected int     `json:"items_collected"`
	AreaCleanedKm2 float64 `json:"area_cleaned_km2"`
	CO2SavedKg     float64 `json:"co2_saved_kg"`
	ReportCount    int     `json:"report_count,omitempty"`
	CampaignCount  int     `json:"campaign_count,omitempty"`
}

// UserPayload is a raw platform account.
type UserPayload struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name,omitempty"`
	Email             string   `json:"email,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	ProfilePictureURL string   `json:"profile_picture_url,omitempty"`
	Followers         []string `json:"followers,omitempty"`
	Following         []string `json:"following,omitempty"`
}

// AuthResponse wraps POST /auth/login and /auth/register.
type AuthResponse struct {
	User    *UserPayload `json:"user"`
	Token   string       `json:"token"`
	Message string       `json:"message,omitempty"`
}

// UserResponse wraps GET /auth/me, PUT /auth/me, and /users/{id}/profile.
type UserResponse struct {
	User    *UserPayload `json:"user"`
	Message string       `json:"message,omitempty"`
}

// UsersResponse wraps GET /users/search.
type UsersResponse struct {
	Users []UserPayload `json:"users"`
}

// RecommendationsResponse wraps GET /users/recommended.
type RecommendationsResponse struct {
	Recommendations []UserPayload `json:"recommendations"`
	TotalCandidates int           `json:"total_candidates"`
}

// FollowResponse wraps POST /users/follow and /users/unfollow.
type FollowResponse struct {
	Message  string       `json:"message,omitempty"`
	Followee *UserPayload `json:"followee,omitempty"`
}

// ErrorResponse is the platform's error envelope.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
