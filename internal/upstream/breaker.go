// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package upstream

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/danakm/tidesweep/internal/logging"
	"github.com/danakm/tidesweep/internal/metrics"
)

// Breaker wraps the platform client with a circuit breaker so that a dead
// or struggling upstream fails fast instead of queueing requests behind
// its timeout. Tripping the breaker is what pushes the domain services
// onto their durable-cache and mock-data fallbacks.
//
// The breaker uses real time for its interval and timeout windows; tests
// exercise the wrapped client directly rather than simulating breaker
// clocks.
type Breaker struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// NewBreaker wraps client. Configuration:
//   - Max 3 concurrent probes in half-open state
//   - 1 minute measurement window in closed state
//   - 2 minute open period before probing again
//   - Opens at >= 60% failure rate over at least 10 requests
func NewBreaker(client *Client) *Breaker {
	const cbName = "platform-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening platform API circuit")
				return true
			}
			return false
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Platform API circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Breaker{client: client, cb: cb, name: cbName}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// execute runs fn under the breaker and records the outcome.
func execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})

	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return zero, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	if result == nil {
		var zero T
		return zero, nil
	}
	return result.(T), nil
}

// executeErr runs an error-only call under the breaker.
func executeErr(b *Breaker, fn func() error) error {
	_, err := execute(b, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Health implements API.
func (b *Breaker) Health(ctx context.Context) error {
	return executeErr(b, func() error { return b.client.Health(ctx) })
}

// GetCampaigns implements API.
func (b *Breaker) GetCampaigns(ctx context.Context) ([]CampaignPayload, error) {
	return execute(b, func() ([]CampaignPayload, error) { return b.client.GetCampaigns(ctx) })
}

// GetCampaign implements API.
func (b *Breaker) GetCampaign(ctx context.Context, id string) (*CampaignPayload, error) {
	return execute(b, func() (*CampaignPayload, error) { return b.client.GetCampaign(ctx, id) })
}

// CreateCampaign implements API.
func (b *Breaker) CreateCampaign(ctx context.Context, req CreateCampaignRequest) (*CampaignResponse, error) {
	return execute(b, func() (*CampaignResponse, error) { return b.client.CreateCampaign(ctx, req) })
}

// GetESGImpact implements API.
func (b *Breaker) GetESGImpact(ctx context.Context) (*ESGImpactResponse, error) {
	return execute(b, func() (*ESGImpactResponse, error) { return b.client.GetESGImpact(ctx) })
}

// GetVolunteers implements API.
func (b *Breaker) GetVolunteers(ctx context.Context, q VolunteerQuery) ([]VolunteerPayload, error) {
	return execute(b, func() ([]VolunteerPayload, error) { return b.client.GetVolunteers(ctx, q) })
}

// CreateVolunteerProfile implements API.
func (b *Breaker) CreateVolunteerProfile(ctx context.Context, req VolunteerProfileRequest) error {
	return executeErr(b, func() error { return b.client.CreateVolunteerProfile(ctx, req) })
}

// UpdateAvailability implements API.
func (b *Breaker) UpdateAvailability(ctx context.Context, userID string, available bool) error {
	return executeErr(b, func() error { return b.client.UpdateAvailability(ctx, userID, available) })
}

// GetLeaderboard implements API.
func (b *Breaker) GetLeaderboard(ctx context.Context, limit int) (*LeaderboardResponse, error) {
	return execute(b, func() (*LeaderboardResponse, error) { return b.client.GetLeaderboard(ctx, limit) })
}

// FindVolunteers implements API.
func (b *Breaker) FindVolunteers(ctx context.Context, req FindVolunteersRequest) (*FindVolunteersResponse, error) {
	return execute(b, func() (*FindVolunteersResponse, error) { return b.client.FindVolunteers(ctx, req) })
}

// GetTrashReports implements API.
func (b *Breaker) GetTrashReports(ctx context.Context, q TrashReportQuery) ([]TrashReportPayload, error) {
	return execute(b, func() ([]TrashReportPayload, error) { return b.client.GetTrashReports(ctx, q) })
}

// DetectWaste implements API.
func (b *Breaker) DetectWaste(ctx context.Context, image []byte, filename string, fields MultipartFields, useYolo bool) (*DetectResponse, error) {
	return execute(b, func() (*DetectResponse, error) {
		return b.client.DetectWaste(ctx, image, filename, fields, useYolo)
	})
}

// DetectLiveFrame implements API.
func (b *Breaker) DetectLiveFrame(ctx context.Context, frame []byte, location *LocationPayload, includeSummary bool) (*LiveDetectResponse, error) {
	return execute(b, func() (*LiveDetectResponse, error) {
		return b.client.DetectLiveFrame(ctx, frame, location, includeSummary)
	})
}

// DetectHotspots implements API.
func (b *Breaker) DetectHotspots(ctx context.Context, req HotspotRequest) (*HotspotResponse, error) {
	return execute(b, func() (*HotspotResponse, error) { return b.client.DetectHotspots(ctx, req) })
}

// Register implements API.
func (b *Breaker) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return execute(b, func() (*AuthResponse, error) { return b.client.Register(ctx, req) })
}

// Login implements API.
func (b *Breaker) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return execute(b, func() (*AuthResponse, error) { return b.client.Login(ctx, email, password) })
}

// GetCurrentUser implements API.
func (b *Breaker) GetCurrentUser(ctx context.Context, token string) (*UserPayload, error) {
	return execute(b, func() (*UserPayload, error) { return b.client.GetCurrentUser(ctx, token) })
}

// UpdateProfile implements API.
func (b *Breaker) UpdateProfile(ctx context.Context, token string, updates map[string]interface{}) (*UserPayload, error) {
	return execute(b, func() (*UserPayload, error) { return b.client.UpdateProfile(ctx, token, updates) })
}

// FollowUser implements API.
func (b *Breaker) FollowUser(ctx context.Context, token, followeeName string) (*FollowResponse, error) {
	return execute(b, func() (*FollowResponse, error) { return b.client.FollowUser(ctx, token, followeeName) })
}

// UnfollowUser implements API.
func (b *Breaker) UnfollowUser(ctx context.Context, token, followeeID string) (*FollowResponse, error) {
	return execute(b, func() (*FollowResponse, error) { return b.client.UnfollowUser(ctx, token, followeeID) })
}

// SearchUsers implements API.
func (b *Breaker) SearchUsers(ctx context.Context, query string, limit int) ([]UserPayload, error) {
	return execute(b, func() ([]UserPayload, error) { return b.client.SearchUsers(ctx, query, limit) })
}

// GetUserProfile implements API.
func (b *Breaker) GetUserProfile(ctx context.Context, userID string) (*UserPayload, error) {
	return execute(b, func() (*UserPayload, error) { return b.client.GetUserProfile(ctx, userID) })
}

// GetRecommendedUsers implements API.
func (b *Breaker) GetRecommendedUsers(ctx context.Context, token string, limit int) (*RecommendationsResponse, error) {
	return execute(b, func() (*RecommendationsResponse, error) {
		return b.client.GetRecommendedUsers(ctx, token, limit)
	})
}

// Interface conformance checks.
var (
	_ API = (*Client)(nil)
	_ API = (*Breaker)(nil)
)
