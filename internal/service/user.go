// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danakm/tidesweep/internal/models"
	"github.com/danakm/tidesweep/internal/upstream"
)

const (
	defaultUserSearchLimit  = 20
	defaultRecommendedLimit = 10
)

// UserService proxies the platform's auth and social-graph endpoints. It
// holds no session state of its own: tokens are issued and verified by the
// platform, and the only local check is a pre-flight expiry inspection so
// a token that is already dead never costs a round trip.
type UserService struct {
	deps Deps
	now  func() time.Time
}

// NewUserService builds a user service over deps.
func NewUserService(deps Deps) *UserService {
	return &UserService{deps: deps, now: time.Now}
}

// AuthResult is the outcome of a register or login call.
type AuthResult struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// UserResult is the outcome of a profile lookup or update.
type UserResult struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// UsersResult is the outcome of a search or recommendation call.
type UsersResult struct {
	Success bool           `json:"success"`
	Users   []*models.User `json:"users"`
	Total   int            `json:"total,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// FollowResult is the outcome of a follow or unfollow call.
type FollowResult struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message,omitempty"`
	Followee *models.User `json:"followee,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// Register creates a platform account.
func (s *UserService) Register(ctx context.Context, name, email, password string) AuthResult {
	if name == "" || email == "" || password == "" {
		return AuthResult{Error: "name, email, and password are required"}
	}

	resp, err := s.deps.API.Register(ctx, upstream.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return AuthResult{Error: errMessage(err)}
	}
	return AuthResult{Success: true, User: userFromPayload(resp.User), Token: resp.Token, Message: resp.Message}
}

// Login authenticates against the platform.
func (s *UserService) Login(ctx context.Context, email, password string) AuthResult {
	if email == "" || password == "" {
		return AuthResult{Error: "email and password are required"}
	}

	resp, err := s.deps.API.Login(ctx, email, password)
	if err != nil {
		return AuthResult{Error: errMessage(err)}
	}
	return AuthResult{Success: true, User: userFromPayload(resp.User), Token: resp.Token, Message: resp.Message}
}

// CurrentUser fetches the account behind token. An already-expired token
// fails locally without touching the platform.
func (s *UserService) CurrentUser(ctx context.Context, token string) UserResult {
	if token == "" {
		return UserResult{Error: "authentication token is required"}
	}
	if s.tokenExpired(token) {
		return UserResult{Error: "session expired, please log in again"}
	}

	payload, err := s.deps.API.GetCurrentUser(ctx, token)
	if err != nil {
		return UserResult{Error: errMessage(err)}
	}
	return UserResult{Success: true, User: userFromPayload(payload)}
}

// UpdateProfile applies partial updates to the authenticated account.
func (s *UserService) UpdateProfile(ctx context.Context, token string, updates map[string]interface{}) UserResult {
	if token == "" {
		return UserResult{Error: "authentication token is required"}
	}
	if s.tokenExpired(token) {
		return UserResult{Error: "session expired, please log in again"}
	}
	if len(updates) == 0 {
		return UserResult{Error: "no profile updates supplied"}
	}

	payload, err := s.deps.API.UpdateProfile(ctx, token, updates)
	if err != nil {
		return UserResult{Error: errMessage(err)}
	}
	return UserResult{Success: true, User: userFromPayload(payload)}
}

// Follow follows another account by display name.
func (s *UserService) Follow(ctx context.Context, token, followeeName string) FollowResult {
	if followeeName == "" {
		return FollowResult{Error: "followee name is required"}
	}

	resp, err := s.deps.API.FollowUser(ctx, token, followeeName)
	if err != nil {
		return FollowResult{Error: errMessage(err)}
	}
	return FollowResult{Success: true, Message: resp.Message, Followee: userFromPayload(resp.Followee)}
}

// Unfollow unfollows an account by ID.
func (s *UserService) Unfollow(ctx context.Context, token, followeeID string) FollowResult {
	if followeeID == "" {
		return FollowResult{Error: "followee ID is required"}
	}

	resp, err := s.deps.API.UnfollowUser(ctx, token, followeeID)
	if err != nil {
		return FollowResult{Error: errMessage(err)}
	}
	return FollowResult{Success: true, Message: resp.Message, Followee: userFromPayload(resp.Followee)}
}

// Search finds accounts by name or email.
func (s *UserService) Search(ctx context.Context, query string, limit int) UsersResult {
	if query == "" {
		return UsersResult{Error: "search query is required", Users: []*models.User{}}
	}
	if limit <= 0 {
		limit = defaultUserSearchLimit
	}

	payloads, err := s.deps.API.SearchUsers(ctx, query, limit)
	if err != nil {
		return UsersResult{Error: errMessage(err), Users: []*models.User{}}
	}
	return UsersResult{Success: true, Users: usersFromPayloads(payloads), Total: len(payloads)}
}

// Profile fetches a public profile by user ID.
func (s *UserService) Profile(ctx context.Context, userID string) UserResult {
	if userID == "" {
		return UserResult{Error: "user ID is required"}
	}

	payload, err := s.deps.API.GetUserProfile(ctx, userID)
	if err != nil {
		return UserResult{Error: errMessage(err)}
	}
	return UserResult{Success: true, User: userFromPayload(payload)}
}

// Recommended fetches personalized follow recommendations.
func (s *UserService) Recommended(ctx context.Context, token string, limit int) UsersResult {
	if limit <= 0 {
		limit = defaultRecommendedLimit
	}

	resp, err := s.deps.API.GetRecommendedUsers(ctx, token, limit)
	if err != nil {
		return UsersResult{Error: errMessage(err), Users: []*models.User{}}
	}
	return UsersResult{Success: true, Users: usersFromPayloads(resp.Recommendations), Total: resp.TotalCandidates}
}

// tokenExpired inspects a JWT's exp claim without verifying its signature;
// verification is the platform's job. Malformed tokens or tokens without
// an expiry are passed through for the platform to judge.
func (s *UserService) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.now())
}

func userFromPayload(p *upstream.UserPayload) *models.User {
	if p == nil {
		return nil
	}
	return &models.User{
		ID:                p.ID,
		Name:              p.Name,
		Email:             p.Email,
		Bio:               p.Bio,
		ProfilePictureURL: p.ProfilePictureURL,
		Followers:         p.Followers,
		Following:         p.Following,
	}
}

func usersFromPayloads(payloads []upstream.UserPayload) []*models.User {
	users := make([]*models.User, 0, len(payloads))
	for i := range payloads {
		if u := userFromPayload(&payloads[i]); u != nil {
			users = append(users, u)
		}
	}
	return users
}
