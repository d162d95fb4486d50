// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danakm/tidesweep/internal/upstream"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestLoginAndRegister(t *testing.T) {
	api := &mockAPI{
		login: func(email, password string) (*upstream.AuthResponse, error) {
			return &upstream.AuthResponse{
				User:  &upstream.UserPayload{ID: "u-1", Name: "Dana", Email: email},
				Token: "tok-1",
			}, nil
		},
		register: func(req upstream.RegisterRequest) (*upstream.AuthResponse, error) {
			return &upstream.AuthResponse{
				User:    &upstream.UserPayload{ID: "u-2", Name: req.Name, Email: req.Email},
				Token:   "tok-2",
				Message: "Welcome",
			}, nil
		},
	}
	svc := NewUserService(newTestDeps(t, api))

	if res := svc.Login(context.Background(), "", ""); res.Success {
		t.Error("login without credentials must fail")
	}

	login := svc.Login(context.Background(), "dana@example.com", "hunter2")
	if !login.Success || login.Token != "tok-1" {
		t.Fatalf("login = %+v", login)
	}
	if login.User == nil || login.User.Email != "dana@example.com" {
		t.Errorf("login user = %+v", login.User)
	}

	if res := svc.Register(context.Background(), "Nadia", "", "pw"); res.Success {
		t.Error("register without email must fail")
	}
	reg := svc.Register(context.Background(), "Nadia", "nadia@example.com", "pw")
	if !reg.Success || reg.User.ID != "u-2" || reg.Message != "Welcome" {
		t.Fatalf("register = %+v", reg)
	}
}

func TestCurrentUserExpiredTokenShortCircuits(t *testing.T) {
	upstreamCalls := 0
	api := &mockAPI{
		currentUser: func(token string) (*upstream.UserPayload, error) {
			upstreamCalls++
			return &upstream.UserPayload{ID: "u-1", Name: "Dana"}, nil
		},
	}
	svc := NewUserService(newTestDeps(t, api))

	expired := signedToken(t, time.Now().Add(-time.Hour))
	res := svc.CurrentUser(context.Background(), expired)
	if res.Success {
		t.Fatalf("expired token lookup = %+v, want failure", res)
	}
	if upstreamCalls != 0 {
		t.Errorf("expired token still hit the platform %d times", upstreamCalls)
	}

	valid := signedToken(t, time.Now().Add(time.Hour))
	res = svc.CurrentUser(context.Background(), valid)
	if !res.Success || res.User.ID != "u-1" {
		t.Fatalf("valid token lookup = %+v", res)
	}
	if upstreamCalls != 1 {
		t.Errorf("upstream calls = %d, want 1", upstreamCalls)
	}

	// An opaque non-JWT token is the platform's problem, not ours.
	res = svc.CurrentUser(context.Background(), "opaque-session-token")
	if !res.Success {
		t.Errorf("opaque token lookup = %+v, want pass-through", res)
	}
}

func TestFollowUnfollowValidation(t *testing.T) {
	api := &mockAPI{
		followUser: func(token, followeeName string) (*upstream.FollowResponse, error) {
			return &upstream.FollowResponse{
				Message:  "now following " + followeeName,
				Followee: &upstream.UserPayload{ID: "u-9", Name: followeeName},
			}, nil
		},
		unfollowUser: func(token, followeeID string) (*upstream.FollowResponse, error) {
			return &upstream.FollowResponse{Message: "unfollowed"}, nil
		},
	}
	svc := NewUserService(newTestDeps(t, api))

	if res := svc.Follow(context.Background(), "tok", ""); res.Success {
		t.Error("follow without a name must fail")
	}
	follow := svc.Follow(context.Background(), "tok", "Omar")
	if !follow.Success || follow.Followee == nil || follow.Followee.ID != "u-9" {
		t.Fatalf("follow = %+v", follow)
	}

	if res := svc.Unfollow(context.Background(), "tok", ""); res.Success {
		t.Error("unfollow without an ID must fail")
	}
	if res := svc.Unfollow(context.Background(), "tok", "u-9"); !res.Success {
		t.Fatalf("unfollow = %+v", res)
	}
}

func TestSearchAndRecommendations(t *testing.T) {
	var gotLimit int
	api := &mockAPI{
		searchUsers: func(query string, limit int) ([]upstream.UserPayload, error) {
			gotLimit = limit
			return []upstream.UserPayload{{ID: "u-1", Name: "Dana"}}, nil
		},
		recommendations: func(token string, limit int) (*upstream.RecommendationsResponse, error) {
			return &upstream.RecommendationsResponse{
				Recommendations: []upstream.UserPayload{{ID: "u-5", Name: "Rania"}},
				TotalCandidates: 12,
			}, nil
		},
	}
	svc := NewUserService(newTestDeps(t, api))

	if res := svc.Search(context.Background(), "", 0); res.Success {
		t.Error("empty search query must fail")
	}
	search := svc.Search(context.Background(), "dan", 0)
	if !search.Success || len(search.Users) != 1 {
		t.Fatalf("search = %+v", search)
	}
	if gotLimit != defaultUserSearchLimit {
		t.Errorf("search limit = %d, want default %d", gotLimit, defaultUserSearchLimit)
	}

	rec := svc.Recommended(context.Background(), "tok", 0)
	if !rec.Success || rec.Total != 12 || len(rec.Users) != 1 {
		t.Fatalf("recommendations = %+v", rec)
	}
}

func TestUpdateProfileRequiresChanges(t *testing.T) {
	api := &mockAPI{
		updateProfile: func(token string, updates map[string]interface{}) (*upstream.UserPayload, error) {
			return &upstream.UserPayload{ID: "u-1", Bio: updates["bio"].(string)}, nil
		},
	}
	svc := NewUserService(newTestDeps(t, api))
	token := signedToken(t, time.Now().Add(time.Hour))

	if res := svc.UpdateProfile(context.Background(), token, nil); res.Success {
		t.Error("empty update must fail")
	}

	res := svc.UpdateProfile(context.Background(), token, map[string]interface{}{"bio": "Cleanup organizer"})
	if !res.Success || res.User.Bio != "Cleanup organizer" {
		t.Fatalf("update = %+v", res)
	}
}
