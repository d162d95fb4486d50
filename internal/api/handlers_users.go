// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister serves POST /api/v1/users/register.
func (router *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result := router.users.Register(r.Context(), body.Name, body.Email, body.Password)
	if !result.Success {
		writeJSON(w, http.StatusBadRequest, result)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin serves POST /api/v1/users/login.
func (router *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result := router.users.Login(r.Context(), body.Email, body.Password)
	if !result.Success {
		writeJSON(w, http.StatusUnauthorized, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCurrentUser serves GET /api/v1/users/me.
func (router *Router) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "authorization token is required")
		return
	}

	result := router.users.CurrentUser(r.Context(), token)
	if !result.Success {
		writeJSON(w, http.StatusUnauthorized, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleUpdateProfile serves PUT /api/v1/users/me.
func (router *Router) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "authorization token is required")
		return
	}

	var updates map[string]interface{}
	if err := decodeJSON(r, &updates); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result := router.users.UpdateProfile(r.Context(), token, updates)
	writeJSON(w, statusFor(result.Success), result)
}

type followBody struct {
	Name string `json:"name"`
}

// handleFollow serves POST /api/v1/users/follow.
func (router *Router) handleFollow(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "authorization token is required")
		return
	}

	var body followBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result := router.users.Follow(r.Context(), token, body.Name)
	writeJSON(w, statusFor(result.Success), result)
}

// handleUnfollow serves DELETE /api/v1/users/follow/{id}.
func (router *Router) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "authorization token is required")
		return
	}

	result := router.users.Unfollow(r.Context(), token, chi.URLParam(r, "id"))
	writeJSON(w, statusFor(result.Success), result)
}

// handleSearchUsers serves GET /api/v1/users/search.
func (router *Router) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "q is required")
		return
	}

	result := router.users.Search(r.Context(), query, queryInt(r, "limit", 0))
	writeJSON(w, statusFor(result.Success), result)
}

// handleUserProfile serves GET /api/v1/users/{id}.
func (router *Router) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	result := router.users.Profile(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, statusFor(result.Success), result)
}

// handleRecommendedUsers serves GET /api/v1/users/recommended.
func (router *Router) handleRecommendedUsers(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "authorization token is required")
		return
	}

	result := router.users.Recommended(r.Context(), token, queryInt(r, "limit", 0))
	writeJSON(w, statusFor(result.Success), result)
}
