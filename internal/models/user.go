// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package models

// User is a platform account as returned by the upstream auth and user
// endpoints. Followers and Following hold user IDs.
type User struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	ProfilePictureURL string   `json:"profile_picture_url,omitempty"`
	Followers         []string `json:"followers,omitempty"`
	Following         []string `json:"following,omitempty"`
}

// IsFollowing reports whether the user follows targetID.
func (u *User) IsFollowing(targetID string) bool {
	if u == nil {
		return false
	}
	for _, id := range u.Following {
		if id == targetID {
			return true
		}
	}
	return false
}

// FollowersCount returns the number of followers; safe on a nil user.
func (u *User) FollowersCount() int {
	if u == nil {
		return 0
	}
	return len(u.Followers)
}

// FollowingCount returns how many users this user follows; safe on nil.
func (u *User) FollowingCount() int {
	if u == nil {
		return 0
	}
	return len(u.Following)
}
