// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

// Package service orchestrates campaign, volunteer, trash-report, and user
// data behind a layered fallback chain: in-memory cache, upstream platform
// API, durable cache with an extended staleness window, and finally demo
// data. Every result carries a source tag so clients can tell fresh data
// from degraded data, plus a warning when a degraded tier was used.
//
// Reads write through both cache tiers on a successful upstream fetch.
// Writes (campaign creation, profile upserts, availability flips, follows)
// go straight to the platform and invalidate the affected cache keys; they
// never mutate cached data optimistically.
package service
