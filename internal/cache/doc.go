// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

// Package cache implements the gateway's two-tier response cache: a fast
// in-process memory tier with per-entry TTLs, and a durable BadgerDB tier
// that survives restarts and backs the extended-fallback read path.
//
// The memory tier stores live references (no serialization), so a hit
// returns the same value that was stored. The durable tier serializes
// entries with goccy/go-json and records the storage timestamp alongside
// the expiry, which lets readers apply a maximum age independent of the
// TTL the writer used.
package cache
