// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

// Package models defines the normalized domain entities the gateway serves:
// campaigns, volunteers, trash reports, and users, plus the shared location
// and derived-field types. Entities are built once per fetch-and-transform
// cycle and treated as immutable snapshots afterwards; caches hand out the
// same snapshot on a hit without re-deriving time-sensitive fields.
package models
