// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package config

import "strings"

// fallbackBaseURL is used when neither an explicit base URL nor a hostname
// is configured.
const fallbackBaseURL = "http://localhost:8000"

// ResolveBaseURL applies the upstream base-URL resolution rule:
// explicit override if provided, else derived from the configured hostname
// with the fallback port, else localhost:8000. Trailing slashes are
// stripped so path joins stay predictable.
func (u UpstreamConfig) ResolveBaseURL() string {
	if url := strings.TrimSuffix(strings.TrimSpace(u.BaseURL), "/"); url != "" {
		return url
	}

	host := strings.TrimSpace(u.Hostname)
	if host == "" {
		return fallbackBaseURL
	}

	port := strings.TrimSpace(u.Port)
	if port == "" {
		port = "8000"
	}
	return "http://" + host + ":" + port
}
