// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// CreateKey builds a deterministic cache key from a prefix and a parameter
// set. Parameters are sorted by name so that logically identical calls map
// to the same key regardless of map iteration order. Each parameter is
// rendered as name:JSON(value), joined with "|", and appended to the prefix
// after "::".
//
// A nil or empty parameter set yields just the prefix, so parameterless
// operations share one key per prefix.
func CreateKey(prefix string, params map[string]interface{}) string {
	if len(params) == 0 {
		return prefix
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		encoded, err := json.Marshal(params[name])
		if err != nil {
			// Unmarshalable values (channels, funcs) fall back to their
			// Go representation rather than failing key construction.
			encoded = []byte(fmt.Sprintf("%v", params[name]))
		}
		parts = append(parts, name+":"+string(encoded))
	}

	return prefix + "::" + strings.Join(parts, "|")
}
