// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danakm/tidesweep/internal/config"
	"github.com/danakm/tidesweep/internal/models"
)

func testConfig(endpoint string) config.GeocodeConfig {
	return config.GeocodeConfig{
		Endpoint:       endpoint,
		Language:       "en",
		MaxConcurrent:  5,
		RequestTimeout: 2 * time.Second,
		RatePerSecond:  1000,
	}
}

func TestComposeAddress(t *testing.T) {
	tests := []struct {
		name        string
		addr        *StructuredAddress
		displayName string
		want        string
	}{
		{
			name: "full address",
			addr: &StructuredAddress{
				HouseNumber:   "12",
				Road:          "Marina Walk",
				Neighbourhood: "Dubai Marina",
				City:          "Dubai",
				State:         "Dubai",
				Country:       "United Arab Emirates",
			},
			// State "Dubai" duplicates the city segment and is skipped.
			want: "12 Marina Walk, Dubai Marina, Dubai, United Arab Emirates",
		},
		{
			name: "road without house number",
			addr: &StructuredAddress{Road: "Corniche Road", City: "Abu Dhabi", Country: "United Arab Emirates"},
			want: "Corniche Road, Abu Dhabi, United Arab Emirates",
		},
		{
			name: "suburb and town substitutes",
			addr: &StructuredAddress{Suburb: "Al Qusais", Town: "Deira", Country: "United Arab Emirates"},
			want: "Al Qusais, Deira, United Arab Emirates",
		},
		{
			name:        "empty structured block falls back to display name",
			addr:        &StructuredAddress{},
			displayName: "Jumeirah Beach, Dubai",
			want:        "Jumeirah Beach, Dubai",
		},
		{
			name: "nothing at all",
			addr: nil,
			want: models.UnknownAddress,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeAddress(tt.addr, tt.displayName, models.UnknownAddress)
			if got != tt.want {
				t.Errorf("ComposeAddress() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveBurstRespectsConcurrencyCap(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()

		fmt.Fprintf(w, `{"address":{"city":"Dubai","country":"United Arab Emirates"}}`)
	}))
	defer server.Close()

	r := NewResolver(testConfig(server.URL))
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Distinct coordinates so nothing coalesces or caches.
			got := r.Resolve(context.Background(), 25.0+float64(i)*0.001, 55.0)
			if got != "Dubai, United Arab Emirates" {
				t.Errorf("Resolve() = %q", got)
			}
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if peak > 5 {
		t.Errorf("peak concurrent lookups = %d, want <= 5", peak)
	}
	if peak == 0 {
		t.Error("no lookups reached the server")
	}
}

func TestResolveNeverFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	r := NewResolver(testConfig(server.URL))
	defer r.Close()

	if got := r.Resolve(context.Background(), 25.2048, 55.2708); got != models.UnknownAddress {
		t.Errorf("Resolve() = %q, want %q", got, models.UnknownAddress)
	}
}

func TestResolveUnreachableEndpoint(t *testing.T) {
	r := NewResolver(testConfig("http://127.0.0.1:1"))
	defer r.Close()

	if got := r.Resolve(context.Background(), 25.2048, 55.2708); got != models.UnknownAddress {
		t.Errorf("Resolve() = %q, want %q", got, models.UnknownAddress)
	}
}

func TestResolveCachesByRoundedCoordinates(t *testing.T) {
	var mu sync.Mutex
	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		fmt.Fprintf(w, `{"address":{"city":"Dubai"}}`)
	}))
	defer server.Close()

	r := NewResolver(testConfig(server.URL))
	defer r.Close()

	first := r.Resolve(context.Background(), 25.204800, 55.270800)
	// Differs only past the fifth decimal; must share the cache entry.
	second := r.Resolve(context.Background(), 25.204801, 55.270801)

	if first != "Dubai" || second != "Dubai" {
		t.Errorf("Resolve() = %q, %q", first, second)
	}

	mu.Lock()
	defer mu.Unlock()
	if requests != 1 {
		t.Errorf("server requests = %d, want 1 (second lookup should be cached)", requests)
	}
}

func TestResolveCoalescesInFlightLookups(t *testing.T) {
	var mu sync.Mutex
	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		time.Sleep(50 * time.Millisecond)
		fmt.Fprintf(w, `{"address":{"city":"Dubai"}}`)
	}))
	defer server.Close()

	r := NewResolver(testConfig(server.URL))
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := r.Resolve(context.Background(), 25.2048, 55.2708); got != "Dubai" {
				t.Errorf("Resolve() = %q", got)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if requests != 1 {
		t.Errorf("server requests = %d, want 1 for identical in-flight lookups", requests)
	}
}

func TestResolveAfterClose(t *testing.T) {
	r := NewResolver(testConfig("http://127.0.0.1:1"))
	r.Close()
	r.Close() // idempotent

	if got := r.Resolve(context.Background(), 1, 2); got != models.UnknownAddress {
		t.Errorf("Resolve() after Close = %q", got)
	}
}

func TestResolveCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprintf(w, `{"address":{"city":"Dubai"}}`)
	}))
	defer server.Close()

	r := NewResolver(testConfig(server.URL))
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if got := r.Resolve(ctx, 25.2048, 55.2708); got != models.UnknownAddress {
		t.Errorf("Resolve() with cancelled context = %q", got)
	}
}

func TestResolveRacingCloseDoesNotPanic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"address":{"city":"Dubai"}}`)
	}))
	defer server.Close()

	// Resolve passes the closed check, releases the lock, then sends on
	// the queue; Close must wait for that send instead of closing the
	// channel under it.
	for round := 0; round < 50; round++ {
		r := NewResolver(testConfig(server.URL))

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					r.Resolve(context.Background(), float64(g), float64(i))
				}
			}(g)
		}
		r.Close()
		wg.Wait()
	}
}
