// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danakm/tidesweep/internal/config"
)

func testConfig(endpoint string) config.WeatherConfig {
	return config.WeatherConfig{
		Endpoint:       endpoint,
		APIKey:         "test-key",
		RequestTimeout: 2 * time.Second,
	}
}

const currentBody = `{
	"weather": [{"main": "Clear", "description": "clear sky", "icon": "01d"}],
	"main": {"temp": 27.6, "feels_like": 29.2, "humidity": 58, "pressure": 1012},
	"wind": {"speed": 4.2, "deg": 310},
	"rain": {"1h": 0.3},
	"clouds": {"all": 5},
	"visibility": 9800,
	"sys": {"sunrise": 1756500000, "sunset": 1756545000}
}`

func TestCurrentMapsProviderPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("path = %s, want /weather", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("units") != "metric" || q.Get("appid") != "test-key" {
			t.Errorf("query = %v", q)
		}
		fmt.Fprint(w, currentBody)
	}))
	defer server.Close()

	obs, err := NewClient(testConfig(server.URL)).Current(context.Background(), 25.2, 55.27)
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	if obs.Temperature != 28 || obs.FeelsLike != 29 {
		t.Errorf("temperature = %d/%d, want 28/29", obs.Temperature, obs.FeelsLike)
	}
	if obs.Condition != "Clear" || obs.Icon != "01d" {
		t.Errorf("condition = %s/%s", obs.Condition, obs.Icon)
	}
	// 0.3 mm in the last hour scales to 30 on the gauge.
	if obs.Precipitation != 30 {
		t.Errorf("precipitation = %d, want 30", obs.Precipitation)
	}
	// 4.2 m/s is 15 km/h rounded.
	if obs.WindSpeedKmh != 15 {
		t.Errorf("wind = %d km/h, want 15", obs.WindSpeedKmh)
	}
	if obs.VisibilityKm != 10 {
		t.Errorf("visibility = %d km, want 10", obs.VisibilityKm)
	}
	if obs.Sunrise != 1756500000 || obs.Sunset != 1756545000 {
		t.Errorf("sun times = %d/%d", obs.Sunrise, obs.Sunset)
	}
}

func TestCurrentWithoutRainBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"weather": [{"main": "Clouds"}], "main": {"temp": 22}}`)
	}))
	defer server.Close()

	obs, err := NewClient(testConfig(server.URL)).Current(context.Background(), 25.2, 55.27)
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if obs.Precipitation != 0 {
		t.Errorf("precipitation = %d, want 0 without a rain block", obs.Precipitation)
	}
}

func TestCurrentRejectedKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewClient(testConfig(server.URL)).Current(context.Background(), 25.2, 55.27)
	if !errors.Is(err, ErrBadAPIKey) {
		t.Errorf("error = %v, want ErrBadAPIKey", err)
	}
}

func TestForecastMapsSlots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("path = %s, want /forecast", r.URL.Path)
		}
		if got := r.URL.Query().Get("cnt"); got != "8" {
			t.Errorf("cnt = %s, want 8", got)
		}
		fmt.Fprint(w, `{"list": [
			{"dt": 1756510000, "main": {"temp": 31.4}, "weather": [{"main": "Clear", "icon": "01d"}], "wind": {"speed": 2.5}, "pop": 0.15},
			{"dt": 1756520800, "main": {"temp": 29.8}, "weather": [{"main": "Clouds", "icon": "03d"}], "wind": {"speed": 3.1}, "pop": 0.6}
		]}`)
	}))
	defer server.Close()

	entries, err := NewClient(testConfig(server.URL)).Forecast(context.Background(), 25.2, 55.27)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	first := entries[0]
	if first.Time != 1756510000 || first.Temperature != 31 || first.Condition != "Clear" {
		t.Errorf("first slot = %+v", first)
	}
	if first.Precipitation != 15 {
		t.Errorf("pop = %d, want 15", first.Precipitation)
	}
	if entries[1].Precipitation != 60 {
		t.Errorf("second pop = %d, want 60", entries[1].Precipitation)
	}
}

func TestForecastProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message": "quota exceeded"}`)
	}))
	defer server.Close()

	_, err := NewClient(testConfig(server.URL)).Forecast(context.Background(), 25.2, 55.27)
	if err == nil {
		t.Fatal("Forecast() error = nil, want quota error")
	}
}

func TestRecommendation(t *testing.T) {
	tests := []struct {
		name string
		obs  *Observation
		want string
	}{
		{"nil observation", nil, "Check weather conditions before heading out."},
		{"rain first", &Observation{Precipitation: 70, Temperature: 40}, "High chance of rain. Bring waterproof gear and rain protection!"},
		{"very hot", &Observation{Temperature: 38}, "Very hot! Bring extra water, sunscreen, and take frequent breaks."},
		{"hot", &Observation{Temperature: 32}, "Hot weather. Stay hydrated and use sun protection!"},
		{"cool", &Observation{Temperature: 12}, "Cool weather. Bring warm layers and dress appropriately."},
		{"windy", &Observation{Temperature: 24, WindSpeedKmh: 35}, "Windy conditions. Secure loose items and be cautious."},
		{"perfect", &Observation{Temperature: 25, Condition: "Clear"}, "Perfect weather for outdoor activities! Enjoy!"},
		{"plain good", &Observation{Temperature: 25, Condition: "Clouds"}, "Good weather conditions. Have a great time!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recommendation(tt.obs); got != tt.want {
				t.Errorf("Recommendation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSuitable(t *testing.T) {
	if Suitable(nil) {
		t.Error("Suitable(nil) = true")
	}
	if !Suitable(&Observation{Temperature: 30, Precipitation: 20}) {
		t.Error("mild conditions reported unsuitable")
	}
	if Suitable(&Observation{Temperature: 30, Precipitation: 80}) {
		t.Error("heavy rain chance reported suitable")
	}
	if Suitable(&Observation{Temperature: 47}) {
		t.Error("extreme heat reported suitable")
	}
}
