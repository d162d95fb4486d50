// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

// Package weather fetches cleanup-day conditions from an
// OpenWeatherMap-compatible endpoint and assesses whether they suit
// outdoor cleanup work. Units are metric; wind speeds are converted to
// km/h and visibility to km on the way in.
package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/danakm/tidesweep/internal/config"
	"github.com/danakm/tidesweep/internal/logging"
)

// ErrBadAPIKey reports a rejected OpenWeatherMap key. Surfaced verbatim
// so operators know the fix is a credential, not an outage.
var ErrBadAPIKey = errors.New("invalid API key. Get your free key at https://openweathermap.org/api")

// forecastCount asks for the next 24 hours in 3-hour intervals.
const forecastCount = 8

// Observation is the current conditions at a point.
type Observation struct {
	Temperature   int    `json:"temperature"`
	FeelsLike     int    `json:"feelsLike"`
	Condition     string `json:"condition"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	Precipitation int    `json:"precipitation"`
	Humidity      int    `json:"humidity"`
	WindSpeedKmh  int    `json:"windSpeed"`
	WindDirection int    `json:"windDirection"`
	Cloudiness    int    `json:"cloudiness"`
	VisibilityKm  int    `json:"visibility"`
	Sunrise       int64  `json:"sunrise"`
	Sunset        int64  `json:"sunset"`
	Pressure      int    `json:"pressure"`
}

// ForecastEntry is one 3-hour forecast slot. Precipitation here is the
// probability of precipitation as a percent, unlike the Observation
// field which derives from measured rainfall.
type ForecastEntry struct {
	Time          int64  `json:"time"`
	Temperature   int    `json:"temperature"`
	Condition     string `json:"condition"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	Precipitation int    `json:"precipitation"`
	WindSpeedKmh  int    `json:"windSpeed"`
}

type conditionPayload struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainPayload struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
}

type windPayload struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

type cloudsPayload struct {
	All int `json:"all"`
}

type currentPayload struct {
	Weather    []conditionPayload `json:"weather"`
	Main       mainPayload        `json:"main"`
	Wind       windPayload        `json:"wind"`
	Rain       map[string]float64 `json:"rain"`
	Clouds     cloudsPayload      `json:"clouds"`
	Visibility int                `json:"visibility"`
	Sys        struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

type forecastItemPayload struct {
	Dt      int64              `json:"dt"`
	Main    mainPayload        `json:"main"`
	Weather []conditionPayload `json:"weather"`
	Wind    windPayload        `json:"wind"`
	Pop     float64            `json:"pop"`
}

type forecastPayload struct {
	List []forecastItemPayload `json:"list"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Client calls the weather endpoint. Construct with NewClient.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewClient builds a weather client from configuration.
func NewClient(cfg config.WeatherConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Current returns the conditions at the coordinates.
func (c *Client) Current(ctx context.Context, lat, lng float64) (*Observation, error) {
	var payload currentPayload
	if err := c.get(ctx, "/weather", lat, lng, nil, &payload); err != nil {
		return nil, err
	}

	cond := firstCondition(payload.Weather)
	return &Observation{
		Temperature:   roundInt(payload.Main.Temp),
		FeelsLike:     roundInt(payload.Main.FeelsLike),
		Condition:     cond.Main,
		Description:   cond.Description,
		Icon:          cond.Icon,
		Precipitation: rainfallPercent(payload.Rain),
		Humidity:      payload.Main.Humidity,
		WindSpeedKmh:  kmh(payload.Wind.Speed),
		WindDirection: payload.Wind.Deg,
		Cloudiness:    payload.Clouds.All,
		VisibilityKm:  roundInt(float64(payload.Visibility) / 1000),
		Sunrise:       payload.Sys.Sunrise,
		Sunset:        payload.Sys.Sunset,
		Pressure:      payload.Main.Pressure,
	}, nil
}

// Forecast returns the next 24 hours of conditions in 3-hour slots.
func (c *Client) Forecast(ctx context.Context, lat, lng float64) ([]ForecastEntry, error) {
	extra := url.Values{}
	extra.Set("cnt", strconv.Itoa(forecastCount))

	var payload forecastPayload
	if err := c.get(ctx, "/forecast", lat, lng, extra, &payload); err != nil {
		return nil, err
	}

	entries := make([]ForecastEntry, 0, len(payload.List))
	for _, item := range payload.List {
		cond := firstCondition(item.Weather)
		entries = append(entries, ForecastEntry{
			Time:          item.Dt,
			Temperature:   roundInt(item.Main.Temp),
			Condition:     cond.Main,
			Description:   cond.Description,
			Icon:          cond.Icon,
			Precipitation: roundInt(item.Pop * 100),
			WindSpeedKmh:  kmh(item.Wind.Speed),
		})
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, path string, lat, lng float64, extra url.Values, out interface{}) error {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}

	reqURL := c.endpoint + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrBadAPIKey
	}
	if resp.StatusCode != http.StatusOK {
		var failure errorPayload
		if derr := json.NewDecoder(resp.Body).Decode(&failure); derr == nil && failure.Message != "" {
			return fmt.Errorf("weather API error: %d - %s", resp.StatusCode, failure.Message)
		}
		return fmt.Errorf("weather API error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logging.Debug().Err(err).Str("path", path).Msg("Weather response undecodable")
		return fmt.Errorf("decode weather response: %w", err)
	}
	return nil
}

func firstCondition(conditions []conditionPayload) conditionPayload {
	if len(conditions) == 0 {
		return conditionPayload{}
	}
	return conditions[0]
}

// rainfallPercent scales the last hour's measured rainfall in mm to the
// 0-100 range the UI renders as a precipitation gauge.
func rainfallPercent(rain map[string]float64) int {
	if rain == nil {
		return 0
	}
	return roundInt(rain["1h"] * 100)
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func kmh(metersPerSecond float64) int {
	return roundInt(metersPerSecond * 3.6)
}

// Recommendation turns an observation into cleanup-day advice. Ordered
// from most to least disruptive condition; the first match wins.
func Recommendation(o *Observation) string {
	if o == nil {
		return "Check weather conditions before heading out."
	}

	switch {
	case o.Precipitation > 60:
		return "High chance of rain. Bring waterproof gear and rain protection!"
	case o.Temperature > 35:
		return "Very hot! Bring extra water, sunscreen, and take frequent breaks."
	case o.Temperature > 30:
		return "Hot weather. Stay hydrated and use sun protection!"
	case o.Temperature < 15:
		return "Cool weather. Bring warm layers and dress appropriately."
	case o.WindSpeedKmh > 30:
		return "Windy conditions. Secure loose items and be cautious."
	case o.Condition == "Clear" && o.Temperature >= 20 && o.Temperature <= 30:
		return "Perfect weather for outdoor activities! Enjoy!"
	default:
		return "Good weather conditions. Have a great time!"
	}
}

// Suitable reports whether conditions allow cleanup work at all: a high
// rain chance or extreme heat make a session not worth scheduling.
func Suitable(o *Observation) bool {
	if o == nil {
		return false
	}
	return o.Precipitation <= 60 && o.Temperature <= 45
}
