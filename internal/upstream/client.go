// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

/*
client.go - Core Upstream Platform API Client

This file provides the core Client struct and HTTP communication layer for
the cleanup platform's REST API.

Client Features:
  - HTTP client with configurable timeout
  - Bearer token pass-through for authenticated endpoints
  - Automatic HTTP 429 rate limit handling with exponential backoff
  - JSON request/response handling via goccy/go-json
  - Multipart uploads for image analysis endpoints
  - Context support for cancellation and timeouts

Resilience Mechanisms:
  - Rate Limiting: Exponential backoff (base delay doubling per attempt)
    on HTTP 429, honoring Retry-After when the platform sends one
  - Retries: bounded by config (default 5 attempts)
  - Context: all methods accept context for cancellation

Related Files:
  - endpoints.go: typed methods for every platform endpoint
  - breaker.go: circuit breaker wrapper used by the services layer
  - payloads.go: raw wire types
*/
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/danakm/tidesweep/internal/config"
	"github.com/danakm/tidesweep/internal/metrics"
)

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics, preventing unbounded allocation on large error pages.
const maxErrorBodySize = 64 * 1024

// APIError is a non-2xx platform response. Detail carries the platform's
// error envelope when one was decodable.
type APIError struct {
	Endpoint   string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s returned %d: %s", e.Endpoint, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s returned %d", e.Endpoint, e.StatusCode)
}

// Client handles communication with the cleanup platform HTTP API.
//
// Thread Safety: safe for concurrent use; each request builds its own
// http.Request.
type Client struct {
	baseURL        string
	client         *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a platform API client from the upstream configuration.
// The base URL follows the configured resolution rule (explicit URL, then
// hostname-derived, then localhost).
func NewClient(cfg config.UpstreamConfig) *Client {
	return &Client{
		baseURL: cfg.ResolveBaseURL(),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries:     cfg.RetryAttempts,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
}

// BaseURL returns the resolved platform base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func readBodyForError(r io.Reader) []byte {
	limited := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// do performs req with automatic rate-limit handling: on HTTP 429 the
// request is retried with exponential backoff (base delay doubling each
// attempt), honoring a Retry-After header when present. The context is
// checked before each attempt and during backoff waits.
//
// buildReq is called per attempt because a request body reader can only
// be consumed once.
func (c *Client) do(ctx context.Context, buildReq func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildReq()
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, parseErr := strconv.Atoi(retryAfter); parseErr == nil {
				delay = time.Duration(seconds) * time.Second
			}
		}
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// getJSON performs a GET against path (with optional query parameters) and
// decodes the JSON response into result.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, token string, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	return c.request(ctx, path, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, err
		}
		setAuth(req, token)
		return req, nil
	}, result)
}

// postJSON performs a POST (or the given method) with a JSON body and
// decodes the JSON response into result.
func (c *Client) sendJSON(ctx context.Context, method, path string, body interface{}, token string, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", path, err)
	}

	return c.request(ctx, path, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		setAuth(req, token)
		return req, nil
	}, result)
}

// MultipartFields carries the optional form fields accepted by the image
// analysis endpoints alongside the file part.
type MultipartFields struct {
	Location *LocationPayload
	Notes    string
	UserID   string
	Extra    map[string]string
}

// postMultipart uploads image under the "file" form field plus any extra
// fields, then decodes the JSON response into result. The multipart body
// is assembled up front so rate-limit retries can resend it.
func (c *Client) postMultipart(ctx context.Context, path, filename string, image []byte, fields MultipartFields, result interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}

	if fields.Location != nil {
		loc, err := json.Marshal(fields.Location)
		if err != nil {
			return fmt.Errorf("marshal location field: %w", err)
		}
		if err := writer.WriteField("location", string(loc)); err != nil {
			return fmt.Errorf("write location field: %w", err)
		}
	}
	if fields.Notes != "" {
		if err := writer.WriteField("user_notes", fields.Notes); err != nil {
			return fmt.Errorf("write user_notes field: %w", err)
		}
	}
	if fields.UserID != "" {
		if err := writer.WriteField("user_id", fields.UserID); err != nil {
			return fmt.Errorf("write user_id field: %w", err)
		}
	}
	for name, value := range fields.Extra {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write %s field: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}
	body := buf.Bytes()

	return c.request(ctx, path, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req, nil
	}, result)
}

// request runs one logical API call: rate-limited request, status check
// with error-envelope extraction, JSON decode, and upstream metrics.
func (c *Client) request(ctx context.Context, endpoint string, buildReq func() (*http.Request, error), result interface{}) error {
	start := time.Now()

	resp, err := c.do(ctx, buildReq)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, 0, time.Since(start))
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	metrics.RecordUpstreamRequest(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := readBodyForError(resp.Body)
		apiErr := &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		var envelope ErrorResponse
		if json.Unmarshal(body, &envelope) == nil && envelope.Detail != "" {
			apiErr.Detail = envelope.Detail
		} else {
			apiErr.Detail = string(body)
		}
		return apiErr
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func setAuth(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
