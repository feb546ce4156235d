// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

// Package httpapi exposes the request/response HTTP surface around the
// Session Controller: the websocket upgrade endpoint, out-of-band crawl
// cancellation, board autocomplete, completed media archive downloads,
// health checks, and metrics/docs (§6).
package httpapi

import "time"

// Response is the standard envelope every handler in this package
// replies with.
type Response struct {
	Status   string    `json:"status"`
	Data     any       `json:"data,omitempty"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata carries response-level observability fields.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError is the structured error body of a failed response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthStatus is the payload of /api/v1/health/{live,ready}.
type HealthStatus struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	Uptime          string `json:"uptime"`
	DCInsideLoaded  bool   `json:"dcinside_loaded"`
	BlindLoaded     bool   `json:"blind_loaded"`
	ActiveSessions  int    `json:"active_sessions,omitempty"`
}

// AutocompleteResponse is the payload of /api/v1/boards/autocomplete.
type AutocompleteResponse struct {
	Site    string   `json:"site"`
	Prefix  string   `json:"prefix"`
	Results []string `json:"results"`
}
