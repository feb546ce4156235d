// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

// Package adapters implements the per-site fetch logic (C3, §4.3) on
// top of the shared crawl-pipeline engine. Every adapter exposes a
// dispatch.AdapterFunc built from crawl.Run plus a FetchPageFunc
// closure that knows how to talk to one source.
package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/boardcrawl/internal/datetime"
	"github.com/tomtom215/boardcrawl/internal/metrics"
)

// pageFetchTimeout bounds a single adapter HTTP call (SPEC_FULL §5).
const pageFetchTimeout = 15 * time.Second

// defaultScrapeHeaders is the User-Agent sent by HTML-scraping
// adapters; sites without an API key still expect a browser-shaped UA.
var defaultScrapeHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (compatible; boardcrawl/1.0)",
}

// fallbackDateParse resolves a source-supplied date string through the
// shared datetime grammar (absolute/relative, English+Korean).
func fallbackDateParse(raw string) (time.Time, bool) {
	return datetime.Parse(raw, time.Now())
}

// datetimeFormatUTC renders an already-parsed instant in the canonical
// form Post Records carry in created_at.
func datetimeFormatUTC(t time.Time) string {
	return datetime.Format(t)
}

// breakers holds one circuit breaker per site, guarding every adapter's
// outbound HTTP calls so a down or rate-limiting source fails fast
// across concurrent sessions (SPEC_FULL §5).
var breakers = map[string]*gobreaker.CircuitBreaker[*http.Response]{}

func breakerFor(site string) *gobreaker.CircuitBreaker[*http.Response] {
	if cb, ok := breakers[site]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        site,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	breakers[site] = cb
	return cb
}

// doRequest executes req through the per-site circuit breaker and
// records fetch-duration/error metrics.
func doRequest(client *http.Client, site, operation string, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := breakerFor(site).Execute(func() (*http.Response, error) {
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, fmt.Errorf("adapters: %s returned status %d", site, resp.StatusCode)
		}
		return resp, nil
	})
	metrics.RecordAdapterFetch(site, operation, time.Since(start), err)
	return resp, err
}

// newGetRequest builds a context-scoped GET request carrying headers;
// the caller executes it and closes the response body.
func newGetRequest(ctx context.Context, url string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}
