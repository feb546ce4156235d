// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package adapters

import (
	"net/http"
	"net/http/httptest"
)

// redirectingClient rewrites every outbound request's scheme/host to
// point at srv, so adapter code that hardcodes a production URL can
// still be exercised against a local fixture in tests.
func redirectingClient(srv *httptest.Server) *http.Client {
	target, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = target.URL.Scheme
			req.URL.Host = target.URL.Host
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
