// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

// Package session implements the Session Controller (C9): one
// full-duplex websocket session per client request, driving site
// detection, dispatch, the crawl-pipeline engine, translation, and
// optional media packaging, and streaming progress frames (§4.9).
package session

import "github.com/tomtom215/boardcrawl/internal/postrecord"

// Config is the single client->server frame carrying crawl options and
// the translation/media toggles (§6).
type Config struct {
	Input string `json:"input"`

	Sort  string `json:"sort,omitempty"`
	Start int    `json:"start,omitempty"`
	End   int    `json:"end,omitempty"`

	MinViews    int `json:"min_views,omitempty"`
	MinLikes    int `json:"min_likes,omitempty"`
	MinComments int `json:"min_comments,omitempty"`

	TimeFilter string `json:"time_filter,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`

	Translate        bool     `json:"translate,omitempty"`
	TargetLanguages  []string `json:"target_languages,omitempty"`
	SkipTranslation  bool     `json:"skip_translation,omitempty"`
	Language         string   `json:"language,omitempty"`
	IncludeMedia     bool     `json:"include_media,omitempty"`
}

// step values, §6: "step ∈ {initializing, detecting_site, connecting,
// collecting, filtering, processing, translating, finalizing, complete}".
const (
	StepInitializing  = "initializing"
	StepDetectingSite = "detecting_site"
	StepConnecting    = "connecting"
	StepCollecting    = "collecting"
	StepFiltering     = "filtering"
	StepProcessing    = "processing"
	StepTranslating   = "translating"
	StepPackaging     = "packaging"
	StepFinalizing    = "finalizing"
	StepComplete      = "complete"
)

// progressFrame is a server->client frame reporting crawl progress.
type progressFrame struct {
	Progress float64           `json:"progress"`
	Step     string            `json:"step"`
	Site     string            `json:"site,omitempty"`
	Board    string            `json:"board,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// cancelFrame is the terminal frame sent when a session observes its
// cancellation flag set.
type cancelFrame struct {
	Cancelled bool `json:"cancelled"`
}

// errorFrame is the terminal frame sent on an unrecoverable crawl
// failure (§7 "fail the crawl" policy).
type errorFrame struct {
	ErrorCode   string `json:"error_code"`
	ErrorDetail string `json:"error_detail"`
	ErrorReason string `json:"error_reason"`
	Site        string `json:"site,omitempty"`
}

// doneFrame is the terminal frame sent on successful completion.
type doneFrame struct {
	Done         bool               `json:"done"`
	Data         []postrecord.Record `json:"data"`
	DetectedSite string             `json:"detected_site"`
	Summary      summary            `json:"summary"`
}

// summary accompanies the done frame with a short result digest.
type summary struct {
	PostCount    int    `json:"post_count"`
	Site         string `json:"site"`
	Board        string `json:"board"`
	MediaArchive string `json:"media_archive,omitempty"`
}

// Error taxonomy codes carried on the wire (§7).
const (
	ErrInvalidURL        = "invalid_url"
	ErrSiteNotFound      = "site_not_found"
	ErrNoPostsFound      = "no_posts_found"
	ErrConnectionFailed  = "connection_failed"
	ErrTimeout           = "timeout"
	ErrRateLimited       = "rate_limited"
	ErrCrawlingError     = "crawling_error"
	ErrTranslationFailed = "translation_failed"
	ErrInvalidParameters = "invalid_parameters"
)
