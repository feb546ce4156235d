// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package postrecord

import "time"

// Reason tags returned by Predicate.Check, used only for early-stop
// heuristics (never surfaced on the wire).
const (
	ReasonNone      = ""
	ReasonViews     = "views"
	ReasonLikes     = "likes"
	ReasonComments  = "comments"
	ReasonDateParse = "date_parse"
	ReasonDateRange = "date_range"
)

// DateParser resolves a source-supplied CreatedAt string to an instant.
// Satisfied by datetime.Parse; kept as a function type here to avoid a
// package dependency cycle between postrecord and datetime.
type DateParser func(raw string) (time.Time, bool)

// Predicate is the filter applied to every Post Record by the
// crawl-pipeline engine: minimum engagement counts plus an optional date
// range.
type Predicate struct {
	MinViews    int
	MinLikes    int
	MinComments int

	HasDateRange bool
	StartDate    time.Time
	EndDate      time.Time

	ParseDate DateParser
}

// HasFilters reports whether this predicate constrains anything beyond
// the trivial "accept everything" case.
func (p Predicate) HasFilters() bool {
	return p.MinViews > 0 || p.MinLikes > 0 || p.MinComments > 0 || p.HasDateRange
}

// Check evaluates the predicate against a post, returning (pass,
// reason). The date check requires a parseable CreatedAt; unparseable
// dates fail only when a date range is active.
func (p Predicate) Check(r Record) (bool, string) {
	if r.Views < p.MinViews {
		return false, ReasonViews
	}
	if r.Score < p.MinLikes {
		return false, ReasonLikes
	}
	if r.Comments < p.MinComments {
		return false, ReasonComments
	}
	if !p.HasDateRange {
		return true, ReasonNone
	}

	parse := p.ParseDate
	if parse == nil {
		return false, ReasonDateParse
	}
	t, ok := parse(r.CreatedAt)
	if !ok {
		return false, ReasonDateParse
	}
	if t.Before(p.StartDate) || t.After(p.EndDate) {
		return false, ReasonDateRange
	}
	return true, ReasonNone
}

// ShouldStop implements the early-stop heuristic (§4.1): date-filtered
// crawls walk in reverse chronology, so a long run of misses means the
// crawl has passed the window; unfiltered crawls tolerate more noise.
func ShouldStop(consecutiveFails int, hasDateFilter bool) bool {
	if hasDateFilter {
		return consecutiveFails >= 10
	}
	return consecutiveFails >= 20
}
