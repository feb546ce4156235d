// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

// Package datetime normalizes the date inputs and outputs that flow
// through the crawl pipeline: a coarse time_filter token into an
// absolute [start,end] instant pair, and heterogeneous post-date
// strings (absolute or relative, English or Korean) into a single
// instant.
package datetime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Window is an absolute, inclusive instant range.
type Window struct {
	Start time.Time
	End   time.Time
}

// TimeFilter values recognized by ResolveWindow.
const (
	FilterHour   = "hour"
	FilterDay    = "day"
	FilterWeek   = "week"
	FilterMonth  = "month"
	FilterYear   = "year"
	FilterAll    = "all"
	FilterCustom = "custom"
)

// ResolveWindow maps a coarse time_filter onto an absolute [start, end]
// pair relative to now. "custom" requires explicit dates and is handled
// by the caller (dispatch validation, §4.6); "all" returns an unbounded
// pair.
func ResolveWindow(timeFilter string, now time.Time) (Window, error) {
	switch timeFilter {
	case FilterHour:
		return Window{Start: now.Add(-time.Hour), End: now}, nil
	case FilterDay:
		return Window{Start: now.AddDate(0, 0, -1), End: now}, nil
	case FilterWeek:
		return Window{Start: now.AddDate(0, 0, -7), End: now}, nil
	case FilterMonth:
		return Window{Start: now.AddDate(0, -1, 0), End: now}, nil
	case FilterYear:
		return Window{Start: now.AddDate(-1, 0, 0), End: now}, nil
	case FilterAll:
		return Window{Start: time.Time{}, End: now.AddDate(100, 0, 0)}, nil
	default:
		return Window{}, fmt.Errorf("datetime: unresolvable time_filter %q (expected custom to carry explicit dates)", timeFilter)
	}
}

var absoluteFormats = []string{
	"2006.01.02",
	"2006-01-02",
	"2006/01/02",
}

// thisYearFormats are the 2-component "this-year" variants (MM.DD etc.)
// that imply the current year.
var thisYearFormats = []string{
	"01.02",
	"01-02",
	"01/02",
}

var relativeRE = regexp.MustCompile(`(?i)^\s*(\d+)\s*(minute|minutes|min|hour|hours|day|days|week|weeks|month|months|분|시간|일|주|개월|달)\s*(ago|전)?\s*$`)

// Parse resolves a source-supplied date string — absolute or relative,
// English or Korean — to an instant. The second return is false when
// the string could not be parsed under any supported grammar.
func Parse(raw string, now time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range absoluteFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	for _, layout := range thisYearFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}

	if m := relativeRE.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		unit := strings.ToLower(m[2])
		return relativeInstant(now, n, unit), true
	}

	return time.Time{}, false
}

// relativeInstant resolves "N <unit> ago" (English or Korean unit token)
// down to month granularity, matching the source's coarsest supported
// relative grain.
func relativeInstant(now time.Time, n int, unit string) time.Time {
	switch unit {
	case "minute", "minutes", "min", "분":
		return now.Add(-time.Duration(n) * time.Minute)
	case "hour", "hours", "시간":
		return now.Add(-time.Duration(n) * time.Hour)
	case "day", "days", "일":
		return now.AddDate(0, 0, -n)
	case "week", "weeks", "주":
		return now.AddDate(0, 0, -7*n)
	case "month", "months", "개월", "달":
		return now.AddDate(0, -n, 0)
	default:
		return now
	}
}

// Format renders an instant in the canonical absolute form used when
// round-tripping through Parse (§8 round-trip property).
func Format(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
