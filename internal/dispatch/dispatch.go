// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

// Package dispatch holds the site registry and the parameter
// preparation pipeline that turns a caller's raw request into the
// exact argument set a site adapter expects (§4.6).
package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/boardcrawl/internal/datetime"
	"github.com/tomtom215/boardcrawl/internal/detect"
	"github.com/tomtom215/boardcrawl/internal/logging"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
)

// ProgressUpdate is emitted by an adapter (or the crawl engine driving
// it) after each page fetch.
type ProgressUpdate struct {
	Progress float64
	Page     int
	MaxPages int
	Matched  int
}

// ProgressSink receives progress updates; nil is a valid no-op sink.
type ProgressSink func(ProgressUpdate)

// AdapterFunc is the contract every site adapter satisfies: fetch the
// identified board, honoring ctx cancellation, and return Post Records
// in source order (§4.3).
type AdapterFunc func(ctx context.Context, boardIdentifier string, opts map[string]string, progress ProgressSink) ([]postrecord.Record, error)

// Entry is one row of the immutable site registry (§3 Site Registry).
type Entry struct {
	Adapter     AdapterFunc
	TargetParam string
	Whitelist   map[string]bool
	Aliases     map[string]string
}

// Registry is the process-wide, read-only table of known sites. Built
// once at startup and never mutated afterward.
type Registry struct {
	entries map[detect.Site]Entry
}

// NewRegistry returns an empty Registry. Call Register for each site
// adapter before serving requests.
func NewRegistry() *Registry {
	return &Registry{entries: map[detect.Site]Entry{}}
}

// Register adds or replaces a site's registry entry.
func (r *Registry) Register(site detect.Site, e Entry) {
	r.entries[site] = e
}

// genericAliases apply to every site before the per-site alias table;
// target_param mapping is resolved by the caller since it varies by
// entry.
var genericAliases = map[string]string{
	"start": "start_index",
	"end":   "end_index",
}

// ErrUnknownSite is returned by Dispatch when no registry entry exists
// for the requested site.
type ErrUnknownSite struct{ Site detect.Site }

func (e ErrUnknownSite) Error() string {
	return fmt.Sprintf("dispatch: no adapter registered for site %q", e.Site)
}

// Prepare builds the final parameter set for site from a caller's raw
// options, applying whitelist filtering, aliasing, and per-site
// transforms (§4.6 steps 1-6). It does not invoke the adapter.
func (r *Registry) Prepare(site detect.Site, boardIdentifier string, raw map[string]string) (Entry, map[string]string, error) {
	entry, ok := r.entries[site]
	if !ok {
		return Entry{}, nil, ErrUnknownSite{Site: site}
	}

	params := map[string]string{entry.TargetParam: boardIdentifier}

	for k, v := range raw {
		key := resolveAlias(k, entry)
		if key == entry.TargetParam {
			params[entry.TargetParam] = v
			continue
		}
		if entry.Whitelist[key] {
			params[key] = v
		} else {
			logging.Warn().Str("site", string(site)).Str("param", k).Msg("dropping parameter not in adapter whitelist")
		}
	}

	applySiteTransforms(site, entry, params)

	return entry, params, nil
}

func resolveAlias(key string, entry Entry) string {
	if key == "board" || key == "input" || key == "board_identifier" {
		return entry.TargetParam
	}
	if alias, ok := genericAliases[key]; ok {
		return alias
	}
	if alias, ok := entry.Aliases[key]; ok {
		return alias
	}
	return key
}

var redditSortAliases = map[string]string{
	"popular":   "hot",
	"recommend": "top",
	"recent":    "new",
	"comments":  "top",
}

func applySiteTransforms(site detect.Site, entry Entry, params map[string]string) {
	switch site {
	case detect.SiteReddit:
		if sort, ok := params["sort"]; ok {
			if alias, ok := redditSortAliases[strings.ToLower(sort)]; ok {
				params["sort"] = alias
			}
		}
		params[entry.TargetParam] = strings.TrimPrefix(params[entry.TargetParam], "/r/")
	case detect.SiteLemmy:
		id := params[entry.TargetParam]
		if id != "" && !strings.Contains(id, "@") && !strings.Contains(id, "://") {
			params[entry.TargetParam] = id + "@lemmy.world"
		}
	case detect.SiteBBC, detect.SiteUniversal:
		// empty board_name is valid for URL-driven adapters; no transform needed.
	}
}

// Dispatch prepares parameters for site and invokes its adapter.
func (r *Registry) Dispatch(ctx context.Context, site detect.Site, boardIdentifier string, raw map[string]string, progress ProgressSink) ([]postrecord.Record, error) {
	entry, params, err := r.Prepare(site, boardIdentifier, raw)
	if err != nil {
		return nil, err
	}
	return entry.Adapter(ctx, params[entry.TargetParam], params, progress)
}

const (
	maxRangeSpan     = 100
	maxDateRangeDays = 365
)

// Validate checks the pre-dispatch invariants in §4.6: start_index ≥ 1,
// end_index ≥ start_index, end_index − start_index ≤ 100, min_* ≥ 0,
// dates parse, and the date range is ≤ 365 days.
func Validate(params map[string]string) error {
	startIndex, err := intParam(params, "start_index", 1)
	if err != nil {
		return err
	}
	if startIndex < 1 {
		return fmt.Errorf("dispatch: start_index must be >= 1, got %d", startIndex)
	}

	endIndex, err := intParam(params, "end_index", startIndex)
	if err != nil {
		return err
	}
	if endIndex < startIndex {
		return fmt.Errorf("dispatch: end_index (%d) must be >= start_index (%d)", endIndex, startIndex)
	}
	if endIndex-startIndex > maxRangeSpan {
		return fmt.Errorf("dispatch: requested range %d exceeds the maximum of %d", endIndex-startIndex, maxRangeSpan)
	}

	for _, key := range []string{"min_views", "min_likes", "min_comments"} {
		if v, err := intParam(params, key, 0); err != nil {
			return err
		} else if v < 0 {
			return fmt.Errorf("dispatch: %s must be >= 0, got %d", key, v)
		}
	}

	startDate, hasStart := params["start_date"]
	endDate, hasEnd := params["end_date"]
	if !hasStart && !hasEnd {
		return nil
	}

	now := time.Now()
	start, ok := datetime.Parse(startDate, now)
	if !ok {
		return fmt.Errorf("dispatch: start_date %q did not parse", startDate)
	}
	end, ok := datetime.Parse(endDate, now)
	if !ok {
		return fmt.Errorf("dispatch: end_date %q did not parse", endDate)
	}
	if end.Before(start) {
		return fmt.Errorf("dispatch: end_date precedes start_date")
	}
	if end.Sub(start) > maxDateRangeDays*24*time.Hour {
		return fmt.Errorf("dispatch: date range exceeds %d days", maxDateRangeDays)
	}
	return nil
}

func intParam(params map[string]string, key string, def int) (int, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("dispatch: %s must be an integer, got %q", key, raw)
	}
	return v, nil
}
