// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package main

import (
	"github.com/tomtom215/boardcrawl/internal/adapters"
	"github.com/tomtom215/boardcrawl/internal/boards"
	"github.com/tomtom215/boardcrawl/internal/config"
	"github.com/tomtom215/boardcrawl/internal/detect"
	"github.com/tomtom215/boardcrawl/internal/dispatch"
)

// commonWhitelist is the filter/range parameter set every adapter's
// predicate and page-range logic understands (§4.6 step 4).
var commonWhitelist = map[string]bool{
	"start_index": true, "end_index": true,
	"min_views": true, "min_likes": true, "min_comments": true,
	"start_date": true, "end_date": true,
	"sort": true, "time_filter": true,
}

// registerAdapters builds the immutable site registry (§3 Site
// Registry), wiring every adapter this service ships to its registry
// entry: the parameter name an identified board is keyed under, the
// options a caller may pass through, and any site-specific aliases.
func registerAdapters(cfg *config.Config, resolver *boards.Resolver) *dispatch.Registry {
	registry := dispatch.NewRegistry()

	registry.Register(detect.SiteReddit, dispatch.Entry{
		Adapter: adapters.NewRedditAdapter(adapters.RedditConfig{
			ClientID:     cfg.Reddit.ClientID,
			ClientSecret: cfg.Reddit.ClientSecret,
			UserAgent:    cfg.Reddit.UserAgent,
		}),
		TargetParam: "subreddit",
		Whitelist:   commonWhitelist,
	})

	registry.Register(detect.SiteDCInside, dispatch.Entry{
		Adapter:     adapters.NewDCInsideAdapter(resolver),
		TargetParam: "gallery",
		Whitelist:   commonWhitelist,
	})

	registry.Register(detect.SiteBlind, dispatch.Entry{
		Adapter:     adapters.NewBlindAdapter(resolver),
		TargetParam: "topic",
		Whitelist:   commonWhitelist,
	})

	registry.Register(detect.SiteBBC, dispatch.Entry{
		Adapter:     adapters.NewBBCAdapter(),
		TargetParam: "board_name",
		Whitelist:   commonWhitelist,
	})

	registry.Register(detect.Site4chan, dispatch.Entry{
		Adapter:     adapters.NewFourChanAdapter(),
		TargetParam: "board",
		Whitelist:   commonWhitelist,
	})

	registry.Register(detect.SiteLemmy, dispatch.Entry{
		Adapter:     adapters.NewLemmyAdapter(),
		TargetParam: "community",
		Whitelist:   commonWhitelist,
	})

	registry.Register(detect.SiteX, dispatch.Entry{
		Adapter:     adapters.NewXAdapter(),
		TargetParam: "query",
		Whitelist:   commonWhitelist,
	})

	registry.Register(detect.SiteUniversal, dispatch.Entry{
		Adapter:     adapters.NewUniversalAdapter(),
		TargetParam: "url",
		Whitelist:   commonWhitelist,
	})

	return registry
}
