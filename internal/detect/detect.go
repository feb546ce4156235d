// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

// Package detect identifies which adapter a caller-supplied input
// (a URL, a bare board name, or a free-form keyword) belongs to, and
// extracts the site-specific board identifier from it (§4.5).
package detect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/tomtom215/boardcrawl/internal/cache"
	"github.com/tomtom215/boardcrawl/internal/metrics"
)

// Site is one of the fixed set of adapter identities.
type Site string

const (
	SiteReddit    Site = "reddit"
	SiteDCInside  Site = "dcinside"
	SiteBlind     Site = "blind"
	SiteBBC       Site = "bbc"
	Site4chan     Site = "4chan"
	SiteX         Site = "x"
	SiteLemmy     Site = "lemmy"
	SiteUniversal Site = "universal"
)

// domainSuffixes maps known hosts to their site, checked by suffix so
// that subdomains (old.reddit.com, www.teamblind.com, ...) also match.
var domainSuffixes = map[string]Site{
	"reddit.com":          SiteReddit,
	"redd.it":             SiteReddit,
	"dcinside.com":        SiteDCInside,
	"teamblind.com":       SiteBlind,
	"bbc.com":             SiteBBC,
	"bbc.co.uk":           SiteBBC,
	"boards.4chan.org":    Site4chan,
	"boards.4channel.org": Site4chan,
	"x.com":               SiteX,
	"twitter.com":         SiteX,
}

// curatedLemmyInstances is a seed list of well-known Lemmy instances,
// checked before falling back to the dynamic probe.
var curatedLemmyInstances = map[string]bool{
	"lemmy.world":     true,
	"lemmy.ml":        true,
	"beehaw.org":      true,
	"sh.itjust.works": true,
	"lemm.ee":         true,
}

// keywordSite pairs a matcher token with the site it implies.
type keywordSite struct {
	token string
	site  Site
}

var keywordTable = []keywordSite{
	{"디시", SiteDCInside}, {"dcinside", SiteDCInside}, {"갤러리", SiteDCInside},
	{"블라인드", SiteBlind}, {"teamblind", SiteBlind},
	{"레미", SiteLemmy}, {"lemmy", SiteLemmy},
	{"subreddit", SiteReddit}, {"reddit", SiteReddit},
	{"4chan", Site4chan}, {"4channel", Site4chan},
	{"bbc", SiteBBC},
	{"twitter", SiteX},
}

var (
	redditPathRE   = regexp.MustCompile(`(?i)/r/([A-Za-z0-9_]+)`)
	idParamRE      = regexp.MustCompile(`(?i)[?&]id=([^&]+)`)
	lemmyCommRE    = regexp.MustCompile(`(?i)/c/([A-Za-z0-9_]+)(?:@([A-Za-z0-9.\-]+))?`)
	fourChanPathRE = regexp.MustCompile(`(?i)/([a-z0-9]{1,4})/(?:catalog|thread)`)
)

// LemmyProber performs the dynamic Lemmy discovery probe and persists
// its verdicts so a restart doesn't re-probe every unknown domain.
type LemmyProber interface {
	IsLemmy(ctx context.Context, domain string) (bool, error)
}

// Detector implements site detection and board identifier extraction.
// It is safe for concurrent use.
type Detector struct {
	keywords *cache.PatternMatcher
	prober   LemmyProber
	client   *http.Client
}

// New builds a Detector. prober may be nil, in which case unknown
// domains that aren't in the curated Lemmy list are probed live on
// every lookup, with no verdict cache.
func New(prober LemmyProber) *Detector {
	patterns := make(map[string]any, len(keywordTable))
	for _, ks := range keywordTable {
		patterns[ks.token] = ks.site
	}
	return &Detector{
		keywords: cache.NewPatternMatcher(patterns),
		prober:   prober,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Detect resolves input to a Site following the precedence order in
// §4.5: URL domain-suffix match, dynamic Lemmy probe, keyword match,
// universal fallback.
func (d *Detector) Detect(ctx context.Context, input string) Site {
	trimmed := strings.TrimSpace(input)

	if site, ok := d.detectByURL(ctx, trimmed); ok {
		metrics.DetectionRequestsTotal.WithLabelValues(string(site)).Inc()
		return site
	}

	if m, ok := d.keywords.MatchFirst(trimmed); ok {
		site := m.Data.(Site)
		metrics.DetectionRequestsTotal.WithLabelValues(string(site)).Inc()
		return site
	}

	metrics.DetectionRequestsTotal.WithLabelValues(string(SiteUniversal)).Inc()
	return SiteUniversal
}

func (d *Detector) detectByURL(ctx context.Context, input string) (Site, bool) {
	u, err := url.Parse(input)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())

	for suffix, site := range domainSuffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return site, true
		}
	}

	if curatedLemmyInstances[host] {
		return SiteLemmy, true
	}

	start := time.Now()
	isLemmy, err := d.probeLemmy(ctx, host)
	metrics.LemmyProbeTotal.WithLabelValues(probeResultLabel(isLemmy, err)).Inc()
	metrics.DetectionDuration.Observe(time.Since(start).Seconds())
	if err == nil && isLemmy {
		return SiteLemmy, true
	}
	return "", false
}

func probeResultLabel(isLemmy bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case isLemmy:
		return "confirmed"
	default:
		return "rejected"
	}
}

func (d *Detector) probeLemmy(ctx context.Context, domain string) (bool, error) {
	if d.prober != nil {
		return d.prober.IsLemmy(ctx, domain)
	}
	return defaultLemmyProbe(ctx, d.client, domain)
}

func defaultLemmyProbe(ctx context.Context, client *http.Client, domain string) (bool, error) {
	reqURL := fmt.Sprintf("https://%s/api/v3/site", domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// ExtractBoardIdentifier pulls the site-specific board/community/board
// identifier out of input, per the regex-driven rules in §4.5. When no
// site-specific pattern matches, the raw input is returned unchanged.
func ExtractBoardIdentifier(input string, site Site) string {
	trimmed := strings.TrimSpace(input)

	switch site {
	case SiteReddit:
		if m := redditPathRE.FindStringSubmatch(trimmed); m != nil {
			return m[1]
		}
	case SiteDCInside:
		if m := idParamRE.FindStringSubmatch(trimmed); m != nil {
			return m[1]
		}
	case SiteLemmy:
		if m := lemmyCommRE.FindStringSubmatch(trimmed); m != nil {
			community := m[1]
			instance := m[2]
			if instance == "" {
				if u, err := url.Parse(trimmed); err == nil && u.Hostname() != "" {
					instance = u.Hostname()
				}
			}
			if instance != "" {
				return community + "@" + instance
			}
			return community
		}
	case Site4chan:
		if m := fourChanPathRE.FindStringSubmatch(trimmed); m != nil {
			return m[1]
		}
	}

	return trimmed
}
