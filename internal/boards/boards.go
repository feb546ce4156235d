// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

// Package boards resolves human-supplied board/gallery/topic keywords to
// site-internal identifiers for sites whose board identifiers are
// opaque (DCInside galleries, Blind topics), using lookup tables loaded
// from disk at startup (§4.4).
package boards

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/boardcrawl/internal/cache"
	"github.com/tomtom215/boardcrawl/internal/logging"
	"github.com/tomtom215/boardcrawl/internal/metrics"
)

// GalleryKind distinguishes DCInside's two gallery URL schemes.
type GalleryKind string

const (
	KindRegular GalleryKind = "regular"
	KindMinor   GalleryKind = "minor"
)

// ErrNotFound is returned when a keyword resolves to nothing in a
// loaded table. Resolution never silently passes the raw input through.
var ErrNotFound = errors.New("boards: no matching entry")

// ErrTableNotLoaded is returned when the backing lookup table was not
// present on disk at startup. The affected adapter simply fails
// resolution; this is non-fatal to the rest of the service (§9).
var ErrTableNotLoaded = errors.New("boards: lookup table not loaded")

// DCInsideEntry is one row of the DCInside gallery lookup table.
type DCInsideEntry struct {
	ID   string      `json:"id"`
	Kind GalleryKind `json:"type"`
}

// dcinsideRawEntry mirrors the on-disk JSON shape before kind validation.
type dcinsideRawEntry struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Resolver holds the process-wide, read-only board lookup tables. It is
// safe for concurrent use once Load has returned; tables are never
// mutated afterward (§5 shared-resource policy).
type Resolver struct {
	dcinside     map[string]DCInsideEntry
	dcinsideByID map[string]string // id -> display name, for exact-id match
	dcinsideIdx  *cache.Trie

	blind     map[string]string
	blindByID map[string]string
	blindIdx  *cache.Trie

	dcinsideLoaded bool
	blindLoaded    bool
}

// NewResolver returns an empty Resolver. Call LoadDCInside/LoadBlind to
// populate it; a Resolver with no tables loaded fails every resolution
// with ErrTableNotLoaded, which callers surface as an adapter-disabling
// condition rather than a crash (§9).
func NewResolver() *Resolver {
	return &Resolver{
		dcinside:     map[string]DCInsideEntry{},
		dcinsideByID: map[string]string{},
		dcinsideIdx:  cache.NewTrie(),
		blind:        map[string]string{},
		blindByID:    map[string]string{},
		blindIdx:     cache.NewTrie(),
	}
}

// LoadDCInside reads the DCInside gallery lookup table from path.
// Absence of the file is tolerated: the resolver simply reports
// ErrTableNotLoaded for every subsequent DCInside lookup.
func (r *Resolver) LoadDCInside(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn().Str("path", path).Msg("dcinside lookup table not found, resolution disabled")
			return nil
		}
		return fmt.Errorf("boards: reading dcinside table: %w", err)
	}

	var entries map[string]dcinsideRawEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("boards: parsing dcinside table: %w", err)
	}

	for name, e := range entries {
		kind := KindRegular
		if strings.EqualFold(e.Type, "minor") {
			kind = KindMinor
		}
		entry := DCInsideEntry{ID: e.ID, Kind: kind}
		r.dcinside[strings.ToLower(name)] = entry
		r.dcinsideByID[e.ID] = name
		r.dcinsideIdx.InsertWithData(name, entry)
	}
	r.dcinsideLoaded = true
	metrics.BoardLookupTableSize.WithLabelValues("dcinside").Set(float64(len(entries)))
	return nil
}

// LoadBlind reads the Blind topic lookup table from path. Absence of
// the file is tolerated in the same way as LoadDCInside.
func (r *Resolver) LoadBlind(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn().Str("path", path).Msg("blind lookup table not found, resolution disabled")
			return nil
		}
		return fmt.Errorf("boards: reading blind table: %w", err)
	}

	var entries map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("boards: parsing blind table: %w", err)
	}

	for name, id := range entries {
		r.blind[strings.ToLower(name)] = id
		r.blindByID[id] = name
		r.blindIdx.InsertWithData(name, id)
	}
	r.blindLoaded = true
	metrics.BoardLookupTableSize.WithLabelValues("blind").Set(float64(len(entries)))
	return nil
}

// DCInsideLoaded reports whether the DCInside table was present at
// startup, used by the health-ready endpoint (SPEC_FULL §6).
func (r *Resolver) DCInsideLoaded() bool { return r.dcinsideLoaded }

// BlindLoaded reports whether the Blind table was present at startup.
func (r *Resolver) BlindLoaded() bool { return r.blindLoaded }

// ResolveDCInside resolves a keyword to a DCInside gallery entry.
// Resolution order: exact-id, exact-name (case-folded), shortest
// substring match, with minor galleries searched before regular ones to
// prefer the more specific match.
func (r *Resolver) ResolveDCInside(keyword string) (DCInsideEntry, error) {
	if !r.dcinsideLoaded {
		return DCInsideEntry{}, ErrTableNotLoaded
	}

	if name, ok := r.dcinsideByID[keyword]; ok {
		metrics.RecordBoardLookup("dcinside", "hit")
		return r.dcinside[strings.ToLower(name)], nil
	}
	if e, ok := r.dcinside[strings.ToLower(keyword)]; ok {
		metrics.RecordBoardLookup("dcinside", "hit")
		return e, nil
	}

	needle := strings.ToLower(keyword)
	type candidate struct {
		name  string
		entry DCInsideEntry
	}
	var minorMatches, regularMatches []candidate
	for name, e := range r.dcinside {
		if !strings.Contains(name, needle) {
			continue
		}
		c := candidate{name: name, entry: e}
		if e.Kind == KindMinor {
			minorMatches = append(minorMatches, c)
		} else {
			regularMatches = append(regularMatches, c)
		}
	}
	for _, pool := range [][]candidate{minorMatches, regularMatches} {
		if len(pool) == 0 {
			continue
		}
		sort.Slice(pool, func(i, j int) bool { return len(pool[i].name) < len(pool[j].name) })
		metrics.RecordBoardLookup("dcinside", "ambiguous")
		return pool[0].entry, nil
	}

	metrics.RecordBoardLookup("dcinside", "miss")
	return DCInsideEntry{}, ErrNotFound
}

// ResolveBlind resolves a keyword to a Blind topic id, using the same
// exact-id / exact-name / shortest-substring ordering as DCInside
// (minus the minor/regular distinction, which Blind topics don't have).
func (r *Resolver) ResolveBlind(keyword string) (string, error) {
	if !r.blindLoaded {
		return "", ErrTableNotLoaded
	}

	if name, ok := r.blindByID[keyword]; ok {
		metrics.RecordBoardLookup("blind", "hit")
		return r.blind[strings.ToLower(name)], nil
	}
	if id, ok := r.blind[strings.ToLower(keyword)]; ok {
		metrics.RecordBoardLookup("blind", "hit")
		return id, nil
	}

	needle := strings.ToLower(keyword)
	bestName := ""
	bestID := ""
	for name, id := range r.blind {
		if !strings.Contains(name, needle) {
			continue
		}
		if bestName == "" || len(name) < len(bestName) {
			bestName, bestID = name, id
		}
	}
	if bestID != "" {
		metrics.RecordBoardLookup("blind", "ambiguous")
		return bestID, nil
	}

	metrics.RecordBoardLookup("blind", "miss")
	return "", ErrNotFound
}

// Autocomplete returns up to limit board-name suggestions for site,
// drawn from the matching on-disk lookup table. Unsupported sites
// return an empty slice rather than an error (§6 autocomplete endpoint
// falls back to a small static list for those).
func (r *Resolver) Autocomplete(site, prefix string, limit int) []string {
	var idx *cache.Trie
	switch site {
	case "dcinside":
		idx = r.dcinsideIdx
	case "blind":
		idx = r.blindIdx
	default:
		return nil
	}

	start := time.Now()
	defer func() { metrics.BoardAutocompleteDuration.Observe(time.Since(start).Seconds()) }()

	results := idx.AutocompleteWithLimit(prefix, limit)
	names := make([]string, 0, len(results))
	for _, res := range results {
		names = append(names, res.Value)
	}
	return names
}
