// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

/*
Package cache provides thread-safe in-memory data structures backing board
resolution (§4.4), site detection (§4.5), and media deduplication (§4.8).

# Overview

The package is organized around the specific access pattern each consumer
needs rather than a single general-purpose cache:

  - Trie: prefix autocomplete over board, gallery, and topic names
    (board_lookup_table_entries). Callers keep one Trie per field (dcinside
    galleries, Blind topics) so each gets an independent autocomplete space.
  - AhoCorasick / PatternMatcher: multi-pattern substring matching used to
    classify a host or response body against the fixed set of known site
    signatures during detection (§4.5).
  - ExactLRU: zero-false-positive duplicate detection for already-downloaded
    media fingerprints, built on LRUCache.
  - LRUCache: a fixed-capacity, TTL-aware cache of arbitrary timestamped
    keys, the building block behind ExactLRU.

# Usage Example

Board autocomplete:

	dcinside := cache.NewTrie()
	dcinside.InsertWithData("programming", board.Record{ID: "programming"})
	results := dcinside.AutocompleteWithLimit("prog", 15)

Site detection:

	pm := cache.NewPatternMatcherFromSlice(knownHostSignatures, nil)
	if pm.Contains(strings.ToLower(host)) { ... }

Media deduplication:

	seen := cache.NewExactLRU(10_000, 30*time.Minute)
	if seen.IsDuplicate(fingerprint) {
	    continue // skip re-downloading
	}

# Thread Safety

Every type in this package guards its internal state with a mutex and is
safe for concurrent use from multiple goroutines, matching the concurrency
model of the crawl pipeline (§4.7) where many site adapters run in
parallel against a shared board lookup table and media dedup cache.

# See Also

  - internal/boards: board/gallery/topic resolution built on Trie
  - internal/detect: site detection built on AhoCorasick/PatternMatcher
  - internal/media: media packager built on ExactLRU
*/
package cache
