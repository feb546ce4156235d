// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package detect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const lemmyProbeKeyPrefix = "lemmy_probe:"

// CachedLemmyProber wraps the dynamic Lemmy probe (§4.5 step 2) with a
// BadgerDB-backed verdict cache, so a restart doesn't re-probe every
// domain a prior session already classified.
type CachedLemmyProber struct {
	db     *badger.DB
	client *http.Client
	ttl    time.Duration
}

// NewCachedLemmyProber returns a prober backed by db. A zero ttl means
// cached verdicts never expire.
func NewCachedLemmyProber(db *badger.DB, ttl time.Duration) *CachedLemmyProber {
	return &CachedLemmyProber{
		db:     db,
		client: &http.Client{Timeout: 5 * time.Second},
		ttl:    ttl,
	}
}

// IsLemmy reports whether domain is a Lemmy instance, consulting the
// cache before issuing a live probe.
func (p *CachedLemmyProber) IsLemmy(ctx context.Context, domain string) (bool, error) {
	if verdict, ok := p.cached(domain); ok {
		return verdict, nil
	}

	verdict, err := defaultLemmyProbe(ctx, p.client, domain)
	if err != nil {
		return false, err
	}

	if storeErr := p.store(domain, verdict); storeErr != nil {
		return verdict, nil // cache write failure never fails the detection itself
	}
	return verdict, nil
}

func (p *CachedLemmyProber) cached(domain string) (bool, bool) {
	var verdict bool
	var found bool

	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(lemmyProbeKeyPrefix + domain))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 1 {
				return fmt.Errorf("detect: malformed lemmy probe cache entry for %q", domain)
			}
			verdict = val[0] == 1
			found = true
			return nil
		})
	})
	if err != nil {
		return false, false
	}
	return verdict, found
}

func (p *CachedLemmyProber) store(domain string, verdict bool) error {
	val := byte(0)
	if verdict {
		val = 1
	}
	return p.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(lemmyProbeKeyPrefix+domain), []byte{val})
		if p.ttl > 0 {
			entry = entry.WithTTL(p.ttl)
		}
		return txn.SetEntry(entry)
	})
}
