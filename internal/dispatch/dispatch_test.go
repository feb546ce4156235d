// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomtom215/boardcrawl/internal/detect"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
)

func stubAdapter(boardIdentifier string, opts map[string]string) AdapterFunc {
	return func(ctx context.Context, board string, params map[string]string, progress ProgressSink) ([]postrecord.Record, error) {
		return nil, nil
	}
}

func newRedditRegistry() *Registry {
	r := NewRegistry()
	r.Register(detect.SiteReddit, Entry{
		Adapter:     stubAdapter("", nil),
		TargetParam: "subreddit",
		Whitelist:   map[string]bool{"sort": true, "time_filter": true, "start_index": true, "end_index": true},
	})
	r.Register(detect.SiteLemmy, Entry{
		Adapter:     stubAdapter("", nil),
		TargetParam: "community",
		Whitelist:   map[string]bool{"sort": true},
	})
	r.Register(detect.SiteBBC, Entry{
		Adapter:     stubAdapter("", nil),
		TargetParam: "board_name",
		Whitelist:   map[string]bool{},
	})
	return r
}

func TestPrepare_UnknownSite(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Prepare("nonexistent", "x", nil)
	require.ErrorAs(t, err, &ErrUnknownSite{})
}

func TestPrepare_AliasAndWhitelist(t *testing.T) {
	r := newRedditRegistry()
	_, params, err := r.Prepare(detect.SiteReddit, "golang", map[string]string{
		"start":        "1",
		"end":          "50",
		"sort":         "popular",
		"not_in_list":  "dropped",
	})
	require.NoError(t, err)
	require.Equal(t, "1", params["start_index"])
	require.Equal(t, "50", params["end_index"])
	require.Equal(t, "hot", params["sort"])
	require.NotContains(t, params, "not_in_list")
}

func TestPrepare_RedditStripsPrefixAndAliasesSort(t *testing.T) {
	r := newRedditRegistry()
	_, params, err := r.Prepare(detect.SiteReddit, "/r/golang", map[string]string{"sort": "recommend"})
	require.NoError(t, err)
	require.Equal(t, "golang", params["subreddit"])
	require.Equal(t, "top", params["sort"])
}

func TestPrepare_LemmyDefaultInstance(t *testing.T) {
	r := newRedditRegistry()
	_, params, err := r.Prepare(detect.SiteLemmy, "technology", nil)
	require.NoError(t, err)
	require.Equal(t, "technology@lemmy.world", params["community"])

	_, params, err = r.Prepare(detect.SiteLemmy, "technology@lemmy.ml", nil)
	require.NoError(t, err)
	require.Equal(t, "technology@lemmy.ml", params["community"])
}

func TestPrepare_BoardAliasMapsToTarget(t *testing.T) {
	r := newRedditRegistry()
	_, params, err := r.Prepare(detect.SiteReddit, "", map[string]string{"board": "golang"})
	require.NoError(t, err)
	require.Equal(t, "golang", params["subreddit"])
}

func TestPrepare_BBCEmptyBoardNameValid(t *testing.T) {
	r := newRedditRegistry()
	_, params, err := r.Prepare(detect.SiteBBC, "", nil)
	require.NoError(t, err)
	require.Equal(t, "", params["board_name"])
}

func TestValidate_IndexBounds(t *testing.T) {
	require.NoError(t, Validate(map[string]string{"start_index": "1", "end_index": "50"}))
	require.Error(t, Validate(map[string]string{"start_index": "0", "end_index": "10"}))
	require.Error(t, Validate(map[string]string{"start_index": "10", "end_index": "5"}))
	require.Error(t, Validate(map[string]string{"start_index": "1", "end_index": "200"}))
}

func TestValidate_MinFields(t *testing.T) {
	require.Error(t, Validate(map[string]string{"start_index": "1", "end_index": "10", "min_views": "-1"}))
	require.NoError(t, Validate(map[string]string{"start_index": "1", "end_index": "10", "min_views": "0"}))
}

func TestValidate_DateRange(t *testing.T) {
	require.NoError(t, Validate(map[string]string{
		"start_index": "1", "end_index": "10",
		"start_date": "2026-01-01", "end_date": "2026-06-01",
	}))
	require.Error(t, Validate(map[string]string{
		"start_index": "1", "end_index": "10",
		"start_date": "2020-01-01", "end_date": "2026-01-01",
	}))
	require.Error(t, Validate(map[string]string{
		"start_index": "1", "end_index": "10",
		"start_date": "not-a-date", "end_date": "2026-01-01",
	}))
}
