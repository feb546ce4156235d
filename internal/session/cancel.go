// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package session

// CancelRequest is the out-of-band HTTP cancellation payload (§4.9,
// "a cancellation request observed before the first done frame causes
// the session to terminate with a cancelled frame within one second").
type CancelRequest struct {
	CrawlID string `json:"crawl_id"`
	Action  string `json:"action"`
}

// CancelResponse always reports success, whether or not crawl_id names
// a still-active session: an already-finished or unknown session is not
// an error from the caller's perspective.
type CancelResponse struct {
	Success bool   `json:"success"`
	CrawlID string `json:"crawl_id"`
	Timestamp string `json:"timestamp"`
}

// Cancel looks up crawlID in the session registry and cancels its
// context if still active. Its bool return is intentionally ignored by
// callers building a CancelResponse.
func (c *Controller) Cancel(crawlID string) {
	c.Sessions.Cancel(crawlID)
}
