// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/boardcrawl/internal/logging"
)

// SessionHandle is the cancellation handle for one active Session
// Controller instance (§4.9 Crawl Session State), looked up by the
// out-of-band cancellation endpoint.
type SessionHandle struct {
	ID        string
	CreatedAt time.Time
	cancel    func()
}

// Registry tracks active sessions by id so the cancellation endpoint can
// flip a session's cancellation flag without holding a reference to its
// websocket connection. It replaces a broadcast hub: this service fans a
// session id out to exactly one controller, never to many clients.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*SessionHandle
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*SessionHandle)}
}

// Register adds a session under id. cancel is invoked at most once, by
// Cancel or by Serve on shutdown.
func (r *Registry) Register(id string, cancel func()) *SessionHandle {
	var once sync.Once
	h := &SessionHandle{ID: id, CreatedAt: time.Now(), cancel: func() { once.Do(cancel) }}
	r.mu.Lock()
	r.sessions[id] = h
	r.mu.Unlock()
	logging.Debug().Str("session_id", id).Int("active_sessions", r.Count()).Msg("session registered")
	return h
}

// Unregister removes a session once its controller has finished, whether it
// ran to completion or was canceled.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	logging.Debug().Str("session_id", id).Int("active_sessions", n).Msg("session unregistered")
}

// Cancel flips the cancellation flag for id if a session is still active.
// Per §4.9 the cancellation endpoint reports success whether or not a
// matching session is still alive, so callers should not treat a false
// return as an error.
func (r *Registry) Cancel(id string) bool {
	r.mu.RLock()
	h, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	h.cancel()
	return true
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the ids of all currently active sessions, in no
// particular order. Used by tests that need to act on a session
// without holding its internally minted id.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Serve implements suture.Service. On shutdown it cancels every still-active
// session, in deterministic id order, so their controllers can unwind and
// close their connections before the process exits.
func (r *Registry) Serve(ctx context.Context) error {
	<-ctx.Done()

	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)

	for _, id := range ids {
		r.Cancel(id)
	}

	logging.Info().
		Str("component", "session-registry").
		Int("sessions_canceled", len(ids)).
		Msg("session registry stopped")
	return ctx.Err()
}
