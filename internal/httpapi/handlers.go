// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package httpapi

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/boardcrawl/internal/boards"
	"github.com/tomtom215/boardcrawl/internal/session"
)

// Handler holds the collaborators every endpoint in this package needs:
// the session controller driving crawls, the board resolver backing
// autocomplete, and the directory completed media archives are served
// from.
type Handler struct {
	Controller *session.Controller
	Resolver   *boards.Resolver
	ArchiveDir string
	Version    string
	startTime  time.Time
}

// NewHandler wires a Handler from its already-constructed collaborators.
func NewHandler(controller *session.Controller, resolver *boards.Resolver, archiveDir, version string) *Handler {
	if archiveDir == "" {
		archiveDir = session.ArchiveDir
	}
	return &Handler{
		Controller: controller,
		Resolver:   resolver,
		ArchiveDir: archiveDir,
		Version:    version,
		startTime:  time.Now(),
	}
}

// WebSocket upgrades the connection and runs one crawl session to
// completion (§4.9). It delegates entirely to the Session Controller;
// this handler exists only to give that method a routable path.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	h.Controller.HandleConnection(w, r)
}

// Cancel handles the out-of-band crawl cancellation request. Per §4.9
// it reports success whether or not a session by that id is still
// alive: a session that already finished was, in effect, already
// canceled from the client's point of view.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req session.CancelRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed cancel request", err)
		return
	}
	if req.CrawlID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "crawl_id is required", nil)
		return
	}

	h.Controller.Cancel(req.CrawlID)

	respondData(w, http.StatusOK, session.CancelResponse{
		Success:   true,
		CrawlID:   req.CrawlID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Autocomplete serves board/gallery/topic name suggestions for the
// sites with opaque identifiers (§4.4).
func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	site := r.URL.Query().Get("site")
	prefix := r.URL.Query().Get("prefix")
	if site == "" || prefix == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "site and prefix query parameters are required", nil)
		return
	}

	limit := 15
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	results := h.Resolver.Autocomplete(site, prefix, limit)
	respondData(w, http.StatusOK, AutocompleteResponse{Site: site, Prefix: prefix, Results: results})
}

// DownloadFile serves a completed media archive by name (§4.8). Names
// are session-minted UUIDs with a .zip suffix; filepath.Base strips any
// path traversal attempt before it reaches the filesystem.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(chi.URLParam(r, "zipName"))
	if name == "" || name == "." || !strings.HasSuffix(name, ".zip") {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid archive name", nil)
		return
	}

	path := filepath.Join(h.ArchiveDir, name)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

// HealthLive reports process liveness only (§9).
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, HealthStatus{
		Status:  "ok",
		Version: h.Version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HealthReady additionally reports whether the board lookup tables
// loaded at startup (§4.4); a missing table degrades DCInside/Blind
// board resolution but is not itself fatal to the process.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:         "ok",
		Version:        h.Version,
		Uptime:         time.Since(h.startTime).Round(time.Second).String(),
		DCInsideLoaded: h.Resolver.DCInsideLoaded(),
		BlindLoaded:    h.Resolver.BlindLoaded(),
		ActiveSessions: h.Controller.Sessions.Count(),
	}
	respondData(w, http.StatusOK, status)
}
