// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/boardcrawl/internal/detect"
	"github.com/tomtom215/boardcrawl/internal/dispatch"
	"github.com/tomtom215/boardcrawl/internal/logging"
	"github.com/tomtom215/boardcrawl/internal/media"
	"github.com/tomtom215/boardcrawl/internal/metrics"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
	"github.com/tomtom215/boardcrawl/internal/translate"
	wsocket "github.com/tomtom215/boardcrawl/internal/websocket"
)

// translationProgressStart and translationProgressEnd bound the
// interleaved-translation phase (§4.9 step 5).
const (
	translationProgressStart = 80.0
	translationProgressEnd   = 95.0

	// ArchiveDir is where completed media archives are written. The
	// download endpoint in internal/httpapi serves files from the same
	// directory.
	ArchiveDir = "./data/archives"
)

// Controller owns everything one active session needs: the site
// registry and detector driving C5→C6→C3→C7, the translation
// collaborator, the media packager, and the session registry used by
// the out-of-band cancellation endpoint.
type Controller struct {
	Registry   *dispatch.Registry
	Detector   *detect.Detector
	Translator *translate.Client
	Packager   *media.Packager
	Sessions   *wsocket.Registry
	Handshake  HandshakeConfig

	events *logging.SessionEventLogger
}

// NewController wires a Controller from its already-constructed
// collaborators. Translator/Packager may be nil: translation and media
// packaging are then skipped regardless of what a client requests.
func NewController(registry *dispatch.Registry, detector *detect.Detector, translator *translate.Client, packager *media.Packager, sessions *wsocket.Registry, handshake HandshakeConfig) *Controller {
	return &Controller{
		Registry:   registry,
		Detector:   detector,
		Translator: translator,
		Packager:   packager,
		Sessions:   sessions,
		Handshake:  handshake,
		events:     logging.NewSessionEventLogger(),
	}
}

// HandleConnection implements §4.9's full lifecycle: handshake, receive
// config, mint+register a session-id, drive the pipeline, and close.
// It upgrades the connection itself and blocks until the session ends.
func (c *Controller) HandleConnection(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if !c.Handshake.OriginAllowed(origin) {
		c.events.LogHandshakeRejected(origin)
		metrics.SessionHandshakeRejections.Inc()
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	upgrader := NewUpgrader(c.Handshake)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := wsocket.NewClient(conn)

	var cfg Config
	if err := client.ReadConfig(&cfg); err != nil {
		logging.Warn().Err(err).Msg("failed to read session config frame")
		_ = client.Close()
		return
	}
	client.Start()

	sessionID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	c.Sessions.Register(sessionID, cancel)

	metrics.SessionsOpenedTotal.Inc()
	metrics.SessionActiveCount.Inc()
	defer func() {
		metrics.SessionActiveCount.Dec()
		c.Sessions.Unregister(sessionID)
		_ = client.Close()
	}()

	c.run(ctx, sessionID, cfg, client)
}

// run drives the pipeline for one session: detect, dispatch, crawl,
// translate, package, and emit the terminal frame.
func (c *Controller) run(ctx context.Context, sessionID string, cfg Config, client *wsocket.Client) {
	client.Send(progressFrame{Progress: 0, Step: StepInitializing})

	site := c.Detector.Detect(ctx, cfg.Input)
	client.Send(progressFrame{Progress: 2, Step: StepDetectingSite, Site: string(site)})

	board := detect.ExtractBoardIdentifier(cfg.Input, site)
	c.events.LogSessionOpened(sessionID, string(site), board)

	raw := rawParamsFromConfig(cfg)
	entry, params, err := c.Registry.Prepare(site, board, raw)
	if err != nil {
		c.fail(sessionID, client, string(site), cfg.Language, ErrSiteNotFound, err)
		return
	}
	if err := dispatch.Validate(params); err != nil {
		c.fail(sessionID, client, string(site), cfg.Language, ErrInvalidParameters, err)
		return
	}

	client.Send(progressFrame{Progress: 5, Step: StepConnecting, Site: string(site), Board: board})

	metrics.CrawlActiveSessions.Inc()
	progressSink := func(u dispatch.ProgressUpdate) {
		select {
		case <-ctx.Done():
			return
		default:
		}
		client.Send(progressFrame{
			Progress: u.Progress,
			Step:     StepCollecting,
			Site:     string(site),
			Board:    board,
			Details: map[string]string{
				"matched": strconv.Itoa(u.Matched),
			},
		})
	}

	posts, err := entry.Adapter(ctx, params[entry.TargetParam], params, progressSink)
	metrics.CrawlActiveSessions.Dec()

	if ctx.Err() != nil {
		c.cancelled(sessionID, client)
		return
	}
	if err != nil {
		c.fail(sessionID, client, string(site), cfg.Language, classifyCrawlError(err), err)
		return
	}
	if len(posts) == 0 {
		c.fail(sessionID, client, string(site), cfg.Language, ErrNoPostsFound, errors.New("no posts matched the requested filters"))
		return
	}

	client.Send(progressFrame{Progress: 78, Step: StepFiltering, Site: string(site), Board: board})

	posts = c.translate(ctx, sessionID, cfg, posts, client, string(site), board)
	if ctx.Err() != nil {
		c.cancelled(sessionID, client)
		return
	}

	client.Send(progressFrame{Progress: 96, Step: StepProcessing, Site: string(site), Board: board})

	archiveName := ""
	if cfg.IncludeMedia && c.Packager != nil {
		archiveName = c.packageMedia(ctx, sessionID, posts, client, string(site), board)
	}

	client.Send(progressFrame{Progress: 99, Step: StepFinalizing, Site: string(site), Board: board})

	client.Send(doneFrame{
		Done:         true,
		Data:         posts,
		DetectedSite: string(site),
		Summary: summary{
			PostCount:    len(posts),
			Site:         string(site),
			Board:        board,
			MediaArchive: archiveName,
		},
	})
	metrics.RecordSessionOutcome("done")
	c.events.LogSessionCompleted(sessionID, len(posts))
}

// translate interleaves per-post, per-language translation calls
// (§4.9 step 5). A failed call leaves the original title in place and
// is never fatal to the session.
func (c *Controller) translate(ctx context.Context, sessionID string, cfg Config, posts []postrecord.Record, client *wsocket.Client, site, board string) []postrecord.Record {
	if cfg.SkipTranslation || !cfg.Translate || len(cfg.TargetLanguages) == 0 || c.Translator == nil {
		return posts
	}

	total := len(posts) * len(cfg.TargetLanguages)
	if total == 0 {
		return posts
	}
	done := 0

	for i := range posts {
		select {
		case <-ctx.Done():
			return posts
		default:
		}

		for _, lang := range cfg.TargetLanguages {
			done++
			if translate.AlreadyInTargetLanguage(posts[i].TitleOriginal, lang) {
				continue
			}
			translated, err := c.Translator.Translate(ctx, posts[i].TitleOriginal, lang)
			if err != nil {
				logging.Warn().Err(err).Str("session_id", sessionID).Msg("translation failed, keeping original title")
				continue
			}
			posts[i].TitleTranslated = translated
		}

		progress := translationProgressStart + (float64(done)/float64(total))*(translationProgressEnd-translationProgressStart)
		client.Send(progressFrame{Progress: progress, Step: StepTranslating, Site: site, Board: board})
	}
	return posts
}

// packageMedia invokes the media packager and returns the built
// archive's filename, or empty on failure (media errors are never
// fatal to the session per §7).
func (c *Controller) packageMedia(ctx context.Context, sessionID string, posts []postrecord.Record, client *wsocket.Client, site, board string) string {
	client.Send(progressFrame{Progress: 0, Step: StepPackaging, Site: site, Board: board})

	name := sessionID + ".zip"
	outPath := ArchiveDir + "/" + name

	count, _, err := c.Packager.Package(ctx, posts, outPath)
	if err != nil {
		logging.Warn().Err(err).Str("session_id", sessionID).Msg("media packaging failed")
		client.Send(progressFrame{Progress: 100, Step: StepPackaging, Site: site, Board: board})
		return ""
	}
	client.Send(progressFrame{Progress: 100, Step: StepPackaging, Site: site, Board: board, Details: map[string]string{"files": strconv.Itoa(count)}})
	if count == 0 {
		return ""
	}
	return name
}

func (c *Controller) fail(sessionID string, client *wsocket.Client, site, lang, code string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	client.Send(errorFrame{ErrorCode: code, ErrorDetail: detail, ErrorReason: localizedReason(code, lang), Site: site})
	metrics.RecordSessionOutcome("error")
	c.events.LogSessionError(sessionID, code, detail)
}

func (c *Controller) cancelled(sessionID string, client *wsocket.Client) {
	client.Send(cancelFrame{Cancelled: true})
	metrics.RecordSessionOutcome("canceled")
	c.events.LogSessionCanceled(sessionID)
}

// classifyCrawlError maps an adapter/engine error onto the wire error
// taxonomy (§7). Adapters do not tag their errors explicitly, so this
// is a best-effort substring classification, mirroring
// internal/metrics.classifyError's bounded-cardinality approach.
func classifyCrawlError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "context deadline exceeded"), strings.Contains(msg, "timeout"):
		return ErrTimeout
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate limit"):
		return ErrRateLimited
	case strings.Contains(msg, "resolving gallery"), strings.Contains(msg, "resolving topic"), strings.Contains(msg, "no adapter registered"):
		return ErrSiteNotFound
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
		return ErrConnectionFailed
	default:
		return ErrCrawlingError
	}
}

// rawParamsFromConfig converts the typed client config into the
// flat string-map dispatch.Prepare/Validate expect.
func rawParamsFromConfig(cfg Config) map[string]string {
	params := map[string]string{}
	if cfg.Sort != "" {
		params["sort"] = cfg.Sort
	}
	if cfg.Start > 0 {
		params["start_index"] = strconv.Itoa(cfg.Start)
	}
	if cfg.End > 0 {
		params["end_index"] = strconv.Itoa(cfg.End)
	}
	if cfg.MinViews > 0 {
		params["min_views"] = strconv.Itoa(cfg.MinViews)
	}
	if cfg.MinLikes > 0 {
		params["min_likes"] = strconv.Itoa(cfg.MinLikes)
	}
	if cfg.MinComments > 0 {
		params["min_comments"] = strconv.Itoa(cfg.MinComments)
	}
	if cfg.TimeFilter != "" {
		params["time_filter"] = cfg.TimeFilter
	}
	if cfg.StartDate != "" {
		params["start_date"] = cfg.StartDate
	}
	if cfg.EndDate != "" {
		params["end_date"] = cfg.EndDate
	}
	return params
}
