// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/boardcrawl/internal/detect"
	"github.com/tomtom215/boardcrawl/internal/dispatch"
	"github.com/tomtom215/boardcrawl/internal/postrecord"
	wsocket "github.com/tomtom215/boardcrawl/internal/websocket"
)

func newTestController(adapter dispatch.AdapterFunc) (*Controller, *httptest.Server) {
	registry := dispatch.NewRegistry()
	registry.Register(detect.SiteUniversal, dispatch.Entry{
		Adapter:     adapter,
		TargetParam: "board",
		Whitelist: map[string]bool{
			"start_index":  true,
			"end_index":    true,
			"min_views":    true,
			"min_likes":    true,
			"min_comments": true,
			"start_date":   true,
			"end_date":     true,
			"sort":         true,
		},
	})

	c := NewController(registry, detect.New(nil), nil, nil, wsocket.NewRegistry(), HandshakeConfig{Production: false})
	srv := httptest.NewServer(http.HandlerFunc(c.HandleConnection))
	return c, srv
}

func dialTestController(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func TestController_HappyPath_EmitsProgressThenDone(t *testing.T) {
	adapter := func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		progress(dispatch.ProgressUpdate{Progress: 50, Page: 1, MaxPages: 2, Matched: 1})
		return []postrecord.Record{{TitleOriginal: "hello", Board: boardIdentifier}}, nil
	}
	_, srv := newTestController(adapter)
	defer srv.Close()

	conn := dialTestController(t, srv)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Config{Input: "some unrecognized input"}))

	sawCollecting := false
	for i := 0; i < 20; i++ {
		var raw map[string]any
		require.NoError(t, conn.ReadJSON(&raw))
		if raw["step"] == StepCollecting {
			sawCollecting = true
		}
		if done, ok := raw["done"].(bool); ok && done {
			require.True(t, sawCollecting)
			data, _ := raw["data"].([]any)
			require.Len(t, data, 1)
			return
		}
	}
	t.Fatal("never received a done frame")
}

func TestController_NoPostsFound_EmitsErrorFrame(t *testing.T) {
	adapter := func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		return nil, nil
	}
	_, srv := newTestController(adapter)
	defer srv.Close()

	conn := dialTestController(t, srv)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Config{Input: "some unrecognized input"}))

	for i := 0; i < 20; i++ {
		var raw map[string]any
		require.NoError(t, conn.ReadJSON(&raw))
		if code, ok := raw["error_code"]; ok {
			require.Equal(t, ErrNoPostsFound, code)
			require.NotEmpty(t, raw["error_reason"])
			return
		}
	}
	t.Fatal("never received an error frame")
}

func TestController_AdapterError_ClassifiedAndEmitted(t *testing.T) {
	adapter := func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	_, srv := newTestController(adapter)
	defer srv.Close()

	conn := dialTestController(t, srv)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Config{Input: "some unrecognized input"}))

	for i := 0; i < 20; i++ {
		var raw map[string]any
		require.NoError(t, conn.ReadJSON(&raw))
		if code, ok := raw["error_code"]; ok {
			require.Equal(t, ErrConnectionFailed, code)
			return
		}
	}
	t.Fatal("never received an error frame")
}

func TestController_InvalidParameters_FailsFast(t *testing.T) {
	adapter := func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		t.Fatal("adapter should not run when validation fails")
		return nil, nil
	}
	_, srv := newTestController(adapter)
	defer srv.Close()

	conn := dialTestController(t, srv)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Config{Input: "some unrecognized input", Start: 5, End: 1}))

	var raw map[string]any
	require.NoError(t, conn.ReadJSON(&raw)) // initializing
	require.NoError(t, conn.ReadJSON(&raw)) // detecting_site
	require.NoError(t, conn.ReadJSON(&raw))
	require.Equal(t, ErrInvalidParameters, raw["error_code"])
}

func TestController_Cancel_EmitsCancelFrame(t *testing.T) {
	entered := make(chan struct{})
	adapter := func(ctx context.Context, boardIdentifier string, opts map[string]string, progress dispatch.ProgressSink) ([]postrecord.Record, error) {
		close(entered)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	c, srv := newTestController(adapter)
	defer srv.Close()

	conn := dialTestController(t, srv)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Config{Input: "some unrecognized input"}))

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("adapter never started")
	}
	require.Equal(t, 1, c.Sessions.Count())

	// The session id is internal to the controller; cancel every active
	// session registered at this point rather than reaching in for it.
	canceledAny := false
	for i := 0; i < 50 && !canceledAny; i++ {
		canceledAny = cancelFirstActiveSession(c)
		if !canceledAny {
			time.Sleep(10 * time.Millisecond)
		}
	}
	require.True(t, canceledAny)

	for i := 0; i < 20; i++ {
		var raw map[string]any
		if err := conn.ReadJSON(&raw); err != nil {
			t.Fatalf("connection closed before a cancel frame arrived: %v", err)
		}
		if cancelled, ok := raw["cancelled"].(bool); ok && cancelled {
			return
		}
	}
	t.Fatal("never received a cancelled frame")
}

func cancelFirstActiveSession(c *Controller) bool {
	ids := c.Sessions.IDs()
	if len(ids) == 0 {
		return false
	}
	return c.Sessions.Cancel(ids[0])
}

func TestCancelRequest_UnknownIDStillSucceeds(t *testing.T) {
	c := NewController(dispatch.NewRegistry(), detect.New(nil), nil, nil, wsocket.NewRegistry(), HandshakeConfig{})
	c.Cancel("does-not-exist")
}
