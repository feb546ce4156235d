// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package websocket

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/boardcrawl/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds the single inbound config frame (§6). The
	// session protocol never expects a second client->server message.
	maxMessageSize = 64 * 1024
)

// clientIDCounter generates unique, monotonically increasing IDs for
// clients, used only for log correlation.
var clientIDCounter atomic.Uint64

// Client wraps one session's websocket connection. Unlike a broadcast hub
// member, a Client belongs to exactly one Session Controller instance for
// its entire lifetime (§4.9: one coroutine/task per client session).
type Client struct {
	id     uint64
	conn   *websocket.Conn
	send   chan any
	closed chan struct{}
}

// NewClient wraps an already-upgraded connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		conn:   conn,
		send:   make(chan any, 32),
		closed: make(chan struct{}),
	}
}

// ID returns the connection's log-correlation identifier. It is distinct
// from the session id minted by the Session Controller.
func (c *Client) ID() uint64 {
	return c.id
}

// Closed is signaled once the read side of the connection has gone away.
// The owning session selects on this to unwind and cancel outstanding work
// when a client disconnects mid-crawl.
func (c *Client) Closed() <-chan struct{} {
	return c.closed
}

// Send queues a frame for delivery. Returns false if the outbound buffer is
// full, meaning the connection is not keeping up; the frame is dropped
// rather than blocking the session's pipeline.
func (c *Client) Send(frame any) bool {
	select {
	case c.send <- frame:
		return true
	case <-c.closed:
		return false
	default:
		return false
	}
}

// ReadConfig blocks for the single client->server frame carrying crawl
// options (§6). It must be called before Start.
func (c *Client) ReadConfig(v any) error {
	return c.conn.ReadJSON(v)
}

// readPump keeps the read deadline alive via pong handling and detects
// disconnection. The session protocol is otherwise one-shot, so any further
// client message is ignored; only connection loss matters here.
func (c *Client) readPump() {
	defer func() {
		close(c.closed)
		_ = c.conn.Close() // best-effort cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Msg("unexpected websocket close")
			}
			return
		}
	}
}

// writePump delivers queued frames and keeps the connection alive with
// periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				logging.Error().Err(err).Msg("failed to write json frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			return
		}
	}
}

// Start begins the read and write pumps. Call ReadConfig first to consume
// the initial handshake frame.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the underlying connection directly, used when the session
// controller finishes before the client disconnects on its own.
func (c *Client) Close() error {
	return c.conn.Close()
}
