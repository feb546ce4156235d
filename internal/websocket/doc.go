// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

/*
Package websocket provides the full-duplex transport for crawl sessions.

Unlike a broadcast hub fanning messages out to every connected client, this
package models one connection per Session Controller: a Client wraps a
single gorilla/websocket connection for the lifetime of exactly one crawl,
and a Registry tracks active sessions by id so the out-of-band cancellation
endpoint can reach a running session without holding its connection.

Key Components:

  - Client: one WebSocket connection, owned by one session controller
  - Registry: session-id -> cancellation-handle table

Connection Lifecycle:

 1. Client connects via HTTP upgrade at the session endpoint
 2. The session controller reads the single config frame (ReadConfig)
 3. The controller mints a session id and registers a cancel func
 4. Client.Start launches the read/write pumps for the connection's
    remaining lifetime (progress frames out, disconnect detection in)
 5. On completion, cancellation, or disconnect, the controller unregisters
    the session and closes the connection

Thread Safety:

The Registry is safe for concurrent Register/Unregister/Cancel calls from
the HTTP handler goroutine and the owning session goroutine. A Client's
read and write pumps share its connection and its closed channel; frames
reach the write pump only through the send channel.
*/
package websocket
