// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package session

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// HandshakeConfig controls origin validation at connection upgrade
// (§4.9 step 1).
type HandshakeConfig struct {
	// Production gates whether origin checking is enforced at all; dev
	// environments accept any origin (§4.9).
	Production bool
	// AllowedOrigins is checked only when Production is true.
	AllowedOrigins []string
}

// OriginAllowed reports whether origin passes cfg's policy.
func (cfg HandshakeConfig) OriginAllowed(origin string) bool {
	if !cfg.Production {
		return true
	}
	if origin == "" {
		return false
	}
	for _, allowed := range cfg.AllowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// NewUpgrader builds a gorilla/websocket Upgrader whose CheckOrigin
// enforces cfg's policy. Controller.HandleConnection checks the origin
// before upgrading: a rejected origin is logged and answered with HTTP
// 403, so no websocket close frame or close code is sent.
func NewUpgrader(cfg HandshakeConfig) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return cfg.OriginAllowed(r.Header.Get("Origin"))
		},
	}
}
