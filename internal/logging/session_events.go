// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SessionEvent represents a session-lifecycle event for audit logging
// (§4.9 Session Controller: handshake, cancellation, completion).
type SessionEvent struct {
	// Event is the type of event (e.g., "session_opened", "session_canceled").
	Event string
	// SessionID is the session identifier (sanitized before logging).
	SessionID string
	// Site is the detected site-type for the session, if known.
	Site string
	// Board is the resolved board identifier, if known.
	Board string
	// Origin is the request's Origin header, for handshake rejections.
	Origin string
	// Success indicates the event represents normal completion.
	Success bool
	// Error is the error message if the event represents a failure.
	Error string
	// Details contains additional sanitized details.
	Details map[string]string
}

// SessionEventLogger provides sanitized audit logging for crawl sessions.
type SessionEventLogger struct {
	logger zerolog.Logger
}

// NewSessionEventLogger creates a new session event logger.
func NewSessionEventLogger() *SessionEventLogger {
	return &SessionEventLogger{
		logger: With().Str("component", "session").Logger(),
	}
}

// NewSessionEventLoggerWithLogger creates a session event logger with a
// custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value (copy-on-write semantics)
func NewSessionEventLoggerWithLogger(logger zerolog.Logger) *SessionEventLogger {
	return &SessionEventLogger{
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// LogEvent logs a session event with automatic sanitization.
func (l *SessionEventLogger) LogEvent(event *SessionEvent) {
	e := l.logger.Info().Str("event", event.Event)

	if event.Success {
		e = e.Str("status", "success")
	} else {
		e = e.Str("status", "failed")
	}

	if event.SessionID != "" {
		e = e.Str("session_id", SanitizeSessionID(event.SessionID))
	}
	if event.Site != "" {
		e = e.Str("site", event.Site)
	}
	if event.Board != "" {
		e = e.Str("board", event.Board)
	}
	if event.Origin != "" {
		e = e.Str("origin", event.Origin)
	}
	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}

	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}

	e.Msg("")
}

// ============================================================
// Pre-defined session events
// ============================================================

// LogHandshakeRejected logs a websocket handshake rejected on origin
// mismatch (§4.9 step 1).
func (l *SessionEventLogger) LogHandshakeRejected(origin string) {
	l.LogEvent(&SessionEvent{
		Event:   "handshake_rejected",
		Origin:  origin,
		Success: false,
	})
}

// LogSessionOpened logs a session registered after a successful handshake
// and config frame (§4.9 steps 2-3).
func (l *SessionEventLogger) LogSessionOpened(sessionID, site, board string) {
	l.LogEvent(&SessionEvent{
		Event:     "session_opened",
		SessionID: sessionID,
		Site:      site,
		Board:     board,
		Success:   true,
	})
}

// LogSessionCanceled logs a session whose cancellation flag was observed
// (§4.9 step 4, §5 cancellation semantics).
func (l *SessionEventLogger) LogSessionCanceled(sessionID string) {
	l.LogEvent(&SessionEvent{
		Event:     "session_canceled",
		SessionID: sessionID,
		Success:   true,
	})
}

// LogSessionError logs a session that terminated with an error frame (§7).
func (l *SessionEventLogger) LogSessionError(sessionID, errCode, errDetail string) {
	l.LogEvent(&SessionEvent{
		Event:     "session_error",
		SessionID: sessionID,
		Success:   false,
		Error:     errDetail,
		Details:   map[string]string{"error_code": errCode},
	})
}

// LogSessionCompleted logs a session that reached its terminal done frame
// (§4.9 step 7).
func (l *SessionEventLogger) LogSessionCompleted(sessionID string, postCount int) {
	l.LogEvent(&SessionEvent{
		Event:     "session_completed",
		SessionID: sessionID,
		Success:   true,
		Details:   map[string]string{"post_count": intToString(postCount)},
	})
}

func intToString(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ============================================================
// Sanitization Functions
// ============================================================

// SanitizeToken masks a token, showing only first and last 4 characters.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeSessionID masks a session ID.
func SanitizeSessionID(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	if len(sessionID) <= 12 {
		return "***"
	}
	return sessionID[:4] + "..." + sessionID[len(sessionID)-4:]
}

// SanitizeError removes potentially sensitive information from error
// messages (API keys and tokens can leak into adapter HTTP error strings).
func SanitizeError(err string) string {
	sensitivePatterns := []string{
		"password",
		"secret",
		"token",
		"key",
		"bearer",
		"authorization",
		"cookie",
	}

	lowerErr := strings.ToLower(err)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerErr, pattern) {
			return "adapter request error"
		}
	}

	return truncateString(err, 200)
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	lowerKey := strings.ToLower(key)

	sensitiveKeys := map[string]bool{
		"access_token": true,
		"token":        true,
		"password":     true,
		"secret":       true,
		"api_key":      true,
		"apikey":       true,
		"bearer":       true,
		"session_id":   true,
		"sessionid":    true,
	}

	if sensitiveKeys[lowerKey] {
		return SanitizeToken(value)
	}

	return value
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
