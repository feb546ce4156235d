// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSanitizeToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"short", "***"},
		{"exactlytwelv", "***"},
		{"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", "eyJh...VCJ9"},
		{"1234567890123456", "1234...3456"},
	}

	for _, tt := range tests {
		result := SanitizeToken(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeSessionID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"short", "***"},
		{"550e8400e29b41d4a716446655440000", "550e...0000"},
	}

	for _, tt := range tests {
		result := SanitizeSessionID(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeSessionID(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"connection refused", "connection refused"},
		{"invalid api_key provided", "adapter request error"},
		{"bearer token expired", "adapter request error"},
	}

	for _, tt := range tests {
		result := SanitizeError(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeError(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeError_LongError(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 300)
	result := SanitizeError(long)
	if len(result) > 203 {
		t.Errorf("expected truncated error, got length %d", len(result))
	}
}

func TestSanitizeValue(t *testing.T) {
	t.Parallel()

	if got := SanitizeValue("api_key", "abcdefghijklmnop"); got != "abcd...mnop" {
		t.Errorf("SanitizeValue(api_key) = %q", got)
	}
	if got := SanitizeValue("board", "programming"); got != "programming" {
		t.Errorf("SanitizeValue(board) unexpectedly modified: %q", got)
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	if got := truncateString("short", 10); got != "short" {
		t.Errorf("truncateString should not modify short strings, got %q", got)
	}
	if got := truncateString("this is a long string", 10); got != "this is a ..." {
		t.Errorf("truncateString(long, 10) = %q", got)
	}
}

func newTestSessionEventLogger(buf *bytes.Buffer) *SessionEventLogger {
	return NewSessionEventLoggerWithLogger(zerolog.New(buf))
}

func TestSessionEventLogger_LogSessionOpened(t *testing.T) {
	var buf bytes.Buffer
	l := newTestSessionEventLogger(&buf)

	l.LogSessionOpened("550e8400e29b41d4a716446655440000", "dcinside", "programming")

	out := buf.String()
	if !strings.Contains(out, "session_opened") {
		t.Errorf("expected session_opened event, got %q", out)
	}
	if !strings.Contains(out, "dcinside") {
		t.Errorf("expected site field, got %q", out)
	}
	if strings.Contains(out, "550e8400e29b41d4a716446655440000") {
		t.Error("session id must be sanitized, not logged in full")
	}
}

func TestSessionEventLogger_LogHandshakeRejected(t *testing.T) {
	var buf bytes.Buffer
	l := newTestSessionEventLogger(&buf)

	l.LogHandshakeRejected("https://evil.example.com")

	out := buf.String()
	if !strings.Contains(out, "handshake_rejected") {
		t.Errorf("expected handshake_rejected event, got %q", out)
	}
	if !strings.Contains(out, "failed") {
		t.Errorf("expected failed status, got %q", out)
	}
}

func TestSessionEventLogger_LogSessionCanceled(t *testing.T) {
	var buf bytes.Buffer
	l := newTestSessionEventLogger(&buf)

	l.LogSessionCanceled("sess-1234567890")

	if !strings.Contains(buf.String(), "session_canceled") {
		t.Errorf("expected session_canceled event, got %q", buf.String())
	}
}

func TestSessionEventLogger_LogSessionCompleted(t *testing.T) {
	var buf bytes.Buffer
	l := newTestSessionEventLogger(&buf)

	l.LogSessionCompleted("sess-1234567890", 42)

	out := buf.String()
	if !strings.Contains(out, "session_completed") {
		t.Errorf("expected session_completed event, got %q", out)
	}
	if !strings.Contains(out, "42") {
		t.Errorf("expected post_count 42, got %q", out)
	}
}

func TestNewSessionEventLogger(t *testing.T) {
	l := NewSessionEventLogger()
	if l == nil {
		t.Fatal("NewSessionEventLogger returned nil")
	}
}
