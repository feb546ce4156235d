// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

// Package translate is a thin client for the third-party translation
// service the session controller calls during title translation
// (§4.9 step 5, SPEC_FULL §4.10).
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tomtom215/boardcrawl/internal/metrics"
)

const requestTimeout = 10 * time.Second

// Client calls a key-authenticated translation API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New returns a Client against baseURL, authenticated with apiKey.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// Translate renders text in targetLang. A non-nil error means the
// caller should keep the original text (§4.9: a failed translation is
// not fatal).
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	start := time.Now()
	result, err := c.doTranslate(ctx, text, targetLang)
	duration := time.Since(start)
	metrics.TranslateRequestDuration.Observe(duration.Seconds())
	if err != nil {
		metrics.TranslateErrors.WithLabelValues(classifyTranslateError(err)).Inc()
		return "", err
	}
	metrics.TranslateCharactersTotal.Add(float64(len(text)))
	return result, nil
}

func (c *Client) doTranslate(ctx context.Context, text, targetLang string) (string, error) {
	body, err := json.Marshal(translateRequest{Text: text, TargetLang: targetLang})
	if err != nil {
		return "", fmt.Errorf("translate: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("translate: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("translate: reading response: %w", err)
	}

	var parsed translateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("translate: decoding response: %w", err)
	}
	return parsed.TranslatedText, nil
}

func classifyTranslateError(err error) string {
	if err == nil {
		return "none"
	}
	if ctx := err.Error(); len(ctx) > 0 {
		return "request_failed"
	}
	return "other"
}

// AlreadyInTargetLanguage applies the §4.9 heuristic: a title is
// treated as already in the target language (and the translate call is
// skipped) when the target is English and every rune is ASCII, or when
// the target is Korean and at least one non-ASCII rune is present.
func AlreadyInTargetLanguage(title, targetLang string) bool {
	hasNonASCII := false
	for _, r := range title {
		if r > 127 {
			hasNonASCII = true
			break
		}
	}
	switch targetLang {
	case "en", "english":
		return !hasNonASCII
	case "ko", "korean":
		return hasNonASCII
	default:
		return false
	}
}
