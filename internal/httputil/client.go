// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/pkg/types"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

// StatusError reports a response with an unexpected status code.
type StatusError struct {
	URL        string
	StatusCode int

	// Message is the service's own error text when the body carries one.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Client issues GET requests against JSON APIs with a fixed User-Agent
// and optional bearer token.
type Client struct {
	HTTP       *http.Client
	UserAgent  string
	Token      string
	MaxRetries int
	Logger     *zap.Logger
}

// NewClient returns a Client for cfg. A non-empty contact is appended to
// the User-Agent, as Wikimedia API etiquette asks.
func NewClient(cfg types.HTTPConfig, contact, token string, logger *zap.Logger) *Client {
	ua := cfg.UserAgent
	if contact != "" {
		ua = fmt.Sprintf("%s (%s)", ua, contact)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		UserAgent: ua,
		Token:     token,
		Logger:    logger,
	}
}

// GetJSON fetches rawURL and decodes the JSON body into v. Non-200
// responses return a *StatusError.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := DoWithRetry(ctx, client, req, c.MaxRetries, c.Logger)
	if err != nil {
		return fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	return nil
}

// errorMessage extracts the error text from a JSON error body. MediaWiki
// REST endpoints use "error" or "title"; plain bodies are returned
// trimmed.
func errorMessage(body []byte) string {
	var payload struct {
		Error  any    `json:"error"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	switch e := payload.Error.(type) {
	case string:
		if e != "" {
			return e
		}
	case map[string]any:
		if info, ok := e["info"].(string); ok {
			return info
		}
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Title
}
