// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup calls the external services used while editing
// citations: Wayback Machine snapshots, Citoid citation generation, the
// Citoid item type to template map, and page title search.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/internal/httputil"
	"github.com/pdiddy/wikicite/pkg/types"
)

// ErrNoResults is returned when a service answers without any result.
var ErrNoResults = errors.New("no results")

// waybackLayout is the timestamp layout of Wayback Machine snapshots.
const waybackLayout = "20060102150405"

// Client calls the lookup services configured in a LookupConfig.
type Client struct {
	HTTP   *httputil.Client
	Config types.LookupConfig
	Logger *zap.Logger
}

// NewClient returns a lookup client.
func NewClient(cfg types.LookupConfig, client *httputil.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{HTTP: client, Config: cfg, Logger: logger}
}

// Snapshot is the archived copy of a page closest to the lookup time.
type Snapshot struct {
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
	Available bool   `json:"available"`
	Status    string `json:"status"`
}

// Time parses the snapshot timestamp.
func (s Snapshot) Time() (time.Time, error) {
	return time.Parse(waybackLayout, s.Timestamp)
}

type waybackResponse struct {
	ArchivedSnapshots struct {
		Closest *Snapshot `json:"closest"`
	} `json:"archived_snapshots"`
}

// Wayback returns the closest archived snapshot of pageURL. A page with
// no available snapshot returns ErrNoResults.
func (c *Client) Wayback(ctx context.Context, pageURL string) (*Snapshot, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, fmt.Errorf("empty URL")
	}
	reqURL := c.Config.WaybackURL + "?" + url.Values{"url": {pageURL}}.Encode()

	var resp waybackResponse
	if err := c.HTTP.GetJSON(ctx, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("wayback lookup: %w", err)
	}
	snap := resp.ArchivedSnapshots.Closest
	if snap == nil || !snap.Available || snap.URL == "" {
		c.Logger.Debug("no wayback snapshot", zap.String("url", pageURL))
		return nil, ErrNoResults
	}
	c.Logger.Debug("wayback snapshot", zap.String("url", pageURL), zap.String("snapshot", snap.URL))
	return snap, nil
}

// Citoid generates citation data for a URL, DOI, ISBN, PMID or free
// query. The first returned citation is used.
func (c *Client) Citoid(ctx context.Context, query string) (map[string]any, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty citation query")
	}
	reqURL := c.Config.CitoidURL + url.PathEscape(query)

	var results []map[string]any
	if err := c.HTTP.GetJSON(ctx, reqURL, &results); err != nil {
		return nil, fmt.Errorf("citoid lookup: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	c.Logger.Debug("citoid result", zap.String("query", query), zap.Int("fields", len(results[0])))
	return results[0], nil
}

type pageSource struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// TemplateTypeMap reads the wiki page mapping Citoid item types (book,
// webpage, journalArticle, ...) to citation template names.
func (c *Client) TemplateTypeMap(ctx context.Context) (map[string]string, error) {
	title := strings.ReplaceAll(c.Config.TemplateMapTitle, " ", "_")
	reqURL := strings.TrimRight(c.Config.RESTURL, "/") + "/v1/page/" + url.PathEscape(title)

	var page pageSource
	if err := c.HTTP.GetJSON(ctx, reqURL, &page); err != nil {
		return nil, fmt.Errorf("reading template type map: %w", err)
	}
	var typeMap map[string]string
	if err := json.Unmarshal([]byte(page.Source), &typeMap); err != nil {
		return nil, fmt.Errorf("parsing template type map %s: %w", c.Config.TemplateMapTitle, err)
	}
	return typeMap, nil
}

// SearchTitles returns up to the configured limit of page titles starting
// with prefix, optionally restricted to a namespace number.
func (c *Client) SearchTitles(ctx context.Context, prefix string, namespace int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}
	limit := c.Config.SearchLimit
	if limit <= 0 {
		limit = 5
	}
	params := url.Values{
		"action":        {"opensearch"},
		"search":        {prefix},
		"limit":         {strconv.Itoa(limit)},
		"namespace":     {strconv.Itoa(namespace)},
		"redirects":     {"resolve"},
		"format":        {"json"},
		"formatversion": {"2"},
	}
	reqURL := c.Config.APIURL + "?" + params.Encode()

	var resp []json.RawMessage
	if err := c.HTTP.GetJSON(ctx, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("title search: %w", err)
	}
	if len(resp) < 2 {
		return nil, fmt.Errorf("title search: malformed response")
	}
	var titles []string
	if err := json.Unmarshal(resp[1], &titles); err != nil {
		return nil, fmt.Errorf("title search: %w", err)
	}
	return titles, nil
}
