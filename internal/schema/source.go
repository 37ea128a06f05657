// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wikicite/internal/httputil"
	"github.com/pdiddy/wikicite/pkg/types"
)

// Source fetches the schemas and redirect aliases of a set of templates.
type Source interface {
	Fetch(ctx context.Context, names []string) (*types.SchemaBundle, error)
}

// Load fetches names from src and loads the result into r. On error the
// registry is left unchanged, so affected templates stay unknown.
func Load(ctx context.Context, r *Registry, src Source, names []string) error {
	b, err := src.Fetch(ctx, names)
	if err != nil {
		return err
	}
	r.Load(b)
	return nil
}

// --- MediaWiki API ---

// MediaWikiSource reads schemas from the TemplateData API and template
// redirects from the query API of a MediaWiki site.
type MediaWikiSource struct {
	Client    *httputil.Client
	APIURL    string
	Namespace string
	Logger    *zap.Logger
}

// NewMediaWikiSource returns a source for the API at cfg.APIURL.
func NewMediaWikiSource(cfg types.SchemaConfig, client *httputil.Client, logger *zap.Logger) *MediaWikiSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = "Template"
	}
	return &MediaWikiSource{Client: client, APIURL: cfg.APIURL, Namespace: ns, Logger: logger}
}

type templateDataResponse struct {
	Pages map[string]json.RawMessage `json:"pages"`
}

type redirectsResponse struct {
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Redirects []struct {
				Title string `json:"title"`
			} `json:"redirects"`
		} `json:"pages"`
	} `json:"query"`
}

// Fetch queries action=templatedata for the schemas and prop=redirects for
// the aliases. Missing pages are skipped.
func (s *MediaWikiSource) Fetch(ctx context.Context, names []string) (*types.SchemaBundle, error) {
	b := types.NewSchemaBundle()
	if len(names) == 0 {
		return b, nil
	}
	titles := make([]string, len(names))
	for i, name := range names {
		titles[i] = s.Namespace + ":" + name
	}
	joined := strings.Join(titles, "|")

	q := url.Values{}
	q.Set("action", "templatedata")
	q.Set("titles", joined)
	q.Set("redirects", "1")
	q.Set("includeMissingTitles", "1")
	q.Set("format", "json")
	q.Set("formatversion", "2")

	var tdResp templateDataResponse
	if err := s.Client.GetJSON(ctx, s.APIURL+"?"+q.Encode(), &tdResp); err != nil {
		return nil, fmt.Errorf("fetching template data: %w", err)
	}
	for id, raw := range tdResp.Pages {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("decoding page %s: %w", id, err)
		}
		if _, missing := probe["missing"]; missing {
			s.Logger.Debug("template has no data", zap.ByteString("title", probe["title"]))
			continue
		}
		td := new(types.TemplateData)
		if err := json.Unmarshal(raw, td); err != nil {
			return nil, fmt.Errorf("decoding page %s: %w", id, err)
		}
		b.Templates[stripNamespace(td.Title)] = td
	}

	q = url.Values{}
	q.Set("action", "query")
	q.Set("titles", joined)
	q.Set("prop", "redirects")
	q.Set("rdlimit", "max")
	q.Set("rdnamespace", "10")
	q.Set("format", "json")
	q.Set("formatversion", "2")

	var rdResp redirectsResponse
	if err := s.Client.GetJSON(ctx, s.APIURL+"?"+q.Encode(), &rdResp); err != nil {
		return nil, fmt.Errorf("fetching template redirects: %w", err)
	}
	for _, page := range rdResp.Query.Pages {
		name := stripNamespace(page.Title)
		for _, rd := range page.Redirects {
			b.Aliases[stripNamespace(rd.Title)] = name
		}
	}

	s.Logger.Info("fetched template schemas",
		zap.Int("templates", len(b.Templates)),
		zap.Int("aliases", len(b.Aliases)))
	return b, nil
}

// stripNamespace removes everything up to the first colon of a page title.
func stripNamespace(title string) string {
	if i := strings.IndexByte(title, ':'); i >= 0 {
		return title[i+1:]
	}
	return title
}

// --- bundle file ---

// FileSource reads a schema bundle from a YAML or JSON file.
type FileSource struct {
	Path string
}

// Fetch reads the bundle and keeps the requested templates and the
// aliases that point at them. An empty names list keeps everything.
func (s FileSource) Fetch(_ context.Context, names []string) (*types.SchemaBundle, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading schema bundle: %w", err)
	}

	b := types.NewSchemaBundle()
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".json":
		err = json.Unmarshal(data, b)
	default:
		err = yaml.Unmarshal(data, b)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing schema bundle %s: %w", s.Path, err)
	}
	if b.Templates == nil {
		b.Templates = make(map[string]*types.TemplateData)
	}
	if b.Aliases == nil {
		b.Aliases = make(map[string]string)
	}
	return filterBundle(b, names), nil
}

func filterBundle(b *types.SchemaBundle, names []string) *types.SchemaBundle {
	if len(names) == 0 {
		return b
	}
	out := types.NewSchemaBundle()
	for _, name := range names {
		if td, ok := b.Templates[name]; ok {
			out.Templates[name] = td
		}
	}
	for alias, name := range b.Aliases {
		if _, ok := out.Templates[name]; ok {
			out.Aliases[alias] = name
		}
	}
	return out
}

// --- cache ---

// BundleCache stores fetched bundles under a key.
type BundleCache interface {
	LoadBundle(ctx context.Context, key string) (*types.SchemaBundle, time.Time, error)
	SaveBundle(ctx context.Context, key string, b *types.SchemaBundle) error
}

// CachedSource serves bundles from a cache while they are younger than
// TTL and refreshes them from Upstream otherwise. When the refresh fails a
// stale cached bundle is served instead.
type CachedSource struct {
	Upstream Source
	Cache    BundleCache
	TTL      time.Duration
	Logger   *zap.Logger

	// Now is replaced in tests.
	Now func() time.Time
}

// CacheKey identifies a set of template names independent of order.
func CacheKey(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// Fetch implements Source.
func (s *CachedSource) Fetch(ctx context.Context, names []string) (*types.SchemaBundle, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	key := CacheKey(names)

	cached, fetchedAt, err := s.Cache.LoadBundle(ctx, key)
	if err != nil {
		logger.Warn("reading schema cache", zap.Error(err))
		cached = nil
	}
	if cached != nil && now().Sub(fetchedAt) < s.TTL {
		logger.Debug("schema cache hit", zap.Time("fetched_at", fetchedAt))
		return cached, nil
	}

	fresh, err := s.Upstream.Fetch(ctx, names)
	if err != nil {
		if cached != nil {
			logger.Warn("serving stale schemas", zap.Error(err), zap.Time("fetched_at", fetchedAt))
			return cached, nil
		}
		return nil, err
	}
	if err := s.Cache.SaveBundle(ctx, key, fresh); err != nil {
		logger.Warn("writing schema cache", zap.Error(err))
	}
	return fresh, nil
}
