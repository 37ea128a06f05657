// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/wikicite/internal/httputil"
	"github.com/pdiddy/wikicite/pkg/types"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := types.LookupConfig{
		HTTPConfig:       types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "wikicite-test"},
		APIURL:           srv.URL + "/w/api.php",
		RESTURL:          srv.URL + "/w/rest.php",
		CitoidURL:        srv.URL + "/citation/mediawiki/",
		WaybackURL:       srv.URL + "/wayback/available",
		TemplateMapTitle: "MediaWiki:Citoid-template-type-map.json",
		SearchLimit:      3,
	}
	logger := zaptest.NewLogger(t)
	return NewClient(cfg, httputil.NewClient(cfg.HTTPConfig, "", "", logger), logger)
}

func TestWayback(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wayback/available", r.URL.Path)
		assert.Equal(t, "http://example.com/page", r.URL.Query().Get("url"))
		w.Write([]byte(`{"archived_snapshots":{"closest":{"available":true,"status":"200",
			"url":"http://web.archive.org/web/20130919044612/http://example.com/page","timestamp":"20130919044612"}}}`))
	})

	snap, err := c.Wayback(context.Background(), " http://example.com/page ")
	require.NoError(t, err)
	assert.Equal(t, "http://web.archive.org/web/20130919044612/http://example.com/page", snap.URL)
	ts, err := snap.Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2013, 9, 19, 4, 46, 12, 0, time.UTC), ts)
}

func TestWaybackNoSnapshot(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"archived_snapshots":{}}`))
	})

	_, err := c.Wayback(context.Background(), "http://example.com/none")
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = c.Wayback(context.Background(), "")
	assert.Error(t, err)
}

func TestCitoid(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/citation/mediawiki/10.1000/xyz", r.URL.Path)
		w.Write([]byte(`[{"itemType":"journalArticle","title":"A study","author":[["Jane","Doe"]]},{"title":"second"}]`))
	})

	data, err := c.Citoid(context.Background(), "10.1000/xyz")
	require.NoError(t, err)
	assert.Equal(t, "journalArticle", data["itemType"])
	assert.Equal(t, "A study", data["title"])
}

func TestCitoidErrors(t *testing.T) {
	empty := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	_, err := empty.Citoid(context.Background(), "isbn")
	assert.ErrorIs(t, err, ErrNoResults)

	failing := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"Error":"Unable to load URL"}`))
	})
	_, err = failing.Citoid(context.Background(), "http://x")
	var statusErr *httputil.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestTemplateTypeMap(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/w/rest.php/v1/page/MediaWiki:Citoid-template-type-map.json", r.URL.Path)
		w.Write([]byte(`{"title":"MediaWiki:Citoid-template-type-map.json",
			"source":"{\"book\":\"Cite book\",\"webpage\":\"Cite web\"}"}`))
	})

	m, err := c.TemplateTypeMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"book": "Cite book", "webpage": "Cite web"}, m)
}

func TestSearchTitles(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "opensearch", q.Get("action"))
		assert.Equal(t, "Riv", q.Get("search"))
		assert.Equal(t, "3", q.Get("limit"))
		w.Write([]byte(`["Riv",["River","Rivet","Riviera"],["","",""],["u1","u2","u3"]]`))
	})

	titles, err := c.SearchTitles(context.Background(), "Riv", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"River", "Rivet", "Riviera"}, titles)

	titles, err = c.SearchTitles(context.Background(), "  ", 0)
	require.NoError(t, err)
	assert.Nil(t, titles)
}
