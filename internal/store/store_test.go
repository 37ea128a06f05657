// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wikicite/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{Dir: filepath.Join(t.TempDir(), "state")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testBundle() *types.SchemaBundle {
	b := types.NewSchemaBundle()
	b.Templates["Cite web"] = &types.TemplateData{
		Params: map[string]types.ParamData{
			"url":   {Type: types.ParamURL, Required: true},
			"title": {Type: types.ParamString},
		},
		ParamOrder: []string{"url", "title"},
		Format:     "inline",
	}
	b.Aliases["Cite-web"] = "Cite web"
	return b
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	v, err := s.Get(ctx, "template-selected")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.Set(ctx, "template-selected", "Cite book"))
	require.NoError(t, s.Set(ctx, "template-selected", "Cite web"))
	require.NoError(t, s.Set(ctx, "normalize-confirm", "true"))

	v, err = s.Get(ctx, "template-selected")
	require.NoError(t, err)
	assert.Equal(t, "Cite web", v)

	all, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"template-selected": "Cite web", "normalize-confirm": "true"}, all)
}

func TestPreferencesPersistAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewStore(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Close())

	s, err = NewStore(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestBundleCache(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return fetched }

	b, at, err := s.LoadBundle(ctx, "Cite web")
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.True(t, at.IsZero())

	require.NoError(t, s.SaveBundle(ctx, "Cite web", testBundle()))

	b, at, err = s.LoadBundle(ctx, "Cite web")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, fetched.Equal(at))
	assert.Equal(t, []string{"url", "title"}, b.Templates["Cite web"].Order())
	assert.Equal(t, "Cite web", b.Aliases["Cite-web"])

	entries, err := s.CacheEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Templates)
	assert.Equal(t, time.Hour, entries[0].Age(fetched.Add(time.Hour)))

	n, err := s.ClearCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	entries, err = s.CacheEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.SaveBundle(ctx, "Cite web", testBundle()))

	path, err := s.ExportYAML(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "schemas.yaml"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fromYAML []ExportEntry
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "Cite web", fromYAML[0].Key)
	assert.True(t, fromYAML[0].Bundle.Templates["Cite web"].Params["url"].Required)

	path, err = s.ExportJSON(ctx)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	var fromJSON []ExportEntry
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 1)
	assert.Equal(t, []string{"url", "title"}, fromJSON[0].Bundle.Templates["Cite web"].Order())
}
