// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wikicite/pkg/types"
)

// ExportEntry holds one cached bundle with its cache metadata.
type ExportEntry struct {
	Key       string              `json:"key" yaml:"key"`
	FetchedAt time.Time           `json:"fetched_at" yaml:"fetched_at"`
	Bundle    *types.SchemaBundle `json:"bundle" yaml:"bundle"`
}

// ExportYAML writes the schema cache to <dir>/schemas.yaml and returns the
// path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, "schemas.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the schema cache to <dir>/schemas.json and returns the
// path.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, "schemas.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	cached, err := s.CacheEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, 0, len(cached))
	for _, c := range cached {
		b, fetchedAt, err := s.LoadBundle(ctx, c.Key)
		if err != nil {
			return nil, err
		}
		if b == nil {
			continue
		}
		entries = append(entries, ExportEntry{Key: c.Key, FetchedAt: fetchedAt, Bundle: b})
	}
	return entries, nil
}
