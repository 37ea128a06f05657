// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/wikicite/internal/schema"
	"github.com/pdiddy/wikicite/internal/store"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the cached template schemas",
	Long: `Schema manages the TemplateData bundles cached in the local store.
Bundles are fetched from the wiki when a command needs them and the cached
copy is older than schema.cache_ttl.`,
}

var schemaFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the configured templates from the wiki and cache them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		src := schema.NewMediaWikiSource(cfg.Schema, newHTTPClient(cfg.Schema.HTTPConfig), logger)
		b, err := src.Fetch(cmd.Context(), cfg.Schema.Templates)
		if err != nil {
			return err
		}
		if err := st.SaveBundle(cmd.Context(), schema.CacheKey(cfg.Schema.Templates), b); err != nil {
			return err
		}
		fmt.Printf("Cached %d templates, %d aliases\n", len(b.Templates), len(b.Aliases))
		for _, name := range b.Names() {
			fmt.Println("  ", name)
		}
		return nil
	},
}

var schemaStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the cached schema bundles and their age",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), "")
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.store.CacheEntries(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No cached schemas.")
			return nil
		}

		now := time.Now()
		fmt.Fprintf(os.Stdout, "%-10s  %-16s  %s\n", "Templates", "Fetched", "Key")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 70))
		for _, e := range entries {
			state := ""
			if e.Age(now) >= a.cfg.Schema.CacheTTL {
				state = " (stale)"
			}
			fmt.Fprintf(os.Stdout, "%-10d  %-16s  %s\n",
				e.Templates, humanize.Time(e.FetchedAt)+state, truncate(e.Key, 40))
		}
		fmt.Fprintf(os.Stdout, "\n%d templates loaded: %s\n",
			len(a.reg.Names()), strings.Join(a.reg.Names(), ", "))
		return nil
	},
}

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the cached schema bundles to YAML or JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		a, err := openApp(cmd.Context(), "")
		if err != nil {
			return err
		}
		defer a.Close()

		var path string
		switch format {
		case "yaml", "":
			path, err = a.store.ExportYAML(cmd.Context())
		case "json":
			path, err = a.store.ExportJSON(cmd.Context())
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		fmt.Println("Exported to", path)
		return nil
	},
}

var schemaClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached schema bundles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), "")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.store.ClearCache(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %s cached bundles\n", humanize.Comma(n))
		return nil
	},
}

func init() {
	schemaExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	schemaCmd.AddCommand(schemaFetchCmd)
	schemaCmd.AddCommand(schemaStatusCmd)
	schemaCmd.AddCommand(schemaExportCmd)
	schemaCmd.AddCommand(schemaClearCmd)

	rootCmd.AddCommand(schemaCmd)
}
