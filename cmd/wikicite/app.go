// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/internal/citation"
	"github.com/pdiddy/wikicite/internal/document"
	"github.com/pdiddy/wikicite/internal/httputil"
	"github.com/pdiddy/wikicite/internal/lookup"
	"github.com/pdiddy/wikicite/internal/schema"
	"github.com/pdiddy/wikicite/internal/session"
	"github.com/pdiddy/wikicite/internal/store"
	"github.com/pdiddy/wikicite/pkg/types"
)

// loadConfig returns the defaults overridden by the config file and
// WIKICITE_* environment variables.
func loadConfig() types.Config {
	cfg := types.DefaultConfig()

	setDuration(&cfg.Schema.Timeout, "http.timeout")
	setString(&cfg.Schema.UserAgent, "http.user_agent")
	cfg.Lookup.HTTPConfig = cfg.Schema.HTTPConfig

	setString(&cfg.Schema.APIURL, "schema.api_url")
	setString(&cfg.Schema.Namespace, "schema.namespace")
	setStrings(&cfg.Schema.Templates, "schema.templates")
	setStrings(&cfg.Schema.NoRefTemplates, "schema.noref_templates")
	setString(&cfg.Schema.File, "schema.file")
	setDuration(&cfg.Schema.CacheTTL, "schema.cache_ttl")
	setStrings(&cfg.Schema.Languages, "schema.languages")

	setString(&cfg.Lookup.APIURL, "lookup.api_url")
	setString(&cfg.Lookup.RESTURL, "lookup.rest_url")
	setString(&cfg.Lookup.CitoidURL, "lookup.citoid_url")
	setString(&cfg.Lookup.WaybackURL, "lookup.wayback_url")
	setString(&cfg.Lookup.TemplateMapTitle, "lookup.template_map_title")
	if viper.IsSet("lookup.search_limit") {
		cfg.Lookup.SearchLimit = viper.GetInt("lookup.search_limit")
	}

	setString(&cfg.Store.Dir, "store.dir")
	setString(&cfg.Dates.Day, "dates.day")
	setString(&cfg.Dates.Month, "dates.month")
	setString(&cfg.Dates.Year, "dates.year")
	setString(&cfg.MessagesFile, "messages_file")
	return cfg
}

func setString(dst *string, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetString(key)
	}
}

func setStrings(dst *[]string, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetStringSlice(key)
	}
}

func setDuration(dst *time.Duration, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetDuration(key)
	}
}

// app holds what one command invocation needs.
type app struct {
	cfg     types.Config
	store   *store.Store
	reg     *schema.Registry
	buf     *document.FileBuffer
	session *session.Session
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// newHTTPClient returns a client carrying the secrets' contact and token.
func newHTTPClient(cfg types.HTTPConfig) *httputil.Client {
	return httputil.NewClient(cfg, loadedSecrets.Contact(), loadedSecrets.Token(), logger)
}

// schemaSource picks the configured schema source: a bundle file, or the
// wiki API behind the SQLite cache.
func schemaSource(cfg types.SchemaConfig, st *store.Store) schema.Source {
	if cfg.File != "" {
		return schema.FileSource{Path: cfg.File}
	}
	var src schema.Source = schema.NewMediaWikiSource(cfg, newHTTPClient(cfg.HTTPConfig), logger)
	if cfg.CacheTTL > 0 && st != nil {
		src = &schema.CachedSource{Upstream: src, Cache: st, TTL: cfg.CacheTTL, Logger: logger}
	}
	return src
}

// openApp loads the configuration, the store and the template schemas,
// and creates a session over the file at path (an empty buffer when path
// is empty).
func openApp(ctx context.Context, path string) (*app, error) {
	a := &app{cfg: loadConfig()}

	st, err := store.NewStore(a.cfg.Store)
	if err != nil {
		return nil, err
	}
	a.store = st

	messages, err := session.LoadMessages(a.cfg.MessagesFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.reg = schema.NewRegistry(a.cfg.Schema.Languages...)
	if err := schema.Load(ctx, a.reg, schemaSource(a.cfg.Schema, st), a.cfg.Schema.Templates); err != nil {
		// Without schemas every template is unknown; listing still works.
		fmt.Fprintln(os.Stderr, messages.Format("schema-load-error", err.Error()))
		logger.Warn("loading schemas", zap.Error(err))
	}

	var buf document.Buffer = document.NewMemoryBuffer("")
	if path != "" {
		fb, err := document.OpenFile(path)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.buf = fb
		buf = fb
	}

	lookups := lookup.NewClient(a.cfg.Lookup, newHTTPClient(a.cfg.Lookup.HTTPConfig), logger)
	a.session = session.New(session.Options{
		Registry:       a.reg,
		Buffer:         buf,
		Prefs:          st,
		Lookup:         lookups,
		Messages:       messages,
		Logger:         logger,
		Dates:          a.cfg.Dates,
		NoRefTemplates: a.cfg.Schema.NoRefTemplates,
	})
	return a, nil
}

// item returns the citation numbered n (1-based) in the full list.
func (a *app) item(arg string) (citation.Item, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return citation.Item{}, fmt.Errorf("citation number %q: %w", arg, err)
	}
	items := a.session.List("")
	if n < 1 || n > len(items) {
		return citation.Item{}, fmt.Errorf("citation %d out of range (1-%d)", n, len(items))
	}
	return items[n-1], nil
}

// withSession runs fn with a session over args[0] and the citation
// numbered args[1] when the command takes one.
func withSession(cmd *cobra.Command, args []string, withItem bool, fn func(a *app, it citation.Item) error) error {
	a, err := openApp(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	var it citation.Item
	if withItem {
		if it, err = a.item(args[1]); err != nil {
			return err
		}
	}
	return fn(a, it)
}

// placeCaret moves the caret to --at, or to the end of the text.
func placeCaret(cmd *cobra.Command, buf document.Buffer) {
	at, _ := cmd.Flags().GetInt("at")
	if at < 0 || at > len(buf.Text()) {
		at = len(buf.Text())
	}
	buf.SetSelection(at, at)
}
