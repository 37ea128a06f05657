// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/internal/citation"
	"github.com/pdiddy/wikicite/internal/lookup"
	"github.com/pdiddy/wikicite/pkg/types"
)

// StatusLevel grades the outcome of a form helper.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusWarning
	StatusError
)

func (l StatusLevel) String() string {
	switch l {
	case StatusInfo:
		return "info"
	case StatusSuccess:
		return "success"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Status is the user-facing result of a form helper. Lookup failures are
// reported here instead of as errors; they never abort editing.
type Status struct {
	Level   StatusLevel
	Message string
	Err     error
}

// OK reports whether the helper changed the citation.
func (s Status) OK() bool { return s.Level == StatusSuccess }

func (s *Session) status(level StatusLevel, err error, key string, args ...string) Status {
	return Status{Level: level, Message: s.messages.Format(key, args...), Err: err}
}

// NewReference returns an unsaved <ref> holding an empty invocation of the
// last selected template.
func (s *Session) NewReference(ctx context.Context) citation.Item {
	r := citation.NewReference(s.reg, "<ref></ref>", -1)
	r.Wikitext = ""
	if name := s.reg.Resolve(s.pref(ctx, PrefTemplateSelected)); name != "" {
		r.SelectTemplate(name)
	}
	return citation.ReferenceItem(r)
}

// NewTemplate returns an unsaved invocation of the last selected template.
func (s *Session) NewTemplate(ctx context.Context) (citation.Item, error) {
	name := s.reg.Resolve(s.pref(ctx, PrefTemplateSelected))
	if name == "" {
		return citation.Item{}, ErrNoTemplate
	}
	t := citation.NewTemplate(s.reg, "{{"+name+"}}", -1)
	t.Wikitext = ""
	return citation.TemplateItem(t), nil
}

// AddReference inserts a new reference at the selection.
func (s *Session) AddReference(ctx context.Context) (citation.Item, error) {
	it := s.NewReference(ctx)
	return it, s.Insert(it)
}

// AddTemplate inserts a new template invocation at the selection.
func (s *Session) AddTemplate(ctx context.Context) (citation.Item, error) {
	it, err := s.NewTemplate(ctx)
	if err != nil {
		return it, err
	}
	return it, s.Insert(it)
}

// TemplateOptions returns the templates that can be selected, without the
// ones excluded from <ref> tags when inRef is set.
func (s *Session) TemplateOptions(inRef bool) []string {
	var names []string
	for _, name := range s.reg.Names() {
		if inRef && s.noRef[name] {
			continue
		}
		names = append(names, name)
	}
	return names
}

// SelectTemplate switches the item's citation template and remembers the
// choice for new citations. Parameters carry over under the new schema.
func (s *Session) SelectTemplate(ctx context.Context, it citation.Item, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNoTemplate
	}
	switch it.Kind {
	case citation.KindReference:
		it.Reference.SelectTemplate(name)
	case citation.KindTemplate:
		it.Template.SetName(name)
	default:
		return ErrNoTemplate
	}
	s.setPref(ctx, PrefTemplateSelected, s.reg.Normalize(name))
	s.logger.Debug("selected template", zap.String("template", name))
	return nil
}

// SetField sets a citation parameter by name or alias.
func (s *Session) SetField(it citation.Item, key, value string) error {
	switch it.Kind {
	case citation.KindReference:
		return it.Reference.SetParam(key, value)
	case citation.KindTemplate:
		it.Template.SetParam(key, value)
		return nil
	}
	return ErrNoTemplate
}

// Fields returns the form fields of the item's citation.
func (s *Session) Fields(it citation.Item) []types.Field {
	return it.Fields()
}

// setCitation replaces the item's citation with t.
func setCitation(it citation.Item, t *citation.Template) {
	switch it.Kind {
	case citation.KindReference:
		it.Reference.SetTemplate(t)
	case citation.KindTemplate:
		it.Template.Assign(t)
	}
}

// Generate fills the item's citation from input. Text that reads like a
// typed citation ("Smith, John (2020). Title.") is converted locally;
// anything else (a URL, DOI or ISBN) is sent to Citoid and mapped through
// the template chosen for the returned item type.
func (s *Session) Generate(ctx context.Context, it citation.Item, input string) Status {
	input = strings.TrimSpace(input)
	if input == "" {
		return s.status(StatusWarning, nil, "generate-no-input")
	}

	if t := citation.FromPlainText(s.reg, input); t != nil {
		s.normalizeDates(t)
		setCitation(it, t)
		s.logger.Info("generated citation from text", zap.String("template", t.Name))
		return s.status(StatusSuccess, nil, "generate-done")
	}

	if s.lookup == nil {
		return s.status(StatusWarning, nil, "lookup-unavailable")
	}
	data, err := s.lookup.Citoid(ctx, input)
	if err != nil {
		s.logger.Warn("citoid lookup failed", zap.String("query", input), zap.Error(err))
		return s.status(StatusWarning, err, "generate-error", err.Error())
	}

	name := s.templateFor(ctx, data)
	if name == "" {
		return s.status(StatusWarning, ErrNoTemplate, "no-template")
	}
	t := citation.NewTemplate(s.reg, "{{"+name+"}}", -1)
	citation.ApplyCitoid(t, data)
	s.normalizeDates(t)
	setCitation(it, t)
	s.logger.Info("generated citation from citoid",
		zap.String("template", name), zap.Int("params", t.Params.Len()))
	return s.status(StatusSuccess, nil, "generate-done")
}

// templateFor picks the template for a Citoid item type from the wiki's
// type map, falling back to the generic Citation template.
func (s *Session) templateFor(ctx context.Context, data map[string]any) string {
	itemType, _ := data["itemType"].(string)
	if itemType != "" {
		typeMap, err := s.lookup.TemplateTypeMap(ctx)
		if err != nil {
			s.logger.Debug("template type map unavailable", zap.Error(err))
		} else if name := typeMap[itemType]; name != "" && s.reg.Known(name) {
			return s.reg.Normalize(name)
		}
	}
	return s.reg.Resolve("Citation")
}

// Archive looks up the closest Wayback Machine snapshot of the citation's
// url and fills archive-url and archive-date.
func (s *Session) Archive(ctx context.Context, it citation.Item) Status {
	t := it.Citation()
	if t == nil {
		return s.status(StatusWarning, ErrNoTemplate, "no-template")
	}
	pageURL := strings.TrimSpace(t.Params.Get("url"))
	if pageURL == "" {
		return s.status(StatusWarning, nil, "archive-no-url")
	}
	if s.lookup == nil {
		return s.status(StatusWarning, nil, "lookup-unavailable")
	}

	snap, err := s.lookup.Wayback(ctx, pageURL)
	if errors.Is(err, lookup.ErrNoResults) {
		return s.status(StatusWarning, err, "archive-no-snapshot")
	}
	if err != nil {
		s.logger.Warn("wayback lookup failed", zap.String("url", pageURL), zap.Error(err))
		return s.status(StatusWarning, err, "archive-error", err.Error())
	}

	date := s.NormalizeDate(snap.Timestamp)
	if err := s.SetField(it, "archive-url", snap.URL); err != nil {
		return s.status(StatusError, err, "no-template")
	}
	if err := s.SetField(it, "archive-date", date); err != nil {
		return s.status(StatusError, err, "no-template")
	}
	s.logger.Info("archived url", zap.String("url", pageURL), zap.String("snapshot", snap.URL))
	return s.status(StatusSuccess, nil, "archive-done", date)
}

// Today sets a date field to the current date.
func (s *Session) Today(it citation.Item, key string) error {
	return s.SetField(it, key, s.now().Format(s.dates.Day))
}

// dateLayouts are the date inputs NormalizeDate understands, with the
// precision each carries.
var dateLayouts = []struct {
	layout    string
	precision int
}{
	{"2006-01-02", 3},
	{"20060102150405", 3},
	{time.RFC3339, 3},
	{"2 January 2006", 3},
	{"January 2, 2006", 3},
	{"Jan 2, 2006", 3},
	{"2 Jan 2006", 3},
	{"2006/01/02", 3},
	{"2006-01", 2},
	{"January 2006", 2},
	{"2006", 1},
}

// NormalizeDate rewrites a recognized date in the configured format for
// its precision (day, month or year). Anything else is returned unchanged.
func (s *Session) NormalizeDate(value string) string {
	trimmed := strings.TrimSpace(value)
	for _, l := range dateLayouts {
		d, err := time.Parse(l.layout, trimmed)
		if err != nil {
			continue
		}
		switch l.precision {
		case 3:
			return d.Format(s.dates.Day)
		case 2:
			return d.Format(s.dates.Month)
		default:
			return d.Format(s.dates.Year)
		}
	}
	return value
}

// NormalizeField normalizes the date held by a field.
func (s *Session) NormalizeField(it citation.Item, key string) error {
	t := it.Citation()
	if t == nil {
		return ErrNoTemplate
	}
	value := t.Params.Get(t.CanonicalKey(key))
	if value == "" {
		return nil
	}
	return s.SetField(it, key, s.NormalizeDate(value))
}

// normalizeDates normalizes every date-typed parameter of t.
func (s *Session) normalizeDates(t *citation.Template) {
	for _, f := range t.Fields() {
		if f.Value == "" || !isDateField(f) {
			continue
		}
		t.SetParam(f.Name, s.NormalizeDate(f.Value))
	}
}

func isDateField(f types.Field) bool {
	return f.Type == types.ParamDate || strings.HasSuffix(f.Name, "date")
}

// SearchTitles suggests page titles for a wiki-page-name field. Other
// fields get no suggestions.
func (s *Session) SearchTitles(ctx context.Context, it citation.Item, key, prefix string) ([]string, error) {
	t := it.Citation()
	if t == nil || s.lookup == nil {
		return nil, nil
	}
	p, ok := t.TemplateData().Param(t.CanonicalKey(key))
	if !ok || p.Type != types.ParamWikiPageName {
		return nil, nil
	}
	titles, err := s.lookup.SearchTitles(ctx, prefix, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.messages.Format("title-search-error", err.Error()), err)
	}
	return titles, nil
}
