// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session implements the citation editing actions over one
// document buffer: listing, highlighting, inserting, updating (with rename
// cascade), removing, reusing and normalizing citations, plus the form
// helpers that fill citation fields from lookup services.
//
// Every mutation reads the whole buffer, computes the new text by literal
// search-and-replace and writes it back with one SetText call. A session is
// not safe for concurrent use or under concurrent external edits.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/internal/citation"
	"github.com/pdiddy/wikicite/internal/document"
	"github.com/pdiddy/wikicite/internal/lookup"
	"github.com/pdiddy/wikicite/internal/schema"
	"github.com/pdiddy/wikicite/pkg/types"
)

// Preference keys.
const (
	PrefTemplateSelected = "template-selected"
	PrefNormalizeConfirm = "normalize-confirm"
)

// Sentinel errors.
var (
	ErrNotFound         = errors.New("citation not found in text")
	ErrNameRequired     = errors.New("reference has no name")
	ErrUnlinkDependents = errors.New("reference name is still used by reuses or subreferences")
	ErrNotConfirmed     = errors.New("confirmation required")
	ErrNoTemplate       = citation.ErrNoTemplate
)

// Preferences is a keyed scalar store. Last write wins.
type Preferences interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Lookup is the set of external services used by the form helpers.
type Lookup interface {
	Wayback(ctx context.Context, pageURL string) (*lookup.Snapshot, error)
	Citoid(ctx context.Context, query string) (map[string]any, error)
	TemplateTypeMap(ctx context.Context) (map[string]string, error)
	SearchTitles(ctx context.Context, prefix string, namespace int) ([]string, error)
}

// Options configures a Session. Registry and Buffer are required.
type Options struct {
	Registry *schema.Registry
	Buffer   document.Buffer
	Prefs    Preferences
	Lookup   Lookup
	Messages *Messages
	Logger   *zap.Logger
	Dates    types.DateFormat

	// NoRefTemplates are not offered inside <ref> tags.
	NoRefTemplates []string

	// Now is replaced in tests.
	Now func() time.Time
}

// Session edits the citations of one document.
type Session struct {
	reg      *schema.Registry
	buf      document.Buffer
	prefs    Preferences
	lookup   Lookup
	messages *Messages
	logger   *zap.Logger
	dates    types.DateFormat
	noRef    map[string]bool
	now      func() time.Time
}

// New returns a session for opts.
func New(opts Options) *Session {
	s := &Session{
		reg:      opts.Registry,
		buf:      opts.Buffer,
		prefs:    opts.Prefs,
		lookup:   opts.Lookup,
		messages: opts.Messages,
		logger:   opts.Logger,
		dates:    opts.Dates,
		noRef:    make(map[string]bool),
		now:      opts.Now,
	}
	if s.messages == nil {
		s.messages = DefaultMessages()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	defaults := types.DefaultConfig().Dates
	if s.dates.Day == "" {
		s.dates.Day = defaults.Day
	}
	if s.dates.Month == "" {
		s.dates.Month = defaults.Month
	}
	if s.dates.Year == "" {
		s.dates.Year = defaults.Year
	}
	for _, name := range opts.NoRefTemplates {
		s.noRef[s.reg.Normalize(name)] = true
	}
	return s
}

// Messages returns the session's message table.
func (s *Session) Messages() *Messages { return s.messages }

// Registry returns the schema registry.
func (s *Session) Registry() *schema.Registry { return s.reg }

// List re-scans the buffer and returns the citation items matching query
// (every item for an empty query).
func (s *Session) List(query string) []citation.Item {
	items := citation.BuildList(s.reg, s.buf.Text())
	filtered := citation.Filter(items, query)
	s.logger.Debug("listed citations", zap.Int("items", len(items)), zap.Int("matching", len(filtered)))
	return filtered
}

// Locate finds the item's span in the current text: at its remembered
// index when the text there is unchanged, otherwise at the first literal
// occurrence of its wikitext. Identical citations may resolve to the wrong
// occurrence.
func (s *Session) Locate(it citation.Item) (start, end int, err error) {
	return locate(s.buf.Text(), it.Index(), it.Wikitext())
}

func locate(text string, index int, wikitext string) (int, int, error) {
	if wikitext == "" {
		return 0, 0, ErrNotFound
	}
	if index >= 0 && index+len(wikitext) <= len(text) && text[index:index+len(wikitext)] == wikitext {
		return index, index + len(wikitext), nil
	}
	if i := strings.Index(text, wikitext); i >= 0 {
		return i, i + len(wikitext), nil
	}
	return 0, 0, ErrNotFound
}

// Highlight selects the item's span and scrolls it into view.
func (s *Session) Highlight(it citation.Item) error {
	start, end, err := s.Locate(it)
	if err != nil {
		return err
	}
	s.buf.SetSelection(start, end)
	s.buf.ScrollToSelection()
	return nil
}

// Insert writes the item's wikitext over the current selection (at the
// caret when nothing is selected) and selects it.
func (s *Session) Insert(it citation.Item) error {
	return s.insertText(it, it.ToWikitext())
}

// Reuse inserts a self-closing tag pointing at the named reference.
func (s *Session) Reuse(it citation.Item) error {
	if it.Kind != citation.KindReference || it.Reference.Name == "" {
		return ErrNameRequired
	}
	r := it.Reference
	reuse := &citation.Reference{Name: r.Name, Group: r.Group}
	text := reuse.ToWikitext()

	start, end := s.buf.Selection()
	if err := s.buf.SetText(document.Splice(s.buf.Text(), start, end, text)); err != nil {
		return fmt.Errorf("writing text: %w", err)
	}
	s.buf.SetSelection(start, start+len(text))
	s.logger.Info("reused reference", zap.String("name", r.Name), zap.Int("offset", start))
	return nil
}

func (s *Session) insertText(it citation.Item, text string) error {
	start, end := s.buf.Selection()
	if err := s.buf.SetText(document.Splice(s.buf.Text(), start, end, text)); err != nil {
		return fmt.Errorf("writing text: %w", err)
	}
	it.SetWikitext(text)
	setIndex(it, start)
	s.buf.SetSelection(start, start+len(text))
	s.logger.Info("inserted citation", zap.String("kind", it.Kind.String()), zap.Int("offset", start))
	return nil
}

func setIndex(it citation.Item, index int) {
	switch it.Kind {
	case citation.KindReference:
		it.Reference.Index = index
	case citation.KindTemplate:
		it.Template.Index = index
	}
}

// Update writes the item's current state over its span in the text. When a
// named reference was renamed, its reuses and subreferences (found in the
// current text under the old name) are rewritten to the new name first.
// Clearing the name of a reference that still has dependents fails with
// ErrUnlinkDependents.
func (s *Session) Update(it citation.Item) error {
	text := s.buf.Text()
	start, end, err := locate(text, it.Index(), it.Wikitext())
	if err != nil {
		return err
	}

	var deps []*citation.Reference
	if it.Kind == citation.KindReference {
		deps, err = s.cascade(text, it.Reference)
		if err != nil {
			return err
		}
	}

	rendered := it.ToWikitext()
	text = document.Splice(text, start, end, rendered)
	for _, dep := range deps {
		text = document.ReplaceFirst(text, dep.Wikitext, dep.ToWikitext())
	}
	if err := s.buf.SetText(text); err != nil {
		return fmt.Errorf("writing text: %w", err)
	}

	it.SetWikitext(rendered)
	setIndex(it, start)
	for _, dep := range deps {
		dep.Wikitext = dep.ToWikitext()
	}
	s.buf.SetSelection(start, start+len(rendered))
	s.buf.ScrollToSelection()
	s.logger.Info("updated citation",
		zap.String("kind", it.Kind.String()),
		zap.String("name", it.Name()),
		zap.Int("dependents", len(deps)))
	return nil
}

// cascade binds r's dependents found in text under the name its span was
// written with and points them at r's current name. It returns the
// dependents whose text changes.
func (s *Session) cascade(text string, r *citation.Reference) ([]*citation.Reference, error) {
	if r.Role() == citation.RoleReuse {
		return nil, nil
	}
	oldName := citation.NewReference(s.reg, r.Wikitext, -1).Name
	if oldName == "" {
		return nil, nil
	}

	r.Reuses = citation.FindReuses(s.reg, text, oldName)
	r.Subrefs = citation.FindSubrefs(s.reg, text, oldName)
	if oldName == r.Name {
		return nil, nil
	}
	deps := r.Dependents()
	if r.Name == "" && len(deps) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnlinkDependents, s.messages.Format("unlink-dependents", fmt.Sprint(len(deps))))
	}
	r.Cascade()
	return deps, nil
}

// Dependents returns the reuses and subreferences bound by name to a
// content-bearing reference in the current text.
func (s *Session) Dependents(it citation.Item) []*citation.Reference {
	if it.Kind != citation.KindReference {
		return nil
	}
	it.Reference.Resolve(s.buf.Text())
	return it.Reference.Dependents()
}

// Remove deletes the item from the text. A named reference with reuses or
// subreferences is only removed together with them, and only when
// confirm is set; otherwise ErrNotConfirmed is returned and nothing
// changes.
func (s *Session) Remove(it citation.Item, confirm bool) error {
	text := s.buf.Text()
	start, end, err := locate(text, it.Index(), it.Wikitext())
	if err != nil {
		return err
	}

	deps := s.Dependents(it)
	if len(deps) > 0 && !confirm {
		return fmt.Errorf("%w: %s", ErrNotConfirmed, s.messages.Format("remove-confirm", fmt.Sprint(len(deps))))
	}

	text = document.Splice(text, start, end, "")
	for _, dep := range deps {
		text = document.ReplaceFirst(text, dep.Wikitext, "")
	}
	if err := s.buf.SetText(text); err != nil {
		return fmt.Errorf("writing text: %w", err)
	}
	s.buf.SetSelection(start, start)
	s.logger.Info("removed citation", zap.String("name", it.Name()), zap.Int("dependents", len(deps)))
	return nil
}

// Normalize rewrites every listed citation (and every subreference) in
// canonical form and returns how many spans changed. The first run needs
// confirm; the confirmation is remembered in the preferences.
func (s *Session) Normalize(ctx context.Context, confirm bool) (int, error) {
	if !confirm && !s.prefBool(ctx, PrefNormalizeConfirm) {
		return 0, fmt.Errorf("%w: %s", ErrNotConfirmed, s.messages.Format("normalize-confirm"))
	}
	if confirm {
		s.setPref(ctx, PrefNormalizeConfirm, "true")
	}

	type span struct {
		index    int
		old, new string
	}
	var spans []span
	seen := make(map[int]bool)
	add := func(index int, old, rendered string) {
		if old != rendered && !seen[index] {
			seen[index] = true
			spans = append(spans, span{index, old, rendered})
		}
	}

	text := s.buf.Text()
	for _, it := range citation.BuildList(s.reg, text) {
		add(it.Index(), it.Wikitext(), it.ToWikitext())
		if it.Kind == citation.KindReference {
			for _, sub := range it.Reference.Subrefs {
				add(sub.Index, sub.Wikitext, sub.ToWikitext())
			}
		}
	}
	if len(spans) == 0 {
		return 0, nil
	}

	// Splice from the end so earlier offsets stay valid.
	sort.Slice(spans, func(i, j int) bool { return spans[i].index > spans[j].index })
	for _, sp := range spans {
		text = document.Splice(text, sp.index, sp.index+len(sp.old), sp.new)
	}
	if err := s.buf.SetText(text); err != nil {
		return 0, fmt.Errorf("writing text: %w", err)
	}
	s.logger.Info("normalized citations", zap.Int("changed", len(spans)))
	return len(spans), nil
}

// Dirty reports whether the item was edited since it was listed: its
// rendering differs from the rendering of the span it was read from.
func (s *Session) Dirty(it citation.Item) bool {
	var original string
	switch it.Kind {
	case citation.KindReference:
		original = citation.NewReference(s.reg, it.Wikitext(), -1).ToWikitext()
	case citation.KindTemplate:
		original = citation.NewTemplate(s.reg, it.Wikitext(), -1).ToWikitext()
	default:
		return false
	}
	return original != it.ToWikitext()
}

func (s *Session) prefBool(ctx context.Context, key string) bool {
	return s.pref(ctx, key) == "true"
}

func (s *Session) pref(ctx context.Context, key string) string {
	if s.prefs == nil {
		return ""
	}
	v, err := s.prefs.Get(ctx, key)
	if err != nil {
		s.logger.Warn("reading preference", zap.String("key", key), zap.Error(err))
		return ""
	}
	return v
}

func (s *Session) setPref(ctx context.Context, key, value string) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.Set(ctx, key, value); err != nil {
		s.logger.Warn("writing preference", zap.String("key", key), zap.Error(err))
	}
}
