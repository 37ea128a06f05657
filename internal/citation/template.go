// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation models the citations of a wikitext document: template
// invocations, <ref> tags, the reuses and subreferences bound to a named
// reference, and the ordered list of top-level items. Models serialize
// back to canonical wikitext.
package citation

import (
	"strconv"
	"strings"

	"github.com/pdiddy/wikicite/internal/schema"
	"github.com/pdiddy/wikicite/internal/wikitext"
	"github.com/pdiddy/wikicite/pkg/types"
)

// Template is one template invocation. Params are keyed by canonical
// parameter name; the name each parameter was written under is kept so
// serialization never renames what the author wrote.
type Template struct {
	// Name is the template name as written, trimmed. It is empty for text
	// that is not a template invocation, such as a plain-text citation;
	// such templates serialize as their original Wikitext.
	Name string

	Params *wikitext.Params

	// Wikitext is the original span.
	Wikitext string

	// Index is the offset of Wikitext in the last document snapshot, or -1.
	Index int

	reg     *schema.Registry
	written map[string]string
}

// NewTemplate parses template wikitext found at index.
func NewTemplate(reg *schema.Registry, text string, index int) *Template {
	name, inner := wikitext.TemplateParts(text)
	t := &Template{Name: name, Wikitext: text, Index: index, reg: reg}
	if name == "" {
		t.Params = wikitext.NewParams()
		t.written = make(map[string]string)
		return t
	}
	t.Params, t.written = wikitext.SplitParams(inner, reg.ParamAliases(name))
	return t
}

// Canonical returns the normalized template name.
func (t *Template) Canonical() string {
	return t.reg.Normalize(t.Name)
}

// TemplateData returns the schema, or nil for unknown templates.
func (t *Template) TemplateData() *types.TemplateData {
	return t.reg.Template(t.Name)
}

// Known reports whether the template has a schema.
func (t *Template) Known() bool {
	return t.TemplateData() != nil
}

// ParamAliases returns the map from parameter alias to canonical name.
func (t *Template) ParamAliases() map[string]string {
	return t.TemplateData().ParamAliases()
}

// Key returns the name a parameter is written under: the alias the text
// used, or the canonical name.
func (t *Template) Key(name string) string {
	if k := t.written[name]; k != "" {
		return k
	}
	return name
}

// CanonicalKey maps a parameter name or alias to its canonical name.
func (t *Template) CanonicalKey(key string) string {
	if canonical, ok := t.ParamAliases()[key]; ok {
		return canonical
	}
	return key
}

// SetParam stores value under the canonical form of key. An empty value
// is kept in the model but omitted from serialization.
func (t *Template) SetParam(key, value string) {
	name := t.CanonicalKey(key)
	if t.written == nil {
		t.written = make(map[string]string)
	}
	if !t.Params.Has(name) && name != key {
		t.written[name] = key
	}
	t.Params.Set(name, value)
}

// SetName switches the template to another name and re-keys the
// parameters under the new schema's aliases.
func (t *Template) SetName(name string) {
	old := t.Params
	surfaces := make([]string, 0, old.Len())
	for _, key := range old.Keys() {
		surfaces = append(surfaces, t.Key(key))
	}

	t.Name = strings.TrimSpace(name)
	t.Params = wikitext.NewParams()
	t.written = make(map[string]string)
	for i, key := range old.Keys() {
		canonical := t.CanonicalKey(surfaces[i])
		t.Params.Set(canonical, old.Get(key))
		if canonical != surfaces[i] {
			t.written[canonical] = surfaces[i]
		}
	}
}

// Assign replaces the name and parameters of t with those of other,
// keeping t's Wikitext and Index.
func (t *Template) Assign(other *Template) {
	t.Name = other.Name
	t.Params = other.Params.Clone()
	t.written = make(map[string]string, len(other.written))
	for k, v := range other.written {
		t.written[k] = v
	}
}

// order returns the serialization order: declared order first, then
// undeclared parameters in encounter order.
func (t *Template) order() []string {
	order := t.TemplateData().Order()
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		seen[name] = true
	}
	for _, name := range t.Params.Keys() {
		if !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	return order
}

// Fields returns form fields for every declared parameter and every
// present parameter. Optional fields without a value are not visible.
func (t *Template) Fields() []types.Field {
	td := t.TemplateData()
	langs := append(append([]string(nil), t.reg.Languages()...), "en")

	var fields []types.Field
	for _, name := range t.order() {
		value := t.Params.Get(name)
		f := types.Field{
			Name:    name,
			Key:     t.Key(name),
			Value:   value,
			Label:   name,
			Visible: true,
		}
		if p, ok := td.Param(name); ok {
			if label := p.Label.In(langs...); label != "" {
				f.Label = label
			}
			f.Tooltip = p.Description.In(langs...)
			f.Type = p.Type
			f.Required = p.Required
			f.Suggested = p.Suggested
			f.Deprecated = bool(p.Deprecated)
			f.Suggestions = p.SuggestedValues
			f.Visible = value != "" || p.Required || p.Suggested
		}
		fields = append(fields, f)
	}
	return fields
}

// MissingRequired returns the declared required parameters that have no
// value.
func (t *Template) MissingRequired() []string {
	td := t.TemplateData()
	var missing []string
	for _, name := range td.Order() {
		p, _ := td.Param(name)
		if p.Required && strings.TrimSpace(t.Params.Get(name)) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// ToWikitext renders the template in canonical form. Blank parameters are
// omitted. A positional parameter is written without its key when it is
// the next anonymous position and its value holds no '='; otherwise the
// key is kept so the value stays at its position. Templates without a name
// return their original text.
func (t *Template) ToWikitext() string {
	if t.Name == "" {
		return t.Wikitext
	}
	block := t.TemplateData().IsBlock()

	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(t.Name)
	next := 1
	for _, name := range t.order() {
		value := strings.TrimSpace(t.Params.Get(name))
		if value == "" {
			continue
		}
		if block {
			b.WriteString("\r\n| ")
		} else {
			b.WriteString(" |")
		}
		if bare := name == strconv.Itoa(next) && !wikitext.ContainsTopLevel(value, '='); bare {
			next++
		} else {
			b.WriteString(t.Key(name))
			b.WriteByte('=')
		}
		b.WriteString(value)
	}
	if block {
		b.WriteString("\r\n")
	}
	b.WriteString("}}")
	return b.String()
}

// Snippet returns a short description: the first present required
// plain-text or content parameter, or the rendered template. Cite book
// snippets carry the chapter.
func (t *Template) Snippet() string {
	snippet := t.ToWikitext()
	td := t.TemplateData()
	for _, name := range t.Params.Keys() {
		p, ok := td.Param(name)
		if !ok {
			continue
		}
		if (p.Required && p.Type == types.ParamString) || p.Type == types.ParamContent {
			if v := t.Params.Get(name); v != "" {
				snippet = v
				break
			}
		}
	}
	if t.Canonical() == "Cite book" {
		if chapter := t.Params.Get("chapter"); chapter != "" {
			snippet += " — " + chapter
		}
	}
	return snippet
}
