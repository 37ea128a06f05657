// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema holds the template schemas and template aliases that the
// citation models consult. A Registry is populated by an explicit Load from
// a Source and is read-only until the next Reset or Load.
package schema

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/wikicite/pkg/types"
)

// Registry maps canonical template names to their schema and template
// redirect names to canonical names. A nil *Registry behaves as an empty
// one, so models built without schemas degrade to passthrough.
type Registry struct {
	templates map[string]*types.TemplateData
	aliases   map[string]string
	languages []string
}

// NewRegistry returns an empty registry. languages sets the label and
// tooltip language preference order.
func NewRegistry(languages ...string) *Registry {
	return &Registry{
		templates: make(map[string]*types.TemplateData),
		aliases:   make(map[string]string),
		languages: append([]string(nil), languages...),
	}
}

// Load merges a schema bundle into the registry. Later loads replace
// schemas and aliases with the same name.
func (r *Registry) Load(b *types.SchemaBundle) {
	if b == nil {
		return
	}
	for name, td := range b.Templates {
		if td == nil {
			continue
		}
		r.templates[name] = td
	}
	for alias, name := range b.Aliases {
		r.aliases[alias] = name
	}
}

// Reset drops every schema and alias.
func (r *Registry) Reset() {
	r.templates = make(map[string]*types.TemplateData)
	r.aliases = make(map[string]string)
}

// Bundle returns the registry contents as a bundle.
func (r *Registry) Bundle() *types.SchemaBundle {
	b := types.NewSchemaBundle()
	if r == nil {
		return b
	}
	for name, td := range r.templates {
		b.Templates[name] = td
	}
	for alias, name := range r.aliases {
		b.Aliases[alias] = name
	}
	return b
}

// Languages returns the label language preference order.
func (r *Registry) Languages() []string {
	if r == nil {
		return nil
	}
	return r.languages
}

// Normalize returns the canonical form of a template name: trimmed, first
// letter capitalized, underscores replaced by spaces and redirects
// followed.
func (r *Registry) Normalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(name)
	name = string(unicode.ToUpper(first)) + name[size:]
	name = strings.ReplaceAll(name, "_", " ")
	if r != nil {
		if canonical, ok := r.aliases[name]; ok {
			name = canonical
		}
	}
	return name
}

// Template returns the schema for a template name, or nil when the
// template is unknown.
func (r *Registry) Template(name string) *types.TemplateData {
	if r == nil || name == "" {
		return nil
	}
	return r.templates[r.Normalize(name)]
}

// Known reports whether name (in any accepted form) has a schema.
func (r *Registry) Known(name string) bool {
	return r.Template(name) != nil
}

// ParamAliases returns the parameter alias map of a template. Unknown
// templates have none.
func (r *Registry) ParamAliases(name string) map[string]string {
	return r.Template(name).ParamAliases()
}

// Names returns the canonical template names sorted case-insensitively.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a == b {
			return names[i] < names[j]
		}
		return a < b
	})
	return names
}

// Resolve returns the name under which a preferred template is known:
// the name itself when it has a schema, the canonical name when it is a
// redirect, or else the first known template. It returns "" for an empty
// registry.
func (r *Registry) Resolve(preferred string) string {
	if r == nil {
		return ""
	}
	if _, ok := r.templates[preferred]; ok {
		return preferred
	}
	if canonical, ok := r.aliases[preferred]; ok {
		return canonical
	}
	if names := r.Names(); len(names) > 0 {
		return names[0]
	}
	return ""
}
