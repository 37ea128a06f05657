// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "sort"

// Field describes one editable template parameter as shown in a form.
type Field struct {
	// Name is the canonical parameter name.
	Name string `json:"name" yaml:"name"`

	// Key is the parameter name as written in the text. It differs from
	// Name when only an alias appears.
	Key string `json:"key" yaml:"key"`

	Value       string    `json:"value,omitempty" yaml:"value,omitempty"`
	Label       string    `json:"label" yaml:"label"`
	Tooltip     string    `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
	Type        ParamType `json:"type,omitempty" yaml:"type,omitempty"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Suggested   bool      `json:"suggested,omitempty" yaml:"suggested,omitempty"`
	Deprecated  bool      `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`

	// Visible is false for optional fields with no value, which forms
	// hide until asked to show all.
	Visible bool `json:"visible" yaml:"visible"`
}

// SchemaBundle is the set of template schemas and template aliases
// exchanged between schema sources, the local cache and the registry.
type SchemaBundle struct {
	// Templates maps canonical template names to their schema.
	Templates map[string]*TemplateData `json:"templates" yaml:"templates"`

	// Aliases maps redirect template names to canonical names.
	Aliases map[string]string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// NewSchemaBundle returns an empty bundle.
func NewSchemaBundle() *SchemaBundle {
	return &SchemaBundle{
		Templates: make(map[string]*TemplateData),
		Aliases:   make(map[string]string),
	}
}

// Names returns the canonical template names in sorted order.
func (b *SchemaBundle) Names() []string {
	if b == nil {
		return nil
	}
	names := make([]string, 0, len(b.Templates))
	for name := range b.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
