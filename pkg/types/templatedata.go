// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the configuration and schema data structures shared
// by the wikicite packages.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"go.yaml.in/yaml/v3"
)

// ParamType is the declared type of a template parameter. Types outside
// the known set are treated as plain text.
type ParamType string

// Known parameter types.
const (
	ParamString       ParamType = "string"
	ParamLine         ParamType = "line"
	ParamContent      ParamType = "content"
	ParamURL          ParamType = "url"
	ParamDate         ParamType = "date"
	ParamWikiPageName ParamType = "wiki-page-name"
)

// IsPlainText reports whether values of this type are edited as plain text.
func (t ParamType) IsPlainText() bool {
	switch t {
	case ParamContent, ParamURL, ParamDate, ParamWikiPageName:
		return false
	}
	return true
}

// LocalizedText maps a language code to text. Plain strings decode under
// the empty language code.
type LocalizedText map[string]string

// UnmarshalJSON accepts either a string or a language map.
func (l *LocalizedText) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*l = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = LocalizedText{"": s}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decoding localized text: %w", err)
	}
	*l = m
	return nil
}

// UnmarshalYAML accepts either a scalar or a language map.
func (l *LocalizedText) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = LocalizedText{"": node.Value}
		return nil
	}
	var m map[string]string
	if err := node.Decode(&m); err != nil {
		return fmt.Errorf("decoding localized text: %w", err)
	}
	*l = m
	return nil
}

// In returns the text in the first of langs that has one, falling back to
// language-neutral text.
func (l LocalizedText) In(langs ...string) string {
	for _, lang := range langs {
		if v := l[lang]; v != "" {
			return v
		}
	}
	return l[""]
}

// Flag is a boolean that also decodes from a string. The deprecated
// property carries a reason string instead of true.
type Flag bool

// UnmarshalJSON accepts a boolean or a string (non-empty means true).
func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding flag: %w", err)
	}
	*f = s != ""
	return nil
}

// UnmarshalYAML accepts a boolean or a string (non-empty means true).
func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if err := node.Decode(&b); err == nil {
		*f = Flag(b)
		return nil
	}
	*f = node.Value != ""
	return nil
}

// ParamData is the schema of one template parameter.
type ParamData struct {
	Label           LocalizedText `json:"label,omitempty" yaml:"label,omitempty"`
	Description     LocalizedText `json:"description,omitempty" yaml:"description,omitempty"`
	Type            ParamType     `json:"type,omitempty" yaml:"type,omitempty"`
	Required        bool          `json:"required,omitempty" yaml:"required,omitempty"`
	Suggested       bool          `json:"suggested,omitempty" yaml:"suggested,omitempty"`
	Deprecated      Flag          `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Aliases         []string      `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	SuggestedValues []string      `json:"suggestedvalues,omitempty" yaml:"suggestedvalues,omitempty"`
}

// TemplateData is the schema of one template as published by the
// TemplateData extension.
type TemplateData struct {
	Title       string                    `json:"title,omitempty" yaml:"title,omitempty"`
	Description LocalizedText             `json:"description,omitempty" yaml:"description,omitempty"`
	Params      map[string]ParamData      `json:"params" yaml:"params"`
	ParamOrder  []string                  `json:"paramOrder,omitempty" yaml:"paramOrder,omitempty"`
	Format      string                    `json:"format,omitempty" yaml:"format,omitempty"`
	Maps        map[string]map[string]any `json:"maps,omitempty" yaml:"maps,omitempty"`
}

// UnmarshalJSON decodes template data and records the declared parameter
// order in ParamOrder when the document does not carry one. Empty params
// or maps encoded as JSON arrays decode as nil.
func (td *TemplateData) UnmarshalJSON(data []byte) error {
	type plain TemplateData
	var raw struct {
		plain
		Params json.RawMessage `json:"params"`
		Maps   json.RawMessage `json:"maps"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding template data: %w", err)
	}
	*td = TemplateData(raw.plain)

	params, order, err := decodeOrderedParams(raw.Params)
	if err != nil {
		return err
	}
	td.Params = params
	if len(td.ParamOrder) == 0 {
		td.ParamOrder = order
	}

	if isJSONObject(raw.Maps) {
		if err := json.Unmarshal(raw.Maps, &td.Maps); err != nil {
			return fmt.Errorf("decoding template maps: %w", err)
		}
	}
	return nil
}

func isJSONObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// decodeOrderedParams decodes a params object token by token so the key
// order survives.
func decodeOrderedParams(raw json.RawMessage) (map[string]ParamData, []string, error) {
	if !isJSONObject(raw) {
		return nil, nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("decoding params: %w", err)
	}

	params := make(map[string]ParamData)
	var order []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("decoding params: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("decoding params: unexpected token %v", tok)
		}
		var p ParamData
		if err := dec.Decode(&p); err != nil {
			return nil, nil, fmt.Errorf("decoding param %q: %w", key, err)
		}
		if _, seen := params[key]; !seen {
			order = append(order, key)
		}
		params[key] = p
	}
	return params, order, nil
}

// UnmarshalYAML decodes template data and records the declared parameter
// order in ParamOrder when the document does not carry one.
func (td *TemplateData) UnmarshalYAML(node *yaml.Node) error {
	type plain TemplateData
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("decoding template data: %w", err)
	}
	*td = TemplateData(p)

	if len(td.ParamOrder) > 0 || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "params" {
			continue
		}
		params := node.Content[i+1]
		if params.Kind != yaml.MappingNode {
			break
		}
		for j := 0; j+1 < len(params.Content); j += 2 {
			td.ParamOrder = append(td.ParamOrder, params.Content[j].Value)
		}
	}
	return nil
}

// IsBlock reports whether the template is rendered one parameter per line.
func (td *TemplateData) IsBlock() bool {
	return td != nil && td.Format == "block"
}

// Order returns the declared parameter order. Schemas built in code
// without ParamOrder fall back to sorted parameter names.
func (td *TemplateData) Order() []string {
	if td == nil {
		return nil
	}
	if len(td.ParamOrder) > 0 {
		return append([]string(nil), td.ParamOrder...)
	}
	names := make([]string, 0, len(td.Params))
	for name := range td.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParamAliases returns a map from parameter alias to canonical name.
func (td *TemplateData) ParamAliases() map[string]string {
	aliases := make(map[string]string)
	if td == nil {
		return aliases
	}
	for name, p := range td.Params {
		for _, alias := range p.Aliases {
			aliases[alias] = name
		}
	}
	return aliases
}

// Param returns the schema of a parameter by canonical name.
func (td *TemplateData) Param(name string) (ParamData, bool) {
	if td == nil {
		return ParamData{}, false
	}
	p, ok := td.Params[name]
	return p, ok
}

// CitoidMap returns the map from Citoid field names to parameter names,
// or nil when the template declares none.
func (td *TemplateData) CitoidMap() map[string]any {
	if td == nil {
		return nil
	}
	return td.Maps["citoid"]
}
