// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikitext

import (
	"strconv"
	"strings"
)

// Params is an ordered map of template parameters. Insertion order is the
// display and serialization order. Keys are either parameter names or
// 1-based positional indexes for anonymous parameters.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams returns an empty parameter map.
func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (p *Params) Get(key string) string {
	return p.values[key]
}

// Lookup returns the value stored under key and whether the key is present.
func (p *Params) Lookup(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key is present, even with an empty value.
func (p *Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Set stores value under key. An existing key keeps its position.
func (p *Params) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Delete removes key.
func (p *Params) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.keys)
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	c := NewParams()
	for _, k := range p.keys {
		c.Set(k, p.values[k])
	}
	return c
}

// Map returns the parameters as a plain map (order is lost).
func (p *Params) Map() map[string]string {
	m := make(map[string]string, len(p.values))
	for k, v := range p.values {
		m[k] = v
	}
	return m
}

// IsPositional reports whether key is a numeric (anonymous) parameter key.
func IsPositional(key string) bool {
	if key == "" {
		return false
	}
	for _, c := range key {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// SplitParams splits the inner text of a template (everything after the
// first top-level pipe, without the closing braces) into ordered
// parameters. Pipes inside nested [[links]] and {{templates}} do not split.
//
// When aliases is non-nil, parameter names found in it are rewritten to
// their canonical key. The second return value maps each canonical key to
// the key as it was written, so serialization can keep the user's form.
// Blank values are dropped. A repeated name overwrites the earlier value in
// place.
func SplitParams(inner string, aliases map[string]string) (*Params, map[string]string) {
	params := NewParams()
	written := make(map[string]string)
	if strings.TrimSpace(inner) == "" {
		return params, written
	}

	anonymous := 0
	for _, fragment := range splitTopLevel(inner, '|') {
		var key, value string
		if eq := indexTopLevel(fragment, '='); eq >= 0 {
			key = strings.TrimSpace(fragment[:eq])
			value = strings.TrimSpace(fragment[eq+1:])
		} else {
			anonymous++
			key = strconv.Itoa(anonymous)
			value = strings.TrimSpace(fragment)
		}
		if value == "" {
			continue
		}
		surface := key
		if canonical, ok := aliases[key]; ok && canonical != "" {
			key = canonical
		}
		params.Set(key, value)
		written[key] = surface
	}
	return params, written
}

// scanState tracks nesting while walking template text.
type scanState struct {
	linkDepth     int
	templateDepth int
}

// atTopLevel reports whether the scanner is outside any link or subtemplate.
func (s *scanState) atTopLevel() bool {
	return s.linkDepth == 0 && s.templateDepth == 0
}

// step consumes the delimiter starting at text[i], if any, and returns how
// many bytes it spans (0 when text[i] is ordinary).
func (s *scanState) step(text string, i int) int {
	if i+1 >= len(text) {
		return 0
	}
	switch text[i : i+2] {
	case "[[":
		s.linkDepth++
		return 2
	case "]]":
		if s.linkDepth > 0 {
			s.linkDepth--
			return 2
		}
	case "{{":
		s.templateDepth++
		return 2
	case "}}":
		if s.templateDepth > 0 {
			s.templateDepth--
			return 2
		}
	}
	return 0
}

// splitTopLevel splits text on sep occurrences that are outside nested
// links and templates.
func splitTopLevel(text string, sep byte) []string {
	var parts []string
	var st scanState
	start := 0
	for i := 0; i < len(text); {
		if n := st.step(text, i); n > 0 {
			i += n
			continue
		}
		if text[i] == sep && st.atTopLevel() {
			parts = append(parts, text[start:i])
			start = i + 1
		}
		i++
	}
	return append(parts, text[start:])
}

// indexTopLevel returns the index of the first c outside nested links and
// templates, or -1.
func indexTopLevel(text string, c byte) int {
	var st scanState
	for i := 0; i < len(text); {
		if n := st.step(text, i); n > 0 {
			i += n
			continue
		}
		if text[i] == c && st.atTopLevel() {
			return i
		}
		i++
	}
	return -1
}

// ContainsTopLevel reports whether c occurs in text outside nested links
// and templates.
func ContainsTopLevel(text string, c byte) bool {
	return indexTopLevel(text, c) >= 0
}
