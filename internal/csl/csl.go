// Package csl exports listed citations as CSL-YAML so they can be read by
// Pandoc and reference managers.
package csl

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wikicite/internal/citation"
)

// Item represents a bibliographic entry in CSL (Citation Style Language)
// format. Field names follow the CSL-JSON/CSL-YAML schema.
type Item struct {
	ID             string `yaml:"id"`
	Type           string `yaml:"type"`
	Title          string `yaml:"title,omitempty"`
	Author         []Name `yaml:"author,omitempty"`
	Issued         *Date  `yaml:"issued,omitempty"`
	ContainerTitle string `yaml:"container-title,omitempty"`
	Publisher      string `yaml:"publisher,omitempty"`
	Page           string `yaml:"page,omitempty"`
	URL            string `yaml:"URL,omitempty"`
	DOI            string `yaml:"DOI,omitempty"`
	ISBN           string `yaml:"ISBN,omitempty"`
}

// Name represents a person's name in CSL format.
type Name struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// Date represents a date in CSL format using date-parts.
type Date struct {
	DateParts [][]int `yaml:"date-parts"`
}

// templateTypes maps citation templates to CSL item types.
var templateTypes = map[string]string{
	"Cite book":    "book",
	"Cite journal": "article-journal",
	"Cite news":    "article-newspaper",
	"Cite web":     "webpage",
	"Citation":     "document",
}

// containerParams hold the title of the enclosing work, in priority order.
var containerParams = []string{"website", "work", "journal", "newspaper", "periodical"}

// Format writes the citations of items as a CSL-YAML list to w. Items
// without a named citation template are skipped.
func Format(items []citation.Item, w io.Writer) error {
	var out []Item
	for i, it := range items {
		t := it.Citation()
		if t == nil || t.Name == "" {
			continue
		}
		id := it.Name()
		if it.Kind != citation.KindReference || id == "" {
			id = fmt.Sprintf("item-%d", i+1)
		}
		out = append(out, toItem(id, t))
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(out)
}

// toItem converts a citation template to a CSL item.
func toItem(id string, t *citation.Template) Item {
	p := t.Params
	item := Item{
		ID:        id,
		Type:      "document",
		Title:     p.Get("title"),
		Publisher: p.Get("publisher"),
		Page:      firstOf(p.Get("pages"), p.Get("page")),
		URL:       p.Get("url"),
		DOI:       p.Get("doi"),
		ISBN:      p.Get("isbn"),
	}
	if typ, ok := templateTypes[t.Canonical()]; ok {
		item.Type = typ
	}
	for _, name := range containerParams {
		if v := p.Get(name); v != "" {
			item.ContainerTitle = v
			break
		}
	}
	item.Author = authors(t)
	if d, ok := parseDate(p.Get("date")); ok {
		item.Issued = d
	}
	return item
}

// authors collects last/first pairs (last, last2, last3, ...) and falls
// back to the author parameter.
func authors(t *citation.Template) []Name {
	var names []Name
	for n := 1; ; n++ {
		suffix := ""
		if n > 1 {
			suffix = strconv.Itoa(n)
		}
		last := t.Params.Get("last" + suffix)
		first := t.Params.Get("first" + suffix)
		if last == "" && first == "" {
			break
		}
		if first == "" {
			names = append(names, Name{Literal: last})
			continue
		}
		names = append(names, Name{Family: last, Given: first})
	}
	if len(names) == 0 {
		if a := t.Params.Get("author"); a != "" {
			names = append(names, parseAuthorName(a))
		}
	}
	return names
}

// parseAuthorName splits a full name on the last space: everything before
// is given, the last token is family. Single-token names use the literal
// field.
func parseAuthorName(name string) Name {
	name = strings.TrimSpace(name)
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return Name{Literal: name}
	}
	return Name{Given: name[:idx], Family: name[idx+1:]}
}

var dateLayouts = []struct {
	layout string
	parts  int
}{
	{"2006-01-02", 3},
	{"2 January 2006", 3},
	{"January 2, 2006", 3},
	{"2006-01", 2},
	{"January 2006", 2},
	{"2006", 1},
}

// parseDate converts a citation date into CSL date-parts, keeping only the
// precision the value carries.
func parseDate(s string) (*Date, bool) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		d, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		parts := []int{d.Year(), int(d.Month()), d.Day()}[:l.parts]
		return &Date{DateParts: [][]int{parts}}, true
	}
	return nil, false
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
