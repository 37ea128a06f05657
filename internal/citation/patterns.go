// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"regexp"
	"strings"

	"github.com/pdiddy/wikicite/internal/schema"
)

// citationPatterns recognize citations typed as plain text in list items.
// Each pattern captures some of last, first, date, title and pages. Titles
// may be wrapped in wiki italics or bold quotes. More specific patterns
// come first.
var citationPatterns = []*regexp.Regexp{
	// Smith, John (2020). ''Title of the work''. pp. 12-15
	regexp.MustCompile(`^\s*(?P<last>[^,(\n]+),\s*(?P<first>[^(\n]+?)\s*\((?P<date>\d{4}[^)\n]*)\)\.?\s*'*(?P<title>[^.\n]+?)'*\.?\s*pp?\.\s?(?P<pages>\d+(?:[-–]\d+)?)`),
	// Smith, John (2020). Title of the work. Publisher.
	regexp.MustCompile(`^\s*(?P<last>[^,(\n]+),\s*(?P<first>[^(\n]+?)\s*\((?P<date>\d{4}[^)\n]*)\)\.?\s*'*(?P<title>[^.\n]+?)'*\.`),
	// Smith, John. Title of the work (2020).
	regexp.MustCompile(`^\s*(?P<last>[^,(\n]+),\s*(?P<first>[^.(\n]+)\.\s*'*(?P<title>[^(\n]+?)'*\s*\((?P<date>\d{4}[^)\n]*)\)\.?`),
	// Smith (2020). Title of the work.
	regexp.MustCompile(`^\s*(?P<last>[^,(\n]+?)\s*\((?P<date>\d{4}[^)\n]*)\)\.?\s*'*(?P<title>[^.\n]+?)'*\.`),
}

// plainFields lists the captured fields in rendering order.
var plainFields = []string{"last", "first", "date", "title", "pages"}

// MatchPlainCitation tests text against the plain-text citation patterns
// and returns the captured fields of the first match, or nil.
func MatchPlainCitation(text string) map[string]string {
	fields, _ := matchPlainCitation(text)
	return fields
}

// matchPlainCitation returns the captured fields of the first matching
// pattern and the [start, end) offsets of the matched text in text.
func matchPlainCitation(text string) (map[string]string, []int) {
	for _, re := range citationPatterns {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		fields := make(map[string]string)
		for i, name := range re.SubexpNames() {
			if name == "" || loc[2*i] < 0 {
				continue
			}
			if v := strings.TrimSpace(text[loc[2*i]:loc[2*i+1]]); v != "" {
				fields[name] = v
			}
		}
		return fields, loc[:2]
	}
	return nil, nil
}

// newPlainTemplate returns the pseudo-template listed for a plain-text
// citation. It has no name, so it renders as its original text, and its
// params hold the captured fields.
func newPlainTemplate(reg *schema.Registry, text string, index int, fields map[string]string) *Template {
	t := NewTemplate(reg, text, index)
	for _, key := range plainFields {
		if v := fields[key]; v != "" {
			t.Params.Set(key, v)
		}
	}
	return t
}

// FromPlainText converts a plain-text citation into a Citation template.
// Captured fields go through the template's citoid map when it has one.
// It returns nil when text matches no pattern or the registry knows no
// template.
func FromPlainText(reg *schema.Registry, text string) *Template {
	fields := MatchPlainCitation(text)
	if fields == nil {
		return nil
	}
	name := reg.Resolve("Citation")
	if name == "" {
		return nil
	}
	t := NewTemplate(reg, "{{"+name+"}}", -1)
	if t.TemplateData().CitoidMap() != nil {
		data := map[string]any{
			"author": []any{[]any{fields["first"], fields["last"]}},
			"date":   fields["date"],
			"title":  fields["title"],
		}
		if pages := fields["pages"]; pages != "" {
			data["pages"] = pages
		}
		ApplyCitoid(t, data)
		return t
	}
	for _, key := range plainFields {
		if v := fields[key]; v != "" {
			t.SetParam(key, v)
		}
	}
	return t
}
