// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"sort"
	"strings"

	"github.com/pdiddy/wikicite/internal/schema"
	"github.com/pdiddy/wikicite/internal/wikitext"
)

// maskFiller replaces consumed spans before later passes scan the text.
const maskFiller = '@'

// BuildList scans doc once and returns its top-level citation items in
// document order: <ref> tags (extensions excluded, they surface as their
// parent's Subrefs), known templates outside any tag, and plain-text
// citations in list items. Parents get their reuses and subrefs bound, and
// reuses get their letters.
func BuildList(reg *schema.Registry, doc string) []Item {
	var items []Item

	refSpans := wikitext.FindReferences(doc)
	refs := make([]*Reference, 0, len(refSpans))
	for _, s := range refSpans {
		r := NewReference(reg, s.Text, s.Start)
		refs = append(refs, r)
		if r.Extends == "" {
			items = append(items, ReferenceItem(r))
		}
	}
	bindDependents(refs)
	masked := wikitext.Mask(doc, refSpans, maskFiller)

	tmplSpans := wikitext.FindTemplatesFunc(masked, reg.Known)
	for _, s := range tmplSpans {
		items = append(items, TemplateItem(NewTemplate(reg, doc[s.Start:s.End], s.Start)))
	}
	masked = wikitext.Mask(masked, tmplSpans, maskFiller)

	for _, list := range wikitext.FindLists(masked) {
		for _, s := range wikitext.ListItems(list) {
			fields, loc := matchPlainCitation(s.Text)
			if fields == nil || strings.ContainsRune(s.Text[loc[0]:loc[1]], maskFiller) {
				continue
			}
			start, end := s.Start+loc[0], s.Start+loc[1]
			items = append(items, TemplateItem(newPlainTemplate(reg, doc[start:end], start, fields)))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Index() < items[j].Index()
	})
	return items
}

// bindDependents links every named parent in refs to the reuses and
// extensions of the same snapshot, so the list shares one model per tag.
// A name defined more than once keeps its dependents on the first
// definition.
func bindDependents(refs []*Reference) {
	parents := make(map[string]*Reference)
	for _, r := range refs {
		if r.Name == "" || r.Role() == RoleReuse {
			continue
		}
		if _, ok := parents[r.Name]; !ok {
			parents[r.Name] = r
		}
	}
	for _, r := range refs {
		switch {
		case r.Role() == RoleReuse && parents[r.Name] != nil:
			parent := parents[r.Name]
			r.Letter = reuseLetter(len(parent.Reuses) + 1)
			parent.Reuses = append(parent.Reuses, r)
		case r.Extends != "" && parents[r.Extends] != nil && parents[r.Extends] != r:
			parent := parents[r.Extends]
			parent.Subrefs = append(parent.Subrefs, r)
		}
	}
}

// reuseLetter returns the letter of the n-th use of a reference, with the
// parent at 0 ("a"): 1 is "b", 25 is "z", 26 is "aa".
func reuseLetter(n int) string {
	var b []byte
	for n >= 0 {
		b = append([]byte{byte('a' + n%26)}, b...)
		n = n/26 - 1
	}
	return string(b)
}

// Filter returns the items whose name, snippet or wikitext contains query,
// ignoring case. An empty query keeps every item.
func Filter(items []Item, query string) []Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	var out []Item
	for _, it := range items {
		for _, s := range []string{it.Name(), it.Snippet(), it.Wikitext()} {
			if strings.Contains(strings.ToLower(s), query) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}
