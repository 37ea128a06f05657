// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import "github.com/pdiddy/wikicite/pkg/types"

// Kind discriminates the members of Item.
type Kind int

const (
	KindReference Kind = iota + 1
	KindTemplate
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindTemplate:
		return "template"
	}
	return "unknown"
}

// Item is one top-level entry of the document list: either a <ref> tag or
// a template invocation outside any tag. Exactly one of Reference and
// Template is set, as named by Kind.
type Item struct {
	Kind      Kind
	Reference *Reference
	Template  *Template
}

// ReferenceItem wraps r.
func ReferenceItem(r *Reference) Item {
	return Item{Kind: KindReference, Reference: r}
}

// TemplateItem wraps t.
func TemplateItem(t *Template) Item {
	return Item{Kind: KindTemplate, Template: t}
}

// Index returns the offset of the item in the snapshot it was built from.
func (it Item) Index() int {
	switch it.Kind {
	case KindReference:
		return it.Reference.Index
	case KindTemplate:
		return it.Template.Index
	}
	return -1
}

// Wikitext returns the item's original span.
func (it Item) Wikitext() string {
	switch it.Kind {
	case KindReference:
		return it.Reference.Wikitext
	case KindTemplate:
		return it.Template.Wikitext
	}
	return ""
}

// SetWikitext records text as the item's span, after it has been written
// into the document.
func (it Item) SetWikitext(text string) {
	switch it.Kind {
	case KindReference:
		it.Reference.Wikitext = text
	case KindTemplate:
		it.Template.Wikitext = text
	}
}

// ToWikitext renders the item in canonical form.
func (it Item) ToWikitext() string {
	switch it.Kind {
	case KindReference:
		return it.Reference.ToWikitext()
	case KindTemplate:
		return it.Template.ToWikitext()
	}
	return ""
}

// Dirty reports whether the canonical rendering differs from the span.
func (it Item) Dirty() bool {
	return it.ToWikitext() != it.Wikitext()
}

// Snippet returns the short description shown in the list.
func (it Item) Snippet() string {
	switch it.Kind {
	case KindReference:
		return it.Reference.Snippet()
	case KindTemplate:
		return it.Template.Snippet()
	}
	return ""
}

// Name returns the reference name, or the template name.
func (it Item) Name() string {
	switch it.Kind {
	case KindReference:
		return it.Reference.Name
	case KindTemplate:
		return it.Template.Name
	}
	return ""
}

// Citation returns the template that carries the item's citation data:
// the template itself, or the reference's embedded template (nil when the
// reference has none).
func (it Item) Citation() *Template {
	switch it.Kind {
	case KindReference:
		return it.Reference.Template
	case KindTemplate:
		return it.Template
	}
	return nil
}

// Fields returns the form fields of the item's citation template.
func (it Item) Fields() []types.Field {
	if t := it.Citation(); t != nil {
		return t.Fields()
	}
	return nil
}
