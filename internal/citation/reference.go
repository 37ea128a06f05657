// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"errors"
	"strings"

	"github.com/pdiddy/wikicite/internal/document"
	"github.com/pdiddy/wikicite/internal/schema"
	"github.com/pdiddy/wikicite/internal/wikitext"
)

// ErrNoTemplate is returned when a parameter is set on a reference that
// holds no citation template.
var ErrNoTemplate = errors.New("reference has no citation template")

// Role is the part a <ref> tag plays relative to other tags.
type Role int

const (
	// RoleReuse is a tag without content that points at a named reference.
	RoleReuse Role = iota + 1
	// RoleParent is a content-bearing tag that defines a citation.
	RoleParent
	// RoleExtension is a content-bearing tag that extends another
	// reference through its extends attribute.
	RoleExtension
)

func (r Role) String() string {
	switch r {
	case RoleReuse:
		return "reuse"
	case RoleParent:
		return "parent"
	case RoleExtension:
		return "extension"
	}
	return "unknown"
}

// Reference is one <ref> tag.
type Reference struct {
	// Name, Group and Extends are the tag attributes; empty when absent.
	Name    string
	Group   string
	Extends string

	// Content is the inner markup; empty for self-closing tags.
	Content string

	// Template is the first known citation template in Content, or nil.
	Template *Template

	// Wikitext is the original span.
	Wikitext string

	// Index is the offset of Wikitext in the last document snapshot, or -1.
	Index int

	// Reuses and Subrefs are the tags bound to this reference by name in
	// the snapshot passed to Resolve.
	Reuses  []*Reference
	Subrefs []*Reference

	// Letter is the reuse letter (b, c, ...) assigned by BuildList.
	Letter string

	reg *schema.Registry
}

// NewReference parses a <ref> span found at index.
func NewReference(reg *schema.Registry, text string, index int) *Reference {
	content, _ := wikitext.TagContent(text)
	r := &Reference{
		Name:     wikitext.TagAttribute(text, "name"),
		Group:    wikitext.TagAttribute(text, "group"),
		Extends:  wikitext.TagAttribute(text, "extends"),
		Content:  content,
		Wikitext: text,
		Index:    index,
		reg:      reg,
	}
	r.Template = firstKnownTemplate(reg, content)
	return r
}

func firstKnownTemplate(reg *schema.Registry, content string) *Template {
	spans := wikitext.FindTemplatesFunc(content, reg.Known)
	if len(spans) == 0 {
		return nil
	}
	return NewTemplate(reg, spans[0].Text, -1)
}

// Role classifies the tag: no content makes a reuse, an extends attribute
// an extension, anything else a parent.
func (r *Reference) Role() Role {
	switch {
	case r.Content == "":
		return RoleReuse
	case r.Extends != "":
		return RoleExtension
	default:
		return RoleParent
	}
}

// Snippet returns the template snippet, or the raw content when there is
// no template. Tags without content have no snippet.
func (r *Reference) Snippet() string {
	if r.Content == "" {
		return ""
	}
	if r.Template != nil {
		if s := r.Template.Snippet(); s != "" {
			return s
		}
	}
	return r.Content
}

// SetContent replaces the inner markup and re-derives the template.
func (r *Reference) SetContent(content string) {
	r.Content = content
	r.Template = firstKnownTemplate(r.reg, content)
}

// SetParam sets a template parameter and rewrites the content to match.
func (r *Reference) SetParam(key, value string) error {
	if r.Template == nil {
		return ErrNoTemplate
	}
	r.Template.SetParam(key, value)
	r.syncTemplate()
	return nil
}

// SelectTemplate switches the embedded template to name, or appends an
// empty invocation of name when the content holds no template.
func (r *Reference) SelectTemplate(name string) {
	if r.Template != nil {
		r.Template.SetName(name)
		r.syncTemplate()
		return
	}
	text := "{{" + strings.TrimSpace(name) + "}}"
	r.Content += text
	r.Template = NewTemplate(r.reg, text, -1)
}

// SetTemplate replaces the embedded template (or inserts t at the start
// of the content when there is none).
func (r *Reference) SetTemplate(t *Template) {
	old := ""
	if r.Template != nil {
		old = r.Template.Wikitext
	}
	text := t.ToWikitext()
	r.Content = document.ReplaceFirst(r.Content, old, text)
	t.Wikitext = text
	t.Index = -1
	r.Template = t
}

// syncTemplate rewrites the template's span in Content with its current
// rendering.
func (r *Reference) syncTemplate() {
	text := r.Template.ToWikitext()
	if strings.Contains(r.Content, r.Template.Wikitext) && r.Template.Wikitext != "" {
		r.Content = document.ReplaceFirst(r.Content, r.Template.Wikitext, text)
	} else {
		r.Content += text
	}
	r.Template.Wikitext = text
}

// Dependents returns the bound reuses followed by the bound subrefs.
func (r *Reference) Dependents() []*Reference {
	deps := make([]*Reference, 0, len(r.Reuses)+len(r.Subrefs))
	deps = append(deps, r.Reuses...)
	return append(deps, r.Subrefs...)
}

// Cascade points every bound reuse and subref at the reference's current
// name.
func (r *Reference) Cascade() {
	for _, reuse := range r.Reuses {
		reuse.Name = r.Name
	}
	for _, subref := range r.Subrefs {
		subref.Extends = r.Name
	}
}

// Rename sets the name and cascades it to the bound reuses and subrefs.
func (r *Reference) Rename(name string) {
	r.Name = name
	r.Cascade()
}

// ToWikitext renders the tag with attributes in the order name, group,
// extends. A tag without content is self-closing. The embedded template
// is rendered in place.
func (r *Reference) ToWikitext() string {
	var b strings.Builder
	b.WriteString("<ref")
	writeAttr(&b, "name", r.Name)
	writeAttr(&b, "group", r.Group)
	writeAttr(&b, "extends", r.Extends)

	if r.Content == "" {
		b.WriteString(" />")
		return b.String()
	}
	content := r.Content
	if r.Template != nil && r.Template.Wikitext != "" {
		content = document.ReplaceFirst(content, r.Template.Wikitext, r.Template.ToWikitext())
	}
	b.WriteByte('>')
	b.WriteString(content)
	b.WriteString("</ref>")
	return b.String()
}

// writeAttr writes a double-quoted attribute, falling back to single
// quotes for values that hold a double quote.
func writeAttr(b *strings.Builder, attr, value string) {
	if value == "" {
		return
	}
	quote := `"`
	if strings.Contains(value, `"`) {
		quote = `'`
	}
	b.WriteString(" " + attr + "=" + quote + value + quote)
}
