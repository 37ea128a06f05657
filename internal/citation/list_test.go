// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListDocumentOrder(t *testing.T) {
	reg := loadRegistry(t)
	doc := "{{Cite web |url=u |title=T}} Text.<ref>{{Cite book |title=B}}</ref>\n" +
		"* Smith, John (2020). Some title. Publisher.\n"

	items := BuildList(reg, doc)
	require.Len(t, items, 3)

	assert.Equal(t, KindTemplate, items[0].Kind)
	assert.Equal(t, "Cite web", items[0].Name())
	assert.Equal(t, 0, items[0].Index())

	assert.Equal(t, KindReference, items[1].Kind)
	assert.Equal(t, "B", items[1].Snippet())

	assert.Equal(t, KindTemplate, items[2].Kind)
	assert.Equal(t, "", items[2].Name())
	assert.Equal(t, "Smith, John (2020). Some title.", items[2].Wikitext(), "only the matched text")
	assert.Equal(t, strings.Index(doc, "Smith"), items[2].Index())
	assert.Equal(t, "Some title", items[2].Template.Params.Get("title"))
	assert.False(t, items[2].Dirty())

	for i := 1; i < len(items); i++ {
		assert.Less(t, items[i-1].Index(), items[i].Index())
	}
}

func TestBuildListSkipsNestedAndUnknown(t *testing.T) {
	reg := loadRegistry(t)
	doc := `{{Infobox|x=1}} <ref>{{Cite web|url=u}}</ref> {{Cite web|url=v|title={{Lang|fr|T}}}}`

	items := BuildList(reg, doc)
	require.Len(t, items, 2)
	assert.Equal(t, KindReference, items[0].Kind)
	assert.Equal(t, KindTemplate, items[1].Kind)
	assert.Equal(t, "v", items[1].Template.Params.Get("url"))
}

func TestBuildListSubrefsAndReuses(t *testing.T) {
	reg := loadRegistry(t)
	doc := `A<ref name="p">{{Cite web |url=u |title=T}}</ref>` +
		`B<ref name="p" />C<ref extends="p">p. 2</ref>D<ref name="p" />`

	items := BuildList(reg, doc)
	require.Len(t, items, 3, "extensions are not top-level")

	parent := items[0].Reference
	require.Len(t, parent.Reuses, 2)
	require.Len(t, parent.Subrefs, 1)
	assert.Equal(t, "b", parent.Reuses[0].Letter)
	assert.Equal(t, "c", parent.Reuses[1].Letter)
	assert.Same(t, items[1].Reference, parent.Reuses[0])
	assert.Same(t, items[2].Reference, parent.Reuses[1])

	assert.Empty(t, items[1].Reference.Reuses, "a reuse never finds itself")
}

func TestBuildListPlainTextBeforeRef(t *testing.T) {
	reg := loadRegistry(t)
	doc := "* Smith, John (2020). Some title.<ref name=\"r\">{{Cite web |url=u |title=T}}</ref>\n"

	items := BuildList(reg, doc)
	require.Len(t, items, 2)
	assert.Equal(t, KindTemplate, items[0].Kind)
	assert.Equal(t, "Smith, John (2020). Some title.", items[0].Wikitext())
	assert.Equal(t, KindReference, items[1].Kind)
	assert.LessOrEqual(t, items[0].Index()+len(items[0].Wikitext()), items[1].Index(), "spans do not overlap")

	// A pattern that runs into a masked tag is not a plain-text citation.
	doc = "* Smith, John (2020). Some title<ref>{{Cite web |url=u}}</ref>.\n"
	items = BuildList(reg, doc)
	require.Len(t, items, 1)
	assert.Equal(t, KindReference, items[0].Kind)
}

func TestBuildListDuplicateParents(t *testing.T) {
	reg := loadRegistry(t)
	doc := `<ref name="A">{{Cite web|title=T|url=u}}</ref> x <ref name="A">{{Cite web|title=T|url=u}}</ref>` +
		` y <ref extends="A">{{Cite web|title=P|url=v}}</ref> <ref name="A" />`

	items := BuildList(reg, doc)
	require.Len(t, items, 3)
	first, second := items[0].Reference, items[1].Reference
	require.Len(t, first.Subrefs, 1)
	require.Len(t, first.Reuses, 1)
	assert.Empty(t, second.Subrefs, "dependents bind to the first definition only")
	assert.Empty(t, second.Reuses)
	assert.Equal(t, "b", items[2].Reference.Letter)
}

func TestBuildListEmpty(t *testing.T) {
	reg := loadRegistry(t)
	assert.Empty(t, BuildList(reg, ""))
	assert.Empty(t, BuildList(reg, "Plain prose without citations."))
	assert.Empty(t, BuildList(nil, "{{Cite web|url=u}}"), "nothing is known without a schema")
}

func TestReuseLetter(t *testing.T) {
	assert.Equal(t, "b", reuseLetter(1))
	assert.Equal(t, "z", reuseLetter(25))
	assert.Equal(t, "aa", reuseLetter(26))
}

func TestFilter(t *testing.T) {
	reg := loadRegistry(t)
	items := BuildList(reg, `<ref name="smith">{{Cite web|url=u|title=Rivers}}</ref><ref>{{Cite book|title=Lakes}}</ref>`)
	require.Len(t, items, 2)

	assert.Len(t, Filter(items, ""), 2)
	assert.Len(t, Filter(items, "  RIVERS "), 1)
	assert.Len(t, Filter(items, "smith"), 1)
	assert.Empty(t, Filter(items, "oceans"))
}

func TestItemDispatch(t *testing.T) {
	reg := loadRegistry(t)
	tmpl := TemplateItem(NewTemplate(reg, `{{Cite web|title=T|url=u}}`, 4))
	assert.True(t, tmpl.Dirty())
	assert.Equal(t, 4, tmpl.Index())
	assert.NotEmpty(t, tmpl.Fields())

	ref := ReferenceItem(NewReference(reg, `<ref name="n">text</ref>`, 9))
	assert.False(t, ref.Dirty())
	assert.Nil(t, ref.Citation())
	assert.Nil(t, ref.Fields())
	assert.Equal(t, "n", ref.Name())

	ref.SetWikitext("<ref>x</ref>")
	assert.Equal(t, "<ref>x</ref>", ref.Wikitext())

	var zero Item
	assert.Equal(t, -1, zero.Index())
	assert.Equal(t, "unknown", zero.Kind.String())
}
