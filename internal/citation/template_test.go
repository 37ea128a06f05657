// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wikicite/internal/schema"
	"github.com/pdiddy/wikicite/pkg/types"
)

func loadRegistry(t *testing.T, languages ...string) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry(languages...)
	src := schema.FileSource{Path: "../schema/testdata/citations.yaml"}
	require.NoError(t, schema.Load(context.Background(), reg, src, nil))
	return reg
}

func TestTemplateRoundTripIdempotent(t *testing.T) {
	reg := loadRegistry(t)
	inputs := []string{
		`{{Cite web |title=Foo |url=http://x}}`,
		`{{cite web|URL=http://x|title=[[Foo|Bar]]|last1=Smith|extra=1}}`,
		`{{Cite book |title=Foo |year={{BC|123}} |author=Bar}}`,
		`{{Unknown|one||three|k = v}}`,
		`{{Cite web |title= |url=u}}`,
		`{{Foo|1=a=b}}`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			first := NewTemplate(reg, in, 0).ToWikitext()
			second := NewTemplate(reg, first, 0).ToWikitext()
			assert.Equal(t, first, second)
		})
	}
}

func TestTemplateNestedSpanParams(t *testing.T) {
	reg := loadRegistry(t)
	tmpl := NewTemplate(reg, `{{Cite book |title=Foo |year={{BC|123}} |author=Bar}}`, 0)

	assert.Equal(t, map[string]string{"title": "Foo", "year": "{{BC|123}}", "last": "Bar"}, tmpl.Params.Map())
	assert.Equal(t, "{{Cite book\r\n| title=Foo\r\n| author=Bar\r\n| year={{BC|123}}\r\n}}", tmpl.ToWikitext())
}

func TestTemplateLinkPipe(t *testing.T) {
	reg := loadRegistry(t)
	tmpl := NewTemplate(reg, `{{Cite web |title=[[Foo|Bar]] |url=http://x}}`, 0)

	assert.Equal(t, map[string]string{"title": "[[Foo|Bar]]", "url": "http://x"}, tmpl.Params.Map())
	assert.Equal(t, `{{Cite web |url=http://x |title=[[Foo|Bar]]}}`, tmpl.ToWikitext())
}

func TestTemplateBlankFieldOmitted(t *testing.T) {
	reg := loadRegistry(t)
	tmpl := NewTemplate(reg, `{{Name |title=Foo}}`, 0)
	tmpl.SetParam("year", "")

	assert.True(t, tmpl.Params.Has("year"))
	assert.Equal(t, `{{Name |title=Foo}}`, tmpl.ToWikitext())
}

func TestTemplateAliasTieBreak(t *testing.T) {
	reg := loadRegistry(t)
	tmpl := NewTemplate(reg, `{{Cite web |URL=http://x |title=T |accessdate=2020-01-01}}`, 0)

	assert.Equal(t, "http://x", tmpl.Params.Get("url"))
	assert.Equal(t, "URL", tmpl.Key("url"))
	assert.Equal(t, `{{Cite web |URL=http://x |title=T |accessdate=2020-01-01}}`, tmpl.ToWikitext())

	tmpl.SetParam("archive-url", "http://a")
	tmpl.SetParam("archivedate", "2021-01-01")
	assert.Equal(t, `{{Cite web |URL=http://x |title=T |accessdate=2020-01-01 |archive-url=http://a |archivedate=2021-01-01}}`,
		tmpl.ToWikitext())
}

func TestTemplatePositional(t *testing.T) {
	reg := loadRegistry(t)
	tmpl := NewTemplate(reg, `{{Foo|one|two}}`, 0)
	assert.Equal(t, `{{Foo |one |two}}`, tmpl.ToWikitext())

	tmpl.SetParam("1", "a=b")
	assert.Equal(t, `{{Foo |1=a=b |2=two}}`, tmpl.ToWikitext())

	gap := NewTemplate(reg, `{{Foo|one||three}}`, 0)
	assert.Equal(t, `{{Foo |one |3=three}}`, gap.ToWikitext())
}

func TestTemplateUnknownDegrades(t *testing.T) {
	reg := loadRegistry(t)
	tmpl := NewTemplate(reg, `{{Infobox|b=2|a=1}}`, 3)

	assert.False(t, tmpl.Known())
	assert.Nil(t, tmpl.TemplateData())
	assert.Empty(t, tmpl.MissingRequired())
	assert.Equal(t, `{{Infobox |b=2 |a=1}}`, tmpl.ToWikitext())

	var nilReg *schema.Registry
	bare := NewTemplate(nilReg, `{{Cite web|url=u}}`, 0)
	assert.Equal(t, `{{Cite web |url=u}}`, bare.ToWikitext())
}

func TestTemplateDegenerate(t *testing.T) {
	reg := loadRegistry(t)
	tmpl := NewTemplate(reg, "Smith (2020). Title.", 5)

	assert.Equal(t, "", tmpl.Name)
	assert.Equal(t, "Smith (2020). Title.", tmpl.ToWikitext())
}

func TestTemplateFields(t *testing.T) {
	reg := loadRegistry(t, "fr")
	tmpl := NewTemplate(reg, `{{Cite web |url=u |foo=bar}}`, 0)

	fields := tmpl.Fields()
	names := make([]string, len(fields))
	byName := make(map[string]types.Field)
	for i, f := range fields {
		names[i] = f.Name
		byName[f.Name] = f
	}
	assert.Equal(t, []string{"url", "title", "last", "first", "date", "website",
		"access-date", "archive-url", "archive-date", "work", "foo"}, names)

	assert.Equal(t, "Titre", byName["title"].Label)
	assert.Equal(t, "Title of the source page", byName["title"].Tooltip)
	assert.True(t, byName["title"].Required)
	assert.True(t, byName["title"].Visible)
	assert.True(t, byName["last"].Visible, "suggested fields are visible")
	assert.False(t, byName["first"].Visible)
	assert.Equal(t, "First name", byName["first"].Label)
	assert.True(t, byName["work"].Deprecated)
	assert.Equal(t, types.ParamWikiPageName, byName["work"].Type)
	assert.True(t, byName["foo"].Visible)
	assert.Equal(t, "foo", byName["foo"].Label)
}

func TestTemplateMissingRequired(t *testing.T) {
	reg := loadRegistry(t)
	tmpl := NewTemplate(reg, `{{Cite web |title=T}}`, 0)
	assert.Equal(t, []string{"url"}, tmpl.MissingRequired())

	tmpl.SetParam("URL", "http://x")
	assert.Empty(t, tmpl.MissingRequired())
	assert.Equal(t, `{{Cite web |URL=http://x |title=T}}`, tmpl.ToWikitext())
}

func TestTemplateSetNameRekeys(t *testing.T) {
	reg := loadRegistry(t)
	tmpl := NewTemplate(reg, `{{Cite web |last1=Smith |title=T}}`, 0)
	tmpl.SetName("Cite book")

	assert.Equal(t, "Smith", tmpl.Params.Get("last"))
	assert.Equal(t, "{{Cite book\r\n| title=T\r\n| last1=Smith\r\n}}", tmpl.ToWikitext())
}

func TestTemplateSnippet(t *testing.T) {
	reg := loadRegistry(t)

	assert.Equal(t, "T", NewTemplate(reg, `{{Cite web |url=u |title=T}}`, 0).Snippet())
	assert.Equal(t, "T — Ch", NewTemplate(reg, `{{Cite book |title=T |chapter=Ch}}`, 0).Snippet())
	assert.Equal(t, `{{Infobox |a=1}}`, NewTemplate(reg, `{{Infobox|a=1}}`, 0).Snippet())
}

func TestTemplateAssign(t *testing.T) {
	reg := loadRegistry(t)
	dst := NewTemplate(reg, `{{Cite web |url=u}}`, 7)
	src := NewTemplate(reg, `{{Cite book |ISBN=1 |title=T}}`, -1)

	dst.Assign(src)
	src.SetParam("title", "changed")

	assert.Equal(t, 7, dst.Index)
	assert.Equal(t, `{{Cite web |url=u}}`, dst.Wikitext)
	assert.Equal(t, "{{Cite book\r\n| title=T\r\n| ISBN=1\r\n}}", dst.ToWikitext())
}
