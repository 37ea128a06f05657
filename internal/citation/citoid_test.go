// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPlainCitation(t *testing.T) {
	tests := []struct {
		text string
		want map[string]string
	}{
		{
			"Smith, John (2020). Some title. Publisher.",
			map[string]string{"last": "Smith", "first": "John", "date": "2020", "title": "Some title"},
		},
		{
			"Smith, John. Some title (2020).",
			map[string]string{"last": "Smith", "first": "John", "date": "2020", "title": "Some title"},
		},
		{
			"Smith (2020). Some title.",
			map[string]string{"last": "Smith", "date": "2020", "title": "Some title"},
		},
		{
			"Smith, John (2020). ''Some title''. pp. 12-15.",
			map[string]string{"last": "Smith", "first": "John", "date": "2020", "title": "Some title", "pages": "12-15"},
		},
		{
			"Smith, John (2020). Some title. p. 7",
			map[string]string{"last": "Smith", "first": "John", "date": "2020", "title": "Some title", "pages": "7"},
		},
		{
			"Smith, John (2020). '''Bold title'''. Publisher.",
			map[string]string{"last": "Smith", "first": "John", "date": "2020", "title": "Bold title"},
		},
		{"Just a sentence.", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPlainCitation(tt.text))
		})
	}
}

func TestFromPlainText(t *testing.T) {
	reg := loadRegistry(t)

	tmpl := FromPlainText(reg, "Smith, John (2020). Some title. Publisher.")
	require.NotNil(t, tmpl)
	assert.Equal(t, "{{Citation |last=Smith |first=John |date=2020 |title=Some title}}", tmpl.ToWikitext())

	tmpl = FromPlainText(reg, "Smith, John (2020). ''Some title''. pp. 12-15.")
	require.NotNil(t, tmpl)
	assert.Equal(t, "{{Citation |last=Smith |first=John |date=2020 |title=Some title |pages=12-15}}", tmpl.ToWikitext())

	assert.Nil(t, FromPlainText(reg, "no citation here"))
	assert.Nil(t, FromPlainText(nil, "Smith (2020). Some title."))
}

func TestApplyCitoid(t *testing.T) {
	reg := loadRegistry(t)
	tmpl := NewTemplate(reg, "{{Cite book}}", -1)

	ApplyCitoid(tmpl, map[string]any{
		"title":    "Rivers | Lakes",
		"author":   []any{[]any{"Jane", "Doe"}, []any{"Second", "Author"}},
		"ISBN":     []any{"978-0-00-000000-0"},
		"pages":    float64(12),
		"itemType": "book",
		"date":     nil,
	})

	assert.Equal(t, "Rivers {{!}} Lakes", tmpl.Params.Get("title"))
	assert.Equal(t, "Jane", tmpl.Params.Get("first"))
	assert.Equal(t, "Doe", tmpl.Params.Get("last"))
	assert.Equal(t, "978-0-00-000000-0", tmpl.Params.Get("isbn"))
	assert.Equal(t, "12", tmpl.Params.Get("pages"))
	assert.False(t, tmpl.Params.Has("date"))
	assert.False(t, tmpl.Params.Has("itemType"))
}

func TestApplyCitoidUnknownTemplate(t *testing.T) {
	reg := loadRegistry(t)
	tmpl := NewTemplate(reg, "{{Harvnb}}", -1)
	ApplyCitoid(tmpl, map[string]any{"title": "T"})
	assert.Zero(t, tmpl.Params.Len())
}

func TestEscapePipes(t *testing.T) {
	assert.Equal(t, "a{{!}}b{{!}}c", EscapePipes("a|b|c"))
	assert.Equal(t, "plain", EscapePipes("plain"))
}
