// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

const citeWebJSON = `{
	"title": "Template:Cite web",
	"description": {"en": "Formats a citation to a website"},
	"params": {
		"url": {"label": {"en": "URL"}, "type": "url", "required": true, "aliases": ["URL"]},
		"title": {"label": {"en": "Title", "fr": "Titre"}, "type": "string", "required": true},
		"archive-url": {"type": "url", "aliases": ["archiveurl"]},
		"accessdate": {"deprecated": "use access-date"}
	},
	"format": "inline",
	"maps": {"citoid": {"url": "url", "title": "title", "author": [["first", "last"]]}}
}`

func TestTemplateDataJSONKeepsDeclaredOrder(t *testing.T) {
	var td TemplateData
	require.NoError(t, json.Unmarshal([]byte(citeWebJSON), &td))

	assert.Equal(t, []string{"url", "title", "archive-url", "accessdate"}, td.ParamOrder)
	assert.Equal(t, "Template:Cite web", td.Title)
	assert.Equal(t, "Formats a citation to a website", td.Description.In("en"))
	assert.False(t, td.IsBlock())

	p, ok := td.Param("accessdate")
	require.True(t, ok)
	assert.True(t, bool(p.Deprecated))

	assert.Equal(t, "Titre", td.Params["title"].Label.In("fr", "en"))
	assert.Equal(t, "Title", td.Params["title"].Label.In("de", "en"))
	assert.Equal(t, map[string]string{"URL": "url", "archiveurl": "archive-url"}, td.ParamAliases())
	assert.Equal(t, "title", td.CitoidMap()["title"])
}

func TestTemplateDataJSONExplicitOrderWins(t *testing.T) {
	var td TemplateData
	data := `{"params": {"a": {}, "b": {}}, "paramOrder": ["b", "a"], "format": "block"}`
	require.NoError(t, json.Unmarshal([]byte(data), &td))

	assert.Equal(t, []string{"b", "a"}, td.Order())
	assert.True(t, td.IsBlock())
}

func TestTemplateDataJSONEmptyArrays(t *testing.T) {
	var td TemplateData
	require.NoError(t, json.Unmarshal([]byte(`{"params": [], "maps": []}`), &td))

	assert.Empty(t, td.Params)
	assert.Nil(t, td.CitoidMap())
	assert.Empty(t, td.Order())
}

func TestTemplateDataJSONRoundTripKeepsOrder(t *testing.T) {
	var td TemplateData
	require.NoError(t, json.Unmarshal([]byte(citeWebJSON), &td))

	data, err := json.Marshal(&td)
	require.NoError(t, err)

	var again TemplateData
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, td.ParamOrder, again.ParamOrder)
}

func TestTemplateDataYAMLKeepsDeclaredOrder(t *testing.T) {
	data := `
title: Cite book
params:
  title:
    label: Title
    required: true
  last:
    aliases: [last1, author]
  chapter: {}
format: block
`
	var td TemplateData
	require.NoError(t, yaml.Unmarshal([]byte(data), &td))

	assert.Equal(t, []string{"title", "last", "chapter"}, td.ParamOrder)
	assert.Equal(t, "Title", td.Params["title"].Label.In("en"))
	assert.True(t, td.IsBlock())
	assert.Equal(t, "last", td.ParamAliases()["author"])
}

func TestNilTemplateData(t *testing.T) {
	var td *TemplateData
	assert.False(t, td.IsBlock())
	assert.Nil(t, td.Order())
	assert.Empty(t, td.ParamAliases())
	_, ok := td.Param("x")
	assert.False(t, ok)
}

func TestParamTypeIsPlainText(t *testing.T) {
	assert.True(t, ParamString.IsPlainText())
	assert.True(t, ParamLine.IsPlainText())
	assert.True(t, ParamType("number").IsPlainText())
	assert.False(t, ParamContent.IsPlainText())
	assert.False(t, ParamURL.IsPlainText())
}

func TestSchemaBundleNames(t *testing.T) {
	b := NewSchemaBundle()
	b.Templates["Cite web"] = &TemplateData{}
	b.Templates["Citation"] = &TemplateData{}
	assert.Equal(t, []string{"Citation", "Cite web"}, b.Names())
}
