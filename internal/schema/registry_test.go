// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wikicite/pkg/types"
)

func loadFixture(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry("en")
	require.NoError(t, Load(context.Background(), r, FileSource{Path: "testdata/citations.yaml"}, nil))
	return r
}

func TestRegistryNormalize(t *testing.T) {
	r := loadFixture(t)

	tests := []struct {
		in   string
		want string
	}{
		{"Cite web", "Cite web"},
		{"  cite web ", "Cite web"},
		{"cite_web", "Cite web"},
		{"Cite-web", "Cite web"},
		{"web cite", "Cite web"},
		{"Unknown thing", "Unknown thing"},
		{"éclair", "Éclair"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Normalize(tt.in))
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	r := loadFixture(t)

	assert.True(t, r.Known("cite_book"))
	assert.True(t, r.Known("Cite-book"))
	assert.False(t, r.Known("Infobox person"))
	assert.False(t, r.Known(""))

	td := r.Template("cite web")
	require.NotNil(t, td)
	assert.Equal(t, "Template:Cite web", td.Title)
	assert.Equal(t, "url", td.ParamOrder[0])

	assert.Equal(t, "last", r.ParamAliases("Cite web")["author"])
	assert.Empty(t, r.ParamAliases("Infobox person"))
	assert.Equal(t, []string{"Citation", "Cite book", "Cite web"}, r.Names())
	assert.Equal(t, []string{"en"}, r.Languages())
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Resolve("Citation"))

	r.Load(&types.SchemaBundle{
		Templates: map[string]*types.TemplateData{"Cite web": {}, "Cite book": {}},
		Aliases:   map[string]string{"Citation": "Cite book"},
	})
	assert.Equal(t, "Cite web", r.Resolve("Cite web"))
	assert.Equal(t, "Cite book", r.Resolve("Citation"))
	assert.Equal(t, "Cite book", r.Resolve("Cite news"))
}

func TestRegistryResetAndBundle(t *testing.T) {
	r := loadFixture(t)
	b := r.Bundle()
	assert.Len(t, b.Templates, 3)
	assert.Equal(t, "Cite web", b.Aliases["Web cite"])

	r.Reset()
	assert.False(t, r.Known("Cite web"))
	assert.Empty(t, r.Names())

	r.Load(b)
	assert.True(t, r.Known("Web cite"))
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	assert.Nil(t, r.Template("Cite web"))
	assert.False(t, r.Known("Cite web"))
	assert.Equal(t, "Cite web", r.Normalize("cite_web"))
	assert.Empty(t, r.ParamAliases("Cite web"))
	assert.Nil(t, r.Names())
	assert.Empty(t, r.Bundle().Templates)
}
