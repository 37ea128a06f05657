// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceFirst(t *testing.T) {
	assert.Equal(t, "xBx", ReplaceFirst("xAx", "A", "B"))
	assert.Equal(t, "B A", ReplaceFirst("A A", "A", "B"))
	assert.Equal(t, "abc", ReplaceFirst("abc", "z", "y"))
	assert.Equal(t, "Xabc", ReplaceFirst("abc", "", "X"))
}

func TestSplice(t *testing.T) {
	assert.Equal(t, "aXc", Splice("abc", 1, 2, "X"))
	assert.Equal(t, "abXc", Splice("abc", 2, 2, "X"))
	assert.Equal(t, "abcX", Splice("abc", 10, 12, "X"))
	assert.Equal(t, "X", Splice("abc", -1, 5, "X"))
}

func TestLineOf(t *testing.T) {
	text := "one\ntwo\nthree"
	assert.Equal(t, 1, LineOf(text, 0))
	assert.Equal(t, 2, LineOf(text, 4))
	assert.Equal(t, 3, LineOf(text, len(text)))
}

func TestMemoryBuffer(t *testing.T) {
	b := NewMemoryBuffer("hello world")
	assert.Equal(t, 11, b.Caret())

	b.SetSelection(6, 11)
	start, end := b.Selection()
	assert.Equal(t, 6, start)
	assert.Equal(t, 11, end)

	require.NoError(t, b.SetText("hi"))
	start, end = b.Selection()
	assert.Equal(t, 2, start)
	assert.Equal(t, 2, end)

	b.SetSelection(1, 0)
	start, end = b.Selection()
	assert.Equal(t, 1, start)
	assert.Equal(t, 1, end)

	b.ScrollToSelection()
	assert.Equal(t, 1, b.Scrolled)
}

func TestFileBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "article.wiki")
	require.NoError(t, os.WriteFile(path, []byte("Text.<ref>a</ref>"), 0o600))

	b, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Text.<ref>a</ref>", b.Text())
	assert.Equal(t, path, b.Path())

	require.NoError(t, b.SetText("Text."))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Text.", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.wiki"))
	assert.Error(t, err)
}

var _ Buffer = (*MemoryBuffer)(nil)
var _ Buffer = (*FileBuffer)(nil)
