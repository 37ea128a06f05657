// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document provides the text buffers that citations are read from
// and written back to. Every mutation reads the whole buffer, computes a
// new text and writes it back with one SetText call. Buffers are not safe
// under concurrent external mutation.
package document

import "strings"

// Buffer is an editable text with a selection.
type Buffer interface {
	// Text returns the whole buffer.
	Text() string

	// SetText replaces the whole buffer.
	SetText(text string) error

	// SetSelection selects the byte range [start, end).
	SetSelection(start, end int)

	// Selection returns the selected byte range.
	Selection() (start, end int)

	// Caret returns the caret offset (the selection start).
	Caret() int

	// ScrollToSelection brings the selection into view.
	ScrollToSelection()
}

// ReplaceFirst replaces the first literal occurrence of old in text. An
// empty old inserts replacement at the start of text.
func ReplaceFirst(text, old, replacement string) string {
	return strings.Replace(text, old, replacement, 1)
}

// Splice replaces text[start:end] with insert. Offsets are clamped to the
// text.
func Splice(text string, start, end int, insert string) string {
	start = clamp(start, 0, len(text))
	end = clamp(end, start, len(text))
	return text[:start] + insert + text[end:]
}

// LineOf returns the 1-based line number of offset.
func LineOf(text string, offset int) int {
	offset = clamp(offset, 0, len(text))
	return strings.Count(text[:offset], "\n") + 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
