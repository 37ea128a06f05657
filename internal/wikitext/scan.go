// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wikitext locates citation tags and template invocations in raw
// wikitext and splits template parameters. It only understands the subset
// of markup needed for citations: <ref> tags, {{templates}}, [[links]] and
// list blocks.
package wikitext

import (
	"strings"
)

// Span is a located construct within a text buffer. Start and End are byte
// offsets; Text is text[Start:End].
type Span struct {
	Start int
	End   int
	Text  string

	// SelfClosing is set for <ref ... /> tags.
	SelfClosing bool
}

const (
	refTag      = "ref"
	refCloseTag = "</ref"
)

// FindReferences returns every <ref> citation tag span in document order.
// Self-closing tags (<ref name="x" />) and content-bearing tags are both
// recognized. Content is matched non-greedily up to the first </ref>, so
// sibling tags are never swallowed. A complete opening tag with no closing
// tag extends to the end of text; an opening tag with no '>' is ignored.
func FindReferences(text string) []Span {
	var spans []Span
	lower := asciiLower(text)
	pos := 0
	for pos < len(text) {
		i := strings.Index(lower[pos:], "<"+refTag)
		if i < 0 {
			break
		}
		start := pos + i
		after := start + 1 + len(refTag)
		if after < len(text) && !isTagBoundary(text[after]) {
			// <references>, <refname> and similar are not citation tags.
			pos = after
			continue
		}

		openEnd, selfClosing, ok := scanOpeningTag(text, after)
		if !ok {
			break
		}
		if selfClosing {
			spans = append(spans, Span{Start: start, End: openEnd, Text: text[start:openEnd], SelfClosing: true})
			pos = openEnd
			continue
		}

		end := len(text)
		if j := strings.Index(lower[openEnd:], refCloseTag); j >= 0 {
			closeStart := openEnd + j
			if k := strings.IndexByte(text[closeStart:], '>'); k >= 0 {
				end = closeStart + k + 1
			}
		}
		spans = append(spans, Span{Start: start, End: end, Text: text[start:end]})
		pos = end
	}
	return spans
}

// asciiLower lowercases ASCII letters only, so byte offsets in the result
// line up with the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// isTagBoundary reports whether c may follow a tag name.
func isTagBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '>', '/':
		return true
	}
	return false
}

// scanOpeningTag walks the attributes of an opening tag starting at pos
// (just after the tag name) and returns the offset after the closing '>'.
// Quoted attribute values may contain '>' and '/'.
func scanOpeningTag(text string, pos int) (end int, selfClosing bool, ok bool) {
	var quote byte
	lastSignificant := byte(0)
	for i := pos; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			// Quotes only open a value right after '='.
			if lastSignificant == '=' {
				quote = c
			}
		case c == '>':
			return i + 1, lastSignificant == '/', true
		}
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			lastSignificant = c
		}
	}
	return 0, false, false
}

// FindTemplates returns every top-level {{...}} span in document order.
// Nested templates are counted with an explicit depth counter, so a
// template whose parameter holds another template is returned whole. An
// unterminated template extends to the end of text.
func FindTemplates(text string) []Span {
	return FindTemplatesFunc(text, nil)
}

// FindTemplatesFunc is like FindTemplates but keeps only spans whose
// template name satisfies match. A nil match keeps every span.
func FindTemplatesFunc(text string, match func(name string) bool) []Span {
	var spans []Span
	pos := 0
	for pos < len(text) {
		i := strings.Index(text[pos:], "{{")
		if i < 0 {
			break
		}
		start := pos + i
		end, _ := matchBraces(text, start)
		span := Span{Start: start, End: end, Text: text[start:end]}
		if match == nil || match(TemplateName(span.Text)) {
			spans = append(spans, span)
		}
		pos = end
	}
	return spans
}

// matchBraces returns the offset just past the "}}" that closes the "{{"
// at start. closed is false when the template is unterminated, in which
// case end is len(text).
func matchBraces(text string, start int) (end int, closed bool) {
	depth := 0
	for i := start; i < len(text)-1; {
		switch text[i : i+2] {
		case "{{":
			depth++
			i += 2
			continue
		case "}}":
			depth--
			i += 2
			if depth == 0 {
				return i, true
			}
			continue
		}
		i++
	}
	return len(text), false
}

// TemplateParts splits template wikitext into its name and the parameter
// text after the first top-level pipe (closing braces removed). Text that
// does not start with "{{" yields an empty name.
func TemplateParts(wikitext string) (name, inner string) {
	if !strings.HasPrefix(wikitext, "{{") {
		return "", ""
	}
	body := wikitext[2:]
	if end, closed := matchBraces(wikitext, 0); closed && end == len(wikitext) {
		body = body[:len(body)-2]
	}
	if p := indexTopLevel(body, '|'); p >= 0 {
		return strings.TrimSpace(body[:p]), body[p+1:]
	}
	return strings.TrimSpace(body), ""
}

// TemplateName returns the name of the template invocation in wikitext.
func TemplateName(wikitext string) string {
	name, _ := TemplateParts(wikitext)
	return name
}

// Mask returns text with every span replaced by filler bytes of the same
// length, so later scans skip the spans without shifting offsets.
func Mask(text string, spans []Span, filler byte) string {
	if len(spans) == 0 {
		return text
	}
	b := []byte(text)
	for _, s := range spans {
		for i := s.Start; i < s.End && i < len(b); i++ {
			b[i] = filler
		}
	}
	return string(b)
}

// FindLists returns runs of consecutive lines starting with '*' or '#'.
func FindLists(text string) []Span {
	var spans []Span
	start := -1
	end := 0
	for pos := 0; pos <= len(text); {
		lineEnd := strings.IndexByte(text[pos:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += pos
		}
		line := text[pos:lineEnd]
		if isListLine(line) {
			if start < 0 {
				start = pos
			}
			end = lineEnd
		} else if start >= 0 {
			spans = append(spans, Span{Start: start, End: end, Text: text[start:end]})
			start = -1
		}
		if lineEnd == len(text) {
			break
		}
		pos = lineEnd + 1
	}
	if start >= 0 {
		spans = append(spans, Span{Start: start, End: end, Text: text[start:end]})
	}
	return spans
}

func isListLine(line string) bool {
	return strings.HasPrefix(line, "*") || strings.HasPrefix(line, "#")
}

// ListItems returns the items of a list block with their list markers and
// leading space removed. Item offsets are document offsets.
func ListItems(list Span) []Span {
	var items []Span
	pos := 0
	text := list.Text
	for pos < len(text) {
		lineEnd := strings.IndexByte(text[pos:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += pos
		}
		start := pos
		for start < lineEnd && strings.IndexByte("*#:; \t", text[start]) >= 0 {
			start++
		}
		end := lineEnd
		if end > start && text[end-1] == '\r' {
			end--
		}
		if end > start {
			items = append(items, Span{Start: list.Start + start, End: list.Start + end, Text: text[start:end]})
		}
		pos = lineEnd + 1
	}
	return items
}
