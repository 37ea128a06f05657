// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikitext

import (
	"regexp"
	"strings"
)

// attrPatterns holds the three attribute forms, tried in order: double
// quoted, single quoted, bare token. Bare tokens are the loosest match and
// must never pre-empt a quoted value.
var attrPatterns = map[string][3]*regexp.Regexp{
	"name":    compileAttr("name"),
	"group":   compileAttr("group"),
	"extends": compileAttr("extends"),
}

func compileAttr(attr string) [3]*regexp.Regexp {
	name := regexp.QuoteMeta(attr)
	return [3]*regexp.Regexp{
		regexp.MustCompile(`(?i)\s` + name + `\s*=\s*"([^"]*)"`),
		regexp.MustCompile(`(?i)\s` + name + `\s*=\s*'([^']*)'`),
		regexp.MustCompile(`(?i)\s` + name + `\s*=\s*([^\s"'/>]+)`),
	}
}

// openingTag returns the opening tag of a tag span (up to and including the
// first unquoted '>') and whether it closes itself. ok is false when the
// tag has no terminating '>'.
func openingTag(tag string) (open string, selfClosing bool, ok bool) {
	if !strings.HasPrefix(tag, "<") {
		return "", false, false
	}
	name := 1
	for name < len(tag) && !isTagBoundary(tag[name]) {
		name++
	}
	end, selfClosing, ok := scanOpeningTag(tag, name)
	if !ok {
		return tag, false, false
	}
	return tag[:end], selfClosing, true
}

// TagAttribute returns the value of attr in the opening tag of tag.
// A missing attribute yields "".
func TagAttribute(tag, attr string) string {
	open, _, _ := openingTag(tag)
	patterns, ok := attrPatterns[strings.ToLower(attr)]
	if !ok {
		patterns = compileAttr(attr)
	}
	for _, re := range patterns {
		if m := re.FindStringSubmatch(open); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// TagContent returns the inner text of a tag span and whether the tag has
// content at all. Self-closing tags return ("", false). An unterminated tag
// returns everything after the opening tag.
func TagContent(tag string) (string, bool) {
	open, selfClosing, ok := openingTag(tag)
	if !ok || selfClosing {
		return "", false
	}
	rest := tag[len(open):]
	if i := strings.LastIndex(strings.ToLower(rest), refCloseTag); i >= 0 {
		rest = rest[:i]
	}
	return rest, true
}
