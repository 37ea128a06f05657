// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// defaultMessages holds the English interface messages. $1, $2, ... are
// replaced by arguments.
var defaultMessages = map[string]string{
	"list-empty":             "No references found.",
	"list-count":             "$1 citations found.",
	"not-found":              "The citation could not be found in the text; it may have been edited.",
	"insert-done":            "Citation inserted.",
	"update-done":            "Citation updated.",
	"remove-confirm":         "This reference is used $1 more times. Remove it together with its reuses and subreferences?",
	"remove-done":            "Citation removed.",
	"reuse-name-required":    "Only named references can be reused. Give the reference a name first.",
	"unlink-dependents":      "This reference is used $1 more times; remove those uses before clearing its name.",
	"normalize-confirm":      "Normalizing rewrites every citation in the document into canonical form. Continue?",
	"normalize-done":         "$1 citations normalized.",
	"no-template":            "This reference has no citation template. Select one first.",
	"template-missing":       "Missing required fields: $1.",
	"generate-no-input":      "Enter a URL, DOI, ISBN or citation text.",
	"generate-done":          "Citation generated.",
	"generate-error":         "The citation could not be generated: $1",
	"archive-no-url":         "Fill the URL field first.",
	"archive-no-snapshot":    "No archived copy of this URL was found.",
	"archive-error":          "The archive could not be reached: $1",
	"archive-done":           "Archived copy found from $1.",
	"lookup-unavailable":     "Lookup services are not configured.",
	"today-done":             "Set to today's date.",
	"unsaved-changes":        "The citation has unsaved changes.",
	"title-search-error":     "Page suggestions are unavailable: $1",
	"schema-load-error":      "Template data could not be loaded: $1",
	"template-selected":      "Template selected: $1.",
}

// Messages is a table of interface messages.
type Messages struct {
	table map[string]string
}

// DefaultMessages returns the English message table.
func DefaultMessages() *Messages {
	table := make(map[string]string, len(defaultMessages))
	for k, v := range defaultMessages {
		table[k] = v
	}
	return &Messages{table: table}
}

// LoadMessages returns the English table overlaid with the translations
// in a JSON file of key → message. The "@metadata" entry is ignored, and
// keys missing from the file keep their English text.
func LoadMessages(path string) (*Messages, error) {
	m := DefaultMessages()
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading messages: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing messages %s: %w", path, err)
	}
	for key, value := range raw {
		if key == "@metadata" {
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("parsing message %q: %w", key, err)
		}
		m.table[key] = s
	}
	return m, nil
}

// Format returns the message for key with $n placeholders replaced by
// args. Unknown keys render as the key itself.
func (m *Messages) Format(key string, args ...string) string {
	msg, ok := "", false
	if m != nil {
		msg, ok = m.table[key]
	}
	if !ok {
		msg, ok = defaultMessages[key]
	}
	if !ok {
		return key
	}
	// Replace from the highest index so $1 does not eat the prefix of $10.
	for i := len(args); i >= 1; i-- {
		msg = strings.ReplaceAll(msg, "$"+strconv.Itoa(i), args[i-1])
	}
	return msg
}
