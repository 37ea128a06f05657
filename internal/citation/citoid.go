// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ApplyCitoid copies Citoid fields into t through the template's citoid
// map. A map value is a parameter name, or a list that pairs up
// element-wise with a list-valued field (author: [[first1, last1], ...]).
// Fields without a mapping, and mappings without data, are ignored. Pipes
// in values are escaped.
func ApplyCitoid(t *Template, data map[string]any) {
	mapping := t.TemplateData().CitoidMap()
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v, ok := data[k]; ok {
			setMapped(t, mapping[k], v)
		}
	}
}

func setMapped(t *Template, target, value any) {
	switch target := target.(type) {
	case string:
		if s := scalar(value); s != "" {
			t.SetParam(target, EscapePipes(s))
		}
	case []any:
		values, ok := value.([]any)
		if !ok {
			if len(target) > 0 {
				setMapped(t, target[0], value)
			}
			return
		}
		for i, sub := range target {
			if i >= len(values) {
				break
			}
			setMapped(t, sub, values[i])
		}
	}
}

// scalar converts a decoded JSON value to text. Lists yield their first
// element.
func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		if len(v) == 0 {
			return ""
		}
		return scalar(v[0])
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// EscapePipes replaces '|' with the {{!}} magic word so a value cannot
// split the template it is written into.
func EscapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "{{!}}")
}
