package chat

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	maxValueLen     = 160
	maxArrayItemLen = 60
)

var sensitiveHints = []string{
	"key",
	"token",
	"secret",
	"password",
	"passwd",
	"auth",
	"authorization",
	"cookie",
	"api_key",
	"apikey",
	"access_key",
	"session",
	"bearer",
}

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, hint := range sensitiveHints {
		if strings.Contains(k, hint) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// renderValue formats a single argument value for display. Values under
// secret-looking keys are masked, long strings are truncated, and nested
// structures are summarized rather than dumped.
func renderValue(key string, v any) string {
	if isSensitiveKey(key) {
		return "***"
	}
	switch val := v.(type) {
	case string:
		return truncate(val, maxValueLen)
	case float64:
		return fmt.Sprintf("%v", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case nil:
		return "null"
	case []any:
		return renderArray(val)
	case map[string]any:
		return fmt.Sprintf("{%d keys}", len(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}

func renderArray(arr []any) string {
	if len(arr) == 0 {
		return "[]"
	}
	if len(arr) > 5 {
		return fmt.Sprintf("[%d items]", len(arr))
	}
	parts := make([]string, 0, len(arr))
	for _, it := range arr {
		switch v := it.(type) {
		case string:
			parts = append(parts, fmt.Sprintf("%q", truncate(v, maxArrayItemLen)))
		case float64:
			parts = append(parts, fmt.Sprintf("%v", v))
		case bool:
			parts = append(parts, fmt.Sprintf("%t", v))
		case nil:
			parts = append(parts, "null")
		default:
			return fmt.Sprintf("[%d items]", len(arr))
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatParams renders raw tool-call arguments as an indented key/value
// listing with stable key order. Unparseable input is shown as-is.
func FormatParams(rawArgs string) string {
	var parsed any
	if err := json.Unmarshal([]byte(rawArgs), &parsed); err != nil {
		return "  " + truncate(rawArgs, maxValueLen) + "\n"
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return "  " + truncate(rawArgs, maxValueLen) + "\n"
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out strings.Builder
	for _, k := range keys {
		if nested, ok := obj[k].(map[string]any); ok {
			fmt.Fprintf(&out, "  %s:\n", k)
			subKeys := make([]string, 0, len(nested))
			for sk := range nested {
				subKeys = append(subKeys, sk)
			}
			sort.Strings(subKeys)
			for _, sk := range subKeys {
				fmt.Fprintf(&out, "    %s: %s\n", sk, renderValue(sk, nested[sk]))
			}
			continue
		}
		fmt.Fprintf(&out, "  %s: %s\n", k, renderValue(k, obj[k]))
	}
	return out.String()
}
