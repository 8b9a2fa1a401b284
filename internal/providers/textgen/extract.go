package textgen

import (
	"encoding/json"
	"regexp"
	"strings"
)

var trailingCommas = regexp.MustCompile(`,\s*([}\]])`)

// ExtractJSON pulls a single JSON object out of free-form model output. It is
// deliberately permissive: quotes are normalized and trailing commas removed
// before a strict parse, and any failure yields an empty map so the caller's
// fallback branch runs instead of an error propagating.
func ExtractJSON(raw string) map[string]any {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return map[string]any{}
	}
	fragment := raw[start : end+1]
	fragment = strings.ReplaceAll(fragment, "'", `"`)
	fragment = trailingCommas.ReplaceAllString(fragment, "$1")

	var out map[string]any
	if err := json.Unmarshal([]byte(fragment), &out); err != nil {
		return map[string]any{}
	}
	if out == nil {
		return map[string]any{}
	}
	return out
}
