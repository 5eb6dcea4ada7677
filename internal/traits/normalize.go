package traits

import (
	"encoding/json"
	"strings"
)

// Normalize salvages a TraitSet from free-form model output. Vision models
// routinely wrap their JSON in markdown fences or surround it with prose, so
// recovery is attempted in order: fence strip, direct parse, outermost-brace
// substring parse. When everything fails the trimmed text is kept verbatim as
// the fallback form. Normalize never fails: every input yields a TraitSet.
func Normalize(text string) TraitSet {
	t := trimCodeFence(strings.TrimSpace(text))

	if fields, ok := parseObject(t); ok {
		return Structured(fields)
	}

	// The model may prepend or append prose around the object; take the span
	// from the first '{' to the last '}'.
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		if fields, ok := parseObject(t[start : end+1]); ok {
			return Structured(fields)
		}
	}

	return Raw(t)
}

func parseObject(text string) (map[string]string, bool) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil || decoded == nil {
		return nil, false
	}
	fields := make(map[string]string, len(decoded))
	for k, v := range decoded {
		fields[k] = stringify(v)
	}
	return fields, true
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop an optional language tag such as "json" on the opening fence.
	if idx := strings.IndexAny(trimmed, "\n{"); idx > 0 {
		tag := strings.TrimSpace(trimmed[:idx])
		if tag != "" && !strings.ContainsAny(tag, "{}") && len(tag) <= 16 {
			trimmed = trimmed[idx:]
		}
	}
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
