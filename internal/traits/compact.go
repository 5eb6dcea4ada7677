package traits

import (
	"encoding/json"
	"strings"
)

// Compact collapses a TraitSet into a single low-noise line for prompt
// embedding. Fields are emitted in the canonical vocabulary order regardless
// of how the model ordered them; fallback sets pass through unchanged, which
// also makes Compact idempotent on its own raw output.
func Compact(ts TraitSet) string {
	if ts.IsRaw() {
		return ts.RawText()
	}

	parts := make([]string, 0, len(keyOrder))
	for _, key := range keyOrder {
		if v := ts.Field(key); v != "" {
			parts = append(parts, strings.ReplaceAll(key, "_", " ")+": "+v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "; ")
	}

	// The object parsed but carries none of the known keys; fall back to a
	// stable serialization (encoding/json sorts map keys).
	encoded, err := json.Marshal(ts.fields)
	if err != nil {
		return ""
	}
	return string(encoded)
}
