package traits

import (
	"encoding/json"
	"strconv"
)

// Trait vocabulary, in the canonical order used for prompt compaction.
var keyOrder = []string{
	"primary_subject",
	"color_palette",
	"dominant_textures",
	"scene_type",
	"lighting",
	"composition",
	"notable_features",
	"style",
}

// TraitSet is the normalized description of one input image. It is a tagged
// union: either a structured field mapping parsed from model output, or the
// raw text when no JSON object could be recovered. A TraitSet is immutable
// once produced.
type TraitSet struct {
	fields map[string]string
	raw    string
	isRaw  bool
}

// Structured builds a TraitSet from a parsed field mapping.
func Structured(fields map[string]string) TraitSet {
	if fields == nil {
		fields = map[string]string{}
	}
	return TraitSet{fields: fields}
}

// Raw builds the fallback TraitSet holding unparsed model text.
func Raw(text string) TraitSet {
	return TraitSet{raw: text, isRaw: true}
}

// IsRaw reports whether the set is in fallback form.
func (t TraitSet) IsRaw() bool { return t.isRaw }

// RawText returns the unparsed text of a fallback set, or "" for structured sets.
func (t TraitSet) RawText() string { return t.raw }

// Field returns the value stored under key, or "" when absent or fallback.
func (t TraitSet) Field(key string) string {
	if t.isRaw {
		return ""
	}
	return t.fields[key]
}

// Len returns the number of populated fields; fallback sets report zero.
func (t TraitSet) Len() int {
	if t.isRaw {
		return 0
	}
	return len(t.fields)
}

// stringify renders a decoded JSON value as a short prompt-safe string.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
