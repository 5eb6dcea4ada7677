package traits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactRawPassesThroughUnchanged(t *testing.T) {
	raw := "  weird unparsed   text with {braces} "
	assert.Equal(t, raw, Compact(Raw(raw)))
}

func TestCompactIdempotentOnFallback(t *testing.T) {
	line := Compact(Raw("primary subject: cat; style: photo"))
	assert.Equal(t, line, Compact(Raw(line)))
}

func TestCompactCanonicalOrderIndependentOfInput(t *testing.T) {
	ts := Structured(map[string]string{
		"style":           "photorealistic",
		"lighting":        "soft window light",
		"primary_subject": "cat",
		"color_palette":   "warm browns",
	})
	assert.Equal(t,
		"primary subject: cat; color palette: warm browns; lighting: soft window light; style: photorealistic",
		Compact(ts))
}

func TestCompactSkipsEmptyFields(t *testing.T) {
	ts := Structured(map[string]string{
		"primary_subject": "dog",
		"color_palette":   "",
		"style":           "natural",
	})
	assert.Equal(t, "primary subject: dog; style: natural", Compact(ts))
}

func TestCompactUnknownKeysSerializedStably(t *testing.T) {
	ts := Structured(map[string]string{"zebra": "z", "alpha": "a"})
	line := Compact(ts)
	require.NotEmpty(t, line)
	// encoding/json sorts map keys, so the serialization is deterministic.
	assert.Equal(t, `{"alpha":"a","zebra":"z"}`, line)
}

func TestCompactEndToEndFromNormalize(t *testing.T) {
	ts := Normalize("```json\n" + `{"primary_subject":"cat","color_palette":"brown"}` + "\n```")
	assert.Equal(t, "primary subject: cat; color palette: brown", Compact(ts))
}
