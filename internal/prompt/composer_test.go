package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeLabelsBothTraitLines(t *testing.T) {
	p := Compose("primary subject: cat; color palette: brown", "primary subject: dog; color palette: black", "make it fluffy")

	assert.Contains(t, p, "Image 1 traits: primary subject: cat; color palette: brown")
	assert.Contains(t, p, "Image 2 traits: primary subject: dog; color palette: black")
}

func TestComposeUserPreferencesSuffixNotInterleaved(t *testing.T) {
	p := Compose("line one", "line two", "make it fluffy")

	require.True(t, strings.HasSuffix(p, "User preferences: make it fluffy"))
	// The fixed guidance must come before the suffix, untouched.
	guidanceIdx := strings.Index(p, "Avoid CGI")
	prefsIdx := strings.Index(p, "User preferences:")
	require.Greater(t, prefsIdx, guidanceIdx)
}

func TestComposeSkipsShortInstruction(t *testing.T) {
	for _, instruction := range []string{"", "  ", "ab", " a "} {
		p := Compose("l1", "l2", instruction)
		assert.NotContains(t, p, "User preferences", "instruction %q", instruction)
	}
}

func TestComposeDeterministic(t *testing.T) {
	a := Compose("l1", "l2", "same input")
	b := Compose("l1", "l2", "same input")
	assert.Equal(t, a, b)
}
