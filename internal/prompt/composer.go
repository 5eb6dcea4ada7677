// Package prompt builds the generation prompt for a morph run.
package prompt

import "strings"

// Short user instructions below this length are treated as noise and dropped.
const minInstructionLen = 3

// Fixed guidance clauses. Long instruction lists tend to reduce realism, so
// the template stays short and photo-biased, and user preferences are kept in
// a clearly delimited suffix instead of being mixed into the guidance.
const (
	opening = "Photorealistic RAW image of the subject. Composite of attributes from both input images.\n"

	guidance = "Combine colors, textures, shapes, and composition elements naturally. " +
		"Preserve realistic materials, proportions, and lighting appropriate to the subject and scene. " +
		"Neutral background unless the scene suggests otherwise, natural lighting, accurate depth of field, " +
		"and subtle film grain for realism. " +
		"Avoid CGI, 3D renderings, illustrations, or obviously synthetic artifacts."
)

// Compose assembles the final generation prompt from the two compact trait
// lines and the trimmed user instruction. Output is deterministic for
// identical inputs.
func Compose(line1, line2, userInstruction string) string {
	var b strings.Builder
	b.WriteString(opening)
	b.WriteString("Image 1 traits: ")
	b.WriteString(line1)
	b.WriteString("\nImage 2 traits: ")
	b.WriteString(line2)
	b.WriteString("\n")
	b.WriteString(guidance)

	if instruction := strings.TrimSpace(userInstruction); len(instruction) >= minInstructionLen {
		b.WriteString("\nUser preferences: ")
		b.WriteString(instruction)
	}

	return b.String()
}
