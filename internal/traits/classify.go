package traits

import "strings"

// Keyword sets checked in priority order; the first set with a match wins.
var (
	personWords = []string{"baby", "infant", "child", "kid", "teen", "adult", "person", "portrait"}
	animalWords = []string{"dog", "cat", "pet", "animal", "horse", "bird"}
	sceneWords  = []string{"landscape", "scene", "city", "interior", "exterior"}
)

// ClassifySubject maps a free-text user instruction to a coarse subject
// category. The result is descriptive only and never changes generation
// behavior.
func ClassifySubject(instruction string) string {
	s := strings.ToLower(instruction)
	switch {
	case containsAny(s, personWords):
		return "a person"
	case containsAny(s, animalWords):
		return "an animal"
	case containsAny(s, sceneWords):
		return "a scene"
	default:
		return "a subject"
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
