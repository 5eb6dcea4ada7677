// Package i18n holds the user-facing message catalog for pipeline output.
// Progress markers stay untranslated (clients key on them); only terminal
// messages shown to end users are localized.
package i18n

// Key identifies one catalog entry.
type Key string

const (
	NeedTwoImages    Key = "need_two_images"
	NoImagesReturned Key = "no_images_returned" // takes the truncated raw response
	StorageFailed    Key = "storage_failed"
	PipelineError    Key = "pipeline_error" // takes the error text
)

var catalog = map[string]map[Key]string{
	"en": {
		NeedTwoImages:    "Please upload two images to morph.",
		NoImagesReturned: "Error: No images returned. Raw response: %s",
		StorageFailed:    "Error: Could not decode/store generated images.",
		PipelineError:    "Pipeline error: %s",
	},
	"de": {
		NeedTwoImages:    "Bitte lade zwei Bilder zum Morphen hoch.",
		NoImagesReturned: "Fehler: Keine Bilder erhalten. Rohantwort: %s",
		StorageFailed:    "Fehler: Generierte Bilder konnten nicht dekodiert/gespeichert werden.",
		PipelineError:    "Pipeline-Fehler: %s",
	},
}

// T returns the message template for the locale, falling back to English for
// unknown locales or missing entries.
func T(locale string, key Key) string {
	if messages, ok := catalog[locale]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	return catalog["en"][key]
}
