package tmdb

import "strings"

// languageMap translates the client-facing language preference into the
// locale tags TMDB expects.
var languageMap = map[string]string{
	"es": "es-ES",
	"en": "en-US",
	"pt": "pt-BR",
}

// Language maps a language preference ("es", "pt-BR", ...) to the TMDB locale
// tag, falling back to en-US.
func Language(lang string) string {
	if lang == "" {
		return "en-US"
	}
	if tag, ok := languageMap[lang]; ok {
		return tag
	}
	if base, _, found := strings.Cut(lang, "-"); found {
		if tag, ok := languageMap[base]; ok {
			return tag
		}
	}
	return "en-US"
}
