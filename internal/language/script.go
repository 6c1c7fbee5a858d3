package language

import "strings"

// Script classifies the dominant writing system of a message.
type Script string

const (
	ScriptDevanagari Script = "HINDI_SCRIPT"
	ScriptTamil      Script = "TAMIL_SCRIPT"
	ScriptLatinOnly  Script = "LATIN_ONLY"
	ScriptMixed      Script = "MIXED"
	ScriptUnknown    Script = "UNKNOWN"
)

// DetectScript inspects unicode ranges to classify a message. Latin mixed
// with an Indic script is reported as ScriptMixed.
func DetectScript(text string) Script {
	var hasDevanagari, hasTamil, hasLatin bool
	for _, r := range text {
		switch {
		case r >= 0x0900 && r <= 0x097F:
			hasDevanagari = true
		case r >= 0x0B80 && r <= 0x0BFF:
			hasTamil = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLatin = true
		}
	}

	switch {
	case hasDevanagari && !hasLatin:
		return ScriptDevanagari
	case hasTamil && !hasLatin:
		return ScriptTamil
	case hasLatin && !hasDevanagari && !hasTamil:
		return ScriptLatinOnly
	case hasLatin:
		return ScriptMixed
	}
	return ScriptUnknown
}

// Romanized language hints returned by DetectRomanized.
const (
	RomanizedHindi = "ROMANIZED_HINDI"
	RomanizedTamil = "ROMANIZED_TAMIL"
)

// Common romanized function words; a couple of hits is a strong signal the
// Latin text is not actually English.
var (
	romanizedHindiHints = []string{"hai", "nahi", "kya", "paise", "bhejo", "karo", "jaldi", "aap", "mera", "khata"}
	romanizedTamilHints = []string{"illai", "enna", "panam", "seekiram", "anuppu", "unga", "irukku", "venum"}
)

// DetectRomanized guesses whether Latin-script text is romanized Hindi or
// Tamil. Returns "" for plain English.
func DetectRomanized(text string) string {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return ""
	}

	hindi, tamil := 0, 0
	for _, token := range tokens {
		trimmed := strings.Trim(token, ".,;:!?")
		for _, hint := range romanizedHindiHints {
			if trimmed == hint {
				hindi++
			}
		}
		for _, hint := range romanizedTamilHints {
			if trimmed == hint {
				tamil++
			}
		}
	}

	switch {
	case hindi >= 2 && hindi >= tamil:
		return RomanizedHindi
	case tamil >= 2:
		return RomanizedTamil
	}
	return ""
}
