package langdetect

import (
	"strings"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minLetters is the shortest sample lingua is asked to classify.
const minLetters = 4

// Detector guesses the ISO 639-1 code of a text among a fixed language set.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector restricted to the given ISO 639-1 codes. Unknown
// codes are ignored; with fewer than two usable codes all languages are used.
func New(codes []string) *Detector {
	languages := make([]lingua.Language, 0, len(codes))
	seen := make(map[lingua.Language]struct{}, len(codes))
	for _, code := range codes {
		lang, ok := languageForCode(code)
		if !ok {
			continue
		}
		if _, dup := seen[lang]; dup {
			continue
		}
		seen[lang] = struct{}{}
		languages = append(languages, lang)
	}

	builder := lingua.NewLanguageDetectorBuilder()
	var built lingua.LanguageDetector
	if len(languages) >= 2 {
		built = builder.FromLanguages(languages...).Build()
	} else {
		built = builder.FromAllLanguages().Build()
	}
	return &Detector{detector: built}
}

// DetectISO6391 returns the detected code, or "" when the sample is too short
// or ambiguous.
func (d *Detector) DetectISO6391(text string) string {
	if d == nil || d.detector == nil {
		return ""
	}
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return ""
	}

	detected, exists := d.detector.DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(detected.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

func languageForCode(code string) (lingua.Language, bool) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return lingua.Unknown, false
	}
	for _, lang := range lingua.AllLanguages() {
		if strings.ToLower(lang.IsoCode639_1().String()) == normalized {
			return lang, true
		}
	}
	return lingua.Unknown, false
}
