package voice

import (
	"unicode"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
)

var scriptLanguages = []struct {
	rangeTable *unicode.RangeTable
	language   lang.Language
}{
	{unicode.Devanagari, lang.Hindi},
	{unicode.Bengali, lang.Bengali},
	{unicode.Tamil, lang.Tamil},
	{unicode.Telugu, lang.Telugu},
	{unicode.Gujarati, lang.Gujarati},
	{unicode.Kannada, lang.Kannada},
	{unicode.Malayalam, lang.Malayalam},
	{unicode.Gurmukhi, lang.Punjabi},
}

// InferLanguage guesses the utterance language from its script. The result is
// advisory: ambiguity (Latin script, mixed scripts, digits only) resolves to
// the fallback rather than blocking processing.
func InferLanguage(text string, fallback lang.Language) lang.Language {
	counts := make(map[lang.Language]int)
	best, bestCount := fallback, 0

	for _, r := range text {
		for _, s := range scriptLanguages {
			if unicode.Is(s.rangeTable, r) {
				counts[s.language]++
				if counts[s.language] > bestCount {
					best, bestCount = s.language, counts[s.language]
				}
				break
			}
		}
	}
	return best
}
