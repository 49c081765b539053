package notify

import (
	"strings"
	"unicode"
)

var (
	affirmatives = []string{"yes", "yeah", "yep", "sure", "please do", "of course", "ok", "okay", "correct", "right", "do it"}
	negatives    = []string{"no", "nope", "nah", "don't", "do not", "never mind", "cancel"}
)

// IsAffirmative reports whether utterance contains an affirmative word or
// phrase. Matching is on whole words.
func IsAffirmative(utterance string) bool {
	return containsAny(utterance, affirmatives)
}

func IsNegative(utterance string) bool {
	return containsAny(utterance, negatives)
}

func containsAny(utterance string, phrases []string) bool {
	padded := " " + normalize(utterance) + " "
	for _, p := range phrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	return strings.Join(fields, " ")
}
