package llm

import (
	"strings"
	"unicode"
)

const ellipsis = "…"

// Truncate cuts s to at most maxChars runes, backing up to the last
// whitespace boundary and appending an ellipsis when anything was cut.
// maxChars <= 0 disables truncation.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}

	cut := runes[:maxChars]
	boundary := -1
	for i := len(cut) - 1; i >= 0; i-- {
		if unicode.IsSpace(cut[i]) {
			boundary = i
			break
		}
	}
	if boundary > 0 {
		cut = cut[:boundary]
	}

	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + ellipsis
}
