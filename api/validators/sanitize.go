package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString trims input and folds every run of whitespace, including
// newlines pasted into an address field, into a single space. A positive
// maxLen caps the result in runes, so accented street names are never cut
// mid-character.
func SanitizeString(input string, maxLen int) string {
	clean := strings.Join(strings.Fields(input), " ")
	if maxLen <= 0 || utf8.RuneCountInString(clean) <= maxLen {
		return clean
	}
	runes := []rune(clean)
	return strings.TrimSpace(string(runes[:maxLen]))
}
