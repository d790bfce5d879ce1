package match

import (
	"strings"
	"unicode"
)

// NormalizeHeader normalizes a header name for fuzzy matching.
// The normalization pipeline:
// 1. Split CamelCase into tokens.
// 2. Case-fold to lower.
// 3. Drop everything that is not a letter or digit (spaces, "_", "-", brackets).
func NormalizeHeader(s string) string {
	var b strings.Builder

	for _, tok := range tokenizeCamelCase(s) {
		for _, r := range tok {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToLower(r))
			}
		}
	}

	return b.String()
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Examples:
//   - "NodeName" -> ["Node", "Name"]
//   - "unitCapacity" -> ["unit", "Capacity"]
//   - "MWhPrice" -> ["M", "Wh", "Price"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var (
		tokens  []string
		current strings.Builder
	)

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// shouldStartNewToken reports a lower-to-upper transition, or the last
// capital of an acronym that is followed by a lowercase letter.
func shouldStartNewToken(runes []rune, i int) bool {
	prev, curr := runes[i-1], runes[i]
	if !unicode.IsUpper(curr) {
		return false
	}

	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}

	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
