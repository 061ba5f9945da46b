package openai

import (
	"regexp"
	"strings"
)

// stripCodeFences removes markdown code fences some models wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// salvageArray returns the outermost bracketed span of s, if any.
func salvageArray(s string) (string, bool) {
	m := jsonArrayPattern.FindString(s)
	return m, m != ""
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// matchAllowed returns the canonical spelling of value from allowed, ignoring
// case and surrounding whitespace.
func matchAllowed(value string, allowed []string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	for _, a := range allowed {
		if strings.EqualFold(a, value) {
			return a, true
		}
	}
	return "", false
}
