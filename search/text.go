package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	excerptLimit  = 500
	excerptLeadIn = 200
)

// Tokenize lowercases text and splits it into runs of [a-z0-9-]. Every other
// rune is a separator, so punctuation and accented letters never appear in a
// token.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), isSeparator)
}

func isSeparator(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		return false
	default:
		return true
	}
}

// containsPhrase reports whether the trimmed, lowercased query appears
// literally in text.
func containsPhrase(text, query string) bool {
	phrase := strings.ToLower(strings.TrimSpace(query))
	if phrase == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), phrase)
}

// Excerpt returns the display window of text for query. Text of at most 500
// runes is returned trimmed but otherwise verbatim. Longer text is cut to 500
// runes starting 200 runes before the first case-insensitive occurrence of
// the query's first token, or from the beginning when the token is absent.
func Excerpt(text, query string) string {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= excerptLimit {
		return trimmed
	}

	runes := []rune(trimmed)
	start := 0
	if tokens := Tokenize(query); len(tokens) > 0 {
		if at := runeIndexFold(runes, tokens[0]); at >= 0 {
			start = max(0, at-excerptLeadIn)
		}
	}
	end := min(len(runes), start+excerptLimit)
	return string(runes[start:end])
}

// runeIndexFold returns the rune offset of the first case-insensitive match
// of token in runes, or -1. Folding is rune-for-rune so offsets line up with
// the original text.
func runeIndexFold(runes []rune, token string) int {
	lowered := make([]rune, len(runes))
	for i, r := range runes {
		lowered[i] = unicode.ToLower(r)
	}
	haystack := string(lowered)
	at := strings.Index(haystack, token)
	if at < 0 {
		return -1
	}
	return utf8.RuneCountInString(haystack[:at])
}
