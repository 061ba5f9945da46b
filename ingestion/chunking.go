package ingestion

import "strings"

const (
	// DefaultChunkMin is the length a chunk must exceed before it may end
	// at a sentence boundary.
	DefaultChunkMin = 500
	// DefaultChunkMax is the hard upper bound on chunk length.
	DefaultChunkMax = 800
)

// ChunkPage splits one page of text into chunks of at most maxLen runes.
// Text that fits is returned as a single chunk. Otherwise each window of maxLen
// runes is cut after its last ". " when that falls beyond minLen runes, and
// hard-cut at maxLen when it does not. Chunks are trimmed and empty ones dropped.
func ChunkPage(text string, minLen, maxLen int) []string {
	t := []rune(strings.TrimSpace(text))
	if len(t) == 0 {
		return nil
	}
	if len(t) <= maxLen {
		return []string{string(t)}
	}

	var chunks []string
	for i := 0; i < len(t); {
		end := i + maxLen
		if end > len(t) {
			end = len(t)
		}
		slice := t[i:end]
		if dot := lastSentenceEnd(slice); dot > minLen {
			slice = slice[:dot+1]
		}
		if piece := strings.TrimSpace(string(slice)); piece != "" {
			chunks = append(chunks, piece)
		}
		i += len(slice)
	}
	return chunks
}

// lastSentenceEnd returns the rune index of the last ". " in s, or -1.
func lastSentenceEnd(s []rune) int {
	for i := len(s) - 2; i >= 0; i-- {
		if s[i] == '.' && s[i+1] == ' ' {
			return i
		}
	}
	return -1
}
