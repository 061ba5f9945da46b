package search

// lexicalConfidenceFloor is the BM25 score at which a top hit counts as a
// lexical match regardless of its semantic score.
const lexicalConfidenceFloor = 0.1

// applyCutoff drops candidates scoring below minScore and keeps at most
// count of the rest.
func applyCutoff(ranked []ScoredCandidate, minScore float64, count int) []ScoredCandidate {
	if count <= 0 {
		return []ScoredCandidate{}
	}
	kept := make([]ScoredCandidate, 0, min(len(ranked), count))
	for _, c := range ranked {
		if len(kept) == count {
			break
		}
		if c.Score < minScore {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// isLowConfidence reports whether hits are too weak to trust: either there
// are none, or the top hit is below both the semantic threshold and the
// lexical floor.
func isLowConfidence(hits []ScoredCandidate, cosineThreshold float64) bool {
	if len(hits) == 0 {
		return true
	}
	top := hits[0]
	return top.Cosine < cosineThreshold && top.BM25 < lexicalConfidenceFloor
}
