package search

import "slices"

// ScoredCandidate is a candidate with the signals that ranked it. Scores are
// fixed when the candidate is fused.
type ScoredCandidate struct {
	Candidate
	BM25    float64
	Cosine  float64
	Score   float64
	Excerpt string
}

// weights holds the fusion coefficients and the inputs of the three boosts.
type weights struct {
	alpha        float64
	beta         float64
	subjectBoost float64
	planeBoost   float64
	phraseBoost  float64
	subject      string
	plane        string
	query        string
}

func (w weights) fuse(c Candidate, cosine, bm25 float64) float64 {
	score := w.alpha*cosine + w.beta*bm25
	if w.subject != "" && c.Subject == w.subject {
		score *= w.subjectBoost
	}
	if w.plane != "" && c.Plane == w.plane {
		score *= w.planeBoost
	}
	if containsPhrase(c.Text, w.query) {
		score *= w.phraseBoost
	}
	return score
}

// fuseCandidates scores every candidate from the lexical and semantic maps
// (a missing entry counts as 0) and returns them sorted by descending score.
// Equal scores keep candidate order.
func fuseCandidates(candidates []Candidate, lexical, semantic map[string]float64, w weights) []ScoredCandidate {
	ranked := make([]ScoredCandidate, len(candidates))
	for i, c := range candidates {
		bm25 := lexical[c.Id]
		cosine := semantic[c.Id]
		ranked[i] = ScoredCandidate{
			Candidate: c,
			BM25:      bm25,
			Cosine:    cosine,
			Score:     w.fuse(c, cosine, bm25),
			Excerpt:   Excerpt(c.Text, w.query),
		}
	}
	slices.SortStableFunc(ranked, byScoreDesc)
	return ranked
}

func byScoreDesc(a, b ScoredCandidate) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	default:
		return 0
	}
}
