package search

import "github.com/poiesic/albumsearch/ai"

// rerankCandidates returns the reranker's view of the head of ranked.
func rerankCandidates(head []ScoredCandidate) []ai.RerankCandidate {
	out := make([]ai.RerankCandidate, len(head))
	for i, c := range head {
		out[i] = ai.RerankCandidate{
			Id:      c.Id,
			Title:   c.Title,
			Source:  c.Source,
			Excerpt: c.Excerpt,
		}
	}
	return out
}

// applyRerankOrder reorders the first topK entries of ranked by order.
// Ids outside that head and repeated ids are ignored. Head entries the order
// omits follow in their fused order, and everything after the head is left
// as it was. ranked is not modified.
func applyRerankOrder(ranked []ScoredCandidate, topK int, order []string) []ScoredCandidate {
	k := min(max(topK, 0), len(ranked))
	head := ranked[:k]

	position := make(map[string]int, k)
	for i, c := range head {
		position[c.Id] = i
	}

	out := make([]ScoredCandidate, 0, len(ranked))
	placed := make([]bool, k)
	for _, id := range order {
		i, ok := position[id]
		if !ok || placed[i] {
			continue
		}
		placed[i] = true
		out = append(out, head[i])
	}
	for i, c := range head {
		if !placed[i] {
			out = append(out, c)
		}
	}
	return append(out, ranked[k:]...)
}
