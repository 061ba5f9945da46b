package search

import (
	"math"
	"slices"
)

const (
	// DefaultK1 controls term-frequency saturation.
	DefaultK1 = 1.5
	// DefaultB controls document-length normalization.
	DefaultB = 0.75

	minDenominator = 1e-6
)

// IndexDoc is one document handed to BuildIndex.
type IndexDoc struct {
	Id   string
	Text string
}

// LexicalMatch is a BM25 score for one indexed document.
type LexicalMatch struct {
	Id    string
	Score float64
}

type posting struct {
	doc int
	tf  int
}

// Index is a BM25 inverted index over a fixed document set. It is built for
// one request and never shared; the zero value is an empty index.
type Index struct {
	ids      []string
	lengths  []int
	postings map[string][]posting
	avgdl    float64
}

// BuildIndex tokenizes every document and records term frequencies, document
// frequencies and lengths. Document order is kept as the tie-break order for
// Score.
func BuildIndex(docs []IndexDoc) *Index {
	idx := &Index{
		ids:      make([]string, len(docs)),
		lengths:  make([]int, len(docs)),
		postings: make(map[string][]posting),
	}

	total := 0
	for i, doc := range docs {
		tokens := Tokenize(doc.Text)
		idx.ids[i] = doc.Id
		idx.lengths[i] = len(tokens)
		total += len(tokens)

		tf := make(map[string]int, len(tokens))
		order := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			if tf[tok] == 0 {
				order = append(order, tok)
			}
			tf[tok]++
		}
		for _, tok := range order {
			idx.postings[tok] = append(idx.postings[tok], posting{doc: i, tf: tf[tok]})
		}
	}
	if len(docs) > 0 {
		idx.avgdl = float64(total) / float64(len(docs))
	}
	return idx
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.ids)
}

// DocFreq returns the number of documents containing term.
func (idx *Index) DocFreq(term string) int {
	return len(idx.postings[term])
}

// Score ranks indexed documents against query with the default parameters.
// See ScoreWith.
func (idx *Index) Score(query string, limit int) []LexicalMatch {
	return idx.ScoreWith(query, limit, DefaultK1, DefaultB)
}

// ScoreWith ranks indexed documents against the unique terms of query.
// Documents with no matching term are absent. Results are sorted by
// descending score with ties in index order and truncated to limit; a limit
// of zero or less returns every match. The idf is not clamped, so a term
// present in most documents contributes a small negative score.
func (idx *Index) ScoreWith(query string, limit int, k1, b float64) []LexicalMatch {
	n := float64(len(idx.ids))
	avgdl := idx.avgdl
	if avgdl == 0 {
		avgdl = 1
	}

	scores := make([]float64, len(idx.ids))
	matched := make([]bool, len(idx.ids))
	seen := make(map[string]struct{})
	for _, term := range Tokenize(query) {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		postings := idx.postings[term]
		if len(postings) == 0 {
			continue
		}
		df := float64(len(postings))
		idf := math.Log((n-df+0.5)/(df+0.5) + 1)
		for _, p := range postings {
			tf := float64(p.tf)
			dl := float64(idx.lengths[p.doc])
			denom := max(tf+k1*(1-b+b*dl/avgdl), minDenominator)
			scores[p.doc] += idf * tf * (k1 + 1) / denom
			matched[p.doc] = true
		}
	}

	matches := make([]LexicalMatch, 0)
	for i, ok := range matched {
		if ok {
			matches = append(matches, LexicalMatch{Id: idx.ids[i], Score: scores[i]})
		}
	}
	slices.SortStableFunc(matches, func(a, b LexicalMatch) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
