package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rankedOf(ids ...string) []ScoredCandidate {
	out := make([]ScoredCandidate, len(ids))
	for i, id := range ids {
		out[i] = ScoredCandidate{
			Candidate: Candidate{Id: id, Title: "title " + id, Source: "source " + id},
			Score:     float64(len(ids) - i),
			Excerpt:   "excerpt " + id,
		}
	}
	return out
}

func idsOf(ranked []ScoredCandidate) []string {
	out := make([]string, len(ranked))
	for i, c := range ranked {
		out[i] = c.Id
	}
	return out
}

func TestApplyRerankOrder(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		topK  int
		order []string
		want  []string
	}{
		{
			name:  "full reorder of head",
			ids:   []string{"a", "b", "c", "d", "e"},
			topK:  3,
			order: []string{"c", "a", "b"},
			want:  []string{"c", "a", "b", "d", "e"},
		},
		{
			name:  "omitted head ids follow in fused order",
			ids:   []string{"a", "b", "c", "d"},
			topK:  4,
			order: []string{"d", "b"},
			want:  []string{"d", "b", "a", "c"},
		},
		{
			name:  "unknown and duplicate ids ignored",
			ids:   []string{"a", "b", "c", "d"},
			topK:  3,
			order: []string{"zzz", "b", "b", "d", "a"},
			want:  []string{"b", "a", "c", "d"},
		},
		{
			name:  "empty order keeps fused order",
			ids:   []string{"a", "b", "c"},
			topK:  2,
			order: nil,
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "top-k larger than list",
			ids:   []string{"a", "b"},
			topK:  8,
			order: []string{"b", "a"},
			want:  []string{"b", "a"},
		},
		{
			name:  "zero top-k leaves everything",
			ids:   []string{"a", "b"},
			topK:  0,
			order: []string{"b", "a"},
			want:  []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := rankedOf(tt.ids...)
			got := applyRerankOrder(ranked, tt.topK, tt.order)

			assert.Equal(t, tt.want, idsOf(got))
			assert.Equal(t, tt.ids, idsOf(ranked), "input must not change")
		})
	}
}

func TestApplyRerankOrderKeepsScores(t *testing.T) {
	ranked := rankedOf("a", "b")
	got := applyRerankOrder(ranked, 2, []string{"b", "a"})

	assert.Equal(t, ranked[1], got[0])
	assert.Equal(t, ranked[0], got[1])
}

func TestRerankCandidates(t *testing.T) {
	got := rerankCandidates(rankedOf("a"))

	assert.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Id)
	assert.Equal(t, "title a", got[0].Title)
	assert.Equal(t, "source a", got[0].Source)
	assert.Equal(t, "excerpt a", got[0].Excerpt)
}
