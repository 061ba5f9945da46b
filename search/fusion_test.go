package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultWeights() weights {
	cfg := DefaultConfig()
	return weights{
		alpha:        cfg.ScoreAlpha,
		beta:         cfg.ScoreBeta,
		subjectBoost: cfg.SubjectBoost,
		planeBoost:   cfg.PlaneBoost,
		phraseBoost:  cfg.PhraseBoost,
	}
}

func TestWeightsFuse(t *testing.T) {
	w := defaultWeights()
	w.query = "number rods"
	c := Candidate{Text: "red rods"}

	assert.InDelta(t, 0.7*0.5+0.3*2.0, w.fuse(c, 0.5, 2.0), 1e-12)
	assert.InDelta(t, 0.0, w.fuse(c, 0, 0), 1e-12)
}

func TestWeightsFuseBoostsCompound(t *testing.T) {
	base := defaultWeights()
	base.query = "golden beads"
	c := Candidate{Text: "Lay out the golden beads", Subject: "Math", Plane: "6-12"}
	plain := base.fuse(Candidate{Text: "unrelated"}, 0.5, 1)

	tests := []struct {
		name    string
		subject string
		plane   string
		factor  float64
	}{
		{name: "phrase only", factor: 1.2},
		{name: "subject and phrase", subject: "Math", factor: 1.2 * 1.2},
		{name: "all three", subject: "Math", plane: "6-12", factor: 1.2 * 1.2 * 1.2},
		{name: "mismatched filter gives no boost", subject: "Language", factor: 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := base
			w.subject = tt.subject
			w.plane = tt.plane
			assert.InDelta(t, plain*tt.factor, w.fuse(c, 0.5, 1), 1e-12)
		})
	}
}

func TestWeightsFuseMonotonic(t *testing.T) {
	w := defaultWeights()
	w.subject = "Math"
	w.query = "beads"
	c := Candidate{Text: "beads", Subject: "Math"}

	values := []float64{-0.5, 0, 0.1, 0.35, 1, 4}
	for i := 1; i < len(values); i++ {
		for _, other := range values {
			assert.GreaterOrEqual(t, w.fuse(c, values[i], other), w.fuse(c, values[i-1], other))
			assert.GreaterOrEqual(t, w.fuse(c, other, values[i]), w.fuse(c, other, values[i-1]))
		}
	}
}

func TestFuseCandidates(t *testing.T) {
	candidates := []Candidate{
		{Id: "a", Text: "alpha"},
		{Id: "b", Text: "beta"},
		{Id: "c", Text: "gamma"},
		{Id: "d", Text: "delta"},
	}
	lexical := map[string]float64{"a": 1, "c": 2}
	semantic := map[string]float64{"b": 0.9, "c": 0.1}

	ranked := fuseCandidates(candidates, lexical, semantic, defaultWeights())
	require.Len(t, ranked, 4)

	// c: 0.7*0.1 + 0.3*2, b: 0.7*0.9, a: 0.3*1, d: 0
	assert.Equal(t, "c", ranked[0].Id)
	assert.Equal(t, "b", ranked[1].Id)
	assert.Equal(t, "a", ranked[2].Id)
	assert.Equal(t, "d", ranked[3].Id)
	assert.InDelta(t, 0.67, ranked[0].Score, 1e-12)
	assert.Equal(t, 0.0, ranked[3].Score)
	assert.Equal(t, 2.0, ranked[0].BM25)
	assert.Equal(t, 0.1, ranked[0].Cosine)
}

func TestFuseCandidatesUniformBoostKeepsOrder(t *testing.T) {
	candidates := []Candidate{
		{Id: "a", Text: "one", Subject: "Math"},
		{Id: "b", Text: "two", Subject: "Math"},
		{Id: "c", Text: "three", Subject: "Math"},
	}
	lexical := map[string]float64{"a": 0.2, "b": 1.5, "c": 0.9}

	unboosted := fuseCandidates(candidates, lexical, nil, defaultWeights())

	w := defaultWeights()
	w.subject = "Math"
	boosted := fuseCandidates(candidates, lexical, nil, w)

	for i := range unboosted {
		assert.Equal(t, unboosted[i].Id, boosted[i].Id)
		assert.Greater(t, boosted[i].Score, unboosted[i].Score)
	}
}

func TestFuseCandidatesUnequalBoostReorders(t *testing.T) {
	candidates := []Candidate{
		{Id: "untagged", Text: "one"},
		{Id: "tagged", Text: "two", Subject: "Math"},
	}
	lexical := map[string]float64{"untagged": 1.0, "tagged": 0.9}

	unboosted := fuseCandidates(candidates, lexical, nil, defaultWeights())
	assert.Equal(t, "untagged", unboosted[0].Id)

	w := defaultWeights()
	w.subject = "Math"
	boosted := fuseCandidates(candidates, lexical, nil, w)
	assert.Equal(t, "tagged", boosted[0].Id)
}

func TestFuseCandidatesSetsExcerpt(t *testing.T) {
	w := defaultWeights()
	w.query = "beads"
	ranked := fuseCandidates([]Candidate{{Id: "a", Text: "  golden beads  "}}, nil, nil, w)
	require.Len(t, ranked, 1)
	assert.Equal(t, "golden beads", ranked[0].Excerpt)
}
