package mock

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/albumsearch/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicVector(t *testing.T) {
	a := DeterministicVector("sandpaper letters")
	b := DeterministicVector("sandpaper letters")
	c := DeterministicVector("golden beads")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	require.Len(t, a, VectorDim)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestMockEmbedder(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	v, err := m.EmbedText(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, DeterministicVector("x"), v)

	vs, err := m.EmbedTexts(ctx, []string{"x", "y"})
	require.NoError(t, err)
	assert.Len(t, vs, 2)
	assert.Equal(t, 2, m.CallCount())

	m.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	v, err = m.EmbedText(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, v)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	assert.Nil(t, m.EmbedTextFunc)
}

func TestMockCanonicalizer(t *testing.T) {
	m := NewMockCanonicalizer()
	res := m.Canonicalize(context.Background(), ai.CanonicalizeRequest{Query: "  Counting ", SubjectHint: "Math"})

	require.True(t, res.OK())
	assert.Equal(t, "counting", res.Value.NormalizedQuery)
	assert.Equal(t, "Math", res.Value.Subject)
	assert.Equal(t, 1, m.CallCount())
}

func TestMockReranker(t *testing.T) {
	m := NewMockReranker()
	res := m.Rerank(context.Background(), "q", []ai.RerankCandidate{{Id: "a"}, {Id: "b"}})

	require.True(t, res.OK())
	assert.Equal(t, []string{"a", "b"}, res.Value)
	assert.Len(t, m.LastCandidates, 2)
}

func TestMockProvider(t *testing.T) {
	provider := NewMockProvider()
	mp, ok := provider.(*MockProvider)
	require.True(t, ok)

	assert.Equal(t, ai.ProviderLocal, provider.Kind())
	assert.Same(t, mp.GetMockEmbedder(), provider.Embedder())
	assert.Same(t, mp.GetMockCanonicalizer(), provider.Canonicalizer())
	assert.Same(t, mp.GetMockReranker(), provider.Reranker())

	require.NoError(t, provider.Close())
	assert.True(t, mp.Closed())
}
