package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/albumsearch/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel is an llms.Model that replays canned responses.
type fakeModel struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.responses[idx]}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "well formed",
			in:   `{"subject":"Math","keywords":["a","b"]}`,
			want: `{"subject":"Math","keywords":["a","b"]}`,
		},
		{
			name: "missing opening quote",
			in:   `{"normalized_query":"x", subject":"Math"}`,
			want: `{"normalized_query":"x", "subject":"Math"}`,
		},
		{
			name: "trailing comma",
			in:   `{"order":["a","b",]}`,
			want: `{"order":["a","b"]}`,
		},
		{
			name: "comma inside string untouched",
			in:   `{"q":"b, d]"}`,
			want: `{"q":"b, d]"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.in))
		})
	}
}

func TestParseCanonicalQuery(t *testing.T) {
	t.Run("full response", func(t *testing.T) {
		got, err := parseCanonicalQuery(`{"normalized_query":" child reverses b and d ","subject":"language","plane":"0-6","keywords":["sandpaper letters",""]}`)
		require.NoError(t, err)

		assert.Equal(t, "child reverses b and d", got.NormalizedQuery)
		assert.Equal(t, "Language", got.Subject)
		assert.Equal(t, "0-6", got.Plane)
		assert.Equal(t, []string{"sandpaper letters"}, got.Keywords)
	})

	t.Run("out of set values dropped", func(t *testing.T) {
		got, err := parseCanonicalQuery(`{"normalized_query":"q","subject":"Science","plane":"18-24"}`)
		require.NoError(t, err)

		assert.Empty(t, got.Subject)
		assert.Empty(t, got.Plane)
		assert.Nil(t, got.Keywords)
	})

	t.Run("non-array keywords ignored", func(t *testing.T) {
		got, err := parseCanonicalQuery(`{"normalized_query":"q","keywords":"letters"}`)
		require.NoError(t, err)
		assert.Nil(t, got.Keywords)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := parseCanonicalQuery(`I think the subject is Math`)
		assert.Error(t, err)
	})
}

func TestParseRerankOrder(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{name: "bare array", in: `["b","a"]`, want: []string{"b", "a"}},
		{name: "order object", in: `{"order":["c","a"]}`, want: []string{"c", "a"}},
		{name: "salvaged array", in: "Here you go:\n[\"a\",\n\"b\"]\nDone.", want: []string{"a", "b"}},
		{name: "object without order", in: `{"ids":["a"]}`, wantErr: true},
		{name: "garbage", in: `no idea`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRerankOrder(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalizer(t *testing.T) {
	ctx := context.Background()

	t.Run("success strips code fences", func(t *testing.T) {
		model := &fakeModel{responses: []string{"```json\n{\"normalized_query\":\"counting to ten\",\"subject\":\"Math\"}\n```"}}
		res := newCanonicalizer(model).Canonicalize(ctx, ai.CanonicalizeRequest{Query: "counting"})

		require.Equal(t, ai.StatusOK, res.Status)
		assert.Equal(t, "counting to ten", res.Value.NormalizedQuery)
		assert.Equal(t, "Math", res.Value.Subject)
	})

	t.Run("provider error is unavailable", func(t *testing.T) {
		model := &fakeModel{err: errors.New("connection refused")}
		res := newCanonicalizer(model).Canonicalize(ctx, ai.CanonicalizeRequest{Query: "q"})

		assert.Equal(t, ai.StatusUnavailable, res.Status)
		assert.ErrorIs(t, res.Err, ai.ErrCapabilityUnavailable)
		assert.Equal(t, 1, model.calls)
	})

	t.Run("malformed after retries", func(t *testing.T) {
		model := &fakeModel{responses: []string{"not json"}}
		res := newCanonicalizer(model).Canonicalize(ctx, ai.CanonicalizeRequest{Query: "q"})

		assert.Equal(t, ai.StatusMalformed, res.Status)
		assert.ErrorIs(t, res.Err, ai.ErrMalformedOutput)
		assert.Equal(t, maxParseAttempts, model.calls)
	})

	t.Run("retry recovers", func(t *testing.T) {
		model := &fakeModel{responses: []string{"oops", `{"normalized_query":"q2"}`}}
		res := newCanonicalizer(model).Canonicalize(ctx, ai.CanonicalizeRequest{Query: "q"})

		require.Equal(t, ai.StatusOK, res.Status)
		assert.Equal(t, "q2", res.Value.NormalizedQuery)
		assert.Equal(t, 2, model.calls)
	})
}

func TestReranker(t *testing.T) {
	ctx := context.Background()
	candidates := []ai.RerankCandidate{{Id: "a"}, {Id: "b"}}

	t.Run("success", func(t *testing.T) {
		model := &fakeModel{responses: []string{`{"order":["b","a"]}`}}
		res := newReranker(model).Rerank(ctx, "q", candidates)

		require.True(t, res.OK())
		assert.Equal(t, []string{"b", "a"}, res.Value)
	})

	t.Run("provider error", func(t *testing.T) {
		model := &fakeModel{err: errors.New("timeout")}
		res := newReranker(model).Rerank(ctx, "q", candidates)
		assert.Equal(t, ai.StatusUnavailable, res.Status)
	})

	t.Run("malformed", func(t *testing.T) {
		model := &fakeModel{responses: []string{"first b then a"}}
		res := newReranker(model).Rerank(ctx, "q", candidates)
		assert.Equal(t, ai.StatusMalformed, res.Status)
	})
}

func TestNewProvider(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		provider, err := NewProvider(&ai.Config{Kind: ai.ProviderDisabled})
		require.NoError(t, err)
		assert.Equal(t, ai.ProviderDisabled, provider.Kind())
	})

	t.Run("local", func(t *testing.T) {
		provider, err := NewProvider(ai.DefaultConfig())
		require.NoError(t, err)
		defer provider.Close()

		assert.Equal(t, ai.ProviderLocal, provider.Kind())
		assert.NotNil(t, provider.Embedder())
		assert.NotNil(t, provider.Canonicalizer())
		assert.NotNil(t, provider.Reranker())
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewProvider(ai.NewConfig(ai.WithKind(ai.ProviderCloud)))
		assert.Error(t, err)
	})
}
