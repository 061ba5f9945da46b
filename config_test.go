package albumsearch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/albumsearch/ai"
	"github.com/poiesic/albumsearch/search"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.DB)
	assert.Equal(t, *ai.DefaultConfig(), cfg.AI)
	assert.Equal(t, search.DefaultConfig(), cfg.SearchSettings())
}

func TestParseConfig(t *testing.T) {
	t.Run("empty file keeps defaults", func(t *testing.T) {
		cfg, err := ParseConfig(nil)
		require.NoError(t, err)
		assert.Equal(t, search.DefaultConfig(), cfg.SearchSettings())
		assert.Equal(t, ai.ProviderLocal, cfg.AI.Kind)
	})

	t.Run("every section", func(t *testing.T) {
		data := []byte(`
db = "/var/lib/albumsearch"

[ai]
kind = "cloud"
api_key = "sk-test"
embedding_model = "text-embedding-3-small"
llm_model = "gpt-4o-mini"
embedding_host = ""
llm_host = ""

[search]
use_llm_rerank = true
score_alpha = 0.5
score_beta = 0.5
rerank_top_k = 4
capability_timeout = "1500ms"
`)
		cfg, err := ParseConfig(data)
		require.NoError(t, err)

		assert.Equal(t, "/var/lib/albumsearch", cfg.DB)
		assert.Equal(t, ai.ProviderCloud, cfg.AI.Kind)
		assert.Equal(t, ai.DefaultCloudHost, cfg.AI.EmbeddingHost)
		assert.Equal(t, "gpt-4o-mini", cfg.AI.LLMModel)

		settings := cfg.SearchSettings()
		assert.True(t, settings.UseLLMRerank)
		assert.True(t, settings.UseLexical, "unset keys keep defaults")
		assert.Equal(t, 0.5, settings.ScoreAlpha)
		assert.Equal(t, 4, settings.RerankTopK)
		assert.Equal(t, 1500*time.Millisecond, settings.CapabilityTimeout)
	})

	tests := []struct {
		name string
		data string
	}{
		{name: "not toml", data: "db = "},
		{name: "bad duration", data: "[search]\ncapability_timeout = \"soon\""},
		{name: "unknown provider", data: "[ai]\nkind = \"quantum\""},
		{name: "invalid search settings", data: "[search]\ndefault_result_count = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidConfigFile)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albumsearch.toml")
	require.NoError(t, os.WriteFile(path, []byte("[search]\nuse_embeddings = false\n"), 0644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.SearchSettings().UseEmbeddings)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
