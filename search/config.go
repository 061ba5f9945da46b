package search

import (
	"fmt"
	"time"
)

// Config tunes the retrieval pipeline. Every signal can be switched off
// independently; a disabled signal contributes nothing rather than failing
// the request.
type Config struct {
	// UseEmbeddings enables semantic scoring with the provider's embedder.
	UseEmbeddings bool `toml:"use_embeddings"`
	// UseLexical enables BM25 scoring.
	UseLexical bool `toml:"use_lexical"`
	// UseLLMCanonicalization rewrites and classifies the query before scoring.
	UseLLMCanonicalization bool `toml:"use_llm_canonicalization"`
	// UseLLMRerank reorders the top RerankTopK candidates after fusion.
	UseLLMRerank bool `toml:"use_llm_rerank"`

	ScoreAlpha   float64 `toml:"score_alpha"` // semantic weight
	ScoreBeta    float64 `toml:"score_beta"`  // lexical weight
	SubjectBoost float64 `toml:"subject_boost"`
	PlaneBoost   float64 `toml:"plane_boost"`
	PhraseBoost  float64 `toml:"phrase_boost"`

	// LowConfidenceThreshold is the cosine score below which a top hit
	// without a lexical match is flagged as low confidence.
	LowConfidenceThreshold float64 `toml:"low_confidence_threshold"`
	// MinimumFinalScore drops candidates whose fused score is lower.
	MinimumFinalScore float64 `toml:"minimum_final_score"`

	RerankTopK         int `toml:"rerank_top_k"`
	LexicalLimit       int `toml:"lexical_limit"`
	DefaultResultCount int `toml:"default_result_count"`

	// CapabilityTimeout bounds each embedding, canonicalization and rerank
	// call. It must be positive while any capability is enabled.
	CapabilityTimeout time.Duration `toml:"-"`
}

// DefaultCapabilityTimeout bounds a single capability call when no other
// timeout is configured.
const DefaultCapabilityTimeout = 10 * time.Second

// DefaultConfig returns the standard retrieval settings.
func DefaultConfig() *Config {
	return &Config{
		UseEmbeddings:          true,
		UseLexical:             true,
		UseLLMCanonicalization: false,
		UseLLMRerank:           false,
		ScoreAlpha:             0.7,
		ScoreBeta:              0.3,
		SubjectBoost:           1.2,
		PlaneBoost:             1.2,
		PhraseBoost:            1.2,
		LowConfidenceThreshold: 0.35,
		MinimumFinalScore:      0.01,
		RerankTopK:             8,
		LexicalLimit:           50,
		DefaultResultCount:     3,
		CapabilityTimeout:      DefaultCapabilityTimeout,
	}
}

// Validate checks that weights and limits are usable.
func (c *Config) Validate() error {
	switch {
	case c.ScoreAlpha < 0 || c.ScoreBeta < 0:
		return fmt.Errorf("%w: score weights cannot be negative", ErrInvalidConfig)
	case c.SubjectBoost <= 0 || c.PlaneBoost <= 0 || c.PhraseBoost <= 0:
		return fmt.Errorf("%w: boosts must be positive", ErrInvalidConfig)
	case c.RerankTopK < 0:
		return fmt.Errorf("%w: rerank top-k cannot be negative", ErrInvalidConfig)
	case c.LexicalLimit < 0:
		return fmt.Errorf("%w: lexical limit cannot be negative", ErrInvalidConfig)
	case c.DefaultResultCount < 1:
		return fmt.Errorf("%w: default result count must be at least 1", ErrInvalidConfig)
	case c.CapabilityTimeout < 0:
		return fmt.Errorf("%w: capability timeout cannot be negative", ErrInvalidConfig)
	case c.CapabilityTimeout == 0 && c.usesCapabilities():
		return fmt.Errorf("%w: capability timeout is required when embeddings or LLM calls are enabled", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) usesCapabilities() bool {
	return c.UseEmbeddings || c.UseLLMCanonicalization || c.UseLLMRerank
}
