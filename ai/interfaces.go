package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryCanonicalizer normalizes a free-text query before scoring.
// Implementations must be thread-safe for concurrent use.
type QueryCanonicalizer interface {
	// Canonicalize returns a normalized query, an optional subject/plane
	// classification restricted to Subjects and Planes, and optional keywords.
	// Provider errors are reported as StatusUnavailable, unparseable output
	// as StatusMalformed.
	Canonicalize(ctx context.Context, req CanonicalizeRequest) Result[CanonicalQuery]
}

// Reranker orders candidate passages by relevance to a query.
// Implementations must be thread-safe for concurrent use.
type Reranker interface {
	// Rerank returns candidate ids in best-to-worst order. The returned list
	// may omit or repeat ids; callers reconcile it with the candidates sent.
	Rerank(ctx context.Context, query string, candidates []RerankCandidate) Result[[]string]
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Kind reports which provider variant was selected at construction.
	Kind() ProviderKind

	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Canonicalizer returns the query canonicalization service.
	Canonicalizer() QueryCanonicalizer

	// Reranker returns the relevance reranking service.
	Reranker() Reranker

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
