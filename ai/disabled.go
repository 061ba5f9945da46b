package ai

import "context"

// disabledProvider implements AIProvider with every capability switched off.
type disabledProvider struct{}

type disabledServices struct{}

var (
	_ AIProvider         = disabledProvider{}
	_ Embedder           = disabledServices{}
	_ QueryCanonicalizer = disabledServices{}
	_ Reranker           = disabledServices{}
)

// NewDisabledProvider returns a provider whose services always report
// ErrCapabilityUnavailable.
func NewDisabledProvider() AIProvider {
	return disabledProvider{}
}

func (disabledProvider) Kind() ProviderKind                { return ProviderDisabled }
func (disabledProvider) Embedder() Embedder                { return disabledServices{} }
func (disabledProvider) Canonicalizer() QueryCanonicalizer { return disabledServices{} }
func (disabledProvider) Reranker() Reranker                { return disabledServices{} }
func (disabledProvider) Close() error                      { return nil }

func (disabledServices) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return nil, ErrCapabilityUnavailable
}

func (disabledServices) EmbedTexts(_ context.Context, _ []string) ([][]float32, error) {
	return nil, ErrCapabilityUnavailable
}

func (disabledServices) Canonicalize(_ context.Context, _ CanonicalizeRequest) Result[CanonicalQuery] {
	return Unavailable[CanonicalQuery](nil)
}

func (disabledServices) Rerank(_ context.Context, _ string, _ []RerankCandidate) Result[[]string] {
	return Unavailable[[]string](nil)
}
