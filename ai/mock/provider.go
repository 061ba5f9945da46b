// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mock

import "github.com/poiesic/albumsearch/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedder, canonicalizer and reranker instances.
type MockProvider struct {
	kind          ai.ProviderKind
	embedder      *MockEmbedder
	canonicalizer *MockCanonicalizer
	reranker      *MockReranker
	closed        bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockCanonicalizer()/GetMockReranker() to access
// concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return NewMockProviderWithServices(NewMockEmbedder(), NewMockCanonicalizer(), NewMockReranker())
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, canonicalizer *MockCanonicalizer, reranker *MockReranker) ai.AIProvider {
	return &MockProvider{
		kind:          ai.ProviderLocal,
		embedder:      embedder,
		canonicalizer: canonicalizer,
		reranker:      reranker,
	}
}

// Kind reports ai.ProviderLocal; mocks stand in for a live provider.
func (p *MockProvider) Kind() ai.ProviderKind {
	return p.kind
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Canonicalizer returns the mock canonicalizer.
func (p *MockProvider) Canonicalizer() ai.QueryCanonicalizer {
	return p.canonicalizer
}

// Reranker returns the mock reranker.
func (p *MockProvider) Reranker() ai.Reranker {
	return p.reranker
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockCanonicalizer returns the underlying mock canonicalizer for test assertions.
func (p *MockProvider) GetMockCanonicalizer() *MockCanonicalizer {
	return p.canonicalizer
}

// GetMockReranker returns the underlying mock reranker for test assertions.
func (p *MockProvider) GetMockReranker() *MockReranker {
	return p.reranker
}
