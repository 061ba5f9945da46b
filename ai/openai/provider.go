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

package openai

import (
	"log/slog"

	"github.com/poiesic/albumsearch/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// It manages the embedder, canonicalizer and reranker instances. The
// canonicalizer and reranker share a single chat client.
type Provider struct {
	config        *ai.Config
	embedder      *Embedder
	canonicalizer *Canonicalizer
	reranker      *Reranker
	logger        *slog.Logger
}

// NewProvider creates the AI provider selected by config.Kind.
// The config is validated and normalized before use. ai.ProviderDisabled
// yields ai.NewDisabledProvider without touching the network.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Kind == ai.ProviderDisabled {
		return ai.NewDisabledProvider(), nil
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	chat, err := newChatModel(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:        config,
		embedder:      embedder,
		canonicalizer: newCanonicalizer(chat),
		reranker:      newReranker(chat),
		logger:        slog.Default().With("component", "openai-provider", "kind", string(config.Kind)),
	}, nil
}

func newChatModel(config *ai.Config) (llms.Model, error) {
	return openai.New(
		openai.WithBaseURL(config.LLMHost),
		openai.WithToken(config.Token()),
		openai.WithModel(config.LLMModel),
	)
}

// Kind reports which provider variant this is.
func (p *Provider) Kind() ai.ProviderKind {
	return p.config.Kind
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Canonicalizer returns the query canonicalization service.
func (p *Provider) Canonicalizer() ai.QueryCanonicalizer {
	return p.canonicalizer
}

// Reranker returns the passage reranking service.
func (p *Provider) Reranker() ai.Reranker {
	return p.reranker
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
