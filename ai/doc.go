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

// Package ai provides abstractions for the optional AI capabilities used by
// album search.
//
// The package defines three capability interfaces and an aggregate:
//
//   - Embedder: Generates vector embeddings from text
//   - QueryCanonicalizer: Normalizes a query and classifies its subject and plane
//   - Reranker: Orders a short list of passages by relevance
//   - AIProvider: Aggregates the services for initialization and lifecycle
//
// # Provider Variants
//
// The provider is one of a closed set of variants chosen once, at
// construction, from Config.Kind:
//
//   - ProviderLocal: a local OpenAI-compatible server, see ai/openai
//   - ProviderCloud: the OpenAI API, see ai/openai
//   - ProviderDisabled: NewDisabledProvider, every call is unavailable
//
// # Capability Results
//
// Language-model calls return Result[T] rather than (T, error). The Status
// field separates the three outcomes callers must handle:
//
//	res := provider.Canonicalizer().Canonicalize(ctx, req)
//	switch res.Status {
//	case ai.StatusOK:
//	    query = res.Value.NormalizedQuery
//	case ai.StatusUnavailable:
//	    // provider down or disabled
//	case ai.StatusMalformed:
//	    // model answered with something that did not parse
//	}
//
// Embedders keep the plain error return because their output is numeric and
// needs no parsing.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockReranker, ...)
// return CONCRETE types so tests can inject behavior and inspect call counts.
package ai
