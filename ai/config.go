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

package ai

import (
	"errors"
	"fmt"
	"strings"
)

// ProviderKind selects the AI provider variant. It is resolved once when the
// provider is constructed.
type ProviderKind string

const (
	// ProviderLocal targets a local OpenAI-compatible server (Ollama, LocalAI, vLLM).
	ProviderLocal ProviderKind = "local"
	// ProviderCloud targets the OpenAI cloud API and requires an API key.
	ProviderCloud ProviderKind = "cloud"
	// ProviderDisabled turns every capability off.
	ProviderDisabled ProviderKind = "disabled"
)

// ParseProviderKind maps a configuration string onto a ProviderKind.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch kind := ProviderKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case ProviderLocal, ProviderCloud, ProviderDisabled:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProviderKind, s)
	}
}

// DefaultCloudHost is the base URL used for ProviderCloud when none is set.
const DefaultCloudHost = "https://api.openai.com/v1"

// Config holds configuration for AI service providers.
type Config struct {
	// Kind selects the provider variant.
	// Default: ProviderLocal
	Kind ProviderKind `toml:"kind"`

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string `toml:"embedding_host"`

	// LLMHost is the base URL for the chat service used for query
	// canonicalization and reranking.
	LLMHost string `toml:"llm_host"`

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string `toml:"embedding_model"`

	// LLMModel is the chat model identifier.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	LLMModel string `toml:"llm_model"`

	// APIKey authenticates against ProviderCloud. Local servers ignore it.
	APIKey string `toml:"api_key"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithKind sets the provider variant.
func WithKind(kind ProviderKind) ConfigOption {
	return func(c *Config) {
		c.Kind = kind
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithLLMHost sets the chat service host URL.
func WithLLMHost(host string) ConfigOption {
	return func(c *Config) {
		c.LLMHost = host
	}
}

// WithHost sets both embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.LLMHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithLLMModel sets the chat model identifier.
func WithLLMModel(model string) ConfigOption {
	return func(c *Config) {
		c.LLMModel = model
	}
}

// WithAPIKey sets the API key used by ProviderCloud.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// DefaultConfig returns a Config with sensible defaults for a local OpenAI-compatible service.
// By default, both embedding and chat use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		Kind:           ProviderLocal,
		EmbeddingHost:  defaultHost,
		LLMHost:        defaultHost,
		EmbeddingModel: "all-minilm",
		LLMModel:       "qwen2.5:3b",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//   cfg := NewConfig(
//       WithKind(ProviderCloud),
//       WithHost(DefaultCloudHost),
//       WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//       WithEmbeddingModel("text-embedding-3-small"),
//       WithLLMModel("gpt-4o-mini"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Cloud hosts default to DefaultCloudHost, and every host gets the /v1
// suffix required by OpenAI-compatible APIs.
func (c *Config) Normalize() {
	if c.Kind == "" {
		c.Kind = ProviderLocal
	}
	if c.Kind == ProviderCloud {
		if c.EmbeddingHost == "" {
			c.EmbeddingHost = DefaultCloudHost
		}
		if c.LLMHost == "" {
			c.LLMHost = DefaultCloudHost
		}
	}
	c.EmbeddingHost = withVersionSuffix(c.EmbeddingHost)
	c.LLMHost = withVersionSuffix(c.LLMHost)
}

func withVersionSuffix(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
// A disabled provider needs no other settings.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Kind {
	case ProviderDisabled:
		return nil
	case ProviderLocal, ProviderCloud:
	default:
		return fmt.Errorf("ai config: %w: %q", ErrUnknownProviderKind, c.Kind)
	}

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.LLMHost == "" {
		return errors.New("ai config: LLMHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.LLMModel == "" {
		return errors.New("ai config: LLMModel is required")
	}
	if c.Kind == ProviderCloud && c.APIKey == "" {
		return errors.New("ai config: APIKey is required for the cloud provider")
	}
	return nil
}

// Token returns the bearer token to send. Local OpenAI-compatible services
// accept any value, so "none" is used when no key is configured.
func (c *Config) Token() string {
	if c.APIKey == "" {
		return "none"
	}
	return c.APIKey
}
