package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/albumsearch/ai"
	"github.com/tmc/langchaingo/llms"
)

// Reranker implements ai.Reranker using OpenAI-compatible chat APIs.
type Reranker struct {
	client llms.Model
	logger *slog.Logger
}

type rerankPayload struct {
	Query      string            `json:"query"`
	Candidates []rerankCandidate `json:"candidates"`
}

type rerankCandidate struct {
	Id      string `json:"id"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

type rerankResponse struct {
	Order []string `json:"order"`
}

var errNoOrder = errors.New("response holds no id list")

func newReranker(client llms.Model) *Reranker {
	return &Reranker{
		client: client,
		logger: slog.Default().With("component", "openai-reranker"),
	}
}

// NewReranker creates a reranker using the provided configuration.
//
// Returns ai.Reranker interface to enforce abstraction.
func NewReranker(config *ai.Config) (ai.Reranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newChatModel(config)
	if err != nil {
		return nil, err
	}
	return newReranker(client), nil
}

// Rerank asks the model to order the candidates best-to-worst.
// The returned ids are passed through as given; reconciling them with the
// candidates sent is the caller's job.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []ai.RerankCandidate) ai.Result[[]string] {
	payload := rerankPayload{
		Query:      query,
		Candidates: make([]rerankCandidate, len(candidates)),
	}
	for i, c := range candidates {
		payload.Candidates[i] = rerankCandidate{Id: c.Id, Title: c.Title, Source: c.Source, Excerpt: c.Excerpt}
	}

	text, err := generateJSON(ctx, r.client, rerankPrompt, payload)
	if err != nil {
		r.logger.Warn("rerank call failed", "err", err)
		return ai.Unavailable[[]string](fmt.Errorf("%w: %w", ai.ErrCapabilityUnavailable, err))
	}

	ids, err := parseRerankOrder(text)
	if err != nil {
		r.logger.Warn("error parsing rerank response", "response", text, "err", err)
		return ai.Malformed[[]string](fmt.Errorf("%w: %w", ai.ErrMalformedOutput, err))
	}

	r.logger.Debug("reranked candidates", "sent", len(candidates), "returned", len(ids))
	return ai.Success(ids)
}

// parseRerankOrder accepts a bare JSON array of ids or an object with an
// "order" array. Failing both, the first bracketed span is tried as an array.
func parseRerankOrder(text string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(text), &ids); err == nil {
		return ids, nil
	}

	var resp rerankResponse
	err := json.Unmarshal([]byte(text), &resp)
	if err == nil {
		if resp.Order == nil {
			return nil, errNoOrder
		}
		return resp.Order, nil
	}

	if span, ok := salvageArray(text); ok {
		if json.Unmarshal([]byte(span), &ids) == nil {
			return ids, nil
		}
	}
	return nil, err
}
