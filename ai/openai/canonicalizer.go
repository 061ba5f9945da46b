package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/albumsearch/ai"
	"github.com/tmc/langchaingo/llms"
)

// Canonicalizer implements ai.QueryCanonicalizer using OpenAI-compatible chat APIs.
type Canonicalizer struct {
	client llms.Model
	prompt string
	logger *slog.Logger
}

type canonicalizePayload struct {
	Query       string  `json:"q"`
	SubjectHint *string `json:"subject_hint"`
	PlaneHint   *string `json:"plane_hint"`
}

// canonicalResponse matches the structure requested from the LLM.
type canonicalResponse struct {
	NormalizedQuery string          `json:"normalized_query"`
	Subject         string          `json:"subject"`
	Plane           string          `json:"plane"`
	Keywords        json.RawMessage `json:"keywords"`
}

func newCanonicalizer(client llms.Model) *Canonicalizer {
	return &Canonicalizer{
		client: client,
		prompt: buildCanonicalizePrompt(),
		logger: slog.Default().With("component", "openai-canonicalizer"),
	}
}

// NewCanonicalizer creates a query canonicalizer using the provided configuration.
//
// Returns ai.QueryCanonicalizer interface to enforce abstraction.
func NewCanonicalizer(config *ai.Config) (ai.QueryCanonicalizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newChatModel(config)
	if err != nil {
		return nil, err
	}
	return newCanonicalizer(client), nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Canonicalize asks the model to normalize the query and classify it.
// Subjects and planes outside ai.Subjects and ai.Planes are dropped.
func (c *Canonicalizer) Canonicalize(ctx context.Context, req ai.CanonicalizeRequest) ai.Result[ai.CanonicalQuery] {
	payload := canonicalizePayload{
		Query:       req.Query,
		SubjectHint: optional(req.SubjectHint),
		PlaneHint:   optional(req.PlaneHint),
	}

	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		text, err := generateJSON(ctx, c.client, c.prompt, payload)
		if err != nil {
			c.logger.Warn("canonicalize call failed", "attempt", attempt+1, "err", err)
			return ai.Unavailable[ai.CanonicalQuery](fmt.Errorf("%w: %w", ai.ErrCapabilityUnavailable, err))
		}

		parsed, err := parseCanonicalQuery(text)
		if err != nil {
			lastErr = err
			c.logger.Warn("error parsing canonicalizer response",
				"attempt", attempt+1,
				"response", text,
				"err", err)
			continue
		}

		c.logger.Debug("canonicalized query",
			"normalized", parsed.NormalizedQuery,
			"subject", parsed.Subject,
			"plane", parsed.Plane,
			"keywords", len(parsed.Keywords))
		return ai.Success(parsed)
	}

	return ai.Malformed[ai.CanonicalQuery](fmt.Errorf("%w: %w", ai.ErrMalformedOutput, lastErr))
}

// parseCanonicalQuery decodes a canonicalizer response. Unknown subjects and
// planes are cleared, non-array keywords are ignored.
func parseCanonicalQuery(text string) (ai.CanonicalQuery, error) {
	var resp canonicalResponse
	if err := json.Unmarshal([]byte(repairJSON(text)), &resp); err != nil {
		return ai.CanonicalQuery{}, err
	}

	out := ai.CanonicalQuery{
		NormalizedQuery: strings.TrimSpace(resp.NormalizedQuery),
	}
	if subject, ok := matchAllowed(resp.Subject, ai.Subjects); ok {
		out.Subject = subject
	}
	if plane, ok := matchAllowed(resp.Plane, ai.Planes); ok {
		out.Plane = plane
	}

	var keywords []string
	if len(resp.Keywords) > 0 && json.Unmarshal(resp.Keywords, &keywords) == nil {
		for _, k := range keywords {
			if k = strings.TrimSpace(k); k != "" {
				out.Keywords = append(out.Keywords, k)
			}
		}
	}
	return out, nil
}
