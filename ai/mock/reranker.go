package mock

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/albumsearch/ai"
)

// MockReranker is a test double for ai.Reranker.
type MockReranker struct {
	// RerankFunc is called by Rerank if set.
	// If nil, the candidate ids are returned in the order given.
	RerankFunc func(ctx context.Context, query string, candidates []ai.RerankCandidate) ai.Result[[]string]

	// LastCandidates holds the candidates passed to the most recent call.
	LastCandidates []ai.RerankCandidate

	callCount atomic.Int64
}

// NewMockReranker creates a mock reranker that preserves input order.
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Rerank returns the injected result, or the ids in input order.
func (m *MockReranker) Rerank(ctx context.Context, query string, candidates []ai.RerankCandidate) ai.Result[[]string] {
	m.callCount.Add(1)
	m.LastCandidates = candidates

	if m.RerankFunc != nil {
		return m.RerankFunc(ctx, query, candidates)
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Id
	}
	return ai.Success(ids)
}

// CallCount returns the number of times Rerank was called.
func (m *MockReranker) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count, recorded candidates and custom functions.
func (m *MockReranker) Reset() {
	m.callCount.Store(0)
	m.LastCandidates = nil
	m.RerankFunc = nil
}
