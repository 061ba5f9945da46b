package mock

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/poiesic/albumsearch/ai"
)

// MockCanonicalizer is a test double for ai.QueryCanonicalizer.
// It allows custom behavior injection via function fields.
type MockCanonicalizer struct {
	// CanonicalizeFunc is called by Canonicalize if set.
	// If nil, the query is lowercased and trimmed and the hints pass through.
	CanonicalizeFunc func(ctx context.Context, req ai.CanonicalizeRequest) ai.Result[ai.CanonicalQuery]

	callCount atomic.Int64
}

// NewMockCanonicalizer creates a mock canonicalizer with default behavior.
func NewMockCanonicalizer() *MockCanonicalizer {
	return &MockCanonicalizer{}
}

// Canonicalize returns the injected result, or an echo of the request.
func (m *MockCanonicalizer) Canonicalize(ctx context.Context, req ai.CanonicalizeRequest) ai.Result[ai.CanonicalQuery] {
	m.callCount.Add(1)

	if m.CanonicalizeFunc != nil {
		return m.CanonicalizeFunc(ctx, req)
	}

	return ai.Success(ai.CanonicalQuery{
		NormalizedQuery: strings.ToLower(strings.TrimSpace(req.Query)),
		Subject:         req.SubjectHint,
		Plane:           req.PlaneHint,
	})
}

// CallCount returns the number of times Canonicalize was called.
func (m *MockCanonicalizer) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockCanonicalizer) Reset() {
	m.callCount.Store(0)
	m.CanonicalizeFunc = nil
}
