package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/albumsearch/ai"
)

// BatchProcessor embeds batches of items and stores the vectors.
type BatchProcessor struct {
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for each embedding API call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the texts of items and writes the vectors through source.
func (bp *BatchProcessor) Process(ctx context.Context, source Source, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(items) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(items), len(embeddings))
	}

	updated := make([]Item, len(items))
	for i, item := range items {
		item.Vector = embeddings[i]
		updated[i] = item
	}

	if err := source.Store(ctx, updated); err != nil {
		return fmt.Errorf("failed to store %s vectors: %w", source.Name(), err)
	}
	return nil
}
