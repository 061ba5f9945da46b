package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/albumsearch/ai"
	"github.com/poiesic/albumsearch/storage"
)

// embeddingProcessor generates embeddings for document chunks.
type embeddingProcessor struct {
	documentRepository storage.DocumentRepository
	embedder           ai.Embedder
	logger             *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(documentRepository storage.DocumentRepository, embedder ai.Embedder, logger *slog.Logger) (processor, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		documentRepository: documentRepository,
		embedder:           embedder,
		logger:             logger.With("processor", "embeddings"),
	}, nil
}

// process embeds every chunk of the document and stores the vectors.
func (ep *embeddingProcessor) process(ctx context.Context, docID string) error {
	chunks, err := ep.documentRepository.ListDocumentChunks(ctx, docID)
	if err != nil {
		ep.logger.Error("error retrieving document chunks", "docID", docID, "err", err)
		return err
	}
	if len(chunks) == 0 {
		return nil
	}
	ep.logger.Info("processing chunks for embeddings", "docID", docID, "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "docID", docID, "err", err)
		return err
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunks), len(embeddings))
	}

	for i := range embeddings {
		chunks[i].Vector = embeddings[i]
	}

	return ep.documentRepository.UpdateChunks(ctx, chunks...)
}
