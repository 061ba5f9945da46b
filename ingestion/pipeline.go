package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/albumsearch/ai"
	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/storage"
)

// DefaultMaxPages is the largest document accepted by IngestDocument.
const DefaultMaxPages = 300

// Pipeline orchestrates the ingestion of documents and corpus entries.
// It embeds document chunks concurrently on a worker pool.
type Pipeline struct {
	corpusRepository   storage.CorpusRepository
	documentRepository storage.DocumentRepository
	embeddingPool      *ants.Pool
	embeddingProc      processor
	embed              bool
	maxPages           int
	chunkMin           int
	chunkMax           int
	pending            sync.WaitGroup
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithEmbeddings turns asynchronous chunk embedding on or off.
// Default is on.
func WithEmbeddings(enabled bool) Option {
	return func(p *Pipeline) error {
		p.embed = enabled
		return nil
	}
}

// WithMaxPages sets the page limit for ingested documents.
// Default is DefaultMaxPages.
func WithMaxPages(pages int) Option {
	return func(p *Pipeline) error {
		if pages < 1 {
			return fmt.Errorf("max pages must be at least 1, got %d", pages)
		}
		p.maxPages = pages
		return nil
	}
}

// WithChunkSize sets the sentence-boundary threshold and hard limit used to
// chunk pages. Defaults are DefaultChunkMin and DefaultChunkMax.
func WithChunkSize(minLen, maxLen int) Option {
	return func(p *Pipeline) error {
		if minLen < 0 || maxLen < 1 || minLen >= maxLen {
			return fmt.Errorf("invalid chunk size %d..%d", minLen, maxLen)
		}
		p.chunkMin = minLen
		p.chunkMax = maxLen
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	corpusRepository storage.CorpusRepository,
	documentRepository storage.DocumentRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if corpusRepository == nil {
		return nil, ErrCorpusRepositoryRequired
	}
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		corpusRepository:   corpusRepository,
		documentRepository: documentRepository,
		embeddingPool:      embeddingPool,
		embed:              true,
		maxPages:           DefaultMaxPages,
		chunkMin:           DefaultChunkMin,
		chunkMax:           DefaultChunkMax,
		logger:             slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	// Create processors after options are applied (so they get final config)
	embeddingProc, err := newEmbeddingProcessor(documentRepository, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// DocumentInput is a document to ingest, one string per page.
type DocumentInput struct {
	Title    string
	Filename string
	Pages    []string
	Subject  string // Optional tag applied to every chunk
	Plane    string // Optional tag applied to every chunk
}

// IngestDocument chunks and stores a document, then embeds its chunks
// asynchronously. Embedding errors are logged and leave the chunks without
// vectors. Returns ErrTooManyPages, ErrEmptyDocument or ErrDuplicateDocument
// before anything is stored.
func (p *Pipeline) IngestDocument(ctx context.Context, in DocumentInput) (*core.Document, error) {
	if len(in.Pages) > p.maxPages {
		return nil, fmt.Errorf("%w: %d pages, limit is %d", ErrTooManyPages, len(in.Pages), p.maxPages)
	}

	hash := core.IDFromContent(strings.Join(in.Pages, "\f"))
	existing, err := p.documentRepository.FindDocumentByHash(ctx, hash)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: matches document %s", ErrDuplicateDocument, existing.Id)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	doc := &core.Document{
		Id:          uuid.NewString(),
		Title:       documentTitle(in),
		Filename:    in.Filename,
		Pages:       len(in.Pages),
		ContentHash: hash,
		CreatedAt:   time.Now().UTC(),
	}

	chunks := make([]*core.DocChunk, 0, len(in.Pages))
	for i, page := range in.Pages {
		for _, piece := range ChunkPage(page, p.chunkMin, p.chunkMax) {
			chunks = append(chunks, &core.DocChunk{
				DocId:   doc.Id,
				Page:    i + 1,
				Seq:     len(chunks),
				Text:    piece,
				Subject: in.Subject,
				Plane:   in.Plane,
			})
		}
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	added, err := p.documentRepository.AddDocument(ctx, doc, chunks)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %w", ErrDuplicateDocument, err)
		}
		return nil, err
	}
	p.logger.Info("document ingested", "docID", added.Id, "pages", added.Pages, "chunks", len(chunks))

	if p.embed {
		p.submitEmbedding(added.Id)
	}
	return added, nil
}

// submitEmbedding queues the document's chunks for embedding.
func (p *Pipeline) submitEmbedding(docID string) {
	p.pending.Add(1)
	err := p.embeddingPool.Submit(func() {
		defer p.pending.Done()
		if err := p.embeddingProc.process(context.Background(), docID); err != nil {
			p.logger.Error("error processing embeddings", "docID", docID, "err", err)
		}
	})
	if err != nil {
		p.pending.Done()
		p.logger.Error("error submitting embedding job", "docID", docID, "err", err)
	}
}

func documentTitle(in DocumentInput) string {
	if title := strings.TrimSpace(in.Title); title != "" {
		return title
	}
	name := filepath.Base(strings.TrimSpace(in.Filename))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ListDocuments returns every ingested document, oldest first.
func (p *Pipeline) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	return p.documentRepository.ListDocuments(ctx)
}

// DeleteDocument removes a document and its chunks.
// Returns storage.ErrNotFound if the document doesn't exist.
func (p *Pipeline) DeleteDocument(ctx context.Context, id string) error {
	if err := p.documentRepository.DeleteDocument(ctx, id); err != nil {
		return err
	}
	p.logger.Info("document deleted", "docID", id)
	return nil
}

// Wait blocks until every submitted embedding job has finished.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
