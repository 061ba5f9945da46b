package storage

import (
	"context"

	"github.com/poiesic/albumsearch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository. The shared backend
	// is closed separately.
	Close() error
}

// CorpusRepository provides operations for the curated reference corpus.
type CorpusRepository interface {
	Repository
	// AddCorpusEntries stores new corpus entries.
	// Returns ErrDuplicateKey if an entry with the same Id already exists.
	AddCorpusEntries(ctx context.Context, entries ...*core.CorpusEntry) ([]*core.CorpusEntry, error)

	// UpdateCorpusEntries replaces existing corpus entries.
	// Returns ErrNotFound if any entry doesn't exist.
	UpdateCorpusEntries(ctx context.Context, entries ...*core.CorpusEntry) error

	// GetCorpusEntry retrieves a single entry by Id.
	// Returns ErrNotFound if the entry doesn't exist.
	GetCorpusEntry(ctx context.Context, id string) (*core.CorpusEntry, error)

	// ListCorpusEntries returns every entry ordered by Id.
	ListCorpusEntries(ctx context.Context) ([]*core.CorpusEntry, error)
}

// DocumentRepository provides operations for ingested documents and their chunks.
type DocumentRepository interface {
	Repository
	// AddDocument stores a document together with its chunks in one transaction.
	// Sets CreatedAt if not already set.
	// Returns ErrDuplicateKey if the Id or the ContentHash is already stored.
	AddDocument(ctx context.Context, doc *core.Document, chunks []*core.DocChunk) (*core.Document, error)

	// GetDocument retrieves a document by Id.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.Document, error)

	// FindDocumentByHash retrieves the document with the given content hash.
	// Returns ErrNotFound if no document matches.
	FindDocumentByHash(ctx context.Context, hash core.ID) (*core.Document, error)

	// ListDocuments returns every document, oldest first.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocument removes a document, its chunks and its hash index entry.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id string) error

	// ListChunks returns the chunks of every document, grouped by document
	// and ordered by Seq within each document.
	ListChunks(ctx context.Context) ([]*core.DocChunk, error)

	// ListDocumentChunks returns the chunks of one document ordered by Seq.
	ListDocumentChunks(ctx context.Context, docID string) ([]*core.DocChunk, error)

	// GetChunk retrieves one chunk by document Id and sequence number.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, docID string, seq int) (*core.DocChunk, error)

	// UpdateChunks replaces existing chunks, typically to attach vectors.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.DocChunk) error
}

// EscalationRepository stores the trainer review queue and trainer replies.
type EscalationRepository interface {
	Repository
	// AppendEscalation adds an item to the queue. Generates the Id from a
	// sequence, sets CreatedAt if not already set and defaults Status to open.
	AppendEscalation(ctx context.Context, item *core.EscalationItem) (*core.EscalationItem, error)

	// GetEscalation retrieves a queue item by Id.
	// Returns ErrNotFound if the item doesn't exist.
	GetEscalation(ctx context.Context, id core.ID) (*core.EscalationItem, error)

	// ListEscalations returns queue items in arrival order. An empty status
	// returns every item, otherwise only items in that status.
	ListEscalations(ctx context.Context, status core.EscalationStatus) ([]*core.EscalationItem, error)

	// ResolveEscalation marks an item resolved and records the trainer's
	// reply against it in one transaction.
	// Returns ErrNotFound if the item doesn't exist.
	ResolveEscalation(ctx context.Context, id core.ID, reply string) (*core.TrainerReply, error)

	// AddReply stores a trainer reply. Generates the Id from a sequence and
	// sets CreatedAt if not already set.
	AddReply(ctx context.Context, reply *core.TrainerReply) (*core.TrainerReply, error)

	// ListReplies returns every reply in arrival order.
	ListReplies(ctx context.Context) ([]*core.TrainerReply, error)
}
