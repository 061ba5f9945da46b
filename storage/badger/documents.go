package badger

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

func newDocumentRepository(backend *Backend) *DocumentRepository {
	return &DocumentRepository{backend: backend}
}

// NewDocumentRepository creates a document repository on top of backend.
func NewDocumentRepository(backend *Backend) (storage.DocumentRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return newDocumentRepository(backend), nil
}

// Close releases resources. DocumentRepository has no resources to release.
func (r *DocumentRepository) Close() error {
	return nil
}

// AddDocument stores a document together with its chunks.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.Document, chunks []*core.DocChunk) (*core.Document, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}
	for _, chunk := range chunks {
		if err := core.ValidateDocChunk(chunk); err != nil {
			return nil, err
		}
		if chunk.DocId != doc.Id {
			return nil, fmt.Errorf("%w: chunk belongs to %q, not %q", core.ErrInvalidChunk, chunk.DocId, doc.Id)
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(doc.Id)
		found, err := exists(tx, key)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: document %q", storage.ErrDuplicateKey, doc.Id)
		}

		hashKey := makeDocumentHashKey(doc.ContentHash)
		found, err = exists(tx, hashKey)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: document content hash %d", storage.ErrDuplicateKey, doc.ContentHash)
		}

		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now().UTC()
		}

		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		if err := tx.Set(hashKey, []byte(doc.Id)); err != nil {
			return err
		}
		for _, chunk := range chunks {
			if err := tx.Set(makeChunkKey(chunk.DocId, chunk.Seq), storage.MarshalDocChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument retrieves a document by Id.
func (r *DocumentRepository) GetDocument(ctx context.Context, id string) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeDocumentKey(id), storage.UnmarshalDocument)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindDocumentByHash retrieves the document with the given content hash.
func (r *DocumentRepository) FindDocumentByHash(ctx context.Context, hash core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentHashKey(hash))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		docID, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		result, err = readValue(tx, makeDocumentKey(string(docID)), storage.UnmarshalDocument)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListDocuments returns every document, oldest first. Ties are broken by Id.
func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = scanPrefix(tx, []byte(documentPrefix), storage.UnmarshalDocument)
		return err
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b *core.Document) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Id, b.Id)
	})
	return results, nil
}

// DeleteDocument removes a document, its chunks and its hash index entry.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := readValue(tx, key, storage.UnmarshalDocument)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		chunkKeys, err := collectKeys(tx, makeDocumentChunkPrefix(id))
		if err != nil {
			return err
		}
		for _, chunkKey := range chunkKeys {
			if err := tx.Delete(chunkKey); err != nil {
				return err
			}
		}

		if err := tx.Delete(makeDocumentHashKey(doc.ContentHash)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListChunks returns the chunks of every document.
func (r *DocumentRepository) ListChunks(ctx context.Context) ([]*core.DocChunk, error) {
	var results []*core.DocChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = scanPrefix(tx, []byte(chunkPrefix), storage.UnmarshalDocChunk)
		return err
	}, false)
	return results, err
}

// ListDocumentChunks returns the chunks of one document ordered by Seq.
func (r *DocumentRepository) ListDocumentChunks(ctx context.Context, docID string) ([]*core.DocChunk, error) {
	var results []*core.DocChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = scanPrefix(tx, makeDocumentChunkPrefix(docID), storage.UnmarshalDocChunk)
		return err
	}, false)
	return results, err
}

// GetChunk retrieves one chunk by document Id and sequence number.
func (r *DocumentRepository) GetChunk(ctx context.Context, docID string, seq int) (*core.DocChunk, error) {
	if seq < 0 {
		return nil, storage.ErrNotFound
	}
	var result *core.DocChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeChunkKey(docID, seq), storage.UnmarshalDocChunk)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// UpdateChunks replaces existing chunks.
func (r *DocumentRepository) UpdateChunks(ctx context.Context, chunks ...*core.DocChunk) error {
	for _, chunk := range chunks {
		if err := core.ValidateDocChunk(chunk); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.DocId, chunk.Seq)
			found, err := exists(tx, key)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: chunk %s/%d", storage.ErrNotFound, chunk.DocId, chunk.Seq)
			}
			if err := tx.Set(key, storage.MarshalDocChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// collectKeys copies every key under prefix so they can be deleted after
// the iterator is closed.
func collectKeys(tx *badger.Txn, prefix []byte) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	return keys, nil
}
