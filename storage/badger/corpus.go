package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/storage"
)

// CorpusRepository implements storage.CorpusRepository for BadgerDB.
type CorpusRepository struct {
	backend *Backend
}

var _ storage.CorpusRepository = (*CorpusRepository)(nil)

func newCorpusRepository(backend *Backend) *CorpusRepository {
	return &CorpusRepository{backend: backend}
}

// NewCorpusRepository creates a corpus repository on top of backend.
func NewCorpusRepository(backend *Backend) (storage.CorpusRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return newCorpusRepository(backend), nil
}

// Close releases resources. CorpusRepository has no resources to release.
func (r *CorpusRepository) Close() error {
	return nil
}

// AddCorpusEntries stores new corpus entries.
func (r *CorpusRepository) AddCorpusEntries(ctx context.Context, entries ...*core.CorpusEntry) ([]*core.CorpusEntry, error) {
	for _, entry := range entries {
		if err := core.ValidateCorpusEntry(entry); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			key := makeCorpusEntryKey(entry.Id)
			found, err := exists(tx, key)
			if err != nil {
				return err
			}
			if found {
				return fmt.Errorf("%w: corpus entry %q", storage.ErrDuplicateKey, entry.Id)
			}
			if err := tx.Set(key, storage.MarshalCorpusEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateCorpusEntries replaces existing corpus entries.
func (r *CorpusRepository) UpdateCorpusEntries(ctx context.Context, entries ...*core.CorpusEntry) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			key := makeCorpusEntryKey(entry.Id)
			found, err := exists(tx, key)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: corpus entry %q", storage.ErrNotFound, entry.Id)
			}
			if err := tx.Set(key, storage.MarshalCorpusEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetCorpusEntry retrieves a single entry by Id.
func (r *CorpusRepository) GetCorpusEntry(ctx context.Context, id string) (*core.CorpusEntry, error) {
	var result *core.CorpusEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeCorpusEntryKey(id), storage.UnmarshalCorpusEntry)
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

// ListCorpusEntries returns every entry ordered by Id.
func (r *CorpusRepository) ListCorpusEntries(ctx context.Context) ([]*core.CorpusEntry, error) {
	var results []*core.CorpusEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = scanPrefix(tx, []byte(corpusEntryPrefix), storage.UnmarshalCorpusEntry)
		return err
	}, false)
	return results, err
}
