package badger

import (
	"errors"

	"github.com/poiesic/albumsearch/storage"
)

// Repositories bundles every repository sharing one backend.
type Repositories struct {
	Backend     *Backend
	Corpus      storage.CorpusRepository
	Documents   storage.DocumentRepository
	Escalations storage.EscalationRepository
}

// OpenRepositories opens a backend at path and builds every repository on it.
func OpenRepositories(path string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}

	escalations, err := newEscalationRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Repositories{
		Backend:     backend,
		Corpus:      newCorpusRepository(backend),
		Documents:   newDocumentRepository(backend),
		Escalations: escalations,
	}, nil
}

// Close closes every repository, then the backend.
func (r *Repositories) Close() error {
	return errors.Join(
		r.Corpus.Close(),
		r.Documents.Close(),
		r.Escalations.Close(),
		r.Backend.Close(),
	)
}
