package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/storage"
)

// EscalationRepository implements storage.EscalationRepository for BadgerDB.
type EscalationRepository struct {
	backend  *Backend
	escalSeq *badger.Sequence
	replySeq *badger.Sequence
}

var _ storage.EscalationRepository = (*EscalationRepository)(nil)

func newEscalationRepository(backend *Backend) (*EscalationRepository, error) {
	escalSeq, err := backend.GetSequence(escalationIDSeq)
	if err != nil {
		return nil, err
	}
	replySeq, err := backend.GetSequence(replyIDSeq)
	if err != nil {
		escalSeq.Release()
		return nil, err
	}

	return &EscalationRepository{
		backend:  backend,
		escalSeq: escalSeq,
		replySeq: replySeq,
	}, nil
}

// NewEscalationRepository creates an escalation repository on top of backend.
func NewEscalationRepository(backend *Backend) (storage.EscalationRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return newEscalationRepository(backend)
}

// Close releases the ID sequences.
func (r *EscalationRepository) Close() error {
	escalErr := r.escalSeq.Release()
	replyErr := r.replySeq.Release()
	if escalErr != nil {
		return escalErr
	}
	return replyErr
}

// AppendEscalation adds an item to the queue.
func (r *EscalationRepository) AppendEscalation(ctx context.Context, item *core.EscalationItem) (*core.EscalationItem, error) {
	if item == nil {
		return nil, fmt.Errorf("%w: escalation item is nil", core.ErrInvalidRequest)
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, err := nextID(r.escalSeq)
		if err != nil {
			return err
		}
		item.Id = core.ID(id)
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now().UTC()
		}
		if item.Status == "" {
			item.Status = core.EscalationOpen
		}

		if err := tx.Set(makeEscalationKey(item.Id), storage.MarshalEscalationItem(item)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetEscalation retrieves a queue item by Id.
func (r *EscalationRepository) GetEscalation(ctx context.Context, id core.ID) (*core.EscalationItem, error) {
	var result *core.EscalationItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeEscalationKey(id), storage.UnmarshalEscalationItem)
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

// ListEscalations returns queue items in arrival order, optionally filtered by status.
func (r *EscalationRepository) ListEscalations(ctx context.Context, status core.EscalationStatus) ([]*core.EscalationItem, error) {
	var items []*core.EscalationItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		items, err = scanPrefix(tx, []byte(escalationPrefix), storage.UnmarshalEscalationItem)
		return err
	}, false)
	if err != nil || status == "" {
		return items, err
	}

	filtered := items[:0]
	for _, item := range items {
		if item.Status == status {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// ResolveEscalation marks an item resolved and records the reply against it.
func (r *EscalationRepository) ResolveEscalation(ctx context.Context, id core.ID, text string) (*core.TrainerReply, error) {
	var reply *core.TrainerReply
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEscalationKey(id)
		item, err := readValue(tx, key, storage.UnmarshalEscalationItem)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: escalation %d", storage.ErrNotFound, id)
		}

		item.Status = core.EscalationResolved
		if err := tx.Set(key, storage.MarshalEscalationItem(item)); err != nil {
			return err
		}

		reply = &core.TrainerReply{QueueId: id, Text: text}
		if err := r.putReply(tx, reply); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// AddReply stores a trainer reply.
func (r *EscalationRepository) AddReply(ctx context.Context, reply *core.TrainerReply) (*core.TrainerReply, error) {
	if reply == nil {
		return nil, fmt.Errorf("%w: reply is nil", core.ErrInvalidRequest)
	}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := r.putReply(tx, reply); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// ListReplies returns every reply in arrival order.
func (r *EscalationRepository) ListReplies(ctx context.Context) ([]*core.TrainerReply, error) {
	var results []*core.TrainerReply
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = scanPrefix(tx, []byte(replyPrefix), storage.UnmarshalTrainerReply)
		return err
	}, false)
	return results, err
}

func (r *EscalationRepository) putReply(tx *badger.Txn, reply *core.TrainerReply) error {
	id, err := nextID(r.replySeq)
	if err != nil {
		return err
	}
	reply.Id = core.ID(id)
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now().UTC()
	}
	return tx.Set(makeReplyKey(reply.Id), storage.MarshalTrainerReply(reply))
}
