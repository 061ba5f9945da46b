package reembed

import (
	"context"
	"fmt"

	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/storage"
)

// Item is one stored text and its current vector.
type Item struct {
	Key    string
	Text   string
	Vector []float32
}

// Source is a set of stored passages whose vectors can be rewritten.
type Source interface {
	// Name labels the source in progress output.
	Name() string
	// Items lists every passage in a stable order.
	Items(ctx context.Context) ([]Item, error)
	// Store writes the Vector of each item back to storage.
	Store(ctx context.Context, items []Item) error
}

// CorpusSource exposes corpus entries to a Reembedder.
type CorpusSource struct {
	repo storage.CorpusRepository
}

var _ Source = (*CorpusSource)(nil)

// NewCorpusSource wraps a corpus repository.
func NewCorpusSource(repo storage.CorpusRepository) *CorpusSource {
	return &CorpusSource{repo: repo}
}

func (s *CorpusSource) Name() string { return "corpus" }

func (s *CorpusSource) Items(ctx context.Context) ([]Item, error) {
	entries, err := s.repo.ListCorpusEntries(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Key: e.Id, Text: e.Text, Vector: e.Vector}
	}
	return items, nil
}

func (s *CorpusSource) Store(ctx context.Context, items []Item) error {
	entries := make([]*core.CorpusEntry, len(items))
	for i, item := range items {
		entry, err := s.repo.GetCorpusEntry(ctx, item.Key)
		if err != nil {
			return fmt.Errorf("corpus entry %q: %w", item.Key, err)
		}
		entry.Vector = item.Vector
		entries[i] = entry
	}
	return s.repo.UpdateCorpusEntries(ctx, entries...)
}

// ChunkSource exposes the chunks of every ingested document to a Reembedder.
// Item keys are chunk candidate ids.
type ChunkSource struct {
	repo storage.DocumentRepository
}

var _ Source = (*ChunkSource)(nil)

// NewChunkSource wraps a document repository.
func NewChunkSource(repo storage.DocumentRepository) *ChunkSource {
	return &ChunkSource{repo: repo}
}

func (s *ChunkSource) Name() string { return "chunks" }

func (s *ChunkSource) Items(ctx context.Context) ([]Item, error) {
	chunks, err := s.repo.ListChunks(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(chunks))
	for i, c := range chunks {
		items[i] = Item{Key: core.ChunkCandidateID(c.DocId, c.Page, c.Seq), Text: c.Text, Vector: c.Vector}
	}
	return items, nil
}

func (s *ChunkSource) Store(ctx context.Context, items []Item) error {
	chunks := make([]*core.DocChunk, len(items))
	for i, item := range items {
		ref, err := core.ParseCandidateID(item.Key)
		if err != nil {
			return err
		}
		chunk, err := s.repo.GetChunk(ctx, ref.DocId, ref.Seq)
		if err != nil {
			return fmt.Errorf("chunk %s: %w", item.Key, err)
		}
		chunk.Vector = item.Vector
		chunks[i] = chunk
	}
	return s.repo.UpdateChunks(ctx, chunks...)
}
