package albumsearch

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/albumsearch/ai"
	"github.com/poiesic/albumsearch/ai/mock"
	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/ingestion"
	"github.com/poiesic/albumsearch/reembed"
	"github.com/poiesic/albumsearch/search"
	"github.com/poiesic/albumsearch/storage"
)

const corpusJSON = `[
  {"id": "bead-chains", "title": "Bead Chains", "text": "The short bead chains introduce skip counting and squaring.", "source": "Elementary Math Album · p.212", "subject": "Math"},
  {"id": "land-forms", "title": "Land Forms", "text": "Island and lake trays show the land and water forms.", "source": "Trainer notes", "subject": "Geography"}
]`

func newTestDatabase(t *testing.T, opts ...DatabaseOption) *Database {
	t.Helper()
	opts = append([]DatabaseOption{WithInMemory(), WithProvider(mock.NewMockProvider())}, opts...)
	db, err := NewDatabase("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedCorpus(t *testing.T, db *Database) {
	t.Helper()
	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.SeedCorpus(context.Background(), strings.NewReader(corpusJSON))
	require.NoError(t, err)
}

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.CorpusRepository())
		assert.NotNil(t, db.DocumentRepository())
		assert.NotNil(t, db.EscalationRepository())
		assert.NotNil(t, db.searcher)
		assert.Equal(t, *search.DefaultConfig(), db.SearchConfig())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("disabled provider from ai config", func(t *testing.T) {
		db, err := NewDatabase("", WithInMemory(), WithAIConfig(&ai.Config{Kind: ai.ProviderDisabled}))
		require.NoError(t, err)
		defer db.Close()
		assert.Equal(t, ai.ProviderDisabled, db.Provider().Kind())
	})

	t.Run("invalid ai config", func(t *testing.T) {
		db, err := NewDatabase("", WithInMemory(), WithAIConfig(ai.NewConfig(ai.WithKind("quantum"))))
		assert.ErrorIs(t, err, ai.ErrUnknownProviderKind)
		assert.Nil(t, db)
	})

	t.Run("invalid search config", func(t *testing.T) {
		cfg := search.DefaultConfig()
		cfg.DefaultResultCount = 0
		db, err := NewDatabase("", WithInMemory(), WithProvider(mock.NewMockProvider()), WithSearchConfig(cfg))
		assert.ErrorIs(t, err, search.ErrInvalidConfig)
		assert.Nil(t, db)
	})

	t.Run("config file settings", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AI.Kind = ai.ProviderDisabled
		cfg.Search.UseLLMRerank = true
		db, err := NewDatabase("", WithInMemory(), WithConfig(cfg))
		require.NoError(t, err)
		defer db.Close()

		assert.Equal(t, ai.ProviderDisabled, db.Provider().Kind())
		assert.True(t, db.SearchConfig().UseLLMRerank)
	})
}

func TestDatabase_Close(t *testing.T) {
	provider := mock.NewMockProvider()
	db, err := NewDatabase(t.TempDir(), WithProvider(provider))
	require.NoError(t, err)

	err = db.Close()
	assert.NoError(t, err)
	assert.True(t, provider.(*mock.MockProvider).Closed())
}

func TestDatabase_SearchAndLookupCorpus(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	seedCorpus(t, db)

	resp, err := db.Search(ctx, &core.SearchRequest{Query: "bead chains"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Hits)
	assert.False(t, resp.LowConfidence)

	hit := resp.Hits[0]
	assert.Equal(t, core.CorpusCandidateID("bead-chains"), hit.Id)
	assert.Equal(t, core.BadgeAlbum, hit.Badge)

	item, err := db.Lookup(ctx, hit.Id)
	require.NoError(t, err)
	assert.Equal(t, hit.Id, item.Id)
	assert.Equal(t, "Bead Chains", item.Title)
	assert.Equal(t, "Elementary Math Album · p.212", item.Source)
	assert.Contains(t, item.Text, "skip counting")
	assert.Nil(t, item.Locator)
}

func TestDatabase_LookupChunk(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	doc, err := pipeline.IngestDocument(ctx, ingestion.DocumentInput{
		Title:    "Practical Life",
		Filename: "practical-life.pdf",
		Pages:    []string{"Introduction to the prepared environment.", "Pouring water from a small pitcher into a glass."},
	})
	require.NoError(t, err)
	pipeline.Wait()

	resp, err := db.Search(ctx, &core.SearchRequest{Query: "pouring water"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Hits)
	hitID := core.ChunkCandidateID(doc.Id, 2, 1)
	assert.Equal(t, hitID, resp.Hits[0].Id)

	item, err := db.Lookup(ctx, hitID)
	require.NoError(t, err)
	assert.Equal(t, "Practical Life", item.Title)
	assert.Equal(t, core.PageCitation("Practical Life", 2), item.Source)
	assert.Equal(t, "Pouring water from a small pitcher into a glass.", item.Text)
	require.NotNil(t, item.Locator)
	assert.Equal(t, core.Locator{DocId: doc.Id, Filename: "practical-life.pdf", Page: 2}, *item.Locator)

	t.Run("page mismatch", func(t *testing.T) {
		_, err := db.Lookup(ctx, core.ChunkCandidateID(doc.Id, 1, 1))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("deleted document", func(t *testing.T) {
		require.NoError(t, pipeline.DeleteDocument(ctx, doc.Id))
		_, err := db.Lookup(ctx, hitID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDatabase_LookupErrors(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	_, err := db.Lookup(ctx, "bogus")
	assert.ErrorIs(t, err, core.ErrInvalidCandidateID)

	_, err = db.Lookup(ctx, core.CorpusCandidateID("missing"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDatabase_EscalationAndReply(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	seedCorpus(t, db)

	resp, err := db.Search(ctx, &core.SearchRequest{Query: "xylophone tuning", Subject: "Music"})
	require.NoError(t, err)
	assert.True(t, resp.LowConfidence)
	assert.Empty(t, resp.Hits)

	open, err := db.Escalations(ctx, core.EscalationOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "xylophone tuning", open[0].Query)
	assert.Equal(t, "Music", open[0].Subject)

	reply, err := db.Reply(ctx, open[0].Id, "See the music album, bells chapter.")
	require.NoError(t, err)
	assert.Equal(t, open[0].Id, reply.QueueId)

	open, err = db.Escalations(ctx, core.EscalationOpen)
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := db.Escalations(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, core.EscalationResolved, all[0].Status)

	replies, err := db.Replies(ctx)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "See the music album, bells chapter.", replies[0].Text)
}

func TestDatabase_StandaloneReply(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	reply, err := db.Reply(ctx, 0, "Offer the sandpaper letters before the moveable alphabet.")
	require.NoError(t, err)
	assert.NotZero(t, reply.Id)
	assert.Zero(t, reply.QueueId)

	replies, err := db.Replies(ctx)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, reply.Id, replies[0].Id)

	all, err := db.Escalations(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all, "a standalone reply resolves nothing")

	_, err = db.Reply(ctx, 42, "no such queue item")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDatabase_Reembedder(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	seedCorpus(t, db)

	var progress bytes.Buffer
	r, err := db.NewReembedder(reembed.DefaultConfig(), &progress)
	require.NoError(t, err)

	result, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Embedded())

	entry, err := db.CorpusRepository().GetCorpusEntry(ctx, "bead-chains")
	require.NoError(t, err)
	assert.Equal(t, mock.DeterministicVector(entry.Text), entry.Vector)
}

func TestDatabase_SearchWithMonitor(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	seedCorpus(t, db)

	var buf bytes.Buffer
	monitor := search.NewLogMonitor(slogToBuffer(&buf))
	resp, err := db.SearchWithMonitor(ctx, &core.SearchRequest{Query: "land forms"}, monitor)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Hits)
	assert.Equal(t, core.CorpusCandidateID("land-forms"), resp.Hits[0].Id)
	assert.NotEmpty(t, buf.String())
}

func slogToBuffer(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
