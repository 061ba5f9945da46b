package badger

import (
	"context"
	"testing"

	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepositories(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func TestCorpusRepository_AddAndGet(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	entry := &core.CorpusEntry{
		Id:      "math-001",
		Title:   "Golden Beads",
		Text:    "Introduce the decimal system with the golden bead material.",
		Source:  "Primary Math Album · p.12",
		Subject: "Math",
		Plane:   "0-6",
	}
	_, err := repos.Corpus.AddCorpusEntries(ctx, entry)
	require.NoError(t, err)

	got, err := repos.Corpus.GetCorpusEntry(ctx, "math-001")
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	_, err = repos.Corpus.GetCorpusEntry(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCorpusRepository_Duplicate(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	entry := &core.CorpusEntry{Id: "a", Text: "text"}
	_, err := repos.Corpus.AddCorpusEntries(ctx, entry)
	require.NoError(t, err)

	_, err = repos.Corpus.AddCorpusEntries(ctx, &core.CorpusEntry{Id: "a", Text: "other"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestCorpusRepository_Invalid(t *testing.T) {
	repos := newTestRepositories(t)

	_, err := repos.Corpus.AddCorpusEntries(context.Background(), &core.CorpusEntry{Id: "a"})
	assert.ErrorIs(t, err, core.ErrInvalidCorpusEntry)
}

func TestCorpusRepository_Update(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	entry := &core.CorpusEntry{Id: "a", Text: "text"}
	_, err := repos.Corpus.AddCorpusEntries(ctx, entry)
	require.NoError(t, err)

	entry.Vector = []float32{0.5, 0.5}
	require.NoError(t, repos.Corpus.UpdateCorpusEntries(ctx, entry))

	got, err := repos.Corpus.GetCorpusEntry(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, got.Vector)

	err = repos.Corpus.UpdateCorpusEntries(ctx, &core.CorpusEntry{Id: "b", Text: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCorpusRepository_ListOrderedByID(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	_, err := repos.Corpus.AddCorpusEntries(ctx,
		&core.CorpusEntry{Id: "c", Text: "three"},
		&core.CorpusEntry{Id: "a", Text: "one"},
		&core.CorpusEntry{Id: "b", Text: "two"},
	)
	require.NoError(t, err)

	entries, err := repos.Corpus.ListCorpusEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Id)
	assert.Equal(t, "b", entries[1].Id)
	assert.Equal(t, "c", entries[2].Id)
}

func TestCorpusRepository_ListEmpty(t *testing.T) {
	repos := newTestRepositories(t)

	entries, err := repos.Corpus.ListCorpusEntries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
