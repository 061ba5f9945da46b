package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(id string, hash string) (*core.Document, []*core.DocChunk) {
	doc := &core.Document{
		Id:          id,
		Title:       "Cosmic Education",
		Filename:    id + ".txt",
		Pages:       2,
		ContentHash: core.IDFromContent(hash),
	}
	chunks := []*core.DocChunk{
		{DocId: id, Page: 1, Seq: 0, Text: "The first great lesson tells the story of the universe."},
		{DocId: id, Page: 1, Seq: 1, Text: "Use the black strip to show how recent humans are."},
		{DocId: id, Page: 2, Seq: 2, Heading: "Timeline of Life", Text: "Lay out the timeline of life."},
	}
	return doc, chunks
}

func TestDocumentRepository_AddAndGet(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	doc, chunks := testDocument("doc-1", "content-1")
	added, err := repos.Documents.AddDocument(ctx, doc, chunks)
	require.NoError(t, err)
	assert.False(t, added.CreatedAt.IsZero())

	got, err := repos.Documents.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.ContentHash, got.ContentHash)

	byHash, err := repos.Documents.FindDocumentByHash(ctx, core.IDFromContent("content-1"))
	require.NoError(t, err)
	assert.Equal(t, "doc-1", byHash.Id)

	_, err = repos.Documents.FindDocumentByHash(ctx, core.IDFromContent("other"))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	chunk, err := repos.Documents.GetChunk(ctx, "doc-1", 2)
	require.NoError(t, err)
	assert.Equal(t, "Timeline of Life", chunk.Heading)

	_, err = repos.Documents.GetChunk(ctx, "doc-1", 3)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentRepository_DuplicateHash(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	doc, chunks := testDocument("doc-1", "same")
	_, err := repos.Documents.AddDocument(ctx, doc, chunks)
	require.NoError(t, err)

	doc2, chunks2 := testDocument("doc-2", "same")
	_, err = repos.Documents.AddDocument(ctx, doc2, chunks2)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = repos.Documents.GetDocument(ctx, "doc-2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentRepository_RejectsForeignChunk(t *testing.T) {
	repos := newTestRepositories(t)

	doc, chunks := testDocument("doc-1", "x")
	chunks[1].DocId = "doc-9"
	_, err := repos.Documents.AddDocument(context.Background(), doc, chunks)
	assert.ErrorIs(t, err, core.ErrInvalidChunk)
}

func TestDocumentRepository_ListChunksOrdered(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	docA, chunksA := testDocument("doc-a", "a")
	docB, chunksB := testDocument("doc-b", "b")
	_, err := repos.Documents.AddDocument(ctx, docB, chunksB)
	require.NoError(t, err)
	_, err = repos.Documents.AddDocument(ctx, docA, chunksA)
	require.NoError(t, err)

	all, err := repos.Documents.ListChunks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 6)
	for i, chunk := range all[:3] {
		assert.Equal(t, "doc-a", chunk.DocId)
		assert.Equal(t, i, chunk.Seq)
	}

	own, err := repos.Documents.ListDocumentChunks(ctx, "doc-b")
	require.NoError(t, err)
	assert.Len(t, own, 3)
}

func TestDocumentRepository_ListDocumentsOldestFirst(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	newer, newerChunks := testDocument("doc-a", "a")
	newer.CreatedAt = base.Add(time.Hour)
	older, olderChunks := testDocument("doc-z", "z")
	older.CreatedAt = base

	_, err := repos.Documents.AddDocument(ctx, newer, newerChunks)
	require.NoError(t, err)
	_, err = repos.Documents.AddDocument(ctx, older, olderChunks)
	require.NoError(t, err)

	docs, err := repos.Documents.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-z", docs[0].Id)
	assert.Equal(t, "doc-a", docs[1].Id)
}

func TestDocumentRepository_Delete(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	doc, chunks := testDocument("doc-1", "x")
	_, err := repos.Documents.AddDocument(ctx, doc, chunks)
	require.NoError(t, err)
	other, otherChunks := testDocument("doc-2", "y")
	_, err = repos.Documents.AddDocument(ctx, other, otherChunks)
	require.NoError(t, err)

	require.NoError(t, repos.Documents.DeleteDocument(ctx, "doc-1"))

	_, err = repos.Documents.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = repos.Documents.FindDocumentByHash(ctx, core.IDFromContent("x"))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	remaining, err := repos.Documents.ListChunks(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 3)
	for _, chunk := range remaining {
		assert.Equal(t, "doc-2", chunk.DocId)
	}

	assert.ErrorIs(t, repos.Documents.DeleteDocument(ctx, "doc-1"), storage.ErrNotFound)

	// Same content can be ingested again once deleted.
	again, againChunks := testDocument("doc-3", "x")
	_, err = repos.Documents.AddDocument(ctx, again, againChunks)
	assert.NoError(t, err)
}

func TestDocumentRepository_ColonPrefixedIDs(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	parent, parentChunks := testDocument("a", "parent")
	child, childChunks := testDocument("a:b", "child")
	_, err := repos.Documents.AddDocument(ctx, parent, parentChunks)
	require.NoError(t, err)
	_, err = repos.Documents.AddDocument(ctx, child, childChunks)
	require.NoError(t, err)

	own, err := repos.Documents.ListDocumentChunks(ctx, "a")
	require.NoError(t, err)
	require.Len(t, own, 3)
	for _, chunk := range own {
		assert.Equal(t, "a", chunk.DocId)
	}

	require.NoError(t, repos.Documents.DeleteDocument(ctx, "a"))

	remaining, err := repos.Documents.ListDocumentChunks(ctx, "a:b")
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
	chunk, err := repos.Documents.GetChunk(ctx, "a:b", 1)
	require.NoError(t, err)
	assert.Equal(t, "a:b", chunk.DocId)
}

func TestDocumentRepository_UpdateChunks(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	doc, chunks := testDocument("doc-1", "x")
	_, err := repos.Documents.AddDocument(ctx, doc, chunks)
	require.NoError(t, err)

	chunks[0].Vector = []float32{1, 0, 0}
	require.NoError(t, repos.Documents.UpdateChunks(ctx, chunks[0]))

	got, err := repos.Documents.GetChunk(ctx, "doc-1", 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, got.Vector)

	missing := &core.DocChunk{DocId: "doc-1", Page: 1, Seq: 9, Text: "x"}
	assert.ErrorIs(t, repos.Documents.UpdateChunks(ctx, missing), storage.ErrNotFound)
}
