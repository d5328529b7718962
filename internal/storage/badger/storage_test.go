package badger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()
	mgr, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func sampleDocument(id string) (*models.Document, []models.Chunk) {
	doc := &models.Document{
		ID:    id,
		Name:  "policy.pdf",
		Text:  "Records shall be retained for seven years. Audits occur quarterly.",
		Owner: "compliance",
	}
	chunks := []models.Chunk{
		{ID: models.ChunkID(id, 0), DocumentID: id, Text: doc.Text[:42], StartOffset: 0, EndOffset: 42, Seq: 0},
		{ID: models.ChunkID(id, 1), DocumentID: id, Text: doc.Text[42:], StartOffset: 42, EndOffset: len(doc.Text), Seq: 1},
	}
	return doc, chunks
}

func TestDocumentStorage_SaveAndGet(t *testing.T) {
	mgr := newTestManager(t)
	docs := mgr.DocumentStorage()

	doc, chunks := sampleDocument("doc_1")
	require.NoError(t, docs.SaveDocument(doc, chunks))

	got, err := docs.GetDocument("doc_1")
	require.NoError(t, err)
	assert.Equal(t, doc.Name, got.Name)
	assert.Equal(t, 2, got.ChunkCount)
	assert.False(t, got.UploadedAt.IsZero())

	chunk, err := docs.GetChunk(models.ChunkID("doc_1", 1))
	require.NoError(t, err)
	assert.Equal(t, 42, chunk.StartOffset)
	assert.Equal(t, doc.Text[42:], chunk.Text)

	all, err := docs.GetChunks("doc_1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 0, all[0].Seq)
	assert.Equal(t, 1, all[1].Seq)
}

func TestDocumentStorage_GetMissing(t *testing.T) {
	mgr := newTestManager(t)
	docs := mgr.DocumentStorage()

	_, err := docs.GetDocument("doc_missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = docs.GetChunk("doc_missing:0")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDocumentStorage_DeleteRemovesChunks(t *testing.T) {
	mgr := newTestManager(t)
	docs := mgr.DocumentStorage()

	doc, chunks := sampleDocument("doc_1")
	require.NoError(t, docs.SaveDocument(doc, chunks))

	require.NoError(t, docs.DeleteDocument("doc_1"))

	_, err := docs.GetDocument("doc_1")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	count, err := docs.CountChunks()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Second delete reports not found.
	err = docs.DeleteDocument("doc_1")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDocumentStorage_ListAndCount(t *testing.T) {
	mgr := newTestManager(t)
	docs := mgr.DocumentStorage()

	docA, chunksA := sampleDocument("doc_a")
	docB, chunksB := sampleDocument("doc_b")
	require.NoError(t, docs.SaveDocument(docA, chunksA))
	require.NoError(t, docs.SaveDocument(docB, chunksB))

	summaries, err := docs.ListDocuments()
	require.NoError(t, err)
	assert.Len(t, summaries, 2)

	nDocs, err := docs.CountDocuments()
	require.NoError(t, err)
	assert.Equal(t, 2, nDocs)

	nChunks, err := docs.CountChunks()
	require.NoError(t, err)
	assert.Equal(t, 4, nChunks)
}

func TestIndexStorage_RoundTrip(t *testing.T) {
	mgr := newTestManager(t)
	idx := mgr.IndexStorage()

	entries := []models.IndexEntry{
		{
			ChunkID:      "doc_1:0",
			DocumentID:   "doc_1",
			DocumentName: "policy.pdf",
			StartOffset:  0,
			EndOffset:    42,
			Seq:          0,
			Embedding:    []float32{0.123456789, -0.987654321, 1e-7},
		},
		{
			ChunkID:      "doc_1:1",
			DocumentID:   "doc_1",
			DocumentName: "policy.pdf",
			StartOffset:  42,
			EndOffset:    66,
			Seq:          1,
			Embedding:    []float32{1, 0, 0},
		},
	}
	require.NoError(t, idx.SaveEntries(entries))

	loaded, err := idx.LoadEntries()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	byID := map[string]models.IndexEntry{}
	for _, e := range loaded {
		byID[e.ChunkID] = e
	}
	// Embeddings must survive at full float32 precision.
	assert.Equal(t, entries[0].Embedding, byID["doc_1:0"].Embedding)
	assert.Equal(t, entries[0].StartOffset, byID["doc_1:0"].StartOffset)
	assert.Equal(t, entries[0].EndOffset, byID["doc_1:0"].EndOffset)

	count, err := idx.CountEntries()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIndexStorage_DeleteIdempotent(t *testing.T) {
	mgr := newTestManager(t)
	idx := mgr.IndexStorage()

	require.NoError(t, idx.SaveEntries([]models.IndexEntry{
		{ChunkID: "doc_1:0", DocumentID: "doc_1", Embedding: []float32{1}},
	}))

	require.NoError(t, idx.DeleteEntries([]string{"doc_1:0", "never-there"}))
	require.NoError(t, idx.DeleteEntries([]string{"doc_1:0"}))

	count, err := idx.CountEntries()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestManager_RunGCDoesNotFail(t *testing.T) {
	mgr := newTestManager(t)
	assert.NoError(t, mgr.RunGC())
}
