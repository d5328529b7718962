package index

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/models"
)

func newTestIndex(t *testing.T, dimension int) *MemoryIndex {
	t.Helper()
	idx, err := NewMemoryIndex(dimension, common.GetLogger())
	require.NoError(t, err)
	return idx
}

func entry(chunkID, docID string, embedding []float32) models.IndexEntry {
	return models.IndexEntry{
		ChunkID:      chunkID,
		DocumentID:   docID,
		DocumentName: docID + ".pdf",
		Embedding:    embedding,
	}
}

func TestNewMemoryIndex_InvalidDimension(t *testing.T) {
	_, err := NewMemoryIndex(0, common.GetLogger())
	assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))
}

func TestInsert_RejectsDuplicates(t *testing.T) {
	idx := newTestIndex(t, 3)

	require.NoError(t, idx.Insert([]models.IndexEntry{
		entry("doc_a:0", "doc_a", []float32{1, 0, 0}),
	}))

	err := idx.Insert([]models.IndexEntry{
		entry("doc_a:0", "doc_a", []float32{0, 1, 0}),
	})
	assert.True(t, errors.Is(err, models.ErrDuplicateEntry))
	assert.Equal(t, 1, idx.Len())
}

func TestInsert_AtomicOnFailure(t *testing.T) {
	idx := newTestIndex(t, 3)

	// Second entry has the wrong dimension; the first must not land either.
	err := idx.Insert([]models.IndexEntry{
		entry("doc_a:0", "doc_a", []float32{1, 0, 0}),
		entry("doc_a:1", "doc_a", []float32{1, 0}),
	})
	assert.True(t, errors.Is(err, models.ErrDimensionMismatch))
	assert.Equal(t, 0, idx.Len())

	// Duplicate within the batch fails the whole batch too.
	err = idx.Insert([]models.IndexEntry{
		entry("doc_b:0", "doc_b", []float32{1, 0, 0}),
		entry("doc_b:0", "doc_b", []float32{0, 1, 0}),
	})
	assert.True(t, errors.Is(err, models.ErrDuplicateEntry))
	assert.Equal(t, 0, idx.Len())
}

func TestRemove_Idempotent(t *testing.T) {
	idx := newTestIndex(t, 3)
	require.NoError(t, idx.Insert([]models.IndexEntry{
		entry("doc_a:0", "doc_a", []float32{1, 0, 0}),
		entry("doc_a:1", "doc_a", []float32{0, 1, 0}),
	}))

	idx.Remove([]string{"doc_a:0", "doc_a:0", "never-existed"})
	assert.Equal(t, 1, idx.Len())

	idx.Remove([]string{"doc_a:1"})
	assert.Equal(t, 0, idx.Len())
}

func TestQuery_EmptyIndex(t *testing.T) {
	idx := newTestIndex(t, 3)
	results, err := idx.Query([]float32{1, 0, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQuery_Validation(t *testing.T) {
	idx := newTestIndex(t, 3)

	_, err := idx.Query([]float32{1, 0, 0}, 0, nil)
	assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))

	_, err = idx.Query([]float32{1, 0}, 5, nil)
	assert.True(t, errors.Is(err, models.ErrDimensionMismatch))
}

func TestQuery_RanksByCosineSimilarity(t *testing.T) {
	idx := newTestIndex(t, 3)
	require.NoError(t, idx.Insert([]models.IndexEntry{
		entry("doc_a:0", "doc_a", []float32{1, 0, 0}),
		entry("doc_a:1", "doc_a", []float32{0.9, 0.1, 0}),
		entry("doc_b:0", "doc_b", []float32{0, 1, 0}),
		entry("doc_b:1", "doc_b", []float32{0, 0, 1}),
	}))

	results, err := idx.Query([]float32{1, 0, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "doc_a:0", results[0].ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "doc_a:1", results[1].ChunkID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Greater(t, results[1].Score, results[2].Score)
}

func TestQuery_FewerEntriesThanK(t *testing.T) {
	idx := newTestIndex(t, 3)
	require.NoError(t, idx.Insert([]models.IndexEntry{
		entry("doc_a:0", "doc_a", []float32{1, 0, 0}),
	}))

	results, err := idx.Query([]float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestQuery_FilterRestrictsDocuments(t *testing.T) {
	idx := newTestIndex(t, 3)
	require.NoError(t, idx.Insert([]models.IndexEntry{
		entry("doc_a:0", "doc_a", []float32{1, 0, 0}),
		entry("doc_b:0", "doc_b", []float32{1, 0, 0}),
		entry("doc_c:0", "doc_c", []float32{1, 0, 0}),
	}))

	results, err := idx.Query([]float32{1, 0, 0}, 10, []string{"doc_b"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc_b:0", results[0].ChunkID)
}

func TestQuery_DeterministicTieBreak(t *testing.T) {
	idx := newTestIndex(t, 3)
	// Identical vectors score identically; order must fall back to chunk ID.
	require.NoError(t, idx.Insert([]models.IndexEntry{
		entry("doc_b:0", "doc_b", []float32{1, 0, 0}),
		entry("doc_a:1", "doc_a", []float32{1, 0, 0}),
		entry("doc_a:0", "doc_a", []float32{1, 0, 0}),
	}))

	first, err := idx.Query([]float32{1, 0, 0}, 3, nil)
	require.NoError(t, err)
	second, err := idx.Query([]float32{1, 0, 0}, 3, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "doc_a:0", first[0].ChunkID)
	assert.Equal(t, "doc_a:1", first[1].ChunkID)
	assert.Equal(t, "doc_b:0", first[2].ChunkID)
}

func TestSnapshot_CopiesEmbeddings(t *testing.T) {
	idx := newTestIndex(t, 3)
	require.NoError(t, idx.Insert([]models.IndexEntry{
		entry("doc_a:0", "doc_a", []float32{1, 0, 0}),
		entry("doc_a:1", "doc_a", []float32{0, 1, 0}),
	}))

	snap := idx.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "doc_a:0", snap[0].ChunkID)

	// Mutating the snapshot must not reach the index.
	snap[0].Embedding[0] = 99
	got, err := idx.Get("doc_a:0")
	require.NoError(t, err)
	assert.Equal(t, float32(1), got.Embedding[0])
}

func TestGet_NotFound(t *testing.T) {
	idx := newTestIndex(t, 3)
	_, err := idx.Get("missing:0")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
