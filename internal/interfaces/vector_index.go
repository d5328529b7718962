package interfaces

import (
	"github.com/ternarybob/scrutor/internal/models"
)

// ScoredChunk is a single ranked hit from a vector index query.
type ScoredChunk struct {
	ChunkID string
	Score   float64
}

// VectorIndex stores chunk embeddings with their ranking/citation metadata
// and answers k-nearest-neighbor queries. Reference semantics are exact
// brute-force cosine similarity; ties are broken by ascending chunk ID so
// repeated identical queries return identical order.
//
// The index supports concurrent readers; Insert and Remove are mutually
// exclusive with each other and with readers, so a reader never observes a
// document's entries half-inserted or half-removed. The corpus service is
// the single writer.
type VectorIndex interface {
	// Insert adds entries atomically. A duplicate chunk ID fails the whole
	// batch with models.ErrDuplicateEntry; a vector of the wrong dimension
	// fails it with models.ErrDimensionMismatch.
	Insert(entries []models.IndexEntry) error

	// Remove deletes entries by chunk ID. Unknown IDs are no-ops.
	Remove(chunkIDs []string)

	// Query returns up to k entries ranked by descending cosine similarity
	// to the given vector. A non-empty filter restricts candidates to the
	// given document IDs before ranking. An empty index yields an empty
	// result, not an error.
	Query(vector []float32, k int, filter []string) ([]ScoredChunk, error)

	// Get returns the entry for a chunk ID, or models.ErrNotFound.
	Get(chunkID string) (models.IndexEntry, error)

	// Len reports the number of entries.
	Len() int

	// Dimension reports the configured embedding dimension.
	Dimension() int

	// Snapshot returns a copy of all entries for persistence.
	Snapshot() []models.IndexEntry
}
