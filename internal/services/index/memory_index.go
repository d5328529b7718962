// -----------------------------------------------------------------------
// Vector Index - in-memory exact nearest-neighbor index over chunk
// embeddings with cosine similarity ranking
// -----------------------------------------------------------------------

package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
)

// MemoryIndex implements interfaces.VectorIndex with brute-force cosine
// similarity. Exact search keeps ranking semantics deterministic; corpus
// sizes here are bounded by what a compliance team uploads, not web scale.
//
// Reads take the shared lock so concurrent queries proceed in parallel;
// Insert and Remove take the exclusive lock, so a query observes either
// all of a document's entries or none of them.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	entries   map[string]models.IndexEntry
	logger    arbor.ILogger
}

// Compile-time assertion
var _ interfaces.VectorIndex = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty index with a fixed embedding dimension.
func NewMemoryIndex(dimension int, logger arbor.ILogger) (*MemoryIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: index dimension must be positive, got %d", models.ErrInvalidConfiguration, dimension)
	}
	return &MemoryIndex{
		dimension: dimension,
		entries:   make(map[string]models.IndexEntry),
		logger:    logger,
	}, nil
}

// Insert adds entries atomically: the whole batch is validated before any
// entry becomes visible, so a failed insert leaves the index untouched.
func (idx *MemoryIndex) Insert(entries []models.IndexEntry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if len(e.Embedding) != idx.dimension {
			return fmt.Errorf("%w: entry %s has dimension %d, index expects %d", models.ErrDimensionMismatch, e.ChunkID, len(e.Embedding), idx.dimension)
		}
		if _, dup := seen[e.ChunkID]; dup {
			return fmt.Errorf("%w: %s repeated within batch", models.ErrDuplicateEntry, e.ChunkID)
		}
		if _, exists := idx.entries[e.ChunkID]; exists {
			return fmt.Errorf("%w: %s", models.ErrDuplicateEntry, e.ChunkID)
		}
		seen[e.ChunkID] = struct{}{}
	}

	for _, e := range entries {
		idx.entries[e.ChunkID] = e
	}

	idx.logger.Debug().
		Int("inserted", len(entries)).
		Int("total", len(idx.entries)).
		Msg("Index entries inserted")

	return nil
}

// Remove deletes entries by chunk ID. Removing an unknown ID is a no-op.
func (idx *MemoryIndex) Remove(chunkIDs []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	removed := 0
	for _, id := range chunkIDs {
		if _, ok := idx.entries[id]; ok {
			delete(idx.entries, id)
			removed++
		}
	}

	idx.logger.Debug().
		Int("removed", removed).
		Int("total", len(idx.entries)).
		Msg("Index entries removed")
}

// Query returns up to k entries ranked by descending cosine similarity,
// ties broken by ascending chunk ID. A non-empty filter restricts the
// candidate set to the given document IDs before ranking.
func (idx *MemoryIndex) Query(vector []float32, k int, filter []string) ([]interfaces.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", models.ErrInvalidConfiguration, k)
	}
	if len(vector) != idx.dimension {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index expects %d", models.ErrDimensionMismatch, len(vector), idx.dimension)
	}

	var allowed map[string]struct{}
	if len(filter) > 0 {
		allowed = make(map[string]struct{}, len(filter))
		for _, docID := range filter {
			allowed[docID] = struct{}{}
		}
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	scored := make([]interfaces.ScoredChunk, 0, len(idx.entries))
	for id, e := range idx.entries {
		if allowed != nil {
			if _, ok := allowed[e.DocumentID]; !ok {
				continue
			}
		}
		scored = append(scored, interfaces.ScoredChunk{
			ChunkID: id,
			Score:   cosineSimilarity(vector, e.Embedding),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ChunkID < scored[j].ChunkID
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Get returns the entry for a chunk ID.
func (idx *MemoryIndex) Get(chunkID string) (models.IndexEntry, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	e, ok := idx.entries[chunkID]
	if !ok {
		return models.IndexEntry{}, fmt.Errorf("%w: index entry %s", models.ErrNotFound, chunkID)
	}
	return e, nil
}

// Len reports the number of entries.
func (idx *MemoryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Dimension reports the configured embedding dimension.
func (idx *MemoryIndex) Dimension() int {
	return idx.dimension
}

// Snapshot returns a copy of all entries, ordered by chunk ID. Embeddings
// are copied so callers cannot mutate indexed vectors.
func (idx *MemoryIndex) Snapshot() []models.IndexEntry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entries := make([]models.IndexEntry, 0, len(idx.entries))
	for _, e := range idx.entries {
		clone := e
		clone.Embedding = append([]float32(nil), e.Embedding...)
		entries = append(entries, clone)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ChunkID < entries[j].ChunkID })
	return entries
}

// cosineSimilarity computes cos(a, b) over raw vectors. Embeddings are not
// assumed normalized; a zero vector scores 0 against everything.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
