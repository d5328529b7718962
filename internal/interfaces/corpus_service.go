package interfaces

import (
	"context"

	"github.com/ternarybob/scrutor/internal/models"
)

// CorpusService owns the Document->Chunk mapping and is the single writer
// of the vector index. Invariant maintained across all operations: the
// index entry set is exactly the union of chunks belonging to registered
// documents - never ahead of a partially ingested document, never behind a
// deleted one.
type CorpusService interface {
	// Ingest chunks the text, embeds every chunk, and registers document,
	// chunks, and index entries as one logical operation. Any embedding
	// failure or context cancellation rolls the whole document back.
	// Fails with models.ErrExtractionFailed when the text is empty and
	// models.ErrEmbeddingUnavailable when the gateway stays unreachable.
	Ingest(ctx context.Context, name, text, owner string) (string, error)

	// Delete removes the document, its chunks, and its index entries as one
	// logical operation. Unknown IDs fail with models.ErrNotFound. A delete
	// racing an in-flight ingest of the same document waits for it.
	Delete(ctx context.Context, documentID string) error

	// ListDocuments returns summaries of all registered documents.
	ListDocuments(ctx context.Context) ([]models.DocumentSummary, error)

	// GetDocument returns a registered document, or models.ErrNotFound.
	GetDocument(ctx context.Context, documentID string) (*models.Document, error)

	// GetChunk resolves chunk metadata for retrieval results.
	GetChunk(ctx context.Context, chunkID string) (*models.Chunk, error)

	// Stats reports aggregate corpus state.
	Stats(ctx context.Context) (*models.CorpusStats, error)
}
