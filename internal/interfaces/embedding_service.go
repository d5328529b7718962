package interfaces

import (
	"context"
)

// EmbeddingService generates vector embeddings with the retry policy the
// retrieval core requires: transient gateway failures are retried with
// bounded backoff before surfacing models.ErrEmbeddingUnavailable.
type EmbeddingService interface {
	// Generate embedding for a document passage
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// Generate embeddings for multiple passages, preserving order
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// Generate query embedding (uses the query-side task type)
	GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error)

	// Get model information
	ModelName() string
	Dimension() int

	// Check if service is available
	IsAvailable(ctx context.Context) bool
}
