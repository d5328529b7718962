package interfaces

import (
	"context"

	"github.com/ternarybob/scrutor/internal/models"
)

// RetrieveOptions carries per-query retrieval parameters.
type RetrieveOptions struct {
	// TopK is the maximum number of passages to return. Must be positive.
	TopK int

	// DocumentIDs restricts retrieval to the given documents. Callers use
	// this to scope results to documents the requester may read.
	DocumentIDs []string
}

// RetrieverService answers queries against the vector index. It only reads
// the index and never mutates it. An empty result is a normal outcome
// ("no relevant passages"); a gateway failure surfaces as
// models.ErrEmbeddingUnavailable so callers can tell the two apart.
type RetrieverService interface {
	Retrieve(ctx context.Context, query string, opts RetrieveOptions) ([]models.RetrievedPassage, error)
}
