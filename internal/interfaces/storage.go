package interfaces

import (
	"github.com/ternarybob/scrutor/internal/models"
)

// DocumentStorage persists documents and their chunks.
type DocumentStorage interface {
	SaveDocument(doc *models.Document, chunks []models.Chunk) error
	GetDocument(id string) (*models.Document, error)
	GetChunk(chunkID string) (*models.Chunk, error)
	GetChunks(documentID string) ([]models.Chunk, error)
	DeleteDocument(id string) error
	ListDocuments() ([]models.DocumentSummary, error)
	CountDocuments() (int, error)
	CountChunks() (int, error)
}

// IndexStorage persists vector index entries so the exact
// Document->Chunk->Entry mapping can be reconstructed after restart.
// Embeddings round-trip at full float32 precision.
type IndexStorage interface {
	SaveEntries(entries []models.IndexEntry) error
	DeleteEntries(chunkIDs []string) error
	LoadEntries() ([]models.IndexEntry, error)
	CountEntries() (int, error)
}

// StorageManager provides access to all storage backends.
type StorageManager interface {
	DocumentStorage() DocumentStorage
	IndexStorage() IndexStorage

	// RunGC triggers value-log garbage collection on the backing store.
	RunGC() error

	Close() error
}
