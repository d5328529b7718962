package badger

import (
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage implements the DocumentStorage interface for Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

// SaveDocument persists a document and its chunks. The document record lands
// last so a crash mid-save leaves orphan chunks, never a document whose
// chunks are missing; orphans are swept by the maintenance job.
func (s *DocumentStorage) SaveDocument(doc *models.Document, chunks []models.Chunk) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}
	doc.ChunkCount = len(chunks)

	for i := range chunks {
		if err := s.db.Store().Upsert(chunks[i].ID, &chunks[i]); err != nil {
			return fmt.Errorf("failed to save chunk %s: %w", chunks[i].ID, err)
		}
	}

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Debug().
		Str("document_id", doc.ID).
		Int("chunks", len(chunks)).
		Msg("Document saved")

	return nil
}

func (s *DocumentStorage) GetDocument(id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentStorage) GetChunk(chunkID string) (*models.Chunk, error) {
	var chunk models.Chunk
	if err := s.db.Store().Get(chunkID, &chunk); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: chunk %s", models.ErrNotFound, chunkID)
		}
		return nil, fmt.Errorf("failed to get chunk: %w", err)
	}
	return &chunk, nil
}

func (s *DocumentStorage) GetChunks(documentID string) ([]models.Chunk, error) {
	var chunks []models.Chunk
	if err := s.db.Store().Find(&chunks, badgerhold.Where("DocumentID").Eq(documentID).SortBy("Seq")); err != nil {
		return nil, fmt.Errorf("failed to get chunks for document %s: %w", documentID, err)
	}
	return chunks, nil
}

// DeleteDocument removes the document record first, then its chunks. The
// ordering mirrors SaveDocument so a crash can only leave orphan chunks.
func (s *DocumentStorage) DeleteDocument(id string) error {
	if err := s.db.Store().Delete(id, &models.Document{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("%w: document %s", models.ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if err := s.db.Store().DeleteMatching(&models.Chunk{}, badgerhold.Where("DocumentID").Eq(id)); err != nil {
		return fmt.Errorf("failed to delete chunks for document %s: %w", id, err)
	}

	s.logger.Debug().Str("document_id", id).Msg("Document deleted")
	return nil
}

func (s *DocumentStorage) ListDocuments() ([]models.DocumentSummary, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("ID").Ne("").SortBy("UploadedAt")); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	summaries := make([]models.DocumentSummary, len(docs))
	for i := range docs {
		summaries[i] = docs[i].Summary()
	}
	return summaries, nil
}

func (s *DocumentStorage) CountDocuments() (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

func (s *DocumentStorage) CountChunks() (int, error) {
	count, err := s.db.Store().Count(&models.Chunk{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return int(count), nil
}
