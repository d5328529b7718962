package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// IndexStorage persists vector index entries so the in-memory index can be
// rebuilt after restart. Entries round-trip through badgerhold's gob
// encoding, which preserves float32 embedding values exactly.
type IndexStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewIndexStorage creates a new IndexStorage instance
func NewIndexStorage(db *BadgerDB, logger arbor.ILogger) interfaces.IndexStorage {
	return &IndexStorage{
		db:     db,
		logger: logger,
	}
}

func (s *IndexStorage) SaveEntries(entries []models.IndexEntry) error {
	for i := range entries {
		if entries[i].ChunkID == "" {
			return fmt.Errorf("index entry %d has no chunk ID", i)
		}
		if err := s.db.Store().Upsert("idx:"+entries[i].ChunkID, &entries[i]); err != nil {
			return fmt.Errorf("failed to save index entry %s: %w", entries[i].ChunkID, err)
		}
	}

	s.logger.Debug().Int("entries", len(entries)).Msg("Index entries persisted")
	return nil
}

func (s *IndexStorage) DeleteEntries(chunkIDs []string) error {
	for _, id := range chunkIDs {
		if err := s.db.Store().Delete("idx:"+id, &models.IndexEntry{}); err != nil && err != badgerhold.ErrNotFound {
			return fmt.Errorf("failed to delete index entry %s: %w", id, err)
		}
	}

	s.logger.Debug().Int("entries", len(chunkIDs)).Msg("Index entries removed from storage")
	return nil
}

func (s *IndexStorage) LoadEntries() ([]models.IndexEntry, error) {
	var entries []models.IndexEntry
	if err := s.db.Store().Find(&entries, badgerhold.Where("ChunkID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to load index entries: %w", err)
	}
	return entries, nil
}

func (s *IndexStorage) CountEntries() (int, error) {
	count, err := s.db.Store().Count(&models.IndexEntry{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count index entries: %w", err)
	}
	return int(count), nil
}
