// -----------------------------------------------------------------------
// Corpus Manager - single writer coordinating document registration,
// chunking, embedding, persistence, and the vector index
// -----------------------------------------------------------------------

package corpus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/chunker"
)

// Service implements interfaces.CorpusService. All mutations funnel through
// writeMu, so the document registry, chunk store, and vector index move in
// lockstep: a reader observes a document fully registered or not at all.
// Embedding runs outside the lock; only registration is serialized.
type Service struct {
	writeMu    keyedMutex
	chunkCfg   chunker.Config
	embeddings interfaces.EmbeddingService
	index      interfaces.VectorIndex
	storage    interfaces.StorageManager
	logger     arbor.ILogger
}

// NewService creates the corpus manager and rebuilds the vector index from
// persisted entries so restart recovers the exact document/chunk/entry
// mapping.
func NewService(config *common.Config, embeddings interfaces.EmbeddingService, index interfaces.VectorIndex, storage interfaces.StorageManager, logger arbor.ILogger) (interfaces.CorpusService, error) {
	s := &Service{
		chunkCfg: chunker.Config{
			ChunkSize: config.Chunking.ChunkSize,
			Overlap:   config.Chunking.Overlap,
		},
		embeddings: embeddings,
		index:      index,
		storage:    storage,
		logger:     logger,
	}

	if err := s.rebuildIndex(); err != nil {
		return nil, fmt.Errorf("failed to rebuild vector index: %w", err)
	}

	return s, nil
}

// rebuildIndex loads persisted entries into the in-memory index at startup.
func (s *Service) rebuildIndex() error {
	start := time.Now()

	entries, err := s.storage.IndexStorage().LoadEntries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		s.logger.Info().Msg("Vector index starting empty")
		return nil
	}

	if err := s.index.Insert(entries); err != nil {
		return err
	}

	s.logger.Info().
		Int("entries", len(entries)).
		Dur("duration", time.Since(start)).
		Msg("Vector index rebuilt from storage")

	return nil
}

// Ingest chunks, embeds, and registers a document. Registration is all or
// nothing: an embedding failure or cancellation leaves no trace of the
// document in storage or the index.
func (s *Service) Ingest(ctx context.Context, name, text, owner string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: document %q produced no text", models.ErrExtractionFailed, name)
	}

	documentID := common.NewDocumentID()

	chunks, err := chunker.Split(documentID, text, s.chunkCfg)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: document %q produced no chunks", models.ErrExtractionFailed, name)
	}

	start := time.Now()

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	// Embedding happens before any state is touched, so a failure here
	// needs no rollback.
	vectors, err := s.embeddings.GenerateEmbeddings(ctx, texts)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("name", name).
			Int("chunks", len(chunks)).
			Msg("Ingest aborted, embedding failed")
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("ingest of %q canceled: %w", name, err)
	}
	if len(vectors) != len(chunks) {
		return "", fmt.Errorf("%w: embedding count mismatch for %q: %d chunks, %d vectors", models.ErrEmbeddingUnavailable, name, len(chunks), len(vectors))
	}

	doc := &models.Document{
		ID:         documentID,
		Name:       name,
		Text:       text,
		Owner:      owner,
		ChunkCount: len(chunks),
		UploadedAt: time.Now(),
	}

	entries := make([]models.IndexEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = models.IndexEntry{
			ChunkID:      c.ID,
			DocumentID:   documentID,
			DocumentName: name,
			StartOffset:  c.StartOffset,
			EndOffset:    c.EndOffset,
			Seq:          c.Seq,
			Embedding:    vectors[i],
		}
	}

	unlock := s.writeMu.lock(documentID)
	defer unlock()

	if err := s.storage.DocumentStorage().SaveDocument(doc, chunks); err != nil {
		return "", fmt.Errorf("failed to persist document %q: %w", name, err)
	}

	if err := s.index.Insert(entries); err != nil {
		// Roll storage back so the document does not exist without its
		// index entries.
		if delErr := s.storage.DocumentStorage().DeleteDocument(documentID); delErr != nil {
			s.logger.Error().
				Err(delErr).
				Str("document_id", documentID).
				Msg("Rollback failed, orphaned document left in storage")
		}
		return "", fmt.Errorf("failed to index document %q: %w", name, err)
	}

	if err := s.storage.IndexStorage().SaveEntries(entries); err != nil {
		s.index.Remove(chunkIDs(chunks))
		if delErr := s.storage.DocumentStorage().DeleteDocument(documentID); delErr != nil {
			s.logger.Error().
				Err(delErr).
				Str("document_id", documentID).
				Msg("Rollback failed, orphaned document left in storage")
		}
		return "", fmt.Errorf("failed to persist index entries for %q: %w", name, err)
	}

	s.logger.Info().
		Str("document_id", documentID).
		Str("name", name).
		Int("chunks", len(chunks)).
		Dur("duration", time.Since(start)).
		Msg("Document ingested")

	return documentID, nil
}

// Delete removes a document with its chunks and index entries. A delete
// racing an in-flight registration of the same document waits for it.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	unlock := s.writeMu.lock(documentID)
	defer unlock()

	doc, err := s.storage.DocumentStorage().GetDocument(documentID)
	if err != nil {
		return err
	}

	chunks, err := s.storage.DocumentStorage().GetChunks(documentID)
	if err != nil {
		return fmt.Errorf("failed to load chunks for %s: %w", documentID, err)
	}
	ids := chunkIDs(chunks)

	// Index first: a reader between the two steps sees a registered
	// document with no retrievable chunks, never dangling index entries.
	s.index.Remove(ids)

	if err := s.storage.IndexStorage().DeleteEntries(ids); err != nil {
		return fmt.Errorf("failed to remove index entries for %s: %w", documentID, err)
	}
	if err := s.storage.DocumentStorage().DeleteDocument(documentID); err != nil {
		return fmt.Errorf("failed to remove document %s: %w", documentID, err)
	}

	s.logger.Info().
		Str("document_id", documentID).
		Str("name", doc.Name).
		Int("chunks", len(ids)).
		Msg("Document deleted")

	return nil
}

func (s *Service) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	return s.storage.DocumentStorage().ListDocuments()
}

func (s *Service) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	return s.storage.DocumentStorage().GetDocument(documentID)
}

func (s *Service) GetChunk(ctx context.Context, chunkID string) (*models.Chunk, error) {
	return s.storage.DocumentStorage().GetChunk(chunkID)
}

func (s *Service) Stats(ctx context.Context) (*models.CorpusStats, error) {
	docCount, err := s.storage.DocumentStorage().CountDocuments()
	if err != nil {
		return nil, err
	}
	chunkCount, err := s.storage.DocumentStorage().CountChunks()
	if err != nil {
		return nil, err
	}

	return &models.CorpusStats{
		TotalDocuments: docCount,
		TotalChunks:    chunkCount,
		IndexEntries:   s.index.Len(),
		LastUpdated:    time.Now(),
	}, nil
}

func chunkIDs(chunks []models.Chunk) []string {
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids
}
