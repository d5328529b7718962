// -----------------------------------------------------------------------
// Retriever - read-only query path over the vector index with threshold
// and merge policy applied after ranking
// -----------------------------------------------------------------------

package retriever

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
)

type retrieverService struct {
	embeddings interfaces.EmbeddingService
	index      interfaces.VectorIndex
	corpus     interfaces.CorpusService
	config     *common.RetrievalConfig
	logger     arbor.ILogger
}

// NewService creates the retriever. It reads the index and resolves chunk
// text through the corpus; it never mutates either.
func NewService(embeddings interfaces.EmbeddingService, index interfaces.VectorIndex, corpus interfaces.CorpusService, config *common.RetrievalConfig, logger arbor.ILogger) interfaces.RetrieverService {
	return &retrieverService{
		embeddings: embeddings,
		index:      index,
		corpus:     corpus,
		config:     config,
		logger:     logger,
	}
}

func (s *retrieverService) Retrieve(ctx context.Context, query string, opts interfaces.RetrieveOptions) ([]models.RetrievedPassage, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", models.ErrInvalidConfiguration)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.config.TopK
	}

	start := time.Now()

	vector, err := s.embeddings.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, err := s.index.Query(vector, topK, opts.DocumentIDs)
	if err != nil {
		return nil, err
	}

	passages := make([]models.RetrievedPassage, 0, len(scored))
	for _, sc := range scored {
		if sc.Score < s.config.MinSimilarity {
			continue
		}
		chunk, err := s.corpus.GetChunk(ctx, sc.ChunkID)
		if err != nil {
			// Entry removed between ranking and resolution; skip rather
			// than fail the whole query.
			s.logger.Warn().
				Str("chunk_id", sc.ChunkID).
				Err(err).
				Msg("Ranked chunk no longer resolvable")
			continue
		}
		entry, err := s.index.Get(sc.ChunkID)
		if err != nil {
			continue
		}
		passages = append(passages, models.RetrievedPassage{
			ChunkID:      chunk.ID,
			DocumentID:   chunk.DocumentID,
			DocumentName: entry.DocumentName,
			Score:        sc.Score,
			StartOffset:  chunk.StartOffset,
			EndOffset:    chunk.EndOffset,
			Text:         chunk.Text,
		})
	}

	if s.config.MergeAdjacent {
		passages = mergeAdjacent(passages)
	}

	s.logger.Debug().
		Int("top_k", topK).
		Int("results", len(passages)).
		Dur("duration", time.Since(start)).
		Msg("Retrieval completed")

	return passages, nil
}

// mergeAdjacent collapses overlapping or touching spans of the same
// document into one passage. The merged passage keeps the best score of
// its members and the chunk ID of the highest scoring member. Result order
// remains score-descending.
func mergeAdjacent(passages []models.RetrievedPassage) []models.RetrievedPassage {
	if len(passages) < 2 {
		return passages
	}

	// Group spans per document in offset order.
	byDoc := make(map[string][]models.RetrievedPassage)
	for _, p := range passages {
		byDoc[p.DocumentID] = append(byDoc[p.DocumentID], p)
	}

	merged := make([]models.RetrievedPassage, 0, len(passages))
	for _, spans := range byDoc {
		sort.Slice(spans, func(i, j int) bool { return spans[i].StartOffset < spans[j].StartOffset })

		current := spans[0]
		for _, next := range spans[1:] {
			if next.StartOffset <= current.EndOffset {
				if next.EndOffset > current.EndOffset {
					// Extend text without duplicating the overlap.
					current.Text += next.Text[current.EndOffset-next.StartOffset:]
					current.EndOffset = next.EndOffset
				}
				if next.Score > current.Score {
					current.Score = next.Score
					current.ChunkID = next.ChunkID
				}
				continue
			}
			merged = append(merged, current)
			current = next
		}
		merged = append(merged, current)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].ChunkID < merged[j].ChunkID
	})
	return merged
}
