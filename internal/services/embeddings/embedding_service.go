// -----------------------------------------------------------------------
// Embedding Gateway - retry wrapper around the LLM provider turning
// transient failures into bounded backoff and classified errors
// -----------------------------------------------------------------------

package embeddings

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/llm"
)

type embeddingService struct {
	provider  interfaces.LLMService
	retryCfg  *llm.RetryConfig
	modelName string
	dimension int
	logger    arbor.ILogger
}

// NewEmbeddingService wraps an LLM provider with the retry policy. All
// embeddings come from this path so document and query vectors share one
// model and dimension.
func NewEmbeddingService(provider interfaces.LLMService, config *common.Config, logger arbor.ILogger) interfaces.EmbeddingService {
	return &embeddingService{
		provider:  provider,
		retryCfg:  llm.NewRetryConfig(config.LLM.MaxRetries, config.LLM.InitialBackoff),
		modelName: config.Gemini.EmbedModel,
		dimension: config.Gemini.EmbedDimension,
		logger:    logger,
	}
}

func (s *embeddingService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return s.embed(ctx, text, interfaces.EmbedTaskDocument)
}

func (s *embeddingService) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var embeddings [][]float32
	err := llm.Retry(ctx, s.retryCfg, s.logger, "embed_batch", func(ctx context.Context) error {
		var callErr error
		embeddings, callErr = s.provider.EmbedBatch(ctx, texts, interfaces.EmbedTaskDocument)
		return callErr
	})
	if err != nil {
		return nil, s.classify(err, len(texts))
	}
	return embeddings, nil
}

func (s *embeddingService) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.embed(ctx, query, interfaces.EmbedTaskQuery)
}

func (s *embeddingService) embed(ctx context.Context, text string, task interfaces.EmbedTaskType) ([]float32, error) {
	var embedding []float32
	err := llm.Retry(ctx, s.retryCfg, s.logger, "embed", func(ctx context.Context) error {
		var callErr error
		embedding, callErr = s.provider.Embed(ctx, text, task)
		return callErr
	})
	if err != nil {
		return nil, s.classify(err, 1)
	}
	return embedding, nil
}

// classify wraps exhausted or failed provider calls so callers can match
// models.ErrEmbeddingUnavailable regardless of the underlying cause.
func (s *embeddingService) classify(err error, texts int) error {
	s.logger.Error().
		Err(err).
		Int("texts", texts).
		Str("model", s.modelName).
		Msg("Embedding generation failed after retries")
	return fmt.Errorf("%w: %v", models.ErrEmbeddingUnavailable, err)
}

func (s *embeddingService) ModelName() string {
	return s.modelName
}

func (s *embeddingService) Dimension() int {
	return s.dimension
}

func (s *embeddingService) IsAvailable(ctx context.Context) bool {
	return s.provider.HealthCheck(ctx) == nil
}
