package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
)

// Services bundles the provider clients the application wires at startup.
// Embedder is always Gemini; Composer follows llm.composer_provider and may
// alias Embedder when both roles run on Gemini.
type Services struct {
	Embedder interfaces.LLMService
	Composer interfaces.LLMService
}

// NewServices builds provider clients from configuration.
func NewServices(ctx context.Context, config *common.Config, logger arbor.ILogger) (*Services, error) {
	gemini, err := NewGeminiService(ctx, &config.Gemini, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini service: %w", err)
	}

	services := &Services{
		Embedder: gemini,
		Composer: gemini,
	}

	if config.LLM.ComposerProvider == string(interfaces.LLMProviderClaude) {
		claude, err := NewClaudeService(&config.Claude, logger)
		if err != nil {
			gemini.Close()
			return nil, fmt.Errorf("failed to create claude service: %w", err)
		}
		services.Composer = claude
	}

	logger.Info().
		Str("embedder", string(services.Embedder.GetProvider())).
		Str("composer", string(services.Composer.GetProvider())).
		Msg("LLM providers configured")

	return services, nil
}

// Close releases both provider clients. Safe when they alias the same
// underlying service.
func (s *Services) Close() error {
	var firstErr error
	if err := s.Embedder.Close(); err != nil {
		firstErr = err
	}
	if s.Composer != s.Embedder {
		if err := s.Composer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
