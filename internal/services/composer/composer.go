// -----------------------------------------------------------------------
// Answer Composer - grounded answer generation over retrieved passages
// with citation markers mapped back to document spans
// -----------------------------------------------------------------------

package composer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/llm"
)

const systemPrompt = `You are a compliance document assistant. Answer the question using ONLY the information in the provided context passages. Do not use outside knowledge. When a statement in your answer is supported by a passage, cite it with its marker, for example [1] or [2]. If the context does not contain the information needed to answer, say that the available documents do not cover it.`

// noAnswerText is returned without a provider call when retrieval found
// nothing relevant.
const noAnswerText = "No relevant information was found in the available documents for this question."

type composerService struct {
	provider  interfaces.LLMService
	retryCfg  *llm.RetryConfig
	modelName string
	logger    arbor.ILogger
}

// NewService creates the answer composer on top of a chat-capable provider.
func NewService(provider interfaces.LLMService, config *common.Config, logger arbor.ILogger) interfaces.ComposerService {
	modelName := config.Gemini.ChatModel
	if provider.GetProvider() == interfaces.LLMProviderClaude {
		modelName = config.Claude.Model
	}
	return &composerService{
		provider:  provider,
		retryCfg:  llm.NewRetryConfig(config.LLM.MaxRetries, config.LLM.InitialBackoff),
		modelName: modelName,
		logger:    logger,
	}
}

func (s *composerService) Compose(ctx context.Context, question string, passages []models.RetrievedPassage) (*models.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question cannot be empty", models.ErrInvalidConfiguration)
	}

	if len(passages) == 0 {
		return &models.Answer{
			Text:      noAnswerText,
			Citations: nil,
			Model:     s.modelName,
		}, nil
	}

	start := time.Now()

	messages := []interfaces.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(question, passages)},
	}

	var text string
	err := llm.Retry(ctx, s.retryCfg, s.logger, "compose", func(ctx context.Context) error {
		var callErr error
		text, callErr = s.provider.Chat(ctx, messages)
		return callErr
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("passages", len(passages)).
			Str("model", s.modelName).
			Msg("Answer composition failed after retries")
		return nil, fmt.Errorf("%w: %v", models.ErrCompositionUnavailable, err)
	}

	s.logger.Debug().
		Int("passages", len(passages)).
		Int("answer_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Answer composed")

	return &models.Answer{
		Text:      strings.TrimSpace(text),
		Citations: BuildCitations(passages),
		Model:     s.modelName,
	}, nil
}

// buildPrompt numbers passages [1]..[n] in the order the retriever ranked
// them, matching the markers BuildCitations assigns.
func buildPrompt(question string, passages []models.RetrievedPassage) string {
	var b strings.Builder
	b.WriteString("Context passages:\n\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] (from %s)\n%s\n\n", i+1, p.DocumentName, p.Text)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
