package interfaces

import (
	"context"

	"github.com/ternarybob/scrutor/internal/models"
)

// ComposerService turns a question plus retrieved passages into a grounded
// answer with citation markers. The core constructs the grounding context
// and the marker->span mapping; it does not parse the generated text beyond
// the marker indices assigned in passage order.
type ComposerService interface {
	// Compose generates an answer citing the given passages. Passages are
	// numbered [1]..[n] in order. Provider failure after retries surfaces
	// models.ErrCompositionUnavailable. An empty passage set produces a
	// fixed "no relevant information" answer without calling the provider.
	Compose(ctx context.Context, question string, passages []models.RetrievedPassage) (*models.Answer, error)
}
