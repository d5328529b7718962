package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
)

// StatusHandler reports service health and corpus statistics
type StatusHandler struct {
	corpusService interfaces.CorpusService
	embeddings    interfaces.EmbeddingService
	logger        arbor.ILogger
}

// NewStatusHandler creates a new status handler with dependencies
func NewStatusHandler(corpusService interfaces.CorpusService, embeddings interfaces.EmbeddingService, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		corpusService: corpusService,
		embeddings:    embeddings,
		logger:        logger,
	}
}

// Handle handles GET /api/status
func (h *StatusHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := h.corpusService.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"corpus":  stats,
		"embedding": map[string]interface{}{
			"model":     h.embeddings.ModelName(),
			"dimension": h.embeddings.Dimension(),
		},
	})
}
