// -----------------------------------------------------------------------
// Ask Handler - question answering over the ingested corpus
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
)

// AskHandler handles retrieval-augmented question requests
type AskHandler struct {
	retriever interfaces.RetrieverService
	composer  interfaces.ComposerService
	logger    arbor.ILogger
}

// NewAskHandler creates a new ask handler with dependencies
func NewAskHandler(retriever interfaces.RetrieverService, composer interfaces.ComposerService, logger arbor.ILogger) *AskHandler {
	return &AskHandler{
		retriever: retriever,
		composer:  composer,
		logger:    logger,
	}
}

type askRequest struct {
	Question    string   `json:"question"`
	TopK        int      `json:"top_k,omitempty"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

type askResponse struct {
	Status   string                    `json:"status"`
	Answer   *models.Answer            `json:"answer"`
	Passages []models.RetrievedPassage `json:"passages"`
	Took     string                    `json:"took"`
}

// Handle handles POST /api/ask
func (h *AskHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		WriteError(w, http.StatusBadRequest, "question is required")
		return
	}

	start := time.Now()

	passages, err := h.retriever.Retrieve(r.Context(), req.Question, interfaces.RetrieveOptions{
		TopK:        req.TopK,
		DocumentIDs: req.DocumentIDs,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	answer, err := h.composer.Compose(r.Context(), req.Question, passages)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	h.logger.Info().
		Int("passages", len(passages)).
		Int("citations", len(answer.Citations)).
		Dur("duration", time.Since(start)).
		Msg("Question answered")

	WriteJSON(w, http.StatusOK, askResponse{
		Status:   "success",
		Answer:   answer,
		Passages: passages,
		Took:     time.Since(start).String(),
	})
}
