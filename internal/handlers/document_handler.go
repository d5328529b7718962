// -----------------------------------------------------------------------
// Document Handler - upload, listing, and deletion of corpus documents
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/interfaces"
)

// Upload size cap: compliance PDFs, not archives.
const maxUploadBytes = 32 << 20

// DocumentHandler handles document lifecycle HTTP requests
type DocumentHandler struct {
	corpusService interfaces.CorpusService
	pdfExtractor  interfaces.PDFExtractor
	logger        arbor.ILogger
}

// NewDocumentHandler creates a new document handler with dependencies
func NewDocumentHandler(corpusService interfaces.CorpusService, pdfExtractor interfaces.PDFExtractor, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		corpusService: corpusService,
		pdfExtractor:  pdfExtractor,
		logger:        logger,
	}
}

// uploadRequest is the JSON body for text uploads.
type uploadRequest struct {
	Name  string `json:"name"`
	Text  string `json:"text"`
	Owner string `json:"owner"`
}

// UploadHandler handles POST /api/documents. Accepts either a multipart
// form with a "file" PDF field or a JSON body with pre-extracted text.
func (h *DocumentHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var name, text, owner string

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "multipart upload requires a 'file' field")
			return
		}
		defer file.Close()

		pdfData, err := io.ReadAll(file)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}

		text, err = h.pdfExtractor.ExtractText(r.Context(), pdfData)
		if err != nil {
			h.logger.Warn().Err(err).Str("file", header.Filename).Msg("PDF extraction failed")
			WriteServiceError(w, err)
			return
		}

		name = header.Filename
		owner = r.FormValue("owner")
		if formName := r.FormValue("name"); formName != "" {
			name = formName
		}
	} else {
		var req uploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		name, text, owner = req.Name, req.Text, req.Owner
	}

	if name == "" {
		WriteError(w, http.StatusBadRequest, "document name is required")
		return
	}

	documentID, err := h.corpusService.Ingest(r.Context(), name, text, owner)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	doc, err := h.corpusService.GetDocument(r.Context(), documentID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status":   "success",
		"document": doc.Summary(),
	})
}

// ListHandler handles GET /api/documents
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	summaries, err := h.corpusService.ListDocuments(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"documents": summaries,
		"count":     len(summaries),
	})
}

// DeleteHandler handles DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	documentID := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	if documentID == "" || strings.Contains(documentID, "/") {
		WriteError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	if err := h.corpusService.Delete(r.Context(), documentID); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, "document deleted")
}
