package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Documents
	mux.HandleFunc("/api/documents", s.handleDocumentsRoute)  // GET (list), POST (upload)
	mux.HandleFunc("/api/documents/", s.handleDocumentRoutes) // DELETE /{id}

	// API routes - Question answering
	mux.HandleFunc("/api/ask", s.app.AskHandler.Handle) // POST

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.Handle) // GET

	return mux
}

// handleDocumentsRoute dispatches /api/documents by method
func (s *Server) handleDocumentsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.app.DocumentHandler.ListHandler(w, r)
	case http.MethodPost:
		s.app.DocumentHandler.UploadHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleDocumentRoutes dispatches /api/documents/{id}
func (s *Server) handleDocumentRoutes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodDelete:
		s.app.DocumentHandler.DeleteHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
