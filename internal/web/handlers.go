package web

// handlers.go maps service results and errors onto the JSON API.
//
// Error mapping:
//   - importer.ErrImportInProgress -> 409 Conflict
//   - importer.ErrNotFound         -> 404 Not Found
//   - anything else                -> 500 Internal Server Error
//
// Technical error detail is logged server-side with the request ID; clients
// only see a short message.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkrawiec/catalog-import/internal/importer"
	"github.com/pkrawiec/catalog-import/internal/logging"
)

// ErrorResponse is the JSON body for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleImport triggers a full import run and returns its summary.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.RunImport(r.Context())
	if err != nil {
		if errors.Is(err, importer.ErrImportInProgress) {
			s.respondError(w, r, err, http.StatusConflict)
			return
		}
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// handleGetProduct returns the joined view for one SKU.
func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	view, err := s.service.GetBySku(r.Context(), sku)
	if err != nil {
		if errors.Is(err, importer.ErrNotFound) {
			s.respondError(w, r, err, http.StatusNotFound)
			return
		}
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondError logs the technical error server-side and writes a JSON error
// body. Client-facing messages stay short; 5xx detail never leaks.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	logger := logging.FromContext(r.Context())
	logger.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
	)

	msg := err.Error()
	if statusCode >= http.StatusInternalServerError {
		msg = "internal server error"
	}
	respondJSON(w, statusCode, ErrorResponse{Error: msg})
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already out; nothing left to do but log.
		slog.Error("response encoding failed", "error", err)
	}
}
