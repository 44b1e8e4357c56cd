package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"termbridge-backend/internal/github"
	"termbridge-backend/internal/gitsync"
	"termbridge-backend/internal/types"
)

// writeError sends a JSON error response with the given status code.
func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(types.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}

// writeDomainError maps a workflow error to an HTTP status and sends it.
// Server-side failures are logged before they leave the handler.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	code := statusForError(err)
	if code >= http.StatusInternalServerError {
		if status, ok := github.UpstreamStatus(err); ok {
			slog.Error("github request failed", "status", status, "error", err)
		} else {
			slog.Error("request failed", "error", err)
		}
	}
	s.writeError(w, code, err.Error())
}

// statusForError picks the HTTP status for a domain error. Transport
// failures (no upstream response at all) map to 504 so callers can tell
// them apart from GitHub-reported errors.
func statusForError(err error) int {
	switch {
	case errors.Is(err, gitsync.ErrNoPullRequest),
		errors.Is(err, gitsync.ErrManifestNotFound),
		errors.Is(err, github.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gitsync.ErrNotMergeable),
		errors.Is(err, gitsync.ErrManifestInvalid):
		return http.StatusBadRequest
	case errors.Is(err, github.ErrConflict):
		return http.StatusConflict
	}
	if github.IsTransport(err) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
