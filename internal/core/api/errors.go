package api

// Error mapping is done inline in handlers via the helpers below.
// Lookup failures map through the types sentinels to 404.
// Malformed bodies and closed-session writes map to 400/409.
// Database errors map to 500 with a generic message; detail goes to logs.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fieldworks/formlogic/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeLookupError maps storage lookup failures onto HTTP statuses.
func (s *RuntimeService) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrFormNotFound):
		writeError(w, http.StatusNotFound, types.ErrFormNotFound.Error())
	case errors.Is(err, types.ErrSubmissionNotFound):
		writeError(w, http.StatusNotFound, types.ErrSubmissionNotFound.Error())
	default:
		s.logger.Error("storage lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
	}
}
