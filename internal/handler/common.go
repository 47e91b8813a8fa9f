package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/middleware"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/serializer"
	"github.com/go-chi/chi/v5"
	chmw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

// respondWithError sends an error response with a message
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	// Sets content type header
	w.Header().Set("Content-Type", "application/json")

	// Sets the HTTP status code
	w.WriteHeader(code)

	// Encodes the response
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// If encoding fails, logs the error and sends a plain text response
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// respondWithProjection sends payload with the fields the caller's scopes may
// not see removed.
func respondWithProjection(w http.ResponseWriter, code int, payload interface{}, caller policy.Caller) {
	respondWithJSON(w, code, serializer.Project(payload, scopesFor(caller)...))
}

func scopesFor(caller policy.Caller) []string {
	if caller.IsAdmin() {
		return []string{serializer.ScopeAdmin}
	}
	if caller.UserID != uuid.Nil {
		return []string{serializer.ScopeUser}
	}
	return nil
}

func callerFrom(r *http.Request) policy.Caller {
	caller, _ := middleware.CallerFromContext(r.Context())
	return caller
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// pathID parses a uuid route parameter.
func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func blankField(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func logError(r *http.Request, msg string, err error) {
	slog.ErrorContext(r.Context(), msg, "error", err, "requestID", chmw.GetReqID(r.Context()))
}

// respondWithDomainError maps the errors shared by the opportunity, file and
// access endpoints.
func respondWithDomainError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logError(r, msg, err)

	switch {
	case errors.Is(err, domain.ErrOpportunityNotFound):
		respondWithError(w, http.StatusNotFound, "Opportunity not found")
	case errors.Is(err, domain.ErrFileNotFound):
		respondWithError(w, http.StatusNotFound, "File not found")
	case errors.Is(err, domain.ErrSectionNotFound):
		respondWithError(w, http.StatusNotFound, "Section not found")
	case errors.Is(err, domain.ErrUserNotFound):
		respondWithError(w, http.StatusBadRequest, "Unknown user id")
	case errors.Is(err, domain.ErrFileNotInOpportunity):
		respondWithError(w, http.StatusBadRequest, "File does not belong to this opportunity")
	case errors.Is(err, domain.ErrStaleVersion):
		respondWithError(w, http.StatusConflict, "Opportunity was modified by another session")
	case errors.Is(err, domain.ErrInvalidVisibility),
		errors.Is(err, domain.ErrInvalidSectionType),
		errors.Is(err, domain.ErrDuplicateSectionType),
		errors.Is(err, domain.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
