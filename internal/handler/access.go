package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dangerclosesec/dealroom/internal/service"
	"github.com/google/uuid"
)

// AccessHandler manages the grant lists of opportunities and files.
type AccessHandler struct {
	access *service.AccessService
}

func NewAccessHandler(access *service.AccessService) *AccessHandler {
	return &AccessHandler{access: access}
}

type grantRequest struct {
	UserIDs json.RawMessage `json:"userIds"`
}

// readGrantRequest decodes and validates a grant list before anything is
// touched.
func readGrantRequest(w http.ResponseWriter, r *http.Request) ([]uuid.UUID, bool) {
	var req grantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return nil, false
	}

	ids, err := service.ParseUserIDs(req.UserIDs)
	if err != nil {
		if errors.Is(err, service.ErrUserIDsNotArray) {
			respondWithError(w, http.StatusBadRequest, "userIds must be an array")
		} else {
			respondWithError(w, http.StatusBadRequest, err.Error())
		}
		return nil, false
	}
	return ids, true
}

func idList(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (h *AccessHandler) GetOpportunityAccess(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity id")
		return
	}

	ids, err := h.access.OpportunityGrants(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, "Error listing opportunity access", err)
		return
	}
	respondWithJSON(w, http.StatusOK, idList(ids))
}

func (h *AccessHandler) PutOpportunityAccess(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity id")
		return
	}

	userIDs, ok := readGrantRequest(w, r)
	if !ok {
		return
	}

	if err := h.access.ReplaceOpportunityGrants(r.Context(), callerFrom(r), id, userIDs); err != nil {
		respondWithDomainError(w, r, "Error replacing opportunity access", err)
		return
	}
	respondWithJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *AccessHandler) GetFileAccess(w http.ResponseWriter, r *http.Request) {
	oppID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity id")
		return
	}
	fileID, ok := pathID(r, "fileId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid file id")
		return
	}

	ids, err := h.access.FileGrants(r.Context(), oppID, fileID)
	if err != nil {
		respondWithDomainError(w, r, "Error listing file access", err)
		return
	}
	respondWithJSON(w, http.StatusOK, idList(ids))
}

func (h *AccessHandler) PutFileAccess(w http.ResponseWriter, r *http.Request) {
	oppID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity id")
		return
	}
	fileID, ok := pathID(r, "fileId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid file id")
		return
	}

	userIDs, ok := readGrantRequest(w, r)
	if !ok {
		return
	}

	if err := h.access.ReplaceFileGrants(r.Context(), callerFrom(r), oppID, fileID, userIDs); err != nil {
		respondWithDomainError(w, r, "Error replacing file access", err)
		return
	}
	respondWithJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
