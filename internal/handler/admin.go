package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dangerclosesec/dealroom/internal/repository"
	"github.com/dangerclosesec/dealroom/internal/service"
	"github.com/google/uuid"
)

// AdminHandler serves the admin overview routes: users, dashboard and the
// access audit trail.
type AdminHandler struct {
	profiles  *service.ProfileService
	dashboard *service.DashboardService
	auditLogs *service.AuditLogService
}

func NewAdminHandler(profiles *service.ProfileService, dashboard *service.DashboardService, auditLogs *service.AuditLogService) *AdminHandler {
	return &AdminHandler{
		profiles:  profiles,
		dashboard: dashboard,
		auditLogs: auditLogs,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.profiles.ListUsers(r.Context())
	if err != nil {
		logError(r, "Error listing users", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithProjection(w, http.StatusOK, users, callerFrom(r))
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context())
	if err != nil {
		logError(r, "Error building dashboard", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithProjection(w, http.StatusOK, summary, callerFrom(r))
}

// AuditLogs lists access audit entries filtered by the query string.
// Unparseable filters are ignored.
func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := repository.AuditQueryParams{
		ActionType: query.Get("action_type"),
		EntityType: query.Get("entity_type"),
		EntityID:   query.Get("entity_id"),
	}

	if actor, err := uuid.Parse(query.Get("actor_id")); err == nil {
		params.ActorID = &actor
	}

	if startTimeStr := query.Get("start_time"); startTimeStr != "" {
		if startTime, err := time.Parse(time.RFC3339, startTimeStr); err == nil {
			params.StartTime = &startTime
		}
	}

	if endTimeStr := query.Get("end_time"); endTimeStr != "" {
		if endTime, err := time.Parse(time.RFC3339, endTimeStr); err == nil {
			params.EndTime = &endTime
		}
	}

	// Pagination
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		params.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil {
		params.Offset = offset
	}

	page, err := h.auditLogs.Query(r.Context(), params)
	if err != nil {
		logError(r, "Error querying audit logs", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve audit logs")
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}
