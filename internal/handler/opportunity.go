package handler

import (
	"net/http"

	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/serializer"
	"github.com/dangerclosesec/dealroom/internal/service"
)

// OpportunityHandler serves the admin, investor and public opportunity routes.
type OpportunityHandler struct {
	opportunities *service.OpportunityService
}

func NewOpportunityHandler(opportunities *service.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{opportunities: opportunities}
}

func (h *OpportunityHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	list, err := h.opportunities.ListAll(r.Context())
	if err != nil {
		respondWithDomainError(w, r, "Error listing opportunities", err)
		return
	}
	respondWithProjection(w, http.StatusOK, list, callerFrom(r))
}

func (h *OpportunityHandler) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var input service.OpportunityInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	caller := callerFrom(r)
	o, err := h.opportunities.Create(r.Context(), caller, input)
	if err != nil {
		respondWithDomainError(w, r, "Error creating opportunity", err)
		return
	}
	respondWithProjection(w, http.StatusCreated, o, caller)
}

func (h *OpportunityHandler) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity id")
		return
	}

	o, err := h.opportunities.Get(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, "Error fetching opportunity", err)
		return
	}
	respondWithProjection(w, http.StatusOK, o, callerFrom(r))
}

func (h *OpportunityHandler) UpdateOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity id")
		return
	}

	var input service.OpportunityInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	o, err := h.opportunities.Update(r.Context(), id, input)
	if err != nil {
		respondWithDomainError(w, r, "Error updating opportunity", err)
		return
	}
	respondWithProjection(w, http.StatusOK, o, callerFrom(r))
}

type visibilityRequest struct {
	Visibility model.OpportunityVisibility `json:"visibility"`
	Version    *int                        `json:"version"`
}

// PatchOpportunity changes the visibility only.
func (h *OpportunityHandler) PatchOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity id")
		return
	}

	var req visibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.opportunities.SetVisibility(r.Context(), callerFrom(r), id, req.Visibility, req.Version); err != nil {
		respondWithDomainError(w, r, "Error changing opportunity visibility", err)
		return
	}
	respondWithJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *OpportunityHandler) DeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity id")
		return
	}

	if err := h.opportunities.Delete(r.Context(), callerFrom(r), id); err != nil {
		respondWithDomainError(w, r, "Error deleting opportunity", err)
		return
	}
	respondWithJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// AddImage inserts one image row into an existing section.
func (h *OpportunityHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	var input service.AddImageInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if blankField(input.SectionID, input.ImageURL) {
		respondWithError(w, http.StatusBadRequest, "Missing required fields: section_id, image_url.")
		return
	}

	img, err := h.opportunities.AddImage(r.Context(), input)
	if err != nil {
		respondWithDomainError(w, r, "Error adding image", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, img)
}

// PreviewOpportunities lists what an investor without grants would see.
func (h *OpportunityHandler) PreviewOpportunities(w http.ResponseWriter, r *http.Request) {
	list, err := h.opportunities.ListVisible(r.Context(), policy.Preview(), 0)
	if err != nil {
		respondWithDomainError(w, r, "Error listing preview opportunities", err)
		return
	}
	respondWithJSON(w, http.StatusOK, serializer.Project(list, serializer.ScopeUser))
}

func (h *OpportunityHandler) PreviewOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusNotFound, "Opportunity not found")
		return
	}

	o, err := h.opportunities.GetVisible(r.Context(), policy.Preview(), id)
	if err != nil {
		respondWithDomainError(w, r, "Error fetching preview opportunity", err)
		return
	}
	respondWithJSON(w, http.StatusOK, serializer.Project(o, serializer.ScopeUser))
}

// UserOpportunities lists the opportunities visible to the investor.
func (h *OpportunityHandler) UserOpportunities(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	list, err := h.opportunities.ListVisible(r.Context(), policy.ViewerFor(caller), 0)
	if err != nil {
		respondWithDomainError(w, r, "Error listing investor opportunities", err)
		return
	}
	respondWithProjection(w, http.StatusOK, list, caller)
}

func (h *OpportunityHandler) UserOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusNotFound, "Opportunity not found")
		return
	}

	caller := callerFrom(r)
	o, err := h.opportunities.GetVisible(r.Context(), policy.ViewerFor(caller), id)
	if err != nil {
		respondWithDomainError(w, r, "Error fetching investor opportunity", err)
		return
	}
	respondWithProjection(w, http.StatusOK, o, caller)
}

// FeaturedOpportunities is the anonymous landing page listing.
func (h *OpportunityHandler) FeaturedOpportunities(w http.ResponseWriter, r *http.Request) {
	list, err := h.opportunities.Featured(r.Context())
	if err != nil {
		respondWithDomainError(w, r, "Error listing featured opportunities", err)
		return
	}
	respondWithJSON(w, http.StatusOK, serializer.Project(list))
}
