package handler

import (
	"errors"
	"net/http"

	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/service"
)

type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// CreateProfile completes the investor onboarding of the signed in user.
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var input service.CreateProfileInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if blankField(input.FirstName, input.LastName, input.DateOfBirth, input.Nationality, input.Location, input.UserType.String()) {
		respondWithError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	if _, err := h.profiles.CreateUserProfile(r.Context(), callerFrom(r), input); err != nil {
		logError(r, "Error creating user profile", err)
		switch {
		case errors.Is(err, domain.ErrUnknownUserType):
			respondWithError(w, http.StatusBadRequest, "Unknown user type")
		case errors.Is(err, domain.ErrProfileExists):
			respondWithError(w, http.StatusBadRequest, "Profile already exists for this user")
		case errors.Is(err, domain.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Success:    true,
		Message:    "Profile created successfully",
		RedirectTo: "/dashboard",
	})
}

func (h *ProfileHandler) CreateAdminProfile(w http.ResponseWriter, r *http.Request) {
	var input service.CreateAdminProfileInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if blankField(input.FirstName, input.LastName) {
		respondWithError(w, http.StatusBadRequest, "First name and last name are required")
		return
	}

	if _, err := h.profiles.CreateAdminProfile(r.Context(), callerFrom(r), input); err != nil {
		logError(r, "Error creating admin profile", err)
		switch {
		case errors.Is(err, domain.ErrEmailNotAllowed):
			respondWithError(w, http.StatusForbidden, "User not authorized for admin access")
		case errors.Is(err, domain.ErrProfileExists):
			respondWithError(w, http.StatusBadRequest, "Admin profile already exists for this user")
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Success:    true,
		Message:    "Admin profile created successfully",
		RedirectTo: "/admin/dashboard",
	})
}
