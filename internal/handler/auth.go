// internal/handler/auth.go
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dangerclosesec/dealroom/internal/auth"
	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/service"
	chmw "github.com/go-chi/chi/v5/middleware"
)

type AuthHandler struct {
	identity *service.IdentityService
	cookies  auth.CookieWriter
}

func NewAuthHandler(identity *service.IdentityService, cookies auth.CookieWriter) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		cookies:  cookies,
	}
}

func (h *AuthHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, service.PortalInvestor)
}

func (h *AuthHandler) AdminSignupHandler(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, service.PortalAdmin)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request, portal service.Portal) {
	// Parses the request body
	var input service.CredentialsInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// Calls the service layer to handle the signup
	output, err := h.identity.Signup(r.Context(), portal, input)
	if err != nil {
		slog.ErrorContext(r.Context(), "User registration error", "error", err, "portal", portal, "requestID", chmw.GetReqID(r.Context()))
		switch {
		case errors.Is(err, domain.ErrEmailNotAllowed):
			respondWithError(w, http.StatusForbidden, "Email not authorized for admin access")
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			respondWithError(w, http.StatusConflict, "Email already exists")
		case errors.Is(err, domain.ErrPasswordTooWeak):
			respondWithError(w, http.StatusBadRequest, "Password does not meet requirements")
		case errors.Is(err, domain.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{Success: true, RedirectTo: output.RedirectTo})
}

func (h *AuthHandler) SigninHandler(w http.ResponseWriter, r *http.Request) {
	h.signin(w, r, service.PortalInvestor)
}

func (h *AuthHandler) AdminSigninHandler(w http.ResponseWriter, r *http.Request) {
	h.signin(w, r, service.PortalAdmin)
}

func (h *AuthHandler) signin(w http.ResponseWriter, r *http.Request, portal service.Portal) {
	var input service.CredentialsInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	session, err := h.identity.Signin(r.Context(), portal, input)
	if err != nil {
		slog.ErrorContext(r.Context(), "User login error", "error", err, "portal", portal, "requestID", chmw.GetReqID(r.Context()))
		switch {
		case errors.Is(err, domain.ErrEmailNotAllowed):
			respondWithError(w, http.StatusForbidden, "Email not authorized for admin access")
		case errors.Is(err, domain.ErrInvalidCredentials):
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, domain.ErrEmailNotConfirmed):
			respondWithError(w, http.StatusUnauthorized, "Email not confirmed")
		case errors.Is(err, domain.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.cookies.SetSession(w, session.Tokens, string(portal))
	respondWithJSON(w, http.StatusOK, SuccessResponse{Success: true, RedirectTo: session.RedirectTo})
}

func (h *AuthHandler) SignoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.Signout(r.Context(), auth.CredentialsFromRequest(r)); err != nil {
		slog.WarnContext(r.Context(), "Session revocation failed", "error", err, "requestID", chmw.GetReqID(r.Context()))
	}

	h.cookies.Clear(w)
	respondWithJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *AuthHandler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	h.callback(w, r, service.PortalInvestor)
}

func (h *AuthHandler) AdminCallbackHandler(w http.ResponseWriter, r *http.Request) {
	h.callback(w, r, service.PortalAdmin)
}

// callback consumes an emailed verification code and signs the browser in.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request, portal service.Portal) {
	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		http.Redirect(w, r, portal.SigninPage()+"?error=code", http.StatusFound)
		return
	}

	session, err := h.identity.Callback(r.Context(), portal, code, query.Get("type"))
	if err != nil {
		slog.ErrorContext(r.Context(), "User verification error", "error", err, "portal", portal, "requestID", chmw.GetReqID(r.Context()))
		reason := "auth"
		if errors.Is(err, domain.ErrEmailNotAllowed) {
			reason = "unauthorized"
		}
		http.Redirect(w, r, portal.SigninPage()+"?error="+reason, http.StatusFound)
		return
	}

	h.cookies.SetSession(w, session.Tokens, string(portal))
	http.Redirect(w, r, session.RedirectTo, http.StatusFound)
}
