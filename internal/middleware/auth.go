// internal/middleware/auth.go
package middleware

// Usage:
//
//	authn := middleware.NewAuthenticator(identityService, cookies)
//
//	r.Route("/api/admin", func(r chi.Router) {
//		r.Use(authn.RequireRole(policy.RoleAdmin))
//		r.Get("/dashboard", adminHandler.Dashboard)
//	})
//
// Handlers read the caller with CallerFromContext.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dangerclosesec/dealroom/internal/auth"
	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/service"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type callerContextKey struct{}

// WithCaller returns a copy of ctx carrying the resolved caller.
func WithCaller(ctx context.Context, c policy.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey{}, c)
}

// CallerFromContext returns the caller stored by RequireRole or RequireSession.
func CallerFromContext(ctx context.Context) (policy.Caller, bool) {
	c, ok := ctx.Value(callerContextKey{}).(policy.Caller)
	return c, ok
}

// SessionResolver turns session cookies into a caller.
type SessionResolver interface {
	Resolve(ctx context.Context, creds auth.Credentials) (*service.Resolution, error)
}

// Authenticator guards routes with the session cookies.
type Authenticator struct {
	sessions SessionResolver
	cookies  auth.CookieWriter
}

func NewAuthenticator(sessions SessionResolver, cookies auth.CookieWriter) *Authenticator {
	return &Authenticator{sessions: sessions, cookies: cookies}
}

// markerFor is the token-type a route of the given role expects.
func markerFor(role policy.Role) string {
	if role == policy.RoleAdmin {
		return auth.MarkerAdmin
	}
	return auth.MarkerUser
}

// authenticate resolves the session and checks the portal marker. A refreshed
// token pair is written back before the handler runs.
func (a *Authenticator) authenticate(w http.ResponseWriter, r *http.Request, marker string) (policy.Caller, error) {
	creds := auth.CredentialsFromRequest(r)

	res, err := a.sessions.Resolve(r.Context(), creds)
	if err != nil {
		return policy.Caller{}, err
	}

	if res.Refreshed != nil {
		a.cookies.SetTokens(w, res.Refreshed)
	}

	if creds.Marker != marker {
		return policy.Caller{}, domain.ErrForbidden
	}
	return res.Caller, nil
}

// RequireRole admits requests whose session belongs to the portal of role. Admin
// routes additionally require an admin profile. On investor routes the caller
// acts as an investor whatever profiles it holds.
func (a *Authenticator) RequireRole(role policy.Role) func(http.Handler) http.Handler {
	marker := markerFor(role)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := a.authenticate(w, r, marker)
			if err != nil {
				respondWithAuthError(w, r, err)
				return
			}

			switch role {
			case policy.RoleAdmin:
				if !caller.IsAdmin() {
					respondWithError(w, http.StatusForbidden, "Unauthorized - Admin access required")
					return
				}
			default:
				caller.Role = policy.RoleInvestor
			}

			ctx := withAuditRequest(WithCaller(r.Context(), caller), r)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession admits any live session of the given portal. It serves the
// routes a new admin needs before the admin profile exists.
func (a *Authenticator) RequireSession(marker string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := a.authenticate(w, r, marker)
			if err != nil {
				respondWithAuthError(w, r, err)
				return
			}

			ctx := withAuditRequest(WithCaller(r.Context(), caller), r)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondWithAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "Forbidden")
	default:
		slog.ErrorContext(r.Context(), "Session resolution error", "error", err, "requestID", chimw.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// respondWithError sends a JSON error response
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
