package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dangerclosesec/dealroom/internal/auth"
	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/service"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func underPath(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// PageGuard redirects browser navigation to protected pages back to the
// matching sign-in page when the session does not qualify.
func (a *Authenticator) PageGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case underPath(path, "/admin/auth"):
		case underPath(path, "/admin"):
			signin := service.PortalAdmin.SigninPage()
			caller, err := a.authenticate(w, r, auth.MarkerAdmin)
			switch {
			case err == nil && caller.IsAdmin():
			case err == nil, errors.Is(err, domain.ErrForbidden):
				http.Redirect(w, r, signin+"?error=unauthorized", http.StatusFound)
				return
			default:
				a.logPageError(r, err)
				http.Redirect(w, r, signin, http.StatusFound)
				return
			}
		case underPath(path, "/dashboard"), path == "/auth/complete-profile":
			if _, err := a.authenticate(w, r, auth.MarkerUser); err != nil {
				signin := service.PortalInvestor.SigninPage()
				if errors.Is(err, domain.ErrForbidden) {
					signin += "?error=unauthorized"
				}
				a.logPageError(r, err)
				http.Redirect(w, r, signin, http.StatusFound)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) logPageError(r *http.Request, err error) {
	if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrForbidden) {
		return
	}
	slog.ErrorContext(r.Context(), "Page session check error", "error", err, "requestID", chimw.GetReqID(r.Context()))
}
