package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dangerclosesec/dealroom/internal/auth"
	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/middleware"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	res *service.Resolution
	err error
}

func (s stubResolver) Resolve(_ context.Context, creds auth.Credentials) (*service.Resolution, error) {
	if creds.Empty() {
		return nil, domain.ErrUnauthorized
	}
	return s.res, s.err
}

func sessionRequest(method, target, marker string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: "access"})
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookie, Value: "refresh"})
	if marker != "" {
		req.AddCookie(&http.Cookie{Name: auth.TypeCookie, Value: marker})
	}
	return req
}

func captureCaller(got *policy.Caller) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := middleware.CallerFromContext(r.Context())
		if ok {
			*got = c
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireRole(t *testing.T) {
	admin := policy.Caller{UserID: uuid.New(), Email: "admin@example.com", Role: policy.RoleAdmin}
	investor := policy.Caller{UserID: uuid.New(), Email: "investor@example.com", Role: policy.RoleInvestor}

	tests := []struct {
		name       string
		role       policy.Role
		resolver   stubResolver
		req        *http.Request
		wantStatus int
		wantRole   policy.Role
	}{
		{
			name:       "no cookies",
			role:       policy.RoleAdmin,
			req:        httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired session",
			role:       policy.RoleInvestor,
			resolver:   stubResolver{err: domain.ErrUnauthorized},
			req:        sessionRequest(http.MethodGet, "/api/user/opportunities", auth.MarkerUser),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "admin with user marker on admin route",
			role:       policy.RoleAdmin,
			resolver:   stubResolver{res: &service.Resolution{Caller: admin}},
			req:        sessionRequest(http.MethodGet, "/api/admin/dashboard", auth.MarkerUser),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin marker without admin profile",
			role:       policy.RoleAdmin,
			resolver:   stubResolver{res: &service.Resolution{Caller: investor}},
			req:        sessionRequest(http.MethodGet, "/api/admin/dashboard", auth.MarkerAdmin),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin",
			role:       policy.RoleAdmin,
			resolver:   stubResolver{res: &service.Resolution{Caller: admin}},
			req:        sessionRequest(http.MethodGet, "/api/admin/dashboard", auth.MarkerAdmin),
			wantStatus: http.StatusNoContent,
			wantRole:   policy.RoleAdmin,
		},
		{
			name:       "investor route with admin marker",
			role:       policy.RoleInvestor,
			resolver:   stubResolver{res: &service.Resolution{Caller: investor}},
			req:        sessionRequest(http.MethodGet, "/api/user/opportunities", auth.MarkerAdmin),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin identity on the investor portal reads as investor",
			role:       policy.RoleInvestor,
			resolver:   stubResolver{res: &service.Resolution{Caller: admin}},
			req:        sessionRequest(http.MethodGet, "/api/user/opportunities", auth.MarkerUser),
			wantStatus: http.StatusNoContent,
			wantRole:   policy.RoleInvestor,
		},
		{
			name:       "resolver failure",
			role:       policy.RoleInvestor,
			resolver:   stubResolver{err: errors.New("redis down")},
			req:        sessionRequest(http.MethodGet, "/api/user/opportunities", auth.MarkerUser),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authn := middleware.NewAuthenticator(tt.resolver, auth.CookieWriter{})

			var got policy.Caller
			rec := httptest.NewRecorder()
			authn.RequireRole(tt.role)(captureCaller(&got)).ServeHTTP(rec, tt.req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantRole, got.Role)
		})
	}
}

func TestRequireRoleRewritesRefreshedTokens(t *testing.T) {
	caller := policy.Caller{UserID: uuid.New(), Role: policy.RoleInvestor}
	authn := middleware.NewAuthenticator(stubResolver{res: &service.Resolution{
		Caller:    caller,
		Refreshed: &auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresIn: time.Hour},
	}}, auth.CookieWriter{})

	var got policy.Caller
	rec := httptest.NewRecorder()
	authn.RequireRole(policy.RoleInvestor)(captureCaller(&got)).
		ServeHTTP(rec, sessionRequest(http.MethodGet, "/api/user/opportunities", auth.MarkerUser))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, caller.UserID, got.UserID)

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, auth.AccessCookie)
	require.Contains(t, cookies, auth.RefreshCookie)
	assert.NotContains(t, cookies, auth.TypeCookie)
	assert.Equal(t, "new-access", cookies[auth.AccessCookie].Value)
	assert.Equal(t, 3600, cookies[auth.AccessCookie].MaxAge)
	assert.Equal(t, "new-refresh", cookies[auth.RefreshCookie].Value)
}

func TestRequireSession(t *testing.T) {
	pending := policy.Caller{UserID: uuid.New(), Email: "admin@example.com", Role: policy.RoleInvestor}
	authn := middleware.NewAuthenticator(stubResolver{res: &service.Resolution{Caller: pending}}, auth.CookieWriter{})

	t.Run("admin marker without profile passes", func(t *testing.T) {
		var got policy.Caller
		rec := httptest.NewRecorder()
		authn.RequireSession(auth.MarkerAdmin)(captureCaller(&got)).
			ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/profile/admin/create", auth.MarkerAdmin))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, pending.Email, got.Email)
	})

	t.Run("wrong marker", func(t *testing.T) {
		var got policy.Caller
		rec := httptest.NewRecorder()
		authn.RequireSession(auth.MarkerAdmin)(captureCaller(&got)).
			ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/profile/admin/create", auth.MarkerUser))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestPageGuard(t *testing.T) {
	admin := policy.Caller{UserID: uuid.New(), Role: policy.RoleAdmin}
	investor := policy.Caller{UserID: uuid.New(), Role: policy.RoleInvestor}

	tests := []struct {
		name         string
		resolver     stubResolver
		req          *http.Request
		wantLocation string
	}{
		{
			name:         "dashboard without session",
			req:          httptest.NewRequest(http.MethodGet, "/dashboard/opportunities", nil),
			wantLocation: "/auth/signin",
		},
		{
			name:         "complete profile without session",
			req:          httptest.NewRequest(http.MethodGet, "/auth/complete-profile", nil),
			wantLocation: "/auth/signin",
		},
		{
			name:         "dashboard with admin marker",
			resolver:     stubResolver{res: &service.Resolution{Caller: admin}},
			req:          sessionRequest(http.MethodGet, "/dashboard", auth.MarkerAdmin),
			wantLocation: "/auth/signin?error=unauthorized",
		},
		{
			name:     "dashboard with investor session",
			resolver: stubResolver{res: &service.Resolution{Caller: investor}},
			req:      sessionRequest(http.MethodGet, "/dashboard", auth.MarkerUser),
		},
		{
			name:         "admin page without session",
			req:          httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil),
			wantLocation: "/admin/auth/signin",
		},
		{
			name:         "admin page with investor session",
			resolver:     stubResolver{res: &service.Resolution{Caller: investor}},
			req:          sessionRequest(http.MethodGet, "/admin/dashboard", auth.MarkerUser),
			wantLocation: "/admin/auth/signin?error=unauthorized",
		},
		{
			name:         "admin marker without admin profile",
			resolver:     stubResolver{res: &service.Resolution{Caller: investor}},
			req:          sessionRequest(http.MethodGet, "/admin", auth.MarkerAdmin),
			wantLocation: "/admin/auth/signin?error=unauthorized",
		},
		{
			name:     "admin page with admin session",
			resolver: stubResolver{res: &service.Resolution{Caller: admin}},
			req:      sessionRequest(http.MethodGet, "/admin/opportunities/new", auth.MarkerAdmin),
		},
		{
			name: "admin auth pages are open",
			req:  httptest.NewRequest(http.MethodGet, "/admin/auth/signin", nil),
		},
		{
			name: "public pages are open",
			req:  httptest.NewRequest(http.MethodGet, "/", nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authn := middleware.NewAuthenticator(tt.resolver, auth.CookieWriter{})
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			authn.PageGuard(next).ServeHTTP(rec, tt.req)

			if tt.wantLocation == "" {
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
		})
	}
}
