package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dangerclosesec/dealroom/internal/audit"
	"github.com/dangerclosesec/dealroom/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry)

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/api/user/opportunities/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", metrics.Handler())

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/opportunities/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	count := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/user/opportunities/{id}", "404"))
	assert.Equal(t, float64(3), count)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "dealroom_http_requests_total"))
}

func TestAuditContext(t *testing.T) {
	var info audit.RequestInfo
	h := chimw.RequestID(middleware.AuditContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info = audit.RequestInfoFrom(r.Context())
	})))

	req := httptest.NewRequest(http.MethodPut, "/api/admin/opportunities/x/access", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("User-Agent", "dealroom-test")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEmpty(t, info.RequestID)
	assert.Equal(t, "203.0.113.7", info.ClientIP)
	assert.Equal(t, "dealroom-test", info.UserAgent)
}
