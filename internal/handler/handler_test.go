package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dangerclosesec/dealroom/internal/auth"
	"github.com/dangerclosesec/dealroom/internal/middleware"
	"github.com/dangerclosesec/dealroom/internal/mocks"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fixture wires the real services over mocked repositories.
type fixture struct {
	opportunities *mocks.MockOpportunityRepositoryIface
	access        *mocks.MockAccessRepositoryIface
	files         *mocks.MockFileRepositoryIface
	profiles      *mocks.MockProfileRepositoryIface
	auditLogs     *mocks.MockAuditLogRepositoryIface
	store         *mocks.MockObjectStore
	processor     *mocks.MockProcessor
	recorder      *mocks.MockRecorder

	opportunitySvc *service.OpportunityService
	accessSvc      *service.AccessService
	fileSvc        *service.FileService
	imageSvc       *service.ImageService
	profileSvc     *service.ProfileService
	dashboardSvc   *service.DashboardService
	auditLogSvc    *service.AuditLogService
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		opportunities: mocks.NewMockOpportunityRepositoryIface(ctrl),
		access:        mocks.NewMockAccessRepositoryIface(ctrl),
		files:         mocks.NewMockFileRepositoryIface(ctrl),
		profiles:      mocks.NewMockProfileRepositoryIface(ctrl),
		auditLogs:     mocks.NewMockAuditLogRepositoryIface(ctrl),
		store:         mocks.NewMockObjectStore(ctrl),
		processor:     mocks.NewMockProcessor(ctrl),
		recorder:      mocks.NewMockRecorder(ctrl),
	}
	f.opportunitySvc = service.NewOpportunityService(f.opportunities, f.access, f.files, f.store, f.recorder)
	f.accessSvc = service.NewAccessService(f.access, f.opportunities, f.files, f.recorder)
	f.fileSvc = service.NewFileService(f.files, f.access, f.opportunitySvc, f.store, f.recorder)
	f.imageSvc = service.NewImageService(f.processor, f.store)
	f.profileSvc = service.NewProfileService(f.profiles, auth.ParseAdminAllowList("Admin@Example.com"))
	f.dashboardSvc = service.NewDashboardService(f.opportunities, f.profiles)
	f.auditLogSvc = service.NewAuditLogService(f.auditLogs)
	return f
}

// as injects the caller the auth middleware would have resolved.
func as(caller policy.Caller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithCaller(r.Context(), caller)))
		})
	}
}

func newAdmin() policy.Caller {
	return policy.Caller{UserID: uuid.New(), Email: "admin@example.com", Role: policy.RoleAdmin}
}

func newInvestor() policy.Caller {
	return policy.Caller{UserID: uuid.New(), Email: "investor@example.com", Role: policy.RoleInvestor}
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader).WithContext(context.Background())
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	return body.Error
}
