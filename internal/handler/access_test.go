package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/handler"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func accessRouter(f *fixture, caller policy.Caller) http.Handler {
	h := handler.NewAccessHandler(f.accessSvc)
	r := chi.NewRouter()
	r.Use(as(caller))
	r.Get("/api/admin/opportunities/{id}/access", h.GetOpportunityAccess)
	r.Put("/api/admin/opportunities/{id}/access", h.PutOpportunityAccess)
	r.Get("/api/admin/opportunities/{id}/files/{fileId}/access", h.GetFileAccess)
	r.Put("/api/admin/opportunities/{id}/files/{fileId}/access", h.PutFileAccess)
	return r
}

func TestPutOpportunityAccessValidation(t *testing.T) {
	oppID := uuid.New()
	target := "/api/admin/opportunities/" + oppID.String() + "/access"

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "missing list", body: `{}`, wantMsg: "userIds must be an array"},
		{name: "string instead of list", body: `{"userIds":"abc"}`, wantMsg: "userIds must be an array"},
		{name: "null list", body: `{"userIds":null}`, wantMsg: "userIds must be an array"},
		{name: "malformed uuid", body: `{"userIds":["not-a-uuid"]}`, wantMsg: "invalid user id"},
		{name: "non string entry", body: `{"userIds":[42]}`, wantMsg: "userIds must contain strings"},
		{name: "broken json", body: `{"userIds":`, wantMsg: "Invalid request payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := do(t, accessRouter(f, newAdmin()), http.MethodPut, target, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorMessage(t, rec), tt.wantMsg)
		})
	}
}

func TestPutOpportunityAccess(t *testing.T) {
	t.Run("replaces the grant set", func(t *testing.T) {
		f := newFixture(t)
		oppID, userA, userB := uuid.New(), uuid.New(), uuid.New()

		f.opportunities.EXPECT().FindByID(gomock.Any(), oppID).Return(&model.Opportunity{ID: oppID}, nil)
		f.access.EXPECT().ReplaceOpportunityGrants(gomock.Any(), oppID, []uuid.UUID{userA, userB}).Return(nil)
		f.recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

		body := fmt.Sprintf(`{"userIds":[%q,%q,%q]}`, userA, userB, userA)
		rec := do(t, accessRouter(f, newAdmin()), http.MethodPut, "/api/admin/opportunities/"+oppID.String()+"/access", body)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	})

	t.Run("unknown opportunity is 404", func(t *testing.T) {
		f := newFixture(t)
		oppID := uuid.New()
		f.opportunities.EXPECT().FindByID(gomock.Any(), oppID).Return(nil, domain.ErrOpportunityNotFound)

		rec := do(t, accessRouter(f, newAdmin()), http.MethodPut, "/api/admin/opportunities/"+oppID.String()+"/access", `{"userIds":[]}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown user id is 400", func(t *testing.T) {
		f := newFixture(t)
		oppID := uuid.New()
		f.opportunities.EXPECT().FindByID(gomock.Any(), oppID).Return(&model.Opportunity{ID: oppID}, nil)
		f.access.EXPECT().
			ReplaceOpportunityGrants(gomock.Any(), oppID, gomock.Any()).
			Return(fmt.Errorf("%w: foreign key", domain.ErrUserNotFound))

		body := fmt.Sprintf(`{"userIds":[%q]}`, uuid.New())
		rec := do(t, accessRouter(f, newAdmin()), http.MethodPut, "/api/admin/opportunities/"+oppID.String()+"/access", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Unknown user id", errorMessage(t, rec))
	})
}

func TestGetOpportunityAccess(t *testing.T) {
	f := newFixture(t)
	oppID, user := uuid.New(), uuid.New()
	f.opportunities.EXPECT().FindByID(gomock.Any(), oppID).Return(&model.Opportunity{ID: oppID}, nil)
	f.access.EXPECT().ListOpportunityGrants(gomock.Any(), oppID).Return([]uuid.UUID{user}, nil)

	rec := do(t, accessRouter(f, newAdmin()), http.MethodGet, "/api/admin/opportunities/"+oppID.String()+"/access", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var ids []string
	decodeBody(t, rec, &ids)
	assert.Equal(t, []string{user.String()}, ids)
}

func TestFileAccess(t *testing.T) {
	t.Run("file of another opportunity is 400", func(t *testing.T) {
		f := newFixture(t)
		oppID, otherOpp, fileID := uuid.New(), uuid.New(), uuid.New()
		f.files.EXPECT().FindByID(gomock.Any(), fileID).Return(&model.File{ID: fileID, OpportunityID: &otherOpp}, nil)

		target := fmt.Sprintf("/api/admin/opportunities/%s/files/%s/access", oppID, fileID)
		rec := do(t, accessRouter(f, newAdmin()), http.MethodPut, target, `{"userIds":[]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "File does not belong to this opportunity", errorMessage(t, rec))
	})

	t.Run("missing file is 404", func(t *testing.T) {
		f := newFixture(t)
		oppID, fileID := uuid.New(), uuid.New()
		f.files.EXPECT().FindByID(gomock.Any(), fileID).Return(nil, domain.ErrFileNotFound)

		target := fmt.Sprintf("/api/admin/opportunities/%s/files/%s/access", oppID, fileID)
		rec := do(t, accessRouter(f, newAdmin()), http.MethodGet, target, nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("replace then list", func(t *testing.T) {
		f := newFixture(t)
		oppID, fileID, user := uuid.New(), uuid.New(), uuid.New()
		file := &model.File{ID: fileID, OpportunityID: &oppID, Visibility: model.FileVisibilitySpecificUsers}

		var stored []uuid.UUID
		f.files.EXPECT().FindByID(gomock.Any(), fileID).Return(file, nil).Times(2)
		f.access.EXPECT().
			ReplaceFileGrants(gomock.Any(), fileID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, ids []uuid.UUID) error {
				stored = ids
				return nil
			})
		f.access.EXPECT().
			ListFileGrants(gomock.Any(), fileID).
			DoAndReturn(func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
				return stored, nil
			})
		f.recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

		router := accessRouter(f, newAdmin())
		target := fmt.Sprintf("/api/admin/opportunities/%s/files/%s/access", oppID, fileID)

		rec := do(t, router, http.MethodPut, target, fmt.Sprintf(`{"userIds":[%q]}`, user))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = do(t, router, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var ids []string
		decodeBody(t, rec, &ids)
		assert.Equal(t, []string{user.String()}, ids)
	})
}
