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
	"github.com/dangerclosesec/dealroom/internal/repository"
	"github.com/dangerclosesec/dealroom/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func adminOpportunityRouter(f *fixture, caller policy.Caller) http.Handler {
	opportunities := handler.NewOpportunityHandler(f.opportunitySvc)
	access := handler.NewAccessHandler(f.accessSvc)

	r := chi.NewRouter()
	r.Use(as(caller))
	r.Get("/api/admin/opportunities", opportunities.ListOpportunities)
	r.Post("/api/admin/opportunities", opportunities.CreateOpportunity)
	r.Get("/api/admin/opportunities/{id}", opportunities.GetOpportunity)
	r.Put("/api/admin/opportunities/{id}", opportunities.UpdateOpportunity)
	r.Patch("/api/admin/opportunities/{id}", opportunities.PatchOpportunity)
	r.Delete("/api/admin/opportunities/{id}", opportunities.DeleteOpportunity)
	r.Put("/api/admin/opportunities/images", opportunities.AddImage)
	r.Put("/api/admin/opportunities/{id}/access", access.PutOpportunityAccess)
	r.Get("/api/admin/preview/opportunities", opportunities.PreviewOpportunities)
	r.Get("/api/admin/preview/opportunities/{id}", opportunities.PreviewOpportunity)
	return r
}

func investorOpportunityRouter(f *fixture, caller policy.Caller) http.Handler {
	opportunities := handler.NewOpportunityHandler(f.opportunitySvc)

	r := chi.NewRouter()
	r.Get("/api/featured/opportunities", opportunities.FeaturedOpportunities)
	r.Group(func(r chi.Router) {
		r.Use(as(caller))
		r.Get("/api/user/opportunities", opportunities.UserOpportunities)
		r.Get("/api/user/opportunities/{id}", opportunities.UserOpportunity)
	})
	return r
}

func TestCreateOpportunity(t *testing.T) {
	t.Run("returns the aggregate", func(t *testing.T) {
		f := newFixture(t)
		admin := newAdmin()
		f.opportunities.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		rec := do(t, adminOpportunityRouter(f, admin), http.MethodPost, "/api/admin/opportunities", `{
			"title": "Villa A",
			"location": {"city": "Lisbon", "region": "Lisboa"},
			"sections": [{"section_type": "description", "custom_content": "Sea view",
				"images": [{"image_url": "https://img/1.jpg", "order_number": 0}]}]
		}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var body map[string]interface{}
		decodeBody(t, rec, &body)
		assert.Equal(t, "Villa A", body["title"])
		assert.Equal(t, "draft", body["visibility"])
		assert.Equal(t, admin.UserID.String(), body["admin_id"])
		require.Len(t, body["sections"], 1)
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{"title": "  "}`},
		{name: "unknown visibility", body: `{"title": "Villa A", "visibility": "public"}`},
		{name: "unknown section type", body: `{"title": "Villa A", "sections": [{"section_type": "pool"}]}`},
		{name: "duplicate section type", body: `{"title": "Villa A", "sections": [{"section_type": "brand"}, {"section_type": "brand"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := do(t, adminOpportunityRouter(f, newAdmin()), http.MethodPost, "/api/admin/opportunities", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpdateOpportunityStale(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.opportunities.EXPECT().FindByID(gomock.Any(), id).Return(&model.Opportunity{ID: id, Title: "Villa A", Version: 3}, nil)

	rec := do(t, adminOpportunityRouter(f, newAdmin()), http.MethodPut, "/api/admin/opportunities/"+id.String(),
		`{"title": "Villa A+", "version": 2}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPatchOpportunity(t *testing.T) {
	t.Run("invalid visibility", func(t *testing.T) {
		f := newFixture(t)
		rec := do(t, adminOpportunityRouter(f, newAdmin()), http.MethodPatch, "/api/admin/opportunities/"+uuid.NewString(),
			`{"visibility": "hidden"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing opportunity", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()
		f.opportunities.EXPECT().
			UpdateVisibility(gomock.Any(), id, model.VisibilityActive, nil).
			Return(domain.ErrOpportunityNotFound)

		rec := do(t, adminOpportunityRouter(f, newAdmin()), http.MethodPatch, "/api/admin/opportunities/"+id.String(),
			`{"visibility": "active"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAddImageRequiresFields(t *testing.T) {
	f := newFixture(t)
	rec := do(t, adminOpportunityRouter(f, newAdmin()), http.MethodPut, "/api/admin/opportunities/images",
		`{"section_id": "", "image_url": "https://img/1.jpg"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields: section_id, image_url.", errorMessage(t, rec))
}

func TestInvestorOpportunityProjection(t *testing.T) {
	f := newFixture(t)
	investor := newInvestor()
	viewer := policy.ViewerFor(investor)
	active := model.Opportunity{ID: uuid.New(), AdminID: uuid.New(), Title: "Villa B", Visibility: model.VisibilityActive, Version: 4}

	f.opportunities.EXPECT().
		List(gomock.Any(), viewer, repository.ListParams{WithSections: true}).
		Return([]model.Opportunity{active}, nil)

	rec := do(t, investorOpportunityRouter(f, investor), http.MethodGet, "/api/user/opportunities", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]interface{}
	decodeBody(t, rec, &body)
	require.Len(t, body, 1)
	assert.Equal(t, "Villa B", body[0]["title"])
	assert.NotContains(t, body[0], "admin_id")
	assert.NotContains(t, body[0], "version")
}

func TestDraftIsHiddenFromInvestors(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.opportunities.EXPECT().FindByID(gomock.Any(), id).Return(&model.Opportunity{ID: id, Visibility: model.VisibilityDraft}, nil)

	rec := do(t, investorOpportunityRouter(f, newInvestor()), http.MethodGet, "/api/user/opportunities/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Opportunity not found", errorMessage(t, rec))
}

// A private opportunity becomes readable once the investor is granted and
// disappears again when the grant list is emptied.
func TestVillaAGrantLifecycle(t *testing.T) {
	f := newFixture(t)
	admin, investor := newAdmin(), newInvestor()
	villa := &model.Opportunity{ID: uuid.New(), Title: "Villa A", Visibility: model.VisibilityPrivate}

	grants := map[uuid.UUID]bool{}
	f.opportunities.EXPECT().FindByID(gomock.Any(), villa.ID).Return(villa, nil).AnyTimes()
	f.access.EXPECT().
		ReplaceOpportunityGrants(gomock.Any(), villa.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, ids []uuid.UUID) error {
			grants = map[uuid.UUID]bool{}
			for _, id := range ids {
				grants[id] = true
			}
			return nil
		}).Times(2)
	f.access.EXPECT().
		HasOpportunityGrant(gomock.Any(), villa.ID, investor.UserID).
		DoAndReturn(func(_ context.Context, _, userID uuid.UUID) (bool, error) {
			return grants[userID], nil
		}).Times(3)
	f.recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	adminRouter := adminOpportunityRouter(f, admin)
	investorRouter := investorOpportunityRouter(f, investor)
	userURL := "/api/user/opportunities/" + villa.ID.String()
	accessURL := "/api/admin/opportunities/" + villa.ID.String() + "/access"

	rec := do(t, investorRouter, http.MethodGet, userURL, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, adminRouter, http.MethodPut, accessURL, fmt.Sprintf(`{"userIds":[%q]}`, investor.UserID))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, investorRouter, http.MethodGet, userURL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Equal(t, "Villa A", body["title"])

	rec = do(t, adminRouter, http.MethodPut, accessURL, `{"userIds":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, investorRouter, http.MethodGet, userURL, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFeaturedAfterActivation(t *testing.T) {
	f := newFixture(t)
	admin := newAdmin()
	id := uuid.New()
	visibility := model.VisibilityDraft

	f.opportunities.EXPECT().
		UpdateVisibility(gomock.Any(), id, model.VisibilityActive, nil).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, v model.OpportunityVisibility, _ *int) error {
			visibility = v
			return nil
		})
	f.recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
	f.opportunities.EXPECT().
		List(gomock.Any(), policy.Featured(), repository.ListParams{Limit: service.FeaturedLimit, WithSections: true}).
		DoAndReturn(func(context.Context, policy.Viewer, repository.ListParams) ([]model.Opportunity, error) {
			if visibility == model.VisibilityDraft {
				return []model.Opportunity{}, nil
			}
			return []model.Opportunity{{ID: id, Title: "Villa C", Visibility: visibility}}, nil
		})

	rec := do(t, adminOpportunityRouter(f, admin), http.MethodPatch, "/api/admin/opportunities/"+id.String(), `{"visibility":"active"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, investorOpportunityRouter(f, newInvestor()), http.MethodGet, "/api/featured/opportunities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]interface{}
	decodeBody(t, rec, &body)
	require.Len(t, body, 1)
	assert.Equal(t, id.String(), body[0]["id"])
}

func TestPreviewHidesPrivate(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.opportunities.EXPECT().FindByID(gomock.Any(), id).Return(&model.Opportunity{ID: id, Visibility: model.VisibilityPrivate}, nil)

	rec := do(t, adminOpportunityRouter(f, newAdmin()), http.MethodGet, "/api/admin/preview/opportunities/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
