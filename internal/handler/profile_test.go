package handler_test

import (
	"net/http"
	"testing"

	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/handler"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func profileRouter(f *fixture, caller policy.Caller) http.Handler {
	h := handler.NewProfileHandler(f.profileSvc)

	r := chi.NewRouter()
	r.Use(as(caller))
	r.Post("/api/profile/create", h.CreateProfile)
	r.Post("/api/profile/admin/create", h.CreateAdminProfile)
	return r
}

const validProfile = `{
	"firstName": "Ana",
	"lastName": "Silva",
	"dateOfBirth": "1985-04-12",
	"nationality": "PT",
	"location": "Rua Augusta 1, Lisboa",
	"userType": 2
}`

func TestCreateProfile(t *testing.T) {
	investor := newInvestor()

	t.Run("created", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.EXPECT().CreateUserProfile(gomock.Any(), gomock.Any(), 2).Return(nil)

		rec := do(t, profileRouter(f, investor), http.MethodPost, "/api/profile/create", validProfile)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		decodeBody(t, rec, &body)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "/dashboard", body["redirectTo"])
		assert.NotEmpty(t, body["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture(t)
		rec := do(t, profileRouter(f, investor), http.MethodPost, "/api/profile/create", `{"firstName":"Ana"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "All fields are required", errorMessage(t, rec))
	})

	t.Run("unknown user type", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.EXPECT().CreateUserProfile(gomock.Any(), gomock.Any(), 2).Return(domain.ErrUnknownUserType)

		rec := do(t, profileRouter(f, investor), http.MethodPost, "/api/profile/create", validProfile)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.EXPECT().CreateUserProfile(gomock.Any(), gomock.Any(), 2).Return(domain.ErrProfileExists)

		rec := do(t, profileRouter(f, investor), http.MethodPost, "/api/profile/create", validProfile)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Profile already exists for this user", errorMessage(t, rec))
	})
}

func TestCreateAdminProfile(t *testing.T) {
	t.Run("allow-listed email", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.EXPECT().CreateAdminProfile(gomock.Any(), gomock.Any()).Return(nil)

		rec := do(t, profileRouter(f, newAdmin()), http.MethodPost, "/api/profile/admin/create", `{"firstName":"Rui","lastName":"Costa"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		decodeBody(t, rec, &body)
		assert.Equal(t, "/admin/dashboard", body["redirectTo"])
	})

	t.Run("email not allow-listed", func(t *testing.T) {
		f := newFixture(t)
		caller := policy.Caller{UserID: uuid.New(), Email: "someone@example.com", Role: policy.RoleInvestor}

		rec := do(t, profileRouter(f, caller), http.MethodPost, "/api/profile/admin/create", `{"firstName":"Rui","lastName":"Costa"}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "User not authorized for admin access", errorMessage(t, rec))
	})

	t.Run("missing names", func(t *testing.T) {
		f := newFixture(t)
		rec := do(t, profileRouter(f, newAdmin()), http.MethodPost, "/api/profile/admin/create", `{"firstName":"Rui"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "First name and last name are required", errorMessage(t, rec))
	})

	t.Run("duplicate", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.EXPECT().CreateAdminProfile(gomock.Any(), gomock.Any()).Return(domain.ErrProfileExists)

		rec := do(t, profileRouter(f, newAdmin()), http.MethodPost, "/api/profile/admin/create", `{"firstName":"Rui","lastName":"Costa"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Admin profile already exists for this user", errorMessage(t, rec))
	})
}
