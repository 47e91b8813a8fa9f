package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dangerclosesec/dealroom/internal/mocks"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/repository"
	"github.com/dangerclosesec/dealroom/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDashboardSummary(t *testing.T) {
	ctx := context.Background()
	adminViewer := policy.Viewer{Audience: policy.AudienceAdmin}

	t.Run("collects stats and recent rows", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		opportunities := mocks.NewMockOpportunityRepositoryIface(ctrl)
		profiles := mocks.NewMockProfileRepositoryIface(ctrl)
		svc := service.NewDashboardService(opportunities, profiles)

		recent := []model.Opportunity{{ID: uuid.New(), Title: "Villa A"}}
		opportunities.EXPECT().Count(gomock.Any()).Return(int64(12), nil)
		opportunities.EXPECT().Count(gomock.Any(), model.VisibilityActive).Return(int64(4), nil)
		opportunities.EXPECT().List(gomock.Any(), adminViewer, repository.ListParams{Limit: 5}).Return(recent, nil)
		profiles.EXPECT().CountUserProfiles(gomock.Any()).Return(int64(30), nil)
		profiles.EXPECT().ListUserProfiles(gomock.Any(), 5).Return(nil, nil)

		d, err := svc.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, service.DashboardStats{TotalOpportunities: 12, TotalUsers: 30, ActiveOpportunities: 4}, d.Stats)
		assert.Equal(t, recent, d.RecentOpportunities)
		assert.NotNil(t, d.RecentUsers)
		assert.Empty(t, d.RecentUsers)
	})

	t.Run("any failure fails the summary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		opportunities := mocks.NewMockOpportunityRepositoryIface(ctrl)
		profiles := mocks.NewMockProfileRepositoryIface(ctrl)
		svc := service.NewDashboardService(opportunities, profiles)

		opportunities.EXPECT().Count(gomock.Any()).Return(int64(0), nil).AnyTimes()
		opportunities.EXPECT().Count(gomock.Any(), model.VisibilityActive).Return(int64(0), nil).AnyTimes()
		opportunities.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
		profiles.EXPECT().CountUserProfiles(gomock.Any()).Return(int64(0), errors.New("db down"))
		profiles.EXPECT().ListUserProfiles(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

		_, err := svc.Summary(ctx)
		assert.EqualError(t, err, "db down")
	})
}
