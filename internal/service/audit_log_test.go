package service_test

import (
	"context"
	"testing"

	"github.com/dangerclosesec/dealroom/internal/mocks"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/repository"
	"github.com/dangerclosesec/dealroom/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuditLogQuery(t *testing.T) {
	tests := []struct {
		name       string
		params     repository.AuditQueryParams
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", params: repository.AuditQueryParams{}, wantLimit: 100},
		{name: "capped", params: repository.AuditQueryParams{Limit: 5000, Offset: 20}, wantLimit: 500, wantOffset: 20},
		{name: "negative offset", params: repository.AuditQueryParams{Limit: 10, Offset: -3}, wantLimit: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockAuditLogRepositoryIface(ctrl)
			svc := service.NewAuditLogService(repo)

			repo.EXPECT().
				Query(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, p repository.AuditQueryParams) ([]model.AccessAuditLog, int64, error) {
					assert.Equal(t, tt.wantLimit, p.Limit)
					assert.Equal(t, tt.wantOffset, p.Offset)
					return nil, 0, nil
				})

			page, err := svc.Query(context.Background(), tt.params)
			require.NoError(t, err)
			assert.NotNil(t, page.Logs)
			assert.Equal(t, tt.wantLimit, page.Limit)
			assert.Equal(t, tt.wantOffset, page.Offset)
		})
	}
}
