package service

import (
	"context"

	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/repository"
	"golang.org/x/sync/errgroup"
)

const dashboardRecentLimit = 5

type DashboardService struct {
	opportunities repository.OpportunityRepositoryIface
	profiles      repository.ProfileRepositoryIface
}

func NewDashboardService(opportunities repository.OpportunityRepositoryIface, profiles repository.ProfileRepositoryIface) *DashboardService {
	return &DashboardService{opportunities: opportunities, profiles: profiles}
}

type DashboardStats struct {
	TotalOpportunities  int64 `json:"totalOpportunities"`
	TotalUsers          int64 `json:"totalUsers"`
	ActiveOpportunities int64 `json:"activeOpportunities"`
}

type Dashboard struct {
	Stats               DashboardStats      `json:"stats"`
	RecentOpportunities []model.Opportunity `json:"recentOpportunities"`
	RecentUsers         []model.UserProfile `json:"recentUsers"`
}

// Summary gathers the admin dashboard figures concurrently.
func (s *DashboardService) Summary(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.opportunities.Count(ctx)
		d.Stats.TotalOpportunities = n
		return err
	})
	g.Go(func() error {
		n, err := s.profiles.CountUserProfiles(ctx)
		d.Stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.opportunities.Count(ctx, model.VisibilityActive)
		d.Stats.ActiveOpportunities = n
		return err
	})
	g.Go(func() error {
		recent, err := s.opportunities.List(ctx, policy.Viewer{Audience: policy.AudienceAdmin}, repository.ListParams{Limit: dashboardRecentLimit})
		d.RecentOpportunities = recent
		return err
	})
	g.Go(func() error {
		recent, err := s.profiles.ListUserProfiles(ctx, dashboardRecentLimit)
		d.RecentUsers = recent
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if d.RecentOpportunities == nil {
		d.RecentOpportunities = []model.Opportunity{}
	}
	if d.RecentUsers == nil {
		d.RecentUsers = []model.UserProfile{}
	}
	return &d, nil
}
