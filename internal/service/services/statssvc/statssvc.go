package statssvc

import (
	"context"

	"github.com/agronexus/marketplace/internal/dal/interfaces/istatsrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/iuserrepo"
	"github.com/agronexus/marketplace/internal/dal/postgres"
	statsrepo "github.com/agronexus/marketplace/internal/dal/repositories/stats/postgres"
	userrepo "github.com/agronexus/marketplace/internal/dal/repositories/user/postgres"
	"github.com/agronexus/marketplace/internal/service/models/stats"
	"github.com/agronexus/marketplace/internal/service/models/user"
)

const (
	defaultUsersPageSize = 20
	maxUsersPageSize     = 100
)

// StatsService serves the dashboard and admin aggregates. It only reads;
// every figure is recomputed from the store on each call.
type StatsService struct {
	statsRepo istatsrepo.IStatsRepository
	userRepo  iuserrepo.IUserRepository
}

// option is a function that configures the StatsService.
type option func(*StatsService)

// MustNewStatsService creates a new StatsService.
func MustNewStatsService(opts ...option) *StatsService {
	s := &StatsService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.statsRepo == nil || s.userRepo == nil {
		panic("statssvc: stats and user repositories are required")
	}

	return s
}

// WithPostgresClient builds the repositories from the Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *StatsService) {
		s.statsRepo = statsrepo.NewPostgresStatsRepository(pgClient.Pool())
		s.userRepo = userrepo.NewPostgresUserRepository(pgClient.Pool())
	}
}

// WithRepositories sets the repositories directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepositories(statsRepo istatsrepo.IStatsRepository, userRepo iuserrepo.IUserRepository) option {
	return func(s *StatsService) {
		s.statsRepo = statsRepo
		s.userRepo = userRepo
	}
}

// Dashboard returns the activity summary for the given account. Admin
// accounts get the buyer view of their own activity.
func (s *StatsService) Dashboard(ctx context.Context, u *user.User) (*stats.Dashboard, error) {
	if u.Type == user.TypeFarmer {
		return s.statsRepo.FarmerDashboard(ctx, u.ID)
	}

	return s.statsRepo.BuyerDashboard(ctx, u.ID)
}

// AdminTotals returns the marketplace-wide aggregate.
func (s *StatsService) AdminTotals(ctx context.Context) (*stats.AdminTotals, error) {
	return s.statsRepo.AdminTotals(ctx)
}

// ListUsers returns one page of registered users plus the total count.
// Out-of-range page and limit values fall back to sane defaults.
func (s *StatsService) ListUsers(ctx context.Context, page, limit int) ([]user.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxUsersPageSize {
		limit = defaultUsersPageSize
	}

	users, err := s.userRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []user.User{}
	}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
