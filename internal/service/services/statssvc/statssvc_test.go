package statssvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agronexus/marketplace/internal/service/models/stats"
	"github.com/agronexus/marketplace/internal/service/models/user"
)

type fakeStatsRepo struct {
	farmer *stats.Dashboard
	buyer  *stats.Dashboard
	admin  *stats.AdminTotals

	farmerCalls []string
	buyerCalls  []string
}

func (f *fakeStatsRepo) FarmerDashboard(_ context.Context, farmerID string) (*stats.Dashboard, error) {
	f.farmerCalls = append(f.farmerCalls, farmerID)
	return f.farmer, nil
}

func (f *fakeStatsRepo) BuyerDashboard(_ context.Context, userID string) (*stats.Dashboard, error) {
	f.buyerCalls = append(f.buyerCalls, userID)
	return f.buyer, nil
}

func (f *fakeStatsRepo) AdminTotals(_ context.Context) (*stats.AdminTotals, error) {
	return f.admin, nil
}

type fakeUserRepo struct {
	users []user.User

	lastLimit  int
	lastOffset int
}

func (f *fakeUserRepo) Insert(_ context.Context, _ user.User) error { return nil }

func (f *fakeUserRepo) Update(_ context.Context, _ user.User) error { return nil }

func (f *fakeUserRepo) GetByID(_ context.Context, _ string) (*user.User, error) { return nil, nil }

func (f *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*user.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, _ string) (*user.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) List(_ context.Context, limit, offset int) ([]user.User, error) {
	f.lastLimit = limit
	f.lastOffset = offset

	if offset >= len(f.users) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.users) {
		end = len(f.users)
	}
	return f.users[offset:end], nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func testUsers(n int) []user.User {
	users := make([]user.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, user.User{
			ID:        string(rune('a' + i)),
			Username:  "user",
			Type:      user.TypeBuyer,
			CreatedAt: time.Now(),
		})
	}
	return users
}

func TestDashboardRoutesByUserType(t *testing.T) {
	statsRepo := &fakeStatsRepo{
		farmer: &stats.Dashboard{UserType: "farmer", ProductsCount: 3},
		buyer:  &stats.Dashboard{UserType: "buyer", OrdersCount: 2},
	}
	svc := MustNewStatsService(WithRepositories(statsRepo, &fakeUserRepo{}))

	d, err := svc.Dashboard(context.Background(), &user.User{ID: "f1", Type: user.TypeFarmer})
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.ProductsCount)
	assert.Equal(t, []string{"f1"}, statsRepo.farmerCalls)

	d, err = svc.Dashboard(context.Background(), &user.User{ID: "b1", Type: user.TypeBuyer})
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.OrdersCount)
	assert.Equal(t, []string{"b1"}, statsRepo.buyerCalls)
}

func TestAdminTotals(t *testing.T) {
	statsRepo := &fakeStatsRepo{
		admin: &stats.AdminTotals{TotalUsers: 10, TotalRevenueCents: 5000},
	}
	svc := MustNewStatsService(WithRepositories(statsRepo, &fakeUserRepo{}))

	totals, err := svc.AdminTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), totals.TotalUsers)
	assert.Equal(t, int64(5000), totals.TotalRevenueCents)
}

func TestListUsersPagination(t *testing.T) {
	userRepo := &fakeUserRepo{users: testUsers(5)}
	svc := MustNewStatsService(WithRepositories(&fakeStatsRepo{}, userRepo))

	users, total, err := svc.ListUsers(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, int64(5), total)
	assert.Equal(t, 2, userRepo.lastLimit)
	assert.Equal(t, 2, userRepo.lastOffset)
}

func TestListUsersDefaultsOutOfRangeInput(t *testing.T) {
	userRepo := &fakeUserRepo{users: testUsers(3)}
	svc := MustNewStatsService(WithRepositories(&fakeStatsRepo{}, userRepo))

	users, total, err := svc.ListUsers(context.Background(), 0, -5)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, 20, userRepo.lastLimit)
	assert.Equal(t, 0, userRepo.lastOffset)

	users, _, err = svc.ListUsers(context.Background(), 9, 20)
	require.NoError(t, err)
	assert.Empty(t, users)
}
