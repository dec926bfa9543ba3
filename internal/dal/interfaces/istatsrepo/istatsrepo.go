package istatsrepo

import (
	"context"

	"github.com/agronexus/marketplace/internal/service/models/stats"
)

// IStatsRepository is an interface for the aggregate stats postgres repository.
type IStatsRepository interface {
	FarmerDashboard(ctx context.Context, farmerID string) (*stats.Dashboard, error)
	BuyerDashboard(ctx context.Context, userID string) (*stats.Dashboard, error)
	AdminTotals(ctx context.Context) (*stats.AdminTotals, error)
}
