package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/agronexus/marketplace/internal/dal/postgres"
	"github.com/agronexus/marketplace/internal/service/models/order"
	"github.com/agronexus/marketplace/internal/service/models/stats"
	"github.com/agronexus/marketplace/internal/service/models/user"
)

// PostgresStatsRepository implements the aggregate stats repository for
// PostgreSQL. Each dashboard is a handful of count/sum queries; none of them
// need to be transactional.
type PostgresStatsRepository struct {
	conn postgres.Querier
}

// NewPostgresStatsRepository creates a new stats repository.
func NewPostgresStatsRepository(conn postgres.Querier) *PostgresStatsRepository {
	return &PostgresStatsRepository{
		conn: conn,
	}
}

func (r *PostgresStatsRepository) scanInt64(ctx context.Context, builder sq.SelectBuilder) (int64, error) {
	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build aggregate query: %w", err)
	}

	var value int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to run aggregate query: %w", err)
	}

	return value, nil
}

// FarmerDashboard aggregates a farmer's catalog size, order volume and paid
// revenue. Orders are attributed to the farmer through their product lines.
func (r *PostgresStatsRepository) FarmerDashboard(ctx context.Context, farmerID string) (*stats.Dashboard, error) {
	products, err := r.scanInt64(ctx, sq.Select("count(*)").
		From("products").
		Where(sq.Eq{"farmer_id": farmerID}))
	if err != nil {
		return nil, err
	}

	orders, err := r.scanInt64(ctx, sq.Select("count(DISTINCT oi.order_id)").
		From("order_items oi").
		Join("products p ON p.id = oi.product_id").
		Where(sq.Eq{"p.farmer_id": farmerID}))
	if err != nil {
		return nil, err
	}

	revenue, err := r.scanInt64(ctx, sq.Select("COALESCE(SUM(oi.quantity * oi.unit_price_cents), 0)").
		From("order_items oi").
		Join("products p ON p.id = oi.product_id").
		Join("orders o ON o.id = oi.order_id").
		Where(sq.Eq{
			"p.farmer_id":      farmerID,
			"o.payment_status": order.PaymentStatusPaid.String(),
		}))
	if err != nil {
		return nil, err
	}

	pending, err := r.scanInt64(ctx, sq.Select("count(DISTINCT oi.order_id)").
		From("order_items oi").
		Join("products p ON p.id = oi.product_id").
		Join("orders o ON o.id = oi.order_id").
		Where(sq.Eq{
			"p.farmer_id": farmerID,
			"o.status":    order.StatusPending.String(),
		}))
	if err != nil {
		return nil, err
	}

	return &stats.Dashboard{
		UserType:          string(user.TypeFarmer),
		ProductsCount:     products,
		OrdersCount:       orders,
		TotalRevenueCents: revenue,
		PendingOrders:     pending,
	}, nil
}

// BuyerDashboard aggregates a buyer's order history and current cart size.
func (r *PostgresStatsRepository) BuyerDashboard(ctx context.Context, userID string) (*stats.Dashboard, error) {
	orders, err := r.scanInt64(ctx, sq.Select("count(*)").
		From("orders").
		Where(sq.Eq{"buyer_id": userID}))
	if err != nil {
		return nil, err
	}

	cartItems, err := r.scanInt64(ctx, sq.Select("count(*)").
		From("cart_items").
		Where(sq.Eq{"user_id": userID}))
	if err != nil {
		return nil, err
	}

	return &stats.Dashboard{
		UserType:       string(user.TypeBuyer),
		OrdersCount:    orders,
		CartItemsCount: cartItems,
	}, nil
}

// AdminTotals aggregates marketplace-wide counts and paid revenue.
func (r *PostgresStatsRepository) AdminTotals(ctx context.Context) (*stats.AdminTotals, error) {
	users, err := r.scanInt64(ctx, sq.Select("count(*)").From("users"))
	if err != nil {
		return nil, err
	}

	products, err := r.scanInt64(ctx, sq.Select("count(*)").From("products"))
	if err != nil {
		return nil, err
	}

	orders, err := r.scanInt64(ctx, sq.Select("count(*)").From("orders"))
	if err != nil {
		return nil, err
	}

	revenue, err := r.scanInt64(ctx, sq.Select("COALESCE(SUM(total_cents), 0)").
		From("orders").
		Where(sq.Eq{"payment_status": order.PaymentStatusPaid.String()}))
	if err != nil {
		return nil, err
	}

	farmers, err := r.scanInt64(ctx, sq.Select("count(*)").
		From("users").
		Where(sq.Eq{"user_type": string(user.TypeFarmer)}))
	if err != nil {
		return nil, err
	}

	buyers, err := r.scanInt64(ctx, sq.Select("count(*)").
		From("users").
		Where(sq.Eq{"user_type": string(user.TypeBuyer)}))
	if err != nil {
		return nil, err
	}

	return &stats.AdminTotals{
		TotalUsers:        users,
		TotalProducts:     products,
		TotalOrders:       orders,
		TotalRevenueCents: revenue,
		ActiveFarmers:     farmers,
		ActiveBuyers:      buyers,
	}, nil
}
