package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/agronexus/marketplace/internal/dal/postgres"
	"github.com/agronexus/marketplace/internal/service/models/currency"
	"github.com/agronexus/marketplace/internal/service/models/orderitem"
)

var orderItemColumns = []string{
	"id",
	"order_id",
	"product_id",
	"product_name",
	"quantity",
	"unit_price_cents",
	"price_currency",
	"created_at",
}

// PostgresOrderItemRepository implements the order item repository for PostgreSQL.
type PostgresOrderItemRepository struct {
	conn postgres.Querier
}

// NewPostgresOrderItemRepository creates a new order item repository.
func NewPostgresOrderItemRepository(conn postgres.Querier) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
	}
}

// BulkInsert inserts all items of an order in one statement.
func (r *PostgresOrderItemRepository) BulkInsert(ctx context.Context, items []orderitem.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	builder := sq.Insert("order_items").Columns(orderItemColumns...)
	for _, it := range items {
		builder = builder.Values(
			it.ID,
			it.OrderID,
			it.ProductID,
			it.ProductName,
			it.Quantity,
			it.UnitPriceCents,
			it.PriceCurrency.String(),
			it.CreatedAt,
		)
	}

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to bulk insert order items: %w", err)
	}

	return nil
}

// ListByOrderIds retrieves all items belonging to the given orders.
func (r *PostgresOrderItemRepository) ListByOrderIds(ctx context.Context, orderIds []string) ([]orderitem.OrderItem, error) {
	if len(orderIds) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	query, args, err := sq.Select(orderItemColumns...).
		From("order_items").
		Where(sq.Eq{"order_id": orderIds}).
		OrderBy("created_at ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var it orderitem.OrderItem
		var cur string
		err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.ProductID,
			&it.ProductName,
			&it.Quantity,
			&it.UnitPriceCents,
			&cur,
			&it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		parsed, err := currency.ParseCurrency(cur)
		if err != nil {
			return nil, fmt.Errorf("failed to parse order item currency: %w", err)
		}
		it.PriceCurrency = parsed

		result = append(result, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
