package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/agronexus/marketplace/internal/dal/postgres"
	"github.com/agronexus/marketplace/internal/service/models/cartitem"
	"github.com/agronexus/marketplace/internal/service/models/currency"
)

var cartItemColumns = []string{
	"id",
	"user_id",
	"product_id",
	"quantity",
	"unit_price_cents",
	"price_currency",
	"created_at",
	"updated_at",
}

// PostgresCartRepository implements the cart item repository for PostgreSQL.
type PostgresCartRepository struct {
	conn postgres.Querier
}

// NewPostgresCartRepository creates a new cart repository.
func NewPostgresCartRepository(conn postgres.Querier) *PostgresCartRepository {
	return &PostgresCartRepository{
		conn: conn,
	}
}

func scanCartItem(row pgx.Row) (*cartitem.CartItem, error) {
	var it cartitem.CartItem
	var cur string
	err := row.Scan(
		&it.ID,
		&it.UserID,
		&it.ProductID,
		&it.Quantity,
		&it.UnitPriceCents,
		&cur,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := currency.ParseCurrency(cur)
	if err != nil {
		return nil, err
	}
	it.PriceCurrency = parsed

	return &it, nil
}

// ListByUser retrieves all cart items of a user, oldest first.
func (r *PostgresCartRepository) ListByUser(ctx context.Context, userID string) ([]cartitem.CartItem, error) {
	query, args, err := sq.Select(cartItemColumns...).
		From("cart_items").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var result []cartitem.CartItem
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		result = append(result, *it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Get retrieves a cart item by id, nil when absent.
func (r *PostgresCartRepository) Get(ctx context.Context, itemID string) (*cartitem.CartItem, error) {
	query, args, err := sq.Select(cartItemColumns...).
		From("cart_items").
		Where(sq.Eq{"id": itemID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	it, err := scanCartItem(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}

	return it, nil
}

// Insert adds a new cart item.
func (r *PostgresCartRepository) Insert(ctx context.Context, item cartitem.CartItem) error {
	query, args, err := sq.Insert("cart_items").
		Columns(cartItemColumns...).
		Values(
			item.ID,
			item.UserID,
			item.ProductID,
			item.Quantity,
			item.UnitPriceCents,
			item.PriceCurrency.String(),
			item.CreatedAt,
			item.UpdatedAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}

	return nil
}

// UpdateQuantity sets the new quantity and refreshes updated_at.
func (r *PostgresCartRepository) UpdateQuantity(ctx context.Context, itemID string, quantity int64) error {
	query, args, err := sq.Update("cart_items").
		Set("quantity", quantity).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": itemID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	return nil
}

// Delete removes a cart item.
func (r *PostgresCartRepository) Delete(ctx context.Context, itemID string) error {
	query, args, err := sq.Delete("cart_items").
		Where(sq.Eq{"id": itemID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return nil
}

// ClearByUser removes all cart items of a user.
func (r *PostgresCartRepository) ClearByUser(ctx context.Context, userID string) error {
	query, args, err := sq.Delete("cart_items").
		Where(sq.Eq{"user_id": userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
