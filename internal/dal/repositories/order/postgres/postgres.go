package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/agronexus/marketplace/internal/dal/postgres"
	"github.com/agronexus/marketplace/internal/service/models/currency"
	"github.com/agronexus/marketplace/internal/service/models/order"
	"github.com/agronexus/marketplace/internal/service/models/orderitem"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id              string
	BuyerId         string
	Status          string
	PaymentStatus   string
	TotalCents      int64
	TotalCurrency   string
	PaymentMethod   string
	ShippingAddress string
	DeliveryNotes   string
	PhoneNumber     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.TotalCurrency)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	paymentStatus, err := order.ParsePaymentStatus(o.PaymentStatus)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:              o.Id,
		BuyerID:         o.BuyerId,
		Status:          status,
		PaymentStatus:   paymentStatus,
		TotalCents:      o.TotalCents,
		TotalCurrency:   cur,
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShippingAddress,
		DeliveryNotes:   o.DeliveryNotes,
		PhoneNumber:     o.PhoneNumber,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		OrderItems:      []orderitem.OrderItem{}, // Populated separately
	}, nil
}

var orderColumns = []string{
	"id",
	"buyer_id",
	"status",
	"payment_status",
	"total_cents",
	"total_currency",
	"payment_method",
	"shipping_address",
	"delivery_notes",
	"phone_number",
	"created_at",
	"updated_at",
}

// PostgresOrderRepository implements the order repository for PostgreSQL.
type PostgresOrderRepository struct {
	conn postgres.Querier
}

// NewPostgresOrderRepository creates a new order repository.
func NewPostgresOrderRepository(conn postgres.Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Insert persists a new order.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) error {
	query, args, err := sq.Insert("orders").
		Columns(orderColumns...).
		Values(
			o.ID,
			o.BuyerID,
			o.Status.String(),
			o.PaymentStatus.String(),
			o.TotalCents,
			o.TotalCurrency.String(),
			o.PaymentMethod,
			o.ShippingAddress,
			o.DeliveryNotes,
			o.PhoneNumber,
			o.CreatedAt,
			o.UpdatedAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := sq.Select(orderColumns...).From("orders")

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.BuyerIds) > 0 {
		builder = builder.Where(sq.Eq{"buyer_id": filter.BuyerIds})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, s.String())
		}
		builder = builder.Where(sq.Eq{"status": statuses})
	}

	builder = builder.OrderBy("created_at DESC")

	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.BuyerId,
			&dal.Status,
			&dal.PaymentStatus,
			&dal.TotalCents,
			&dal.TotalCurrency,
			&dal.PaymentMethod,
			&dal.ShippingAddress,
			&dal.DeliveryNotes,
			&dal.PhoneNumber,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}

		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// UpdateStatus overwrites the fulfillment status.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	query, args, err := sq.Update("orders").
		Set("status", status.String()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}

// UpdatePaymentStatus overwrites the payment status.
func (r *PostgresOrderRepository) UpdatePaymentStatus(ctx context.Context, id string, status order.PaymentStatus) error {
	query, args, err := sq.Update("orders").
		Set("payment_status", status.String()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update order payment status: %w", err)
	}

	return nil
}

// Delete removes an order permanently and reports whether a row was deleted.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) (bool, error) {
	query, args, err := sq.Delete("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
