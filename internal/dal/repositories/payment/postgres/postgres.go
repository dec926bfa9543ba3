package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/agronexus/marketplace/internal/dal/postgres"
	"github.com/agronexus/marketplace/internal/service/models/currency"
	"github.com/agronexus/marketplace/internal/service/models/payment"
)

var paymentColumns = []string{
	"id",
	"user_id",
	"order_id",
	"gateway_payment_id",
	"reference",
	"checkout_url",
	"status",
	"amount_cents",
	"amount_currency",
	"method",
	"phone",
	"email",
	"failure_reason",
	"created_at",
	"updated_at",
}

// PostgresPaymentRepository implements the payment repository for PostgreSQL.
type PostgresPaymentRepository struct {
	conn postgres.Querier
}

// NewPostgresPaymentRepository creates a new payment repository.
func NewPostgresPaymentRepository(conn postgres.Querier) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		conn: conn,
	}
}

// Insert persists a new payment record.
func (r *PostgresPaymentRepository) Insert(ctx context.Context, p payment.Payment) error {
	query, args, err := sq.Insert("payments").
		Columns(paymentColumns...).
		Values(
			p.ID,
			p.UserID,
			p.OrderID,
			p.GatewayPaymentID,
			p.Reference,
			p.CheckoutURL,
			p.Status.String(),
			p.AmountCents,
			p.AmountCurrency.String(),
			string(p.Method),
			p.Phone,
			p.Email,
			p.FailureReason,
			p.CreatedAt,
			p.UpdatedAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// Update rewrites the mutable payment fields.
func (r *PostgresPaymentRepository) Update(ctx context.Context, p payment.Payment) error {
	query, args, err := sq.Update("payments").
		Set("order_id", p.OrderID).
		Set("gateway_payment_id", p.GatewayPaymentID).
		Set("checkout_url", p.CheckoutURL).
		Set("status", p.Status.String()).
		Set("failure_reason", p.FailureReason).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": p.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	return nil
}

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment
	var status, cur, method string
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.OrderID,
		&p.GatewayPaymentID,
		&p.Reference,
		&p.CheckoutURL,
		&status,
		&p.AmountCents,
		&cur,
		&method,
		&p.Phone,
		&p.Email,
		&p.FailureReason,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsedStatus, err := payment.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	p.Status = parsedStatus

	parsedCur, err := currency.ParseCurrency(cur)
	if err != nil {
		return nil, err
	}
	p.AmountCurrency = parsedCur

	parsedMethod, err := payment.ParseMethod(method)
	if err != nil {
		return nil, err
	}
	p.Method = parsedMethod

	return &p, nil
}

// Get retrieves a payment by id, nil when absent.
func (r *PostgresPaymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	query, args, err := sq.Select(paymentColumns...).
		From("payments").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	p, err := scanPayment(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return p, nil
}

// ListPendingBefore retrieves pending payments created before the cutoff,
// oldest first, for gateway reconciliation.
func (r *PostgresPaymentRepository) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]payment.Payment, error) {
	query, args, err := sq.Select(paymentColumns...).
		From("payments").
		Where(sq.Eq{"status": payment.StatusPending.String()}).
		Where(sq.LtOrEq{"created_at": cutoff}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending payments: %w", err)
	}
	defer rows.Close()

	var result []payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Stats aggregates record counts by status and the completed amount.
func (r *PostgresPaymentRepository) Stats(ctx context.Context) (*payment.Stats, error) {
	query, args, err := sq.Select(
		"status",
		"count(*)",
		fmt.Sprintf("coalesce(sum(amount_cents) FILTER (WHERE status = '%s'), 0)", payment.StatusCompleted.String()),
	).
		From("payments").
		GroupBy("status").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stats query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment stats: %w", err)
	}
	defer rows.Close()

	stats := &payment.Stats{
		CountByStatus: make(map[payment.Status]int64),
	}

	for rows.Next() {
		var status string
		var count, completed int64
		if err := rows.Scan(&status, &count, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan payment stats: %w", err)
		}

		parsed, err := payment.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("failed to parse payment status: %w", err)
		}

		stats.CountByStatus[parsed] = count
		stats.CompletedAmountCents += completed
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return stats, nil
}
