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
	"github.com/agronexus/marketplace/internal/service/models/product"
)

// ProductDal represents product data access layer model.
type ProductDal struct {
	Id            string
	FarmerId      string
	Name          string
	Description   string
	Category      string
	PriceCents    int64
	PriceCurrency string
	Unit          string
	Quantity      int64
	IsOrganic     bool
	Rating        float64
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() (*product.Product, error) {
	cur, err := currency.ParseCurrency(p.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &product.Product{
		ID:            p.Id,
		FarmerID:      p.FarmerId,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		PriceCents:    p.PriceCents,
		PriceCurrency: cur,
		Unit:          p.Unit,
		Quantity:      p.Quantity,
		IsOrganic:     p.IsOrganic,
		Rating:        p.Rating,
		Status:        product.Status(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

var productColumns = []string{
	"id",
	"farmer_id",
	"name",
	"description",
	"category",
	"price_cents",
	"price_currency",
	"unit",
	"quantity",
	"is_organic",
	"rating",
	"status",
	"created_at",
	"updated_at",
}

// PostgresProductRepository implements the product repository for PostgreSQL.
type PostgresProductRepository struct {
	conn postgres.Querier
}

// NewPostgresProductRepository creates a new product repository.
func NewPostgresProductRepository(conn postgres.Querier) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
	}
}

// Insert adds a new product to the catalog.
func (r *PostgresProductRepository) Insert(ctx context.Context, p product.Product) error {
	query, args, err := sq.Insert("products").
		Columns(productColumns...).
		Values(
			p.ID,
			p.FarmerID,
			p.Name,
			p.Description,
			p.Category,
			p.PriceCents,
			p.PriceCurrency.String(),
			p.Unit,
			p.Quantity,
			p.IsOrganic,
			p.Rating,
			string(p.Status),
			p.CreatedAt,
			p.UpdatedAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// Update rewrites all mutable product fields.
func (r *PostgresProductRepository) Update(ctx context.Context, p product.Product) error {
	query, args, err := sq.Update("products").
		Set("name", p.Name).
		Set("description", p.Description).
		Set("category", p.Category).
		Set("price_cents", p.PriceCents).
		Set("price_currency", p.PriceCurrency.String()).
		Set("unit", p.Unit).
		Set("quantity", p.Quantity).
		Set("is_organic", p.IsOrganic).
		Set("rating", p.Rating).
		Set("status", string(p.Status)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": p.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes a product and reports whether a row was deleted.
func (r *PostgresProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	query, args, err := sq.Delete("products").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DecrementQuantity reduces the available quantity by the ordered amount.
func (r *PostgresProductRepository) DecrementQuantity(ctx context.Context, id string, by int64) error {
	query, args, err := sq.Update("products").
		Set("quantity", sq.Expr("quantity - ?", by)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to decrement product quantity: %w", err)
	}

	return nil
}

// Get retrieves a product by id, nil when absent.
func (r *PostgresProductRepository) Get(ctx context.Context, id string) (*product.Product, error) {
	query, args, err := sq.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal ProductDal
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&dal.Id,
		&dal.FarmerId,
		&dal.Name,
		&dal.Description,
		&dal.Category,
		&dal.PriceCents,
		&dal.PriceCurrency,
		&dal.Unit,
		&dal.Quantity,
		&dal.IsOrganic,
		&dal.Rating,
		&dal.Status,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return dal.ToModel()
}

func applyProductFilter(builder sq.SelectBuilder, filter *product.QueryProductsModel) sq.SelectBuilder {
	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.FarmerIds) > 0 {
		builder = builder.Where(sq.Eq{"farmer_id": filter.FarmerIds})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"description": pattern},
		})
	}

	return builder
}

// Query retrieves products based on filter criteria.
func (r *PostgresProductRepository) Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error) {
	builder := applyProductFilter(
		sq.Select(productColumns...).From("products"),
		filter,
	).OrderBy("created_at DESC")

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
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.Id,
			&dal.FarmerId,
			&dal.Name,
			&dal.Description,
			&dal.Category,
			&dal.PriceCents,
			&dal.PriceCurrency,
			&dal.Unit,
			&dal.Quantity,
			&dal.IsOrganic,
			&dal.Rating,
			&dal.Status,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}

		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Count returns the number of products matching the filter.
func (r *PostgresProductRepository) Count(ctx context.Context, filter *product.QueryProductsModel) (int64, error) {
	query, args, err := applyProductFilter(
		sq.Select("count(*)").From("products"),
		filter,
	).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

// Categories returns the distinct product categories, sorted.
func (r *PostgresProductRepository) Categories(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("DISTINCT category").
		From("products").
		Where(sq.NotEq{"category": ""}).
		OrderBy("category ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build categories query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
