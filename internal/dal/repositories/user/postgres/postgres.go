package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/agronexus/marketplace/internal/dal/postgres"
	"github.com/agronexus/marketplace/internal/service/models/user"
)

var userColumns = []string{
	"id",
	"username",
	"email",
	"password_hash",
	"first_name",
	"last_name",
	"farm_name",
	"location",
	"phone",
	"address",
	"user_type",
	"created_at",
	"updated_at",
}

// PostgresUserRepository implements the user repository for PostgreSQL.
type PostgresUserRepository struct {
	conn postgres.Querier
}

// NewPostgresUserRepository creates a new user repository.
func NewPostgresUserRepository(conn postgres.Querier) *PostgresUserRepository {
	return &PostgresUserRepository{
		conn: conn,
	}
}

// Insert adds a new user.
func (r *PostgresUserRepository) Insert(ctx context.Context, u user.User) error {
	query, args, err := sq.Insert("users").
		Columns(userColumns...).
		Values(
			u.ID,
			u.Username,
			u.Email,
			u.PasswordHash,
			u.FirstName,
			u.LastName,
			u.FarmName,
			u.Location,
			u.Phone,
			u.Address,
			string(u.Type),
			u.CreatedAt,
			u.UpdatedAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Update rewrites mutable profile fields.
func (r *PostgresUserRepository) Update(ctx context.Context, u user.User) error {
	query, args, err := sq.Update("users").
		Set("username", u.Username).
		Set("first_name", u.FirstName).
		Set("last_name", u.LastName).
		Set("farm_name", u.FarmName).
		Set("location", u.Location).
		Set("phone", u.Phone).
		Set("address", u.Address).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": u.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (r *PostgresUserRepository) getBy(ctx context.Context, pred sq.Eq) (*user.User, error) {
	query, args, err := sq.Select(userColumns...).
		From("users").
		Where(pred).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var u user.User
	var userType string
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.FarmName,
		&u.Location,
		&u.Phone,
		&u.Address,
		&userType,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.Type = user.Type(userType)

	return &u, nil
}

// List retrieves users ordered by registration time, newest first.
func (r *PostgresUserRepository) List(ctx context.Context, limit, offset int) ([]user.User, error) {
	builder := sq.Select(userColumns...).
		From("users").
		OrderBy("created_at DESC")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		var u user.User
		var userType string
		err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.FirstName,
			&u.LastName,
			&u.FarmName,
			&u.Location,
			&u.Phone,
			&u.Address,
			&userType,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		u.Type = user.Type(userType)
		result = append(result, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Count returns the total number of registered users.
func (r *PostgresUserRepository) Count(ctx context.Context) (int64, error) {
	query, args, err := sq.Select("count(*)").
		From("users").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// GetByID retrieves a user by id, nil when absent.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getBy(ctx, sq.Eq{"id": id})
}

// GetByEmail retrieves a user by email, nil when absent.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getBy(ctx, sq.Eq{"email": email})
}

// GetByUsername retrieves a user by username, nil when absent.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getBy(ctx, sq.Eq{"username": username})
}
