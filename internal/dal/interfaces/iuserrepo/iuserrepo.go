package iuserrepo

import (
	"context"

	"github.com/agronexus/marketplace/internal/service/models/user"
)

// IUserRepository is an interface for user postgres repository.
// Lookups return nil without error when the user is absent.
type IUserRepository interface {
	Insert(ctx context.Context, u user.User) error
	Update(ctx context.Context, u user.User) error
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	List(ctx context.Context, limit, offset int) ([]user.User, error)
	Count(ctx context.Context) (int64, error)
}
