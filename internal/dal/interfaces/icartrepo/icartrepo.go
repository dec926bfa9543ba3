package icartrepo

import (
	"context"

	"github.com/agronexus/marketplace/internal/service/models/cartitem"
)

// ICartRepository is an interface for cart item postgres repository.
// Get returns nil without error when the item is absent.
type ICartRepository interface {
	ListByUser(ctx context.Context, userID string) ([]cartitem.CartItem, error)
	Get(ctx context.Context, itemID string) (*cartitem.CartItem, error)
	Insert(ctx context.Context, item cartitem.CartItem) error
	UpdateQuantity(ctx context.Context, itemID string, quantity int64) error
	Delete(ctx context.Context, itemID string) error
	ClearByUser(ctx context.Context, userID string) error
}
