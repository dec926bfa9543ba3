package cartsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agronexus/marketplace/internal/apperrors"
	"github.com/agronexus/marketplace/internal/dal/interfaces/icartrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/iproductrepo"
	"github.com/agronexus/marketplace/internal/dal/postgres"
	cartrepo "github.com/agronexus/marketplace/internal/dal/repositories/cart/postgres"
	productrepo "github.com/agronexus/marketplace/internal/dal/repositories/product/postgres"
	"github.com/agronexus/marketplace/internal/service/models/cartitem"
	"github.com/agronexus/marketplace/internal/service/models/checkout"
	"github.com/agronexus/marketplace/internal/service/models/currency"
)

// CartService maintains the per-user pre-checkout selection. Unit prices are
// locked when a line is added; checkout consumes them through Snapshot.
type CartService struct {
	cartRepo    icartrepo.ICartRepository
	productRepo iproductrepo.IProductRepository
}

// UpdateResult reports the outcome of a quantity update. A quantity of zero
// or less removes the line; that is an expected outcome, not an error.
type UpdateResult struct {
	Removed bool
	Item    *cartitem.CartItem
}

// option is a function that configures the CartService.
type option func(*CartService)

// MustNewCartService creates a new CartService.
func MustNewCartService(opts ...option) *CartService {
	s := &CartService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.cartRepo == nil || s.productRepo == nil {
		panic("cartsvc: cart and product repositories are required")
	}

	return s
}

// WithPostgresClient builds the repositories from the Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CartService) {
		s.cartRepo = cartrepo.NewPostgresCartRepository(pgClient.Pool())
		s.productRepo = productrepo.NewPostgresProductRepository(pgClient.Pool())
	}
}

// WithRepositories sets the repositories directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepositories(cartRepo icartrepo.ICartRepository, productRepo iproductrepo.IProductRepository) option {
	return func(s *CartService) {
		s.cartRepo = cartRepo
		s.productRepo = productRepo
	}
}

// Get returns the user's cart items, oldest first.
func (s *CartService) Get(ctx context.Context, userID string) ([]cartitem.CartItem, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []cartitem.CartItem{}
	}

	return items, nil
}

// AddItem adds quantity of a product to the cart. An existing line for the
// same product accumulates; a new line locks the current catalog price.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int64) (*cartitem.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", apperrors.ErrValidation)
	}

	p, err := s.productRepo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: product %s does not exist", apperrors.ErrValidation, productID)
	}

	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ProductID != productID {
			continue
		}

		items[i].Quantity += quantity
		items[i].UpdatedAt = time.Now()
		if err := s.cartRepo.UpdateQuantity(ctx, items[i].ID, items[i].Quantity); err != nil {
			return nil, err
		}

		return &items[i], nil
	}

	now := time.Now()
	item := cartitem.CartItem{
		ID:             uuid.NewString(),
		UserID:         userID,
		ProductID:      productID,
		Quantity:       quantity,
		UnitPriceCents: p.PriceCents,
		PriceCurrency:  p.PriceCurrency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.cartRepo.Insert(ctx, item); err != nil {
		return nil, err
	}

	return &item, nil
}

// UpdateItem sets a new quantity. Zero or negative quantity removes the line
// and reports Removed instead of failing.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int64) (UpdateResult, error) {
	item, err := s.cartRepo.Get(ctx, itemID)
	if err != nil {
		return UpdateResult{}, err
	}
	if item == nil || item.UserID != userID {
		return UpdateResult{}, fmt.Errorf("%w: cart item %s", apperrors.ErrNotFound, itemID)
	}

	if quantity <= 0 {
		if err := s.cartRepo.Delete(ctx, itemID); err != nil {
			return UpdateResult{}, err
		}

		return UpdateResult{Removed: true}, nil
	}

	if err := s.cartRepo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return UpdateResult{}, err
	}

	item.Quantity = quantity
	item.UpdatedAt = time.Now()

	return UpdateResult{Item: item}, nil
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	item, err := s.cartRepo.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil || item.UserID != userID {
		return fmt.Errorf("%w: cart item %s", apperrors.ErrNotFound, itemID)
	}

	return s.cartRepo.Delete(ctx, itemID)
}

// Clear empties the user's cart unconditionally.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.cartRepo.ClearByUser(ctx, userID)
}

// Snapshot produces the single priced view of the cart used by both order
// creation and payment initiation, so the two totals can never diverge.
func (s *CartService) Snapshot(ctx context.Context, userID string) (*checkout.Snapshot, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", apperrors.ErrValidation)
	}

	lines := make([]checkout.LineItem, 0, len(items))
	for _, it := range items {
		p, err := s.productRepo.Get(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: product %s is no longer available", apperrors.ErrValidation, it.ProductID)
		}

		lines = append(lines, checkout.LineItem{
			ProductID:      it.ProductID,
			ProductName:    p.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}

	return checkout.NewSnapshot(userID, lines, currency.CurrencyKES), nil
}
