package iproductrepo

import (
	"context"

	"github.com/agronexus/marketplace/internal/service/models/product"
)

// IProductRepository is an interface for product postgres repository.
// Get returns nil without error when the product is absent.
type IProductRepository interface {
	Insert(ctx context.Context, p product.Product) error
	Update(ctx context.Context, p product.Product) error
	Delete(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (*product.Product, error)
	DecrementQuantity(ctx context.Context, id string, by int64) error
	Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
	Count(ctx context.Context, filter *product.QueryProductsModel) (int64, error)
	Categories(ctx context.Context) ([]string, error)
}
