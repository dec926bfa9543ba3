package catalogsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agronexus/marketplace/internal/apperrors"
	"github.com/agronexus/marketplace/internal/dal/interfaces/iproductrepo"
	"github.com/agronexus/marketplace/internal/dal/postgres"
	productrepo "github.com/agronexus/marketplace/internal/dal/repositories/product/postgres"
	"github.com/agronexus/marketplace/internal/service/models/currency"
	"github.com/agronexus/marketplace/internal/service/models/product"
)

// CatalogService owns the product catalog: farmer-facing CRUD and the read
// path consumed by cart and checkout.
type CatalogService struct {
	productRepo iproductrepo.IProductRepository
}

// option is a function that configures the CatalogService.
type option func(*CatalogService)

// MustNewCatalogService creates a new CatalogService.
func MustNewCatalogService(opts ...option) *CatalogService {
	s := &CatalogService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.productRepo == nil {
		panic("catalogsvc: product repository is required")
	}

	return s
}

// WithPostgresClient builds the repository from the Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CatalogService) {
		s.productRepo = productrepo.NewPostgresProductRepository(pgClient.Pool())
	}
}

// WithProductRepository sets the product repository directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductRepository(repo iproductrepo.IProductRepository) option {
	return func(s *CatalogService) {
		s.productRepo = repo
	}
}

// CreateInput carries the farmer-supplied fields of a new product.
type CreateInput struct {
	Name        string
	Description string
	Category    string
	PriceCents  int64
	Unit        string
	Quantity    int64
	IsOrganic   bool
}

// UpdateInput carries optional field updates; nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Category    *string
	PriceCents  *int64
	Unit        *string
	Quantity    *int64
	IsOrganic   *bool
	Status      *product.Status
}

// List retrieves products matching the filter plus the unpaged total count.
func (s *CatalogService) List(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, int64, error) {
	products, err := s.productRepo.Query(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Get retrieves one product, nil when absent.
func (s *CatalogService) Get(ctx context.Context, id string) (*product.Product, error) {
	return s.productRepo.Get(ctx, id)
}

// Create adds a product owned by the given farmer.
func (s *CatalogService) Create(ctx context.Context, farmerID string, in CreateInput) (*product.Product, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", apperrors.ErrValidation)
	}
	if in.PriceCents <= 0 {
		return nil, fmt.Errorf("%w: product price must be positive", apperrors.ErrValidation)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: product quantity must not be negative", apperrors.ErrValidation)
	}

	unit := in.Unit
	if unit == "" {
		unit = "kg"
	}

	now := time.Now()
	p := product.Product{
		ID:            uuid.NewString(),
		FarmerID:      farmerID,
		Name:          in.Name,
		Description:   in.Description,
		Category:      in.Category,
		PriceCents:    in.PriceCents,
		PriceCurrency: currency.CurrencyKES,
		Unit:          unit,
		Quantity:      in.Quantity,
		IsOrganic:     in.IsOrganic,
		Status:        product.StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.productRepo.Insert(ctx, p); err != nil {
		return nil, err
	}

	return &p, nil
}

// Update applies the set fields to a product owned by the farmer. A product
// that is absent or belongs to another farmer reports not found.
func (s *CatalogService) Update(ctx context.Context, farmerID, id string, in UpdateInput) (*product.Product, error) {
	p, err := s.productRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.FarmerID != farmerID {
		return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, id)
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.PriceCents != nil {
		if *in.PriceCents <= 0 {
			return nil, fmt.Errorf("%w: product price must be positive", apperrors.ErrValidation)
		}
		p.PriceCents = *in.PriceCents
	}
	if in.Unit != nil {
		p.Unit = *in.Unit
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, fmt.Errorf("%w: product quantity must not be negative", apperrors.ErrValidation)
		}
		p.Quantity = *in.Quantity
	}
	if in.IsOrganic != nil {
		p.IsOrganic = *in.IsOrganic
	}
	if in.Status != nil {
		p.Status = *in.Status
	}

	p.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, *p); err != nil {
		return nil, err
	}

	return p, nil
}

// Delete removes a product owned by the farmer.
func (s *CatalogService) Delete(ctx context.Context, farmerID, id string) error {
	p, err := s.productRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if p == nil || p.FarmerID != farmerID {
		return fmt.Errorf("%w: product %s", apperrors.ErrNotFound, id)
	}

	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: product %s", apperrors.ErrNotFound, id)
	}

	return nil
}

// Categories returns the distinct catalog categories, sorted.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.productRepo.Categories(ctx)
}
