package products

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agronexus/marketplace/internal/service/models/product"
	"github.com/agronexus/marketplace/internal/service/services/catalogsvc"
	"github.com/agronexus/marketplace/internal/transport/http/httperr"
	authmw "github.com/agronexus/marketplace/pkg/http/middleware/auth"
)

// service is an interface for the catalog service layer.
type service interface {
	List(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, int64, error)
	Get(ctx context.Context, id string) (*product.Product, error)
	Create(ctx context.Context, farmerID string, in catalogsvc.CreateInput) (*product.Product, error)
	Update(ctx context.Context, farmerID, id string, in catalogsvc.UpdateInput) (*product.Product, error)
	Delete(ctx context.Context, farmerID, id string) error
	Categories(ctx context.Context) ([]string, error)
}

type listResponse struct {
	Products []product.Product `json:"products"`
	Total    int64             `json:"total"`
}

// List handles the catalog listing with optional filters and paging.
func List(w http.ResponseWriter, r *http.Request, service service) {
	q := r.URL.Query()

	filter := &product.QueryProductsModel{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if farmerID := q.Get("farmerId"); farmerID != "" {
		filter.FarmerIds = []string{farmerID}
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}

	items, total, err := service.List(r.Context(), filter)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, listResponse{Products: items, Total: total})
}

// Get handles a single product lookup.
func Get(w http.ResponseWriter, r *http.Request, service service) {
	p, err := service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperr.Write(w, err)

		return
	}
	if p == nil {
		httperr.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})

		return
	}

	httperr.WriteJSON(w, http.StatusOK, p)
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"priceCents"`
	Unit        string `json:"unit"`
	Quantity    int64  `json:"quantity"`
	IsOrganic   bool   `json:"isOrganic"`
}

// Create handles product creation by the authenticated farmer.
func Create(w http.ResponseWriter, r *http.Request, service service) {
	farmer := authmw.UserFromContext(r.Context())

	var req createRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, err)

		return
	}

	p, err := service.Create(r.Context(), farmer.ID, catalogsvc.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		IsOrganic:   req.IsOrganic,
	})
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusCreated, p)
}

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	PriceCents  *int64  `json:"priceCents"`
	Unit        *string `json:"unit"`
	Quantity    *int64  `json:"quantity"`
	IsOrganic   *bool   `json:"isOrganic"`
	Status      *string `json:"status"`
}

// Update handles product updates by the owning farmer.
func Update(w http.ResponseWriter, r *http.Request, service service) {
	farmer := authmw.UserFromContext(r.Context())

	var req updateRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, err)

		return
	}

	in := catalogsvc.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		IsOrganic:   req.IsOrganic,
	}
	if req.Status != nil {
		status := product.Status(*req.Status)
		in.Status = &status
	}

	p, err := service.Update(r.Context(), farmer.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, p)
}

// Delete handles product removal by the owning farmer.
func Delete(w http.ResponseWriter, r *http.Request, service service) {
	farmer := authmw.UserFromContext(r.Context())

	if err := service.Delete(r.Context(), farmer.ID, chi.URLParam(r, "id")); err != nil {
		httperr.Write(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Categories handles the distinct category listing.
func Categories(w http.ResponseWriter, r *http.Request, service service) {
	categories, err := service.Categories(r.Context())
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}
