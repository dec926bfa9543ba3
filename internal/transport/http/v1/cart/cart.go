package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agronexus/marketplace/internal/service/models/cartitem"
	"github.com/agronexus/marketplace/internal/service/services/cartsvc"
	"github.com/agronexus/marketplace/internal/transport/http/httperr"
	authmw "github.com/agronexus/marketplace/pkg/http/middleware/auth"
)

// service is an interface for the cart service layer.
type service interface {
	Get(ctx context.Context, userID string) ([]cartitem.CartItem, error)
	AddItem(ctx context.Context, userID, productID string, quantity int64) (*cartitem.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID string, quantity int64) (cartsvc.UpdateResult, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
}

type cartResponse struct {
	Items      []cartitem.CartItem `json:"items"`
	TotalCents int64               `json:"totalCents"`
	ItemCount  int64               `json:"itemCount"`
}

// Get returns the authenticated user's cart with its running totals.
func Get(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	items, err := service.Get(r.Context(), u.ID)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, cartResponse{
		Items:      items,
		TotalCents: cartitem.TotalCents(items),
		ItemCount:  cartitem.Count(items),
	})
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// AddItem adds a product to the cart.
func AddItem(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	var req addItemRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, err)

		return
	}

	item, err := service.AddItem(r.Context(), u.ID, req.ProductID, req.Quantity)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusCreated, item)
}

type updateItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// UpdateItem changes a line's quantity; zero removes the line.
func UpdateItem(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	var req updateItemRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, err)

		return
	}

	result, err := service.UpdateItem(r.Context(), u.ID, chi.URLParam(r, "itemId"), req.Quantity)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	if result.Removed {
		httperr.WriteJSON(w, http.StatusOK, map[string]bool{"removed": true})

		return
	}

	httperr.WriteJSON(w, http.StatusOK, result.Item)
}

// RemoveItem deletes a cart line.
func RemoveItem(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	if err := service.RemoveItem(r.Context(), u.ID, chi.URLParam(r, "itemId")); err != nil {
		httperr.Write(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear empties the cart.
func Clear(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	if err := service.Clear(r.Context(), u.ID); err != nil {
		httperr.Write(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
