package orders

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agronexus/marketplace/internal/service/models/checkout"
	"github.com/agronexus/marketplace/internal/service/models/order"
	"github.com/agronexus/marketplace/internal/service/models/user"
	"github.com/agronexus/marketplace/internal/transport/http/httperr"
	authmw "github.com/agronexus/marketplace/pkg/http/middleware/auth"
)

// service is an interface for the order service layer.
type service interface {
	CreateFromSnapshot(ctx context.Context, snap *checkout.Snapshot, opts order.CreateOptions) (*order.Order, error)
	GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	GetOrder(ctx context.Context, id string) (*order.Order, error)
	UpdateStatus(ctx context.Context, id string, next order.Status) (*order.Order, error)
	Cancel(ctx context.Context, buyerID, id string) (*order.Order, error)
	Delete(ctx context.Context, id string) error
}

// cartService supplies the priced snapshot consumed at order creation.
type cartService interface {
	Snapshot(ctx context.Context, userID string) (*checkout.Snapshot, error)
	Clear(ctx context.Context, userID string) error
}

type createRequest struct {
	PaymentMethod   string `json:"paymentMethod"`
	ShippingAddress string `json:"shippingAddress"`
	DeliveryNotes   string `json:"deliveryNotes"`
	PhoneNumber     string `json:"phoneNumber"`
}

// Create creates an order from the authenticated user's cart and clears it.
func Create(w http.ResponseWriter, r *http.Request, service service, carts cartService) {
	u := authmw.UserFromContext(r.Context())

	var req createRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, err)

		return
	}

	snap, err := carts.Snapshot(r.Context(), u.ID)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	o, err := service.CreateFromSnapshot(r.Context(), snap, order.CreateOptions{
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		DeliveryNotes:   req.DeliveryNotes,
		PhoneNumber:     req.PhoneNumber,
	})
	if err != nil {
		httperr.Write(w, err)

		return
	}

	if err := carts.Clear(r.Context(), u.ID); err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusCreated, o)
}

// List returns the authenticated user's orders, newest first.
func List(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	q := r.URL.Query()
	filter := &order.QueryOrdersModel{BuyerIds: []string{u.ID}}
	if status, err := order.ParseStatus(q.Get("status")); err == nil {
		filter.Statuses = []order.Status{status}
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}

	orders, err := service.GetOrders(r.Context(), filter)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, map[string][]order.Order{"orders": orders})
}

// Get returns one of the authenticated user's orders.
func Get(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	o, err := service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperr.Write(w, err)

		return
	}
	if o == nil || (o.BuyerID != u.ID && u.Type != user.TypeAdmin) {
		httperr.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})

		return
	}

	httperr.WriteJSON(w, http.StatusOK, o)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an order's fulfillment status along a legal edge.
// Restricted to farmer and admin accounts.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())
	if u.Type != user.TypeFarmer && u.Type != user.TypeAdmin {
		httperr.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "not allowed to update order status"})

		return
	}

	var req updateStatusRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, err)

		return
	}

	next, err := order.ParseStatus(req.Status)
	if err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})

		return
	}

	o, err := service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), next)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, o)
}

// Delete removes an order record entirely. Restricted to admin accounts.
func Delete(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())
	if u.Type != user.TypeAdmin {
		httperr.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "not allowed to delete orders"})

		return
	}

	if err := service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httperr.Write(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Cancel cancels the authenticated user's order if it has not shipped.
func Cancel(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	o, err := service.Cancel(r.Context(), u.ID, chi.URLParam(r, "id"))
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, o)
}
