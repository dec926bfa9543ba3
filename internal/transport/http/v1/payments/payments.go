package payments

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agronexus/marketplace/internal/service/models/order"
	"github.com/agronexus/marketplace/internal/service/models/payment"
	"github.com/agronexus/marketplace/internal/service/models/user"
	"github.com/agronexus/marketplace/internal/service/services/paymentsvc"
	"github.com/agronexus/marketplace/internal/transport/http/httperr"
	authmw "github.com/agronexus/marketplace/pkg/http/middleware/auth"
)

// service is an interface for the payment service layer.
type service interface {
	InitiateFromCart(ctx context.Context, userID string, method payment.Method, contact paymentsvc.Contact) (*payment.Payment, error)
	Checkout(ctx context.Context, userID string, method payment.Method, contact paymentsvc.Contact, opts order.CreateOptions) (*paymentsvc.CheckoutResult, error)
	Get(ctx context.Context, id string) (*payment.Payment, error)
	CheckStatus(ctx context.Context, id string) (*payment.Payment, error)
	Cancel(ctx context.Context, userID, id string) (*payment.Payment, error)
	Stats(ctx context.Context) (*payment.Stats, error)
}

type initiateRequest struct {
	Method string `json:"method"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
}

// Initiate charges the authenticated user's cart total without creating an
// order.
func Initiate(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	var req initiateRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, err)

		return
	}

	method, err := payment.ParseMethod(req.Method)
	if err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})

		return
	}

	p, err := service.InitiateFromCart(r.Context(), u.ID, method, paymentsvc.Contact{
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusCreated, p)
}

type checkoutRequest struct {
	Method          string `json:"method"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	ShippingAddress string `json:"shippingAddress"`
	DeliveryNotes   string `json:"deliveryNotes"`
}

// Checkout runs the full checkout flow: order, charge, cart clear.
func Checkout(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	var req checkoutRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, err)

		return
	}

	method, err := payment.ParseMethod(req.Method)
	if err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})

		return
	}

	result, err := service.Checkout(r.Context(), u.ID, method,
		paymentsvc.Contact{Phone: req.Phone, Email: req.Email},
		order.CreateOptions{
			ShippingAddress: req.ShippingAddress,
			DeliveryNotes:   req.DeliveryNotes,
		})
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusCreated, result)
}

// Get returns one of the authenticated user's payment records.
func Get(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	p, err := service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperr.Write(w, err)

		return
	}
	if p == nil || (p.UserID != u.ID && u.Type != user.TypeAdmin) {
		httperr.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "payment not found"})

		return
	}

	httperr.WriteJSON(w, http.StatusOK, p)
}

// CheckStatus re-verifies a payment against the gateway and returns the
// settled record.
func CheckStatus(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	p, err := service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperr.Write(w, err)

		return
	}
	if p == nil || (p.UserID != u.ID && u.Type != user.TypeAdmin) {
		httperr.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "payment not found"})

		return
	}

	p, err = service.CheckStatus(r.Context(), p.ID)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, p)
}

// Cancel abandons the authenticated user's pending payment.
func Cancel(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())

	p, err := service.Cancel(r.Context(), u.ID, chi.URLParam(r, "id"))
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, p)
}

// Stats returns aggregate payment counts. Restricted to admin accounts.
func Stats(w http.ResponseWriter, r *http.Request, service service) {
	u := authmw.UserFromContext(r.Context())
	if u.Type != user.TypeAdmin {
		httperr.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "not allowed to view payment stats"})

		return
	}

	stats, err := service.Stats(r.Context())
	if err != nil {
		httperr.Write(w, err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, stats)
}
