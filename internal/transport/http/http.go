package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/agronexus/marketplace/internal/service/models/cartitem"
	"github.com/agronexus/marketplace/internal/service/models/checkout"
	"github.com/agronexus/marketplace/internal/service/models/order"
	"github.com/agronexus/marketplace/internal/service/models/payment"
	"github.com/agronexus/marketplace/internal/service/models/product"
	"github.com/agronexus/marketplace/internal/service/models/stats"
	"github.com/agronexus/marketplace/internal/service/models/user"
	"github.com/agronexus/marketplace/internal/service/services/authsvc"
	"github.com/agronexus/marketplace/internal/service/services/catalogsvc"
	"github.com/agronexus/marketplace/internal/service/services/cartsvc"
	"github.com/agronexus/marketplace/internal/service/services/paymentsvc"
	"github.com/agronexus/marketplace/internal/transport/http/httperr"
	authhandlers "github.com/agronexus/marketplace/internal/transport/http/v1/auth"
	carthandlers "github.com/agronexus/marketplace/internal/transport/http/v1/cart"
	orderhandlers "github.com/agronexus/marketplace/internal/transport/http/v1/orders"
	paymenthandlers "github.com/agronexus/marketplace/internal/transport/http/v1/payments"
	producthandlers "github.com/agronexus/marketplace/internal/transport/http/v1/products"
	statshandlers "github.com/agronexus/marketplace/internal/transport/http/v1/stats"
	userhandlers "github.com/agronexus/marketplace/internal/transport/http/v1/users"
	"github.com/agronexus/marketplace/pkg/http/middleware/auth"
	"github.com/agronexus/marketplace/pkg/http/middleware/trace"
	"github.com/agronexus/marketplace/pkg/logger"
)

type authService interface {
	Register(ctx context.Context, in authsvc.RegisterInput) (*user.User, string, error)
	Login(ctx context.Context, email, password string) (*user.User, string, error)
	VerifyToken(ctx context.Context, token string) (*user.User, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	UpdateProfile(ctx context.Context, actor *user.User, id string, in authsvc.UpdateProfileInput) (*user.User, error)
}

type catalogService interface {
	List(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, int64, error)
	Get(ctx context.Context, id string) (*product.Product, error)
	Create(ctx context.Context, farmerID string, in catalogsvc.CreateInput) (*product.Product, error)
	Update(ctx context.Context, farmerID, id string, in catalogsvc.UpdateInput) (*product.Product, error)
	Delete(ctx context.Context, farmerID, id string) error
	Categories(ctx context.Context) ([]string, error)
}

type cartService interface {
	Get(ctx context.Context, userID string) ([]cartitem.CartItem, error)
	AddItem(ctx context.Context, userID, productID string, quantity int64) (*cartitem.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID string, quantity int64) (cartsvc.UpdateResult, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
	Snapshot(ctx context.Context, userID string) (*checkout.Snapshot, error)
}

type orderService interface {
	CreateFromSnapshot(ctx context.Context, snap *checkout.Snapshot, opts order.CreateOptions) (*order.Order, error)
	GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	GetOrder(ctx context.Context, id string) (*order.Order, error)
	UpdateStatus(ctx context.Context, id string, next order.Status) (*order.Order, error)
	Cancel(ctx context.Context, buyerID, id string) (*order.Order, error)
	Delete(ctx context.Context, id string) error
}

type paymentService interface {
	InitiateFromCart(ctx context.Context, userID string, method payment.Method, contact paymentsvc.Contact) (*payment.Payment, error)
	Checkout(ctx context.Context, userID string, method payment.Method, contact paymentsvc.Contact, opts order.CreateOptions) (*paymentsvc.CheckoutResult, error)
	Get(ctx context.Context, id string) (*payment.Payment, error)
	CheckStatus(ctx context.Context, id string) (*payment.Payment, error)
	Cancel(ctx context.Context, userID, id string) (*payment.Payment, error)
	Stats(ctx context.Context) (*payment.Stats, error)
}

type statsService interface {
	Dashboard(ctx context.Context, u *user.User) (*stats.Dashboard, error)
	AdminTotals(ctx context.Context) (*stats.AdminTotals, error)
	ListUsers(ctx context.Context, page, limit int) ([]user.User, int64, error)
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	auth     authService
	catalog  catalogService
	cart     cartService
	orders   orderService
	payments paymentService
	stats    statsService
}

func NewHTTPTransport(
	auth authService,
	catalog catalogService,
	cart cartService,
	orders orderService,
	payments paymentService,
	stats statsService,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:   server,
		router:   router,
		auth:     auth,
		catalog:  catalog,
		cart:     cart,
		orders:   orders,
		payments: payments,
		stats:    stats,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	requireAuth := auth.NewAuthMiddleware(h.auth)

	h.router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Get("/products", h.listProducts)
		r.Get("/products/categories", h.productCategories)
		r.Get("/products/{id}", h.getProduct)

		r.Get("/users/{id}", h.userProfile)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/auth/me", h.me)
			r.Put("/auth/me", h.updateProfile)

			r.Post("/products", h.createProduct)
			r.Put("/products/{id}", h.updateProduct)
			r.Delete("/products/{id}", h.deleteProduct)

			r.Get("/cart", h.getCart)
			r.Post("/cart/items", h.addCartItem)
			r.Put("/cart/items/{itemId}", h.updateCartItem)
			r.Delete("/cart/items/{itemId}", h.removeCartItem)
			r.Delete("/cart", h.clearCart)

			r.Post("/orders", h.createOrder)
			r.Get("/orders", h.listOrders)
			r.Get("/orders/{id}", h.getOrder)
			r.Put("/orders/{id}/status", h.updateOrderStatus)
			r.Post("/orders/{id}/cancel", h.cancelOrder)
			r.Delete("/orders/{id}", h.deleteOrder)

			r.Post("/payments/initiate", h.initiatePayment)
			r.Post("/payments/checkout", h.checkoutPayment)
			r.Get("/payments/stats", h.paymentStats)
			r.Get("/payments/{id}", h.getPayment)
			r.Post("/payments/{id}/check", h.checkPaymentStatus)
			r.Post("/payments/{id}/cancel", h.cancelPayment)

			r.Get("/dashboard/stats", h.dashboardStats)
			r.Get("/admin/stats", h.adminStats)
			r.Get("/admin/users", h.adminUsers)
		})
	})
}

func (h *HTTPTransport) health(w http.ResponseWriter, _ *http.Request) {
	httperr.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPTransport) register(w http.ResponseWriter, r *http.Request) {
	authhandlers.Register(w, r, h.auth)
}

func (h *HTTPTransport) login(w http.ResponseWriter, r *http.Request) {
	authhandlers.Login(w, r, h.auth)
}

func (h *HTTPTransport) me(w http.ResponseWriter, r *http.Request) {
	authhandlers.Me(w, r)
}

func (h *HTTPTransport) updateProfile(w http.ResponseWriter, r *http.Request) {
	authhandlers.UpdateProfile(w, r, h.auth)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	producthandlers.List(w, r, h.catalog)
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	producthandlers.Get(w, r, h.catalog)
}

func (h *HTTPTransport) createProduct(w http.ResponseWriter, r *http.Request) {
	producthandlers.Create(w, r, h.catalog)
}

func (h *HTTPTransport) updateProduct(w http.ResponseWriter, r *http.Request) {
	producthandlers.Update(w, r, h.catalog)
}

func (h *HTTPTransport) deleteProduct(w http.ResponseWriter, r *http.Request) {
	producthandlers.Delete(w, r, h.catalog)
}

func (h *HTTPTransport) productCategories(w http.ResponseWriter, r *http.Request) {
	producthandlers.Categories(w, r, h.catalog)
}

func (h *HTTPTransport) getCart(w http.ResponseWriter, r *http.Request) {
	carthandlers.Get(w, r, h.cart)
}

func (h *HTTPTransport) addCartItem(w http.ResponseWriter, r *http.Request) {
	carthandlers.AddItem(w, r, h.cart)
}

func (h *HTTPTransport) updateCartItem(w http.ResponseWriter, r *http.Request) {
	carthandlers.UpdateItem(w, r, h.cart)
}

func (h *HTTPTransport) removeCartItem(w http.ResponseWriter, r *http.Request) {
	carthandlers.RemoveItem(w, r, h.cart)
}

func (h *HTTPTransport) clearCart(w http.ResponseWriter, r *http.Request) {
	carthandlers.Clear(w, r, h.cart)
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	orderhandlers.Create(w, r, h.orders, h.cart)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	orderhandlers.List(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	orderhandlers.Get(w, r, h.orders)
}

func (h *HTTPTransport) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderhandlers.UpdateStatus(w, r, h.orders)
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderhandlers.Cancel(w, r, h.orders)
}

func (h *HTTPTransport) deleteOrder(w http.ResponseWriter, r *http.Request) {
	orderhandlers.Delete(w, r, h.orders)
}

func (h *HTTPTransport) initiatePayment(w http.ResponseWriter, r *http.Request) {
	paymenthandlers.Initiate(w, r, h.payments)
}

func (h *HTTPTransport) checkoutPayment(w http.ResponseWriter, r *http.Request) {
	paymenthandlers.Checkout(w, r, h.payments)
}

func (h *HTTPTransport) getPayment(w http.ResponseWriter, r *http.Request) {
	paymenthandlers.Get(w, r, h.payments)
}

func (h *HTTPTransport) checkPaymentStatus(w http.ResponseWriter, r *http.Request) {
	paymenthandlers.CheckStatus(w, r, h.payments)
}

func (h *HTTPTransport) cancelPayment(w http.ResponseWriter, r *http.Request) {
	paymenthandlers.Cancel(w, r, h.payments)
}

func (h *HTTPTransport) paymentStats(w http.ResponseWriter, r *http.Request) {
	paymenthandlers.Stats(w, r, h.payments)
}

func (h *HTTPTransport) userProfile(w http.ResponseWriter, r *http.Request) {
	userhandlers.Profile(w, r, h.auth)
}

func (h *HTTPTransport) dashboardStats(w http.ResponseWriter, r *http.Request) {
	statshandlers.Dashboard(w, r, h.stats)
}

func (h *HTTPTransport) adminStats(w http.ResponseWriter, r *http.Request) {
	statshandlers.AdminTotals(w, r, h.stats)
}

func (h *HTTPTransport) adminUsers(w http.ResponseWriter, r *http.Request) {
	statshandlers.AdminUsers(w, r, h.stats)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
