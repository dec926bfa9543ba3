package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/agronexus/marketplace/internal/dal/postgres"
	"github.com/agronexus/marketplace/internal/dal/rabbitmq"
	outboxrepo "github.com/agronexus/marketplace/internal/dal/repositories/outbox/postgres"
	"github.com/agronexus/marketplace/internal/gateway"
	"github.com/agronexus/marketplace/internal/otel"
	"github.com/agronexus/marketplace/internal/service/models/outbox"
	"github.com/agronexus/marketplace/internal/service/services/authsvc"
	"github.com/agronexus/marketplace/internal/service/services/cartsvc"
	"github.com/agronexus/marketplace/internal/service/services/catalogsvc"
	"github.com/agronexus/marketplace/internal/service/services/ordersvc"
	"github.com/agronexus/marketplace/internal/service/services/paymentsvc"
	"github.com/agronexus/marketplace/internal/service/services/statssvc"
	httptransport "github.com/agronexus/marketplace/internal/transport/http"
	outboxworker "github.com/agronexus/marketplace/internal/worker/outbox"
	reconcileworker "github.com/agronexus/marketplace/internal/worker/reconcile"
)

// App represents the application.
type App struct {
	transport       *httptransport.HTTPTransport
	outboxWorker    *outboxworker.Worker
	reconcileWorker *reconcileworker.Worker
	postgresClient  *postgres.Client
	rabbitClient    *rabbitmq.Client
	otelController  *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient(outbox.EventsExchange)

	authSvc := authsvc.MustNewAuthService(
		authsvc.WithPostgresClient(postgresClient),
	)
	catalogSvc := catalogsvc.MustNewCatalogService(
		catalogsvc.WithPostgresClient(postgresClient),
	)
	cartSvc := cartsvc.MustNewCartService(
		cartsvc.WithPostgresClient(postgresClient),
	)
	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)
	paymentSvc := paymentsvc.MustNewPaymentService(
		paymentsvc.WithPostgresClient(postgresClient),
		paymentsvc.WithGateway(newGateway()),
		paymentsvc.WithCartService(cartSvc),
		paymentsvc.WithOrderService(orderSvc),
	)
	statsSvc := statssvc.MustNewStatsService(
		statssvc.WithPostgresClient(postgresClient),
	)

	transport := httptransport.NewHTTPTransport(authSvc, catalogSvc, cartSvc, orderSvc, paymentSvc, statsSvc)
	transport.RegisterRoutes()

	return &App{
		transport:       transport,
		outboxWorker:    outboxworker.NewWorker(outboxrepo.NewPostgresOutboxRepository(postgresClient.Pool()), rabbitClient),
		reconcileWorker: reconcileworker.NewWorker(paymentSvc),
		postgresClient:  postgresClient,
		rabbitClient:    rabbitClient,
		otelController:  otelController,
	}
}

// newGateway selects the gateway adapter once at startup. Everything behind
// the PaymentGateway interface is identical for both modes.
func newGateway() gateway.PaymentGateway {
	if viper.GetString("gateway.mode") == "http" {
		return gateway.MustNewHTTPGateway()
	}

	completeAfter := viper.GetInt("gateway.simulator.complete_after")
	if completeAfter == 0 {
		completeAfter = 2
	}

	slog.Info("Using simulated payment gateway", "complete_after", completeAfter)

	return gateway.NewSimulator(completeAfter)
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())

	go a.outboxWorker.Start(workerCtx)
	go a.reconcileWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
