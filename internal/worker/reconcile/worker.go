package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/agronexus/marketplace/internal/service/models/payment"
)

// paymentChecker is the slice of the payment API the worker drives.
type paymentChecker interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]payment.Payment, error)
	CheckStatus(ctx context.Context, id string) (*payment.Payment, error)
}

// Worker periodically re-verifies lingering pending payments against the
// gateway so records abandoned mid-flow eventually settle.
type Worker struct {
	payments     paymentChecker
	pollInterval time.Duration
	pendingAge   time.Duration
	batchSize    int
	stopCh       chan struct{}
}

// NewWorker creates a new reconciliation worker.
func NewWorker(payments paymentChecker) *Worker {
	pollIntervalSeconds := viper.GetInt("reconcile.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 60
	}

	pendingAgeSeconds := viper.GetInt("reconcile.pending_age_seconds")
	if pendingAgeSeconds == 0 {
		pendingAgeSeconds = 120
	}

	batchSize := viper.GetInt("reconcile.batch_size")
	if batchSize == 0 {
		batchSize = 50
	}

	return &Worker{
		payments:     payments,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		pendingAge:   time.Duration(pendingAgeSeconds) * time.Second,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the reconciliation loop.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Reconcile worker started", "poll_interval", w.pollInterval, "pending_age", w.pendingAge)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Reconcile worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Reconcile worker stopped")

			return
		case <-ticker.C:
			w.reconcile(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) reconcile(ctx context.Context) {
	cutoff := time.Now().Add(-w.pendingAge)

	pending, err := w.payments.ListPendingBefore(ctx, cutoff, w.batchSize)
	if err != nil {
		slog.Error("Failed to list pending payments", "error", err)

		return
	}

	if len(pending) == 0 {
		return
	}

	slog.Info("Reconciling pending payments", "count", len(pending))

	for _, p := range pending {
		if _, err := w.payments.CheckStatus(ctx, p.ID); err != nil {
			slog.Warn("Failed to reconcile payment", "payment_id", p.ID, "error", err)
		}
	}
}
