package application

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/logger"
)

// ReconcilerConfig controls the pending payment sweep
type ReconcilerConfig struct {
	Interval time.Duration
	// After is how old a payment must be before it is picked up
	After time.Duration
	// Window bounds how far back the sweep looks
	Window time.Duration
	Batch  int
}

// ReconcileStats summarizes one sweep
type ReconcileStats struct {
	Scanned         int
	Initiated       int
	VerifyRequested int
	Verified        int
	Failed          int
}

// Reconciler periodically finishes gateway payments that were left Pending:
// it initiates those that never got a reference and asks for verification of
// those that did.
type Reconciler struct {
	orders    *OrderUseCase
	payments  ports.PaymentRepository
	publisher ports.EventPublisher
	cfg       ReconcilerConfig
	log       *logger.Logger
	now       func() time.Time

	notRouted sync.Once
}

// NewReconciler creates a reconciler. With a nil publisher verification runs inline.
func NewReconciler(orders *OrderUseCase, payments ports.PaymentRepository, publisher ports.EventPublisher, cfg ReconcilerConfig, log *logger.Logger) *Reconciler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 50
	}
	return &Reconciler{
		orders:    orders,
		payments:  payments,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run sweeps every interval until ctx is cancelled
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.log.Info("payment reconciler started",
		zap.Duration("interval", r.cfg.Interval),
		zap.Duration("after", r.cfg.After),
	)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("payment reconciler stopped")
			return nil
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep
func (r *Reconciler) RunOnce(ctx context.Context) ReconcileStats {
	var stats ReconcileStats

	now := r.now()
	pending, err := r.payments.ListPendingGateway(ctx, now.Add(-r.cfg.Window), now.Add(-r.cfg.After), r.cfg.Batch)
	if err != nil {
		r.log.Error("failed to list pending payments", zap.Error(err))
		return stats
	}
	stats.Scanned = len(pending)

	for _, p := range pending {
		if ctx.Err() != nil {
			break
		}

		if p.ExternalRef == "" {
			if err := r.orders.ResumePayment(ctx, p.ID); err != nil {
				stats.Failed++
				r.log.Warn("failed to resume payment", zap.Error(err), zap.String("payment_id", p.ID))
				continue
			}
			stats.Initiated++
			continue
		}

		if r.publisher != nil {
			err := r.publisher.PublishVerifyRequested(ctx, p.ExternalRef)
			switch {
			case err == nil:
				stats.VerifyRequested++
				continue
			case stderrors.Is(err, ports.ErrVerifyNotRouted):
				r.notRouted.Do(func() {
					r.log.Debug("broker does not route verification requests, verifying inline")
				})
			default:
				r.log.Warn("failed to request payment verification, verifying inline",
					zap.Error(err),
					zap.String("external_ref", p.ExternalRef),
				)
			}
		}

		if _, err := r.orders.VerifyPayment(ctx, p.ExternalRef); err != nil {
			stats.Failed++
			r.log.Warn("failed to verify payment", zap.Error(err), zap.String("external_ref", p.ExternalRef))
			continue
		}
		stats.Verified++
	}

	if stats.Scanned > 0 {
		r.log.Info("payment reconciliation finished",
			zap.Int("scanned", stats.Scanned),
			zap.Int("initiated", stats.Initiated),
			zap.Int("verify_requested", stats.VerifyRequested),
			zap.Int("verified", stats.Verified),
			zap.Int("failed", stats.Failed),
		)
	}
	return stats
}
