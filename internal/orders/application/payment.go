package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/errors"
	"go-storefront/pkg/logger"
)

// PaymentRecords owns the lifecycle of Payment rows. Every method takes the
// repository to act on so callers choose between a transaction and the base store.
type PaymentRecords struct {
	log *logger.Logger
	now func() time.Time
}

// NewPaymentRecords creates a payment record manager
func NewPaymentRecords(log *logger.Logger) *PaymentRecords {
	return &PaymentRecords{
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a Pending payment with no external reference
func (p *PaymentRecords) Create(ctx context.Context, repo ports.PaymentRepository, method domain.PaymentMethod) (*domain.Payment, error) {
	payment := domain.NewPayment(method)
	if err := repo.Create(ctx, payment); err != nil {
		return nil, errors.Wrap(err, "failed to create payment")
	}
	return payment, nil
}

// AttachExternalRef stores the gateway reference issued for a payment
func (p *PaymentRecords) AttachExternalRef(ctx context.Context, repo ports.PaymentRepository, paymentID, ref, paymentURL string) error {
	if ref == "" {
		return domain.ErrPaymentRefRequired
	}
	if err := repo.AttachExternalRef(ctx, paymentID, ref, paymentURL); err != nil {
		return errors.Wrap(err, "failed to attach payment reference")
	}
	return nil
}

// MarkPaid settles the payment holding ref. It reports whether this call made
// the transition; an already Paid payment is a no-op.
func (p *PaymentRecords) MarkPaid(ctx context.Context, repo ports.PaymentRepository, ref, transactionID string) (bool, error) {
	if ref == "" {
		return false, domain.ErrPaymentRefRequired
	}

	changed, err := repo.MarkPaid(ctx, ref, transactionID, p.now())
	if err != nil {
		return false, errors.Wrap(err, "failed to mark payment paid")
	}
	if changed {
		p.log.WithContext(ctx).Info("payment marked paid",
			zap.String("external_ref", ref),
			zap.String("transaction_id", transactionID),
		)
		return true, nil
	}

	payment, err := repo.GetByExternalRef(ctx, ref)
	if err != nil {
		return false, err
	}
	if payment.IsPaid() {
		p.log.WithContext(ctx).Debug("payment already paid", zap.String("external_ref", ref))
		return false, nil
	}
	return false, errors.NewInternal("payment was not updated", nil)
}
