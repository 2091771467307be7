package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go-storefront/internal/orders/domain"
	apperrors "go-storefront/pkg/errors"
)

// PaymentRepository implements ports.PaymentRepository using GORM
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	model := toPaymentModel(payment)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.NewInternal("failed to create payment", err)
	}
	payment.CreatedAt = model.CreatedAt
	payment.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.get(ctx, "id = ?", id)
}

// GetByExternalRef retrieves the payment holding a gateway reference
func (r *PaymentRepository) GetByExternalRef(ctx context.Context, ref string) (*domain.Payment, error) {
	if ref == "" {
		return nil, domain.NewPaymentNotFound(ref)
	}
	return r.get(ctx, "external_ref = ?", ref)
}

func (r *PaymentRepository) get(ctx context.Context, cond, arg string) (*domain.Payment, error) {
	var model PaymentModel

	result := r.db.WithContext(ctx).Where(cond, arg).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewPaymentNotFound(arg)
		}
		return nil, apperrors.NewInternal("failed to get payment", result.Error)
	}

	return toPaymentDomain(&model), nil
}

// SetMethod changes the method and drops the gateway reference
func (r *PaymentRepository) SetMethod(ctx context.Context, id string, method domain.PaymentMethod) error {
	return r.update(ctx, id, map[string]interface{}{
		"method":       string(method),
		"external_ref": nil,
		"payment_url":  "",
	})
}

// AttachExternalRef stores the gateway reference and redirect URL
func (r *PaymentRepository) AttachExternalRef(ctx context.Context, id, ref, paymentURL string) error {
	return r.update(ctx, id, map[string]interface{}{
		"external_ref": ref,
		"payment_url":  paymentURL,
	})
}

// MarkPaid moves the Pending payment holding ref to Paid
func (r *PaymentRepository) MarkPaid(ctx context.Context, ref, transactionID string, paidAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&PaymentModel{}).
		Where("external_ref = ? AND status = ?", ref, string(domain.PaymentStatusPending)).
		Updates(map[string]interface{}{
			"status":         string(domain.PaymentStatusPaid),
			"transaction_id": transactionID,
			"paid_at":        paidAt,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return false, apperrors.NewInternal("failed to mark payment paid", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// SetStatus overwrites the status. paid_at follows the new status.
func (r *PaymentRepository) SetStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	values := map[string]interface{}{"status": string(status), "paid_at": nil}
	if status == domain.PaymentStatusPaid {
		values["paid_at"] = time.Now().UTC()
	}
	return r.update(ctx, id, values)
}

// Delete deletes a payment
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PaymentModel{})
	if result.Error != nil {
		return apperrors.NewInternal("failed to delete payment", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewPaymentNotFound(id)
	}
	return nil
}

// ListPendingGateway returns Pending gateway payments of Pending orders created in [since, before)
func (r *PaymentRepository) ListPendingGateway(ctx context.Context, since, before time.Time, limit int) ([]*domain.Payment, error) {
	var models []PaymentModel

	result := r.db.WithContext(ctx).
		Select("payments.*").
		Joins("JOIN orders ON orders.payment_id = payments.id").
		Where("payments.status = ? AND payments.method IN ?", string(domain.PaymentStatusPending), gatewayMethods()).
		Where("orders.status = ?", string(domain.OrderStatusPending)).
		Where("payments.created_at >= ? AND payments.created_at < ?", since, before).
		Order("payments.created_at ASC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list pending payments", result.Error)
	}

	payments := make([]*domain.Payment, len(models))
	for i := range models {
		payments[i] = toPaymentDomain(&models[i])
	}
	return payments, nil
}

func (r *PaymentRepository) update(ctx context.Context, id string, values map[string]interface{}) error {
	values["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&PaymentModel{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return apperrors.NewInternal("failed to update payment", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewPaymentNotFound(id)
	}
	return nil
}

func gatewayMethods() []string {
	var methods []string
	for _, m := range []domain.PaymentMethod{domain.PaymentMethodCOD, domain.PaymentMethodKhalti, domain.PaymentMethodESewa} {
		if m.RequiresGateway() {
			methods = append(methods, string(m))
		}
	}
	return methods
}
