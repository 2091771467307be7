package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-storefront/internal/orders/domain"
	apperrors "go-storefront/pkg/errors"
)

// OrderRepository implements ports.OrderRepository using GORM
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and its line items
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model := toOrderModel(order)
	lines := model.Lines
	model.Lines = nil

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return apperrors.NewInternal("failed to create order", err)
	}
	if len(lines) > 0 {
		if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&lines).Error; err != nil {
			return apperrors.NewInternal("failed to create order lines", err)
		}
	}

	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves an order with its line items
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.get(ctx, r.db.WithContext(ctx), "id = ?", id)
}

// GetForUpdate retrieves an order and locks its row
func (r *OrderRepository) GetForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	return r.get(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

// GetByPaymentID retrieves the order referencing a payment
func (r *OrderRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	return r.get(ctx, r.db.WithContext(ctx), "payment_id = ?", paymentID)
}

func (r *OrderRepository) get(ctx context.Context, q *gorm.DB, cond string, arg string) (*domain.Order, error) {
	var model OrderModel

	result := q.Where(cond, arg).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(arg)
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	if err := r.db.WithContext(ctx).Where("order_id = ?", model.ID).Order("position").Find(&model.Lines).Error; err != nil {
		return nil, apperrors.NewInternal("failed to get order lines", err)
	}

	return toOrderDomain(&model), nil
}

// Update saves the order's scalar fields
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"contact_phone":    order.ContactPhone,
		"shipping_address": order.ShippingAddress,
		"shipping_fee":     order.ShippingFee,
		"total_amount":     order.TotalAmount,
		"status":           string(order.Status),
		"updated_at":       order.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.NewInternal("failed to update order", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewOrderNotFound(order.ID)
	}
	return nil
}

// ReplaceLines deletes the current line items and inserts order.Lines
func (r *OrderRepository) ReplaceLines(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", order.ID).Delete(&LineItemModel{}).Error; err != nil {
		return apperrors.NewInternal("failed to delete order lines", err)
	}

	lines := toLineModels(order)
	if len(lines) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&lines).Error; err != nil {
		return apperrors.NewInternal("failed to create order lines", err)
	}
	return nil
}

// Delete deletes an order and its line items
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Delete(&LineItemModel{}).Error; err != nil {
		return apperrors.NewInternal("failed to delete order lines", err)
	}

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&OrderModel{})
	if result.Error != nil {
		return apperrors.NewInternal("failed to delete order", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewOrderNotFound(id)
	}
	return nil
}
