package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-storefront/internal/orders/domain"
	apperrors "go-storefront/pkg/errors"
)

// OrderQueryRepository implements ports.OrderQueryRepository with joined reads
type OrderQueryRepository struct {
	db *gorm.DB
}

// NewOrderQueryRepository creates a new query repository
func NewOrderQueryRepository(db *gorm.DB) *OrderQueryRepository {
	return &OrderQueryRepository{db: db}
}

func (r *OrderQueryRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Lines.Product").
		Preload("Lines.Product.Category").
		Preload("Payment")
}

// ListByUser returns the user's orders, newest first
func (r *OrderQueryRepository) ListByUser(ctx context.Context, userID string) ([]*domain.OrderView, error) {
	var models []OrderModel

	result := r.withDetails(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list orders", result.Error)
	}

	return toOrderViews(models), nil
}

// GetView returns one order with its customer
func (r *OrderQueryRepository) GetView(ctx context.Context, id string) (*domain.OrderView, error) {
	var model OrderModel

	result := r.withDetails(ctx).Preload("User").Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	return toOrderView(&model), nil
}

// List returns one page of all orders and the number of matching orders
func (r *OrderQueryRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.OrderView, int64, error) {
	filter.Normalize()

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", string(filter.Status))
		}
		if filter.PaymentStatus != "" {
			db = db.Where("payment_id IN (?)",
				r.db.Model(&PaymentModel{}).Select("id").Where("status = ?", string(filter.PaymentStatus)))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&OrderModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInternal("failed to count orders", err)
	}

	var models []OrderModel
	result := r.withDetails(ctx).Preload("User").Scopes(scope).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, apperrors.NewInternal("failed to list orders", result.Error)
	}

	return toOrderViews(models), total, nil
}

func toOrderViews(models []OrderModel) []*domain.OrderView {
	views := make([]*domain.OrderView, len(models))
	for i := range models {
		views[i] = toOrderView(&models[i])
	}
	return views
}
