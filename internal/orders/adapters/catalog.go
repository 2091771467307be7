package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-storefront/internal/orders/ports"
	apperrors "go-storefront/pkg/errors"
)

// ProductRepository implements ports.ProductRepository over the catalog tables
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetForUpdate locks the product rows in id order so concurrent checkouts
// acquire them in the same sequence
func (r *ProductRepository) GetForUpdate(ctx context.Context, ids []string) (map[string]ports.Product, error) {
	out := make(map[string]ports.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var models []ProductModel
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to get products", result.Error)
	}

	for _, m := range models {
		out[m.ID] = ports.Product{ID: m.ID, Name: m.Name, Price: m.Price, Stock: m.Stock}
	}
	return out, nil
}

// Reserve decrements stock only when enough remains
func (r *ProductRepository) Reserve(ctx context.Context, productID string, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&ProductModel{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, apperrors.NewInternal("failed to reserve stock", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Release returns stock. Products removed from the catalog are skipped.
func (r *ProductRepository) Release(ctx context.Context, productID string, quantity int) error {
	result := r.db.WithContext(ctx).Model(&ProductModel{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return apperrors.NewInternal("failed to release stock", result.Error)
	}
	return nil
}

// CartRepository implements ports.CartRepository over the cart table
type CartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// RemoveItems deletes the user's cart entries for the given products only
func (r *CartRepository) RemoveItems(ctx context.Context, userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&CartItemModel{})
	if result.Error != nil {
		return apperrors.NewInternal("failed to clear cart", result.Error)
	}
	return nil
}
