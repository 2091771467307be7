package adapters

import (
	"context"

	"gorm.io/gorm"

	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/db"
)

// GormStore implements ports.Store on a GORM connection. Inside WithinTx the
// store handed to fn is bound to the transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new store
func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn}
}

// Migrate runs auto-migration for every model the service touches
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(allModels()...)
}

// DB returns the underlying connection
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// Orders returns the order repository
func (s *GormStore) Orders() ports.OrderRepository {
	return &OrderRepository{db: s.db}
}

// Payments returns the payment repository
func (s *GormStore) Payments() ports.PaymentRepository {
	return &PaymentRepository{db: s.db}
}

// Products returns the catalog repository
func (s *GormStore) Products() ports.ProductRepository {
	return &ProductRepository{db: s.db}
}

// Cart returns the cart repository
func (s *GormStore) Cart() ports.CartRepository {
	return &CartRepository{db: s.db}
}

// WithinTx runs fn in one transaction
func (s *GormStore) WithinTx(ctx context.Context, fn func(tx ports.Repositories) error) error {
	return db.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
