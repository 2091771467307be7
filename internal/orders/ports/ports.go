package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"go-storefront/internal/orders/domain"
)

// Store gives access to repositories, either directly or inside one transaction
type Store interface {
	Repositories

	// WithinTx runs fn in a single database transaction. Any error rolls back everything fn wrote.
	WithinTx(ctx context.Context, fn func(tx Repositories) error) error
}

// Repositories groups the repositories that take part in an order write
type Repositories interface {
	Orders() OrderRepository
	Payments() PaymentRepository
	Products() ProductRepository
	Cart() CartRepository
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create inserts the order and its line items
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its line items
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetForUpdate retrieves an order and locks its row until the transaction ends
	GetForUpdate(ctx context.Context, id string) (*domain.Order, error)

	// Update saves the order's scalar fields
	Update(ctx context.Context, order *domain.Order) error

	// ReplaceLines deletes the current line items and inserts order.Lines
	ReplaceLines(ctx context.Context, order *domain.Order) error

	// Delete deletes an order and its line items
	Delete(ctx context.Context, id string) error

	// GetByPaymentID retrieves the order referencing a payment
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByExternalRef(ctx context.Context, ref string) (*domain.Payment, error)

	// SetMethod changes the method and drops any external reference and redirect URL
	SetMethod(ctx context.Context, id string, method domain.PaymentMethod) error

	// AttachExternalRef stores the gateway reference and redirect URL
	AttachExternalRef(ctx context.Context, id, ref, paymentURL string) error

	// MarkPaid moves a Pending payment with ref to Paid. It reports whether a
	// row changed; false with a nil error means no Pending payment has ref.
	MarkPaid(ctx context.Context, ref, transactionID string, paidAt time.Time) (bool, error)

	// SetStatus overwrites the status unconditionally
	SetStatus(ctx context.Context, id string, status domain.PaymentStatus) error

	Delete(ctx context.Context, id string) error

	// ListPendingGateway returns Pending gateway payments of Pending orders
	// created between since and before, oldest first
	ListPendingGateway(ctx context.Context, since, before time.Time, limit int) ([]*domain.Payment, error)
}

// Product is the catalog's authoritative view of a product
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}

// ProductRepository is the catalog collaborator
type ProductRepository interface {
	// GetForUpdate returns the products with ids, locking their rows; missing ids are omitted
	GetForUpdate(ctx context.Context, ids []string) (map[string]Product, error)

	// Reserve decrements stock by quantity only if enough remains; false means it did not
	Reserve(ctx context.Context, productID string, quantity int) (bool, error)

	// Release returns quantity units to stock
	Release(ctx context.Context, productID string, quantity int) error
}

// CartRepository is the cart collaborator
type CartRepository interface {
	// RemoveItems deletes the user's cart entries for productIDs only
	RemoveItems(ctx context.Context, userID string, productIDs []string) error
}

// OrderQueryRepository serves read-side projections
type OrderQueryRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.OrderView, error)
	GetView(ctx context.Context, id string) (*domain.OrderView, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.OrderView, int64, error)
}

// InitiateRequest is what the gateway needs to open a payment page
type InitiateRequest struct {
	OrderID       string
	OrderName     string
	AmountMinor   int64
	CustomerName  string
	CustomerPhone string
}

// InitiateResult is the gateway's answer to an initiation
type InitiateResult struct {
	ExternalRef string
	RedirectURL string
	ExpiresAt   time.Time
}

// Transaction is the provider-side state of an initiated payment
type Transaction struct {
	ExternalRef   string
	State         domain.TransactionState
	AmountMinor   int64
	TransactionID string
	FeeMinor      int64
	Refunded      bool
}

// PaymentGateway talks to a redirect-based payment provider
type PaymentGateway interface {
	// Initiate opens a transaction; provider errors and timeouts return GatewayUnavailable
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)

	// Verify looks up the settlement state of a previously initiated transaction
	Verify(ctx context.Context, externalRef string) (*Transaction, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order, method domain.PaymentMethod) error
	PublishOrderStatusChanged(ctx context.Context, orderID string, prev, next domain.OrderStatus, actorID string) error
	PublishPaymentCompleted(ctx context.Context, payment *domain.Payment, orderID string) error
	PublishVerifyRequested(ctx context.Context, externalRef string) error
}

// ErrVerifyNotRouted is returned by PublishVerifyRequested when the broker has
// no verification consumer. Callers verify inline instead.
var ErrVerifyNotRouted = errors.New("payment verification requests are not routed on this broker")
