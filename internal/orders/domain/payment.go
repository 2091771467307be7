package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how the customer pays for an order
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodKhalti PaymentMethod = "Khalti"
	PaymentMethodESewa  PaymentMethod = "eSewa"
)

// ParsePaymentMethod parses a method name, ignoring case
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, m := range []PaymentMethod{PaymentMethodCOD, PaymentMethodKhalti, PaymentMethodESewa} {
		if strings.EqualFold(string(m), s) {
			return m, nil
		}
	}
	return "", NewInvalidPaymentMethod(s)
}

// RequiresGateway reports whether the method redirects to a third-party payment page.
// eSewa orders are settled manually by an operator.
func (m PaymentMethod) RequiresGateway() bool {
	return m == PaymentMethodKhalti
}

// PaymentStatus is the settlement status of a payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// ParsePaymentStatus parses a payment status name, ignoring case
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, st := range []PaymentStatus{PaymentStatusPending, PaymentStatusPaid} {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", NewInvalidPaymentStatus(s)
}

// Payment is the payment record of exactly one order
type Payment struct {
	ID            string
	Method        PaymentMethod
	Status        PaymentStatus
	ExternalRef   string
	PaymentURL    string
	TransactionID string
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPayment creates a Pending payment without an external reference
func NewPayment(method PaymentMethod) *Payment {
	now := time.Now().UTC()
	return &Payment{
		ID:        uuid.NewString(),
		Method:    method,
		Status:    PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPaid reports whether the payment has settled
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

// TransactionState is the provider-side state of a gateway transaction
type TransactionState string

const (
	TransactionCompleted TransactionState = "Completed"
	TransactionPending   TransactionState = "Pending"
	TransactionInitiated TransactionState = "Initiated"
	TransactionRefunded  TransactionState = "Refunded"
	TransactionExpired   TransactionState = "Expired"
	TransactionCancelled TransactionState = "Cancelled"
)
