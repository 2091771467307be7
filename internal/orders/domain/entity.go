package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "Pending"
	OrderStatusPreparation OrderStatus = "Preparation"
	OrderStatusInTransit   OrderStatus = "InTransit"
	OrderStatusDelivered   OrderStatus = "Delivered"
	OrderStatusCancelled   OrderStatus = "Cancelled"
)

// orderTransitions is the customer-facing lifecycle. Administrative changes
// may leave it; they are only warned about.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:     {OrderStatusPreparation, OrderStatusCancelled},
	OrderStatusPreparation: {OrderStatusInTransit, OrderStatusCancelled},
	OrderStatusInTransit:   {OrderStatusDelivered},
}

// ParseOrderStatus parses a status name, ignoring case
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range []OrderStatus{
		OrderStatusPending, OrderStatusPreparation, OrderStatusInTransit,
		OrderStatusDelivered, OrderStatusCancelled,
	} {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", NewInvalidOrderStatus(s)
}

// CanTransitionTo reports whether next is a lifecycle successor of s
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no lifecycle transition leaves s
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// ItemRequest is one (product, quantity) pair submitted at checkout
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// LineItem is one product and quantity belonging to an order
type LineItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns quantity times the price at purchase
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order represents the order aggregate root
type Order struct {
	ID              string
	UserID          string
	ContactPhone    string
	ShippingAddress string
	ShippingFee     decimal.Decimal
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	PaymentID       string
	Lines           []LineItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

var phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)

// ValidateContact checks the contact phone and shipping address
func ValidateContact(phone, address string) error {
	if !phoneRegex.MatchString(phone) {
		return ErrInvalidContact
	}
	if len(strings.TrimSpace(address)) < 3 {
		return ErrInvalidAddress
	}
	return nil
}

// NewOrder creates a Pending order for userID with validated contact details
func NewOrder(userID, phone, address, paymentID string) (*Order, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if err := ValidateContact(phone, address); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		ContactPhone:    phone,
		ShippingAddress: strings.TrimSpace(address),
		Status:          OrderStatusPending,
		PaymentID:       paymentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// SetLines replaces every line item and recomputes the total from them
func (o *Order) SetLines(lines []LineItem, shippingFee decimal.Decimal) error {
	if len(lines) == 0 {
		return ErrEmptyItems
	}

	total := shippingFee
	o.Lines = make([]LineItem, len(lines))
	for i, line := range lines {
		line.ID = uuid.NewString()
		line.OrderID = o.ID
		o.Lines[i] = line
		total = total.Add(line.Subtotal())
	}

	o.ShippingFee = shippingFee
	o.TotalAmount = total
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// ProductIDs returns the distinct products on the order
func (o *Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// OwnedBy reports whether userID placed the order
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID == userID
}

// CanEdit allows edits while the order is still Pending
func (o *Order) CanEdit() error {
	if o.Status != OrderStatusPending {
		return NewOrderNotEditable(o.Status)
	}
	return nil
}

// CanDelete allows deletion while the order is still Pending
func (o *Order) CanDelete() error {
	if o.Status != OrderStatusPending {
		return NewOrderNotDeletable(o.Status)
	}
	return nil
}

// Cancel moves a Pending or Preparation order to Cancelled
func (o *Order) Cancel() error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return NewOrderNotCancellable(o.Status)
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// ForceStatus sets the status without consulting the lifecycle and returns
// the previous one. Used by administrative overrides.
func (o *Order) ForceStatus(next OrderStatus) OrderStatus {
	prev := o.Status
	o.Status = next
	o.UpdatedAt = time.Now().UTC()
	return prev
}
