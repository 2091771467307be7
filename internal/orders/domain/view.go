package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Read-side projections joined across orders, catalog, payments and users.

// ProductView is the catalog side of a line item
type ProductView struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Image    string
	Category string
}

// LineItemView is a line item with its product
type LineItemView struct {
	ID        string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Product   ProductView
}

// CustomerView is the user who placed an order (admin projections only)
type CustomerView struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// OrderView is the full read model of an order
type OrderView struct {
	ID              string
	UserID          string
	ContactPhone    string
	ShippingAddress string
	ShippingFee     decimal.Decimal
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	Payment         Payment
	Lines           []LineItemView
	Customer        *CustomerView
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderFilter narrows the admin order list
type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Page          int
	Limit         int
}

// Normalize clamps paging to sane bounds
func (f *OrderFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

// Offset returns the row offset for the current page
func (f OrderFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
