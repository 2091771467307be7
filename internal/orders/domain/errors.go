package domain

import (
	stderrors "errors"

	"go-storefront/pkg/errors"
)

// Reason tags carried in error details; clients branch on these
const (
	ReasonInvalidQuantity     = "invalid_quantity"
	ReasonInsufficientStock   = "insufficient_stock"
	ReasonProductNotFound     = "product_not_found"
	ReasonPaymentNotFound     = "payment_not_found"
	ReasonOrderNotEditable    = "order_not_editable"
	ReasonOrderNotCancellable = "order_not_cancellable"
	ReasonOrderNotDeletable   = "order_not_deletable"
	ReasonPaymentSettled      = "payment_settled"
	ReasonAmountMismatch      = "amount_mismatch"
)

// Domain-specific errors
var (
	ErrUserIDRequired      = errors.NewValidation("user id is required", nil)
	ErrEmptyItems          = errors.NewValidation("order must contain at least one item", map[string]interface{}{"field": "items"})
	ErrInvalidContact      = errors.NewValidation("contact must be exactly 10 digits", map[string]interface{}{"field": "contact"})
	ErrInvalidAddress      = errors.NewValidation("address must be at least 3 characters", map[string]interface{}{"field": "address"})
	ErrNegativeShippingFee = errors.NewValidation("shipping fee cannot be negative", map[string]interface{}{"field": "shipping_fee"})
	ErrPaymentRefRequired  = errors.NewValidation("pidx is required", map[string]interface{}{"field": "pidx"})
	ErrPaymentNotRetryable = errors.NewConflict("payment cannot be initiated for this order", map[string]interface{}{"reason": ReasonPaymentSettled})
)

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(id string) error {
	return errors.NewNotFound("order", id)
}

// NewProductNotFound reports a checkout item that does not resolve
func NewProductNotFound(id string) error {
	err := errors.NewNotFound("product", id)
	err.Details = map[string]interface{}{"reason": ReasonProductNotFound, "product_id": id}
	return err
}

// NewPaymentNotFound reports an unknown gateway reference or payment
func NewPaymentNotFound(ref string) error {
	err := errors.NewNotFound("payment", ref)
	err.Details = map[string]interface{}{"reason": ReasonPaymentNotFound}
	return err
}

// NewInvalidQuantity reports a non-positive quantity
func NewInvalidQuantity(productID string, quantity int) error {
	return errors.NewValidation("quantity must be at least 1", map[string]interface{}{
		"field":      "items",
		"reason":     ReasonInvalidQuantity,
		"product_id": productID,
		"quantity":   quantity,
	})
}

// NewInsufficientStock names the product whose stock cannot cover the request
func NewInsufficientStock(productID, name string, requested, available int) error {
	return errors.NewValidation("insufficient stock for "+name, map[string]interface{}{
		"field":      "items",
		"reason":     ReasonInsufficientStock,
		"product_id": productID,
		"requested":  requested,
		"available":  available,
	})
}

// NewInvalidPaymentMethod reports an unsupported payment method
func NewInvalidPaymentMethod(method string) error {
	return errors.NewValidation("unsupported payment method '"+method+"'", map[string]interface{}{"field": "payment_method"})
}

// NewInvalidOrderStatus reports an unknown order status name
func NewInvalidOrderStatus(status string) error {
	return errors.NewValidation("unknown order status '"+status+"'", map[string]interface{}{"field": "status"})
}

// NewInvalidPaymentStatus reports an unknown payment status name
func NewInvalidPaymentStatus(status string) error {
	return errors.NewValidation("unknown payment status '"+status+"'", map[string]interface{}{"field": "status"})
}

// NewOrderNotEditable reports an edit outside Pending
func NewOrderNotEditable(current OrderStatus) error {
	return stateConflict("order can no longer be edited", ReasonOrderNotEditable, current)
}

// NewOrderNotCancellable reports a cancel outside Pending or Preparation
func NewOrderNotCancellable(current OrderStatus) error {
	return stateConflict("order can no longer be cancelled", ReasonOrderNotCancellable, current)
}

// NewOrderNotDeletable reports a delete outside Pending
func NewOrderNotDeletable(current OrderStatus) error {
	return stateConflict("order can no longer be deleted", ReasonOrderNotDeletable, current)
}

// NewPaymentSettled reports a mutation that would invalidate a Paid payment
func NewPaymentSettled() error {
	return errors.NewConflict("payment for this order is already completed", map[string]interface{}{"reason": ReasonPaymentSettled})
}

// NewAmountMismatch reports a gateway settlement that does not match the order total
func NewAmountMismatch(expectedMinor, paidMinor int64) error {
	return errors.NewConflict("paid amount does not match order total", map[string]interface{}{
		"reason":   ReasonAmountMismatch,
		"expected": expectedMinor,
		"paid":     paidMinor,
	})
}

func stateConflict(message, reason string, current OrderStatus) error {
	return errors.NewConflict(message+": order is "+string(current), map[string]interface{}{
		"reason":         reason,
		"current_status": string(current),
	})
}

// Reason extracts the reason tag from a domain error, or "".
func Reason(err error) string {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return ""
	}
	details, ok := appErr.Details.(map[string]interface{})
	if !ok {
		return ""
	}
	reason, _ := details["reason"].(string)
	return reason
}
