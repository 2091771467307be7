package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/pkg/errors"
)

func TestValidateContact(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		address string
		wantErr error
	}{
		{"valid", "9800000000", "Kathmandu", nil},
		{"short phone", "980000000", "Kathmandu", ErrInvalidContact},
		{"letters in phone", "98000000ab", "Kathmandu", ErrInvalidContact},
		{"eleven digits", "98000000001", "Kathmandu", ErrInvalidContact},
		{"short address", "9800000000", " ab ", ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, ValidateContact(tt.phone, tt.address))
		})
	}
}

func TestSetLines_ComputesTotal(t *testing.T) {
	order, err := NewOrder("u1", "9800000000", "Lalitpur", "pay-1")
	require.NoError(t, err)

	err = order.SetLines([]LineItem{
		{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
		{ProductID: "p2", Quantity: 1, UnitPrice: decimal.RequireFromString("19.99")},
	}, decimal.NewFromInt(70))
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("1089.99")), order.TotalAmount.String())
	assert.Equal(t, OrderStatusPending, order.Status)
	for _, l := range order.Lines {
		assert.Equal(t, order.ID, l.OrderID)
		assert.NotEmpty(t, l.ID)
	}
}

func TestSetLines_RejectsEmpty(t *testing.T) {
	order, err := NewOrder("u1", "9800000000", "Lalitpur", "pay-1")
	require.NoError(t, err)

	assert.Equal(t, ErrEmptyItems, order.SetLines(nil, decimal.Zero))
}

func TestLifecycle(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusPreparation))
	assert.True(t, OrderStatusPreparation.CanTransitionTo(OrderStatusInTransit))
	assert.True(t, OrderStatusInTransit.CanTransitionTo(OrderStatusDelivered))
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusDelivered))
	assert.False(t, OrderStatusInTransit.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
}

func TestCancel(t *testing.T) {
	for _, from := range []OrderStatus{OrderStatusPending, OrderStatusPreparation} {
		o := &Order{Status: from}
		require.NoError(t, o.Cancel(), from)
		assert.Equal(t, OrderStatusCancelled, o.Status)
	}

	for _, from := range []OrderStatus{OrderStatusInTransit, OrderStatusDelivered, OrderStatusCancelled} {
		o := &Order{Status: from}
		err := o.Cancel()
		require.Error(t, err, from)
		assert.True(t, errors.Is(err, errors.CodeConflict))
		assert.Equal(t, ReasonOrderNotCancellable, Reason(err))
		assert.Contains(t, err.Error(), string(from))
		assert.Equal(t, from, o.Status)
	}
}

func TestCanEditAndDelete(t *testing.T) {
	assert.NoError(t, (&Order{Status: OrderStatusPending}).CanEdit())
	assert.NoError(t, (&Order{Status: OrderStatusPending}).CanDelete())

	err := (&Order{Status: OrderStatusInTransit}).CanEdit()
	assert.Equal(t, ReasonOrderNotEditable, Reason(err))

	err = (&Order{Status: OrderStatusPreparation}).CanDelete()
	assert.Equal(t, ReasonOrderNotDeletable, Reason(err))
}

func TestParsers(t *testing.T) {
	m, err := ParsePaymentMethod("khalti")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodKhalti, m)
	assert.True(t, m.RequiresGateway())
	assert.False(t, PaymentMethodCOD.RequiresGateway())

	_, err = ParsePaymentMethod("paypal")
	assert.True(t, errors.Is(err, errors.CodeValidation))

	s, err := ParseOrderStatus("intransit")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusInTransit, s)

	ps, err := ParsePaymentStatus("PAID")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, ps)
}
