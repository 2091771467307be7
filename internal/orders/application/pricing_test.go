package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/internal/orders/domain"
)

func TestQuoteItems(t *testing.T) {
	store := newMemStore()
	store.addProduct("p1", "Tea", "500", 10)
	store.addProduct("p2", "Honey", "19.99", 5)

	quote, err := QuoteItems(context.Background(), store.Products(), []domain.ItemRequest{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}, decimal.NewFromInt(70))
	require.NoError(t, err)

	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("1019.99")))
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("1089.99")))
	assert.Equal(t, 10, quote.Stock["p1"])
	assert.Equal(t, 10, store.stock("p1"))
}

func TestQuoteItems_NegativeShippingFee(t *testing.T) {
	store := newMemStore()
	store.addProduct("p1", "Tea", "500", 10)

	_, err := QuoteItems(context.Background(), store.Products(), []domain.ItemRequest{{ProductID: "p1", Quantity: 1}}, decimal.NewFromInt(-1))
	assert.Equal(t, domain.ErrNegativeShippingFee, err)
}

func TestQuoteItems_ExactStockAllowed(t *testing.T) {
	store := newMemStore()
	store.addProduct("p1", "Tea", "500", 2)

	_, err := QuoteItems(context.Background(), store.Products(), []domain.ItemRequest{{ProductID: "p1", Quantity: 2}}, decimal.Zero)
	assert.NoError(t, err)
}

func TestMergeItems(t *testing.T) {
	merged, err := MergeItems([]domain.ItemRequest{
		{ProductID: "b", Quantity: 1},
		{ProductID: " a ", Quantity: 2},
		{ProductID: "b", Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.ItemRequest{{ProductID: "b", Quantity: 4}, {ProductID: "a", Quantity: 2}}, merged)

	_, err = MergeItems([]domain.ItemRequest{{ProductID: "", Quantity: 1}})
	assert.Error(t, err)

	_, err = MergeItems([]domain.ItemRequest{{ProductID: "a", Quantity: -1}})
	assert.Equal(t, domain.ReasonInvalidQuantity, domain.Reason(err))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(107000), MinorUnits(decimal.NewFromInt(1070)))
	assert.Equal(t, int64(108999), MinorUnits(decimal.RequireFromString("1089.99")))
	assert.Equal(t, int64(1), MinorUnits(decimal.RequireFromString("0.005")))
}
