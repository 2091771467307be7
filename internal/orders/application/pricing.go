package application

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Quote is the server-side price of a set of items
type Quote struct {
	Lines       []domain.LineItem
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
	// Stock is the available stock of each quoted product at quote time
	Stock map[string]int
}

// MergeItems validates checkout items and folds repeated products into one
// entry, keeping first-seen order.
func MergeItems(items []domain.ItemRequest) ([]domain.ItemRequest, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyItems
	}

	merged := make([]domain.ItemRequest, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ProductID)
		if id == "" {
			return nil, errors.NewValidation("product id is required", map[string]interface{}{"field": "items"})
		}
		if item.Quantity < 1 {
			return nil, domain.NewInvalidQuantity(id, item.Quantity)
		}
		if i, ok := index[id]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[id] = len(merged)
		merged = append(merged, domain.ItemRequest{ProductID: id, Quantity: item.Quantity})
	}
	return merged, nil
}

// QuoteItems recomputes the cost of items from the catalog and checks stock.
// Inside a transaction the product rows stay locked until commit.
func QuoteItems(ctx context.Context, products ports.ProductRepository, items []domain.ItemRequest, shippingFee decimal.Decimal) (*Quote, error) {
	if shippingFee.IsNegative() {
		return nil, domain.ErrNegativeShippingFee
	}

	items, err := MergeItems(items)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	catalog, err := products.GetForUpdate(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load products")
	}

	quote := &Quote{
		Lines:       make([]domain.LineItem, 0, len(items)),
		Subtotal:    decimal.Zero,
		ShippingFee: shippingFee,
		Stock:       make(map[string]int, len(items)),
	}
	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok {
			return nil, domain.NewProductNotFound(item.ProductID)
		}
		if item.Quantity > product.Stock {
			return nil, domain.NewInsufficientStock(product.ID, product.Name, item.Quantity, product.Stock)
		}

		line := domain.LineItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		}
		quote.Lines = append(quote.Lines, line)
		quote.Subtotal = quote.Subtotal.Add(line.Subtotal())
		quote.Stock[product.ID] = product.Stock
	}
	quote.Total = quote.Subtotal.Add(shippingFee)

	return quote, nil
}

// MinorUnits converts an amount to the provider's minor unit (paisa)
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// reserveStock decrements stock for every quoted line with a conditional update
func reserveStock(ctx context.Context, products ports.ProductRepository, lines []domain.LineItem, available map[string]int) error {
	for _, line := range lines {
		ok, err := products.Reserve(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return errors.Wrap(err, "failed to reserve stock")
		}
		if !ok {
			return domain.NewInsufficientStock(line.ProductID, line.ProductID, line.Quantity, available[line.ProductID])
		}
	}
	return nil
}

// releaseStock returns the stock held by lines
func releaseStock(ctx context.Context, products ports.ProductRepository, lines []domain.LineItem) error {
	for _, line := range lines {
		if err := products.Release(ctx, line.ProductID, line.Quantity); err != nil {
			return errors.Wrap(err, "failed to release stock")
		}
	}
	return nil
}
