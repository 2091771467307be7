package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/internal/orders/domain"
	"go-storefront/pkg/auth"
	"go-storefront/pkg/errors"
)

func newQueryFixture() *OrderQueryService {
	repo := &fakeQueryRepo{views: map[string]*domain.OrderView{
		"o1": {
			ID:     "o1",
			UserID: "u1",
			Status: domain.OrderStatusPending,
			Lines: []domain.LineItemView{{
				ID: "l1", Quantity: 1, UnitPrice: decimal.NewFromInt(500), Subtotal: decimal.NewFromInt(500),
				Product: domain.ProductView{ID: "p1", Name: "Tea", Image: "/uploads/tea.png"},
			}},
			Customer: &domain.CustomerView{ID: "u1", Name: "Asha"},
		},
		"o2": {ID: "o2", UserID: "u2", Status: domain.OrderStatusDelivered},
	}}
	return NewOrderQueryService(repo, "https://cdn.example.com/")
}

func TestOrderQuery_Detail(t *testing.T) {
	svc := newQueryFixture()
	ctx := context.Background()

	view, err := svc.Detail(ctx, auth.Identity{UserID: "u1", Role: auth.RoleCustomer}, "o1")
	require.NoError(t, err)
	assert.Nil(t, view.Customer)
	assert.Equal(t, "https://cdn.example.com/uploads/tea.png", view.Lines[0].Product.Image)

	_, err = svc.Detail(ctx, auth.Identity{UserID: "u1", Role: auth.RoleCustomer}, "o2")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	view, err = svc.Detail(ctx, auth.Identity{UserID: "a1", Role: auth.RoleAdmin}, "o1")
	require.NoError(t, err)
	require.NotNil(t, view.Customer)
	assert.Equal(t, "Asha", view.Customer.Name)
}

func TestOrderQuery_ListMine(t *testing.T) {
	svc := newQueryFixture()

	views, err := svc.ListMine(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "o2", views[0].ID)
}

func TestOrderQuery_AdminList(t *testing.T) {
	svc := newQueryFixture()

	views, total, err := svc.AdminList(context.Background(), domain.OrderFilter{Status: domain.OrderStatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "o2", views[0].ID)
}

func TestResolveImageURL(t *testing.T) {
	tests := []struct {
		base, image, want string
	}{
		{"https://cdn.example.com", "uploads/a.png", "https://cdn.example.com/uploads/a.png"},
		{"https://cdn.example.com/", "/uploads/a.png", "https://cdn.example.com/uploads/a.png"},
		{"https://cdn.example.com", "https://other.example.com/a.png", "https://other.example.com/a.png"},
		{"https://cdn.example.com", "", ""},
		{"", "uploads/a.png", "uploads/a.png"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveImageURL(tt.base, tt.image), tt.image)
	}
}
