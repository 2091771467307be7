package application

import (
	"context"
	"strings"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/auth"
)

// OrderQueryService serves the read side of orders
type OrderQueryService struct {
	repo         ports.OrderQueryRepository
	assetBaseURL string
}

// NewOrderQueryService creates a query service. Relative product image paths
// are resolved against assetBaseURL.
func NewOrderQueryService(repo ports.OrderQueryRepository, assetBaseURL string) *OrderQueryService {
	return &OrderQueryService{
		repo:         repo,
		assetBaseURL: strings.TrimRight(assetBaseURL, "/"),
	}
}

// ListMine returns the caller's orders, newest first
func (s *OrderQueryService) ListMine(ctx context.Context, userID string) ([]*domain.OrderView, error) {
	views, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		v.Customer = nil
		s.resolveImages(v)
	}
	return views, nil
}

// Detail returns one order. Customers only see their own orders and never the
// customer block; admins see any order.
func (s *OrderQueryService) Detail(ctx context.Context, who auth.Identity, orderID string) (*domain.OrderView, error) {
	view, err := s.repo.GetView(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !who.IsAdmin() {
		if view.UserID != who.UserID {
			return nil, domain.NewOrderNotFound(orderID)
		}
		view.Customer = nil
	}
	s.resolveImages(view)
	return view, nil
}

// AdminList returns one page of all orders with the total number of matches
func (s *OrderQueryService) AdminList(ctx context.Context, filter domain.OrderFilter) ([]*domain.OrderView, int64, error) {
	filter.Normalize()
	views, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for _, v := range views {
		s.resolveImages(v)
	}
	return views, total, nil
}

func (s *OrderQueryService) resolveImages(view *domain.OrderView) {
	for i := range view.Lines {
		view.Lines[i].Product.Image = ResolveImageURL(s.assetBaseURL, view.Lines[i].Product.Image)
	}
}

// ResolveImageURL turns a stored image path into an absolute URL. Absolute
// URLs and empty paths are returned unchanged.
func ResolveImageURL(base, image string) string {
	if image == "" || base == "" {
		return image
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(image, "/")
}
