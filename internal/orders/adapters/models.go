package adapters

import (
	"time"

	"github.com/shopspring/decimal"

	"go-storefront/internal/orders/domain"
)

// OrderModel is the GORM model for orders (persistence layer)
type OrderModel struct {
	ID              string          `gorm:"primaryKey;size:36"`
	UserID          string          `gorm:"index;size:36;not null"`
	User            *UserModel      `gorm:"foreignKey:UserID"`
	ContactPhone    string          `gorm:"size:10;not null"`
	ShippingAddress string          `gorm:"size:512;not null"`
	ShippingFee     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status          string          `gorm:"size:20;index;not null;default:'Pending'"`
	PaymentID       string          `gorm:"uniqueIndex;size:36;not null"`
	Payment         *PaymentModel   `gorm:"foreignKey:PaymentID"`
	Lines           []LineItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time       `gorm:"index"`
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// LineItemModel is the GORM model for order line items
type LineItemModel struct {
	ID        string          `gorm:"primaryKey;size:36"`
	OrderID   string          `gorm:"index;size:36;not null"`
	ProductID string          `gorm:"index;size:36;not null"`
	Product   *ProductModel   `gorm:"foreignKey:ProductID"`
	Position  int             `gorm:"not null;default:0"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "order_line_items"
}

// PaymentModel is the GORM model for payments. ExternalRef is NULL until a
// gateway transaction exists, so the unique index only covers issued references.
type PaymentModel struct {
	ID            string  `gorm:"primaryKey;size:36"`
	Method        string  `gorm:"size:16;not null"`
	Status        string  `gorm:"size:16;index;not null;default:'Pending'"`
	ExternalRef   *string `gorm:"uniqueIndex;size:64"`
	PaymentURL    string  `gorm:"size:512"`
	TransactionID string  `gorm:"size:64"`
	PaidAt        *time.Time
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ProductModel mirrors the catalog's product table
type ProductModel struct {
	ID         string          `gorm:"primaryKey;size:36"`
	Name       string          `gorm:"size:255;not null"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock      int             `gorm:"not null;default:0"`
	Image      string          `gorm:"size:512"`
	CategoryID *string         `gorm:"index;size:36"`
	Category   *CategoryModel  `gorm:"foreignKey:CategoryID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// CategoryModel mirrors the catalog's category table
type CategoryModel struct {
	ID   string `gorm:"primaryKey;size:36"`
	Name string `gorm:"size:255;not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// UserModel mirrors the user service's table, read for admin projections
type UserModel struct {
	ID    string `gorm:"primaryKey;size:36"`
	Name  string `gorm:"size:255"`
	Email string `gorm:"size:255"`
	Phone string `gorm:"size:20"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// CartItemModel mirrors the cart service's table
type CartItemModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"index;size:36;not null"`
	ProductID string `gorm:"index;size:36;not null"`
	Quantity  int    `gorm:"not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

func allModels() []interface{} {
	return []interface{}{
		&CategoryModel{},
		&ProductModel{},
		&UserModel{},
		&CartItemModel{},
		&PaymentModel{},
		&OrderModel{},
		&LineItemModel{},
	}
}

// toOrderModel converts a domain entity to a GORM model
func toOrderModel(order *domain.Order) *OrderModel {
	m := &OrderModel{
		ID:              order.ID,
		UserID:          order.UserID,
		ContactPhone:    order.ContactPhone,
		ShippingAddress: order.ShippingAddress,
		ShippingFee:     order.ShippingFee,
		TotalAmount:     order.TotalAmount,
		Status:          string(order.Status),
		PaymentID:       order.PaymentID,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	m.Lines = toLineModels(order)
	return m
}

func toLineModels(order *domain.Order) []LineItemModel {
	lines := make([]LineItemModel, len(order.Lines))
	for i, l := range order.Lines {
		lines[i] = LineItemModel{
			ID:        l.ID,
			OrderID:   order.ID,
			ProductID: l.ProductID,
			Position:  i,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return lines
}

// toOrderDomain converts a GORM model to a domain entity
func toOrderDomain(m *OrderModel) *domain.Order {
	order := &domain.Order{
		ID:              m.ID,
		UserID:          m.UserID,
		ContactPhone:    m.ContactPhone,
		ShippingAddress: m.ShippingAddress,
		ShippingFee:     m.ShippingFee,
		TotalAmount:     m.TotalAmount,
		Status:          domain.OrderStatus(m.Status),
		PaymentID:       m.PaymentID,
		Lines:           make([]domain.LineItem, len(m.Lines)),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	for i, l := range m.Lines {
		order.Lines[i] = domain.LineItem{
			ID:        l.ID,
			OrderID:   l.OrderID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return order
}

func toPaymentModel(p *domain.Payment) *PaymentModel {
	m := &PaymentModel{
		ID:            p.ID,
		Method:        string(p.Method),
		Status:        string(p.Status),
		PaymentURL:    p.PaymentURL,
		TransactionID: p.TransactionID,
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.ExternalRef != "" {
		ref := p.ExternalRef
		m.ExternalRef = &ref
	}
	return m
}

func toPaymentDomain(m *PaymentModel) *domain.Payment {
	p := &domain.Payment{
		ID:            m.ID,
		Method:        domain.PaymentMethod(m.Method),
		Status:        domain.PaymentStatus(m.Status),
		PaymentURL:    m.PaymentURL,
		TransactionID: m.TransactionID,
		PaidAt:        m.PaidAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.ExternalRef != nil {
		p.ExternalRef = *m.ExternalRef
	}
	return p
}

func toOrderView(m *OrderModel) *domain.OrderView {
	view := &domain.OrderView{
		ID:              m.ID,
		UserID:          m.UserID,
		ContactPhone:    m.ContactPhone,
		ShippingAddress: m.ShippingAddress,
		ShippingFee:     m.ShippingFee,
		TotalAmount:     m.TotalAmount,
		Status:          domain.OrderStatus(m.Status),
		Lines:           make([]domain.LineItemView, len(m.Lines)),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Payment != nil {
		view.Payment = *toPaymentDomain(m.Payment)
	}
	if m.User != nil {
		view.Customer = &domain.CustomerView{
			ID:    m.User.ID,
			Name:  m.User.Name,
			Email: m.User.Email,
			Phone: m.User.Phone,
		}
	}
	for i, l := range m.Lines {
		line := domain.LineItemView{
			ID:        l.ID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))),
			Product:   domain.ProductView{ID: l.ProductID},
		}
		if l.Product != nil {
			line.Product.Name = l.Product.Name
			line.Product.Price = l.Product.Price
			line.Product.Image = l.Product.Image
			if l.Product.Category != nil {
				line.Product.Category = l.Product.Category.Name
			}
		}
		view.Lines[i] = line
	}
	return view
}
