package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"go-storefront/internal/orders/application"
	"go-storefront/internal/orders/domain"
	"go-storefront/pkg/auth"
	"go-storefront/pkg/errors"
	"go-storefront/pkg/middleware"
)

// HTTPHandler handles HTTP requests for orders and payments
type HTTPHandler struct {
	orders   *application.OrderUseCase
	queries  *application.OrderQueryService
	resolver auth.Resolver
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(orders *application.OrderUseCase, queries *application.OrderQueryService, resolver auth.Resolver) *HTTPHandler {
	return &HTTPHandler{
		orders:   orders,
		queries:  queries,
		resolver: resolver,
	}
}

// RegisterRoutes registers the order and payment routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	// The gateway redirects the browser here without our credentials
	r.GET("/payments/khalti/callback", h.KhaltiCallback)

	authed := r.Group("", middleware.Authenticate(h.resolver))
	admin := middleware.RequireRole(auth.RoleAdmin)

	orders := authed.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListMyOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id", h.EditOrder)
		orders.DELETE("/:id", h.DeleteOrder)
		orders.PATCH("/:id/cancel", h.CancelOrder)
		orders.POST("/:id/payment", h.RetryPayment)
		orders.PATCH("/:id/status", admin, h.SetOrderStatus)
	}

	payments := authed.Group("/payments")
	{
		payments.POST("/verify", h.VerifyPayment)
		payments.PATCH("/:orderId/status", admin, h.UpdatePaymentStatus)
	}

	authed.GET("/admin/orders", admin, h.AdminListOrders)
}

// =============================================================================
// Request/Response DTOs
// =============================================================================

// ItemRequest is one product and quantity in a checkout
type ItemRequest struct {
	ProductID string `json:"product_id" example:"8d3c6a9e-1f1e-4a57-9d0b-4f7c2b9a1e11"`
	Quantity  int    `json:"quantity" example:"2"`
}

// OrderRequest is the request body for creating or editing an order
type OrderRequest struct {
	Contact       string        `json:"contact" example:"9800000000"`
	Address       string        `json:"address" example:"Thamel, Kathmandu"`
	PaymentMethod string        `json:"payment_method" example:"Khalti"`
	Items         []ItemRequest `json:"items"`
	// TotalPrice is what the client computed; the server total always wins
	TotalPrice *decimal.Decimal `json:"total_price,omitempty" swaggertype:"string" example:"1070.00"`
}

// StatusRequest is the request body for status overrides
type StatusRequest struct {
	Status string `json:"status" binding:"required" example:"Preparation"`
}

// VerifyRequest is the request body for payment verification
type VerifyRequest struct {
	Pidx string `json:"pidx" binding:"required" example:"bZQLD9wRVWo4CdESSfuSsB"`
}

// PaymentResponse represents a payment in responses
type PaymentResponse struct {
	ID            string     `json:"id"`
	Method        string     `json:"method" example:"Khalti"`
	Status        string     `json:"status" example:"Pending"`
	ExternalRef   string     `json:"pidx,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// ProductResponse is the catalog side of a line item
type ProductResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Price    decimal.Decimal `json:"price" swaggertype:"string" example:"500.00"`
	Image    string          `json:"image,omitempty"`
	Category string          `json:"category,omitempty"`
}

// LineItemResponse represents a line item in responses
type LineItemResponse struct {
	ID        string          `json:"id"`
	Quantity  int             `json:"quantity" example:"2"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string" example:"500.00"`
	Subtotal  decimal.Decimal `json:"subtotal" swaggertype:"string" example:"1000.00"`
	Product   ProductResponse `json:"product"`
}

// CustomerResponse is the user behind an order (admin only)
type CustomerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderResponse represents an order in responses
type OrderResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Contact     string             `json:"contact" example:"9800000000"`
	Address     string             `json:"address"`
	ShippingFee decimal.Decimal    `json:"shipping_fee" swaggertype:"string" example:"70.00"`
	TotalAmount decimal.Decimal    `json:"total_amount" swaggertype:"string" example:"1070.00"`
	Status      string             `json:"status" example:"Pending"`
	Payment     *PaymentResponse   `json:"payment,omitempty"`
	Items       []LineItemResponse `json:"items"`
	Customer    *CustomerResponse  `json:"customer,omitempty"`
	CreatedAt   string             `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   string             `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// CheckoutResponse is returned by create, edit and payment retry
type CheckoutResponse struct {
	Order            OrderResponse `json:"order"`
	PaymentURL       string        `json:"payment_url,omitempty" example:"https://pay.khalti.com/?pidx=bZQLD9wRVWo4CdESSfuSsB"`
	OrderCreated     bool          `json:"order_created" example:"true"`
	PaymentInitiated bool          `json:"payment_initiated" example:"true"`
	PaymentError     string        `json:"payment_error,omitempty"`
}

// OrderListResponse is one page of the admin order list
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total" example:"42"`
	Page   int             `json:"page" example:"1"`
	Limit  int             `json:"limit" example:"20"`
}

// VerifyResponse is the outcome of a payment verification
type VerifyResponse struct {
	OrderID string          `json:"order_id"`
	State   string          `json:"state" example:"Completed"`
	Settled bool            `json:"settled"`
	Payment PaymentResponse `json:"payment"`
}

// SuccessResponse is the standard success response
type SuccessResponse struct {
	Message string      `json:"message" example:"Order created successfully"`
	Data    interface{} `json:"data,omitempty"`
	TraceID string      `json:"trace_id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// ErrorResponse is the standard error response
type ErrorResponse = errors.ErrorResponse

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, SuccessResponse{
		Message: message,
		Data:    data,
		TraceID: c.GetString(middleware.TraceIDKey),
	})
}

func toPaymentResponse(p *domain.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		ID:            p.ID,
		Method:        string(p.Method),
		Status:        string(p.Status),
		ExternalRef:   p.ExternalRef,
		TransactionID: p.TransactionID,
		PaidAt:        p.PaidAt,
	}
}

func toOrderResponse(order *domain.Order, payment *domain.Payment) OrderResponse {
	resp := OrderResponse{
		ID:          order.ID,
		UserID:      order.UserID,
		Contact:     order.ContactPhone,
		Address:     order.ShippingAddress,
		ShippingFee: order.ShippingFee,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
		Payment:     toPaymentResponse(payment),
		Items:       make([]LineItemResponse, len(order.Lines)),
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   order.UpdatedAt.Format(time.RFC3339),
	}
	for i, l := range order.Lines {
		resp.Items[i] = LineItemResponse{
			ID:        l.ID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
			Product:   ProductResponse{ID: l.ProductID, Price: l.UnitPrice},
		}
	}
	return resp
}

func toOrderViewResponse(view *domain.OrderView) OrderResponse {
	payment := view.Payment
	resp := OrderResponse{
		ID:          view.ID,
		UserID:      view.UserID,
		Contact:     view.ContactPhone,
		Address:     view.ShippingAddress,
		ShippingFee: view.ShippingFee,
		TotalAmount: view.TotalAmount,
		Status:      string(view.Status),
		Payment:     toPaymentResponse(&payment),
		Items:       make([]LineItemResponse, len(view.Lines)),
		CreatedAt:   view.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   view.UpdatedAt.Format(time.RFC3339),
	}
	if view.Customer != nil {
		resp.Customer = &CustomerResponse{
			ID:    view.Customer.ID,
			Name:  view.Customer.Name,
			Email: view.Customer.Email,
			Phone: view.Customer.Phone,
		}
	}
	for i, l := range view.Lines {
		resp.Items[i] = LineItemResponse{
			ID:        l.ID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
			Product: ProductResponse{
				ID:       l.Product.ID,
				Name:     l.Product.Name,
				Price:    l.Product.Price,
				Image:    l.Product.Image,
				Category: l.Product.Category,
			},
		}
	}
	return resp
}

func toCheckoutResponse(out *application.OrderOutput) CheckoutResponse {
	return CheckoutResponse{
		Order:            toOrderResponse(out.Order, out.Payment),
		PaymentURL:       out.PaymentURL,
		OrderCreated:     true,
		PaymentInitiated: out.PaymentInitiated,
		PaymentError:     out.PaymentError,
	}
}

func toVerifyResponse(out *application.VerifyOutput) VerifyResponse {
	resp := VerifyResponse{
		OrderID: out.OrderID,
		State:   string(out.State),
		Settled: out.Settled,
	}
	if p := toPaymentResponse(out.Payment); p != nil {
		resp.Payment = *p
	}
	return resp
}

func toItems(items []ItemRequest) []domain.ItemRequest {
	out := make([]domain.ItemRequest, len(items))
	for i, item := range items {
		out[i] = domain.ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return out
}

func identity(c *gin.Context) auth.Identity {
	id, _ := auth.FromContext(c.Request.Context())
	return id
}

// =============================================================================
// Orders Handlers
// =============================================================================

// CreateOrder places an order from the submitted items
// @Summary Create an order
// @Description Prices the items, reserves stock and opens a gateway payment for Khalti orders
// @Tags orders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body OrderRequest true "Checkout request"
// @Success 201 {object} SuccessResponse{data=CheckoutResponse} "Order created"
// @Failure 400 {object} ErrorResponse "Validation error or insufficient stock"
// @Failure 401 {object} ErrorResponse "Unauthenticated"
// @Failure 404 {object} ErrorResponse "Product not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/orders [post]
func (h *HTTPHandler) CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	out, err := h.orders.CreateOrder(c.Request.Context(), application.CreateOrderInput{
		UserID:        identity(c).UserID,
		Contact:       req.Contact,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		Items:         toItems(req.Items),
		ClaimedTotal:  req.TotalPrice,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusCreated, "Order created successfully", toCheckoutResponse(out))
}

// ListMyOrders lists the caller's orders
// @Summary List my orders
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} SuccessResponse{data=[]OrderResponse} "Orders"
// @Failure 401 {object} ErrorResponse "Unauthenticated"
// @Router /api/v1/orders [get]
func (h *HTTPHandler) ListMyOrders(c *gin.Context) {
	views, err := h.queries.ListMine(c.Request.Context(), identity(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}

	orders := make([]OrderResponse, len(views))
	for i, v := range views {
		orders[i] = toOrderViewResponse(v)
	}
	respond(c, http.StatusOK, "Orders retrieved successfully", orders)
}

// GetOrder retrieves one order
// @Summary Get an order
// @Description Owners see their own orders; admins see any order with its customer
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Success 200 {object} SuccessResponse{data=OrderResponse} "Order"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Router /api/v1/orders/{id} [get]
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	view, err := h.queries.Detail(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Order retrieved successfully", toOrderViewResponse(view))
}

// EditOrder replaces a Pending order's items and details
// @Summary Edit an order
// @Tags orders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Param request body OrderRequest true "Edit request"
// @Success 200 {object} SuccessResponse{data=CheckoutResponse} "Order updated"
// @Failure 400 {object} ErrorResponse "Validation error or insufficient stock"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 409 {object} ErrorResponse "Order can no longer be edited"
// @Router /api/v1/orders/{id} [patch]
func (h *HTTPHandler) EditOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	out, err := h.orders.EditOrder(c.Request.Context(), application.EditOrderInput{
		UserID:        identity(c).UserID,
		OrderID:       c.Param("id"),
		Contact:       req.Contact,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		Items:         toItems(req.Items),
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Order updated successfully", toCheckoutResponse(out))
}

// DeleteOrder deletes a Pending order
// @Summary Delete an order
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Success 200 {object} SuccessResponse "Order deleted"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 409 {object} ErrorResponse "Order can no longer be deleted"
// @Router /api/v1/orders/{id} [delete]
func (h *HTTPHandler) DeleteOrder(c *gin.Context) {
	if err := h.orders.DeleteOrder(c.Request.Context(), identity(c).UserID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Order deleted successfully", nil)
}

// CancelOrder cancels an order that has not shipped
// @Summary Cancel an order
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Success 200 {object} SuccessResponse{data=OrderResponse} "Order cancelled"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 409 {object} ErrorResponse "Order can no longer be cancelled"
// @Router /api/v1/orders/{id}/cancel [patch]
func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	order, err := h.orders.CancelOrder(c.Request.Context(), identity(c).UserID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Order cancelled successfully", toOrderResponse(order, nil))
}

// RetryPayment opens a new gateway payment for a Pending order
// @Summary Retry payment
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Success 200 {object} SuccessResponse{data=CheckoutResponse} "Payment initiated"
// @Failure 409 {object} ErrorResponse "Payment cannot be initiated for this order"
// @Failure 502 {object} ErrorResponse "Payment gateway unavailable"
// @Router /api/v1/orders/{id}/payment [post]
func (h *HTTPHandler) RetryPayment(c *gin.Context) {
	out, err := h.orders.RetryPayment(c.Request.Context(), identity(c).UserID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Payment initiated successfully", toCheckoutResponse(out))
}

// SetOrderStatus overrides an order's status
// @Summary Set order status (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Param request body StatusRequest true "New status"
// @Success 200 {object} SuccessResponse{data=OrderResponse} "Status updated"
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Failure 403 {object} ErrorResponse "Admin role required"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Router /api/v1/orders/{id}/status [patch]
func (h *HTTPHandler) SetOrderStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	order, err := h.orders.SetOrderStatus(c.Request.Context(), identity(c), c.Param("id"), req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Order status updated successfully", toOrderResponse(order, nil))
}

// AdminListOrders lists all orders
// @Summary List all orders (admin)
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "Order status"
// @Param payment_status query string false "Payment status"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} SuccessResponse{data=OrderListResponse} "Orders"
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Failure 403 {object} ErrorResponse "Admin role required"
// @Router /api/v1/admin/orders [get]
func (h *HTTPHandler) AdminListOrders(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.Error(err)
		return
	}

	views, total, err := h.queries.AdminList(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	filter.Normalize()
	resp := OrderListResponse{
		Orders: make([]OrderResponse, len(views)),
		Total:  total,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	for i, v := range views {
		resp.Orders[i] = toOrderViewResponse(v)
	}
	respond(c, http.StatusOK, "Orders retrieved successfully", resp)
}

func parseFilter(c *gin.Context) (domain.OrderFilter, error) {
	var filter domain.OrderFilter

	if s := c.Query("status"); s != "" {
		status, err := domain.ParseOrderStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if s := c.Query("payment_status"); s != "" {
		status, err := domain.ParsePaymentStatus(s)
		if err != nil {
			return filter, err
		}
		filter.PaymentStatus = status
	}

	for name, target := range map[string]*int{"page": &filter.Page, "limit": &filter.Limit} {
		s := c.Query(name)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return filter, errors.NewValidation("invalid "+name, map[string]interface{}{name: s})
		}
		*target = n
	}
	return filter, nil
}

// =============================================================================
// Payments Handlers
// =============================================================================

// UpdatePaymentStatus overrides the payment status of an order
// @Summary Set payment status (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param orderId path string true "Order ID"
// @Param request body StatusRequest true "New payment status"
// @Success 200 {object} SuccessResponse{data=PaymentResponse} "Payment status updated"
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Failure 403 {object} ErrorResponse "Admin role required"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Router /api/v1/payments/{orderId}/status [patch]
func (h *HTTPHandler) UpdatePaymentStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	payment, err := h.orders.UpdatePaymentStatus(c.Request.Context(), identity(c), c.Param("orderId"), req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Payment status updated successfully", toPaymentResponse(payment))
}

// VerifyPayment confirms a gateway payment with the provider
// @Summary Verify a payment
// @Tags payments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body VerifyRequest true "Gateway reference"
// @Success 200 {object} SuccessResponse{data=VerifyResponse} "Verification result"
// @Failure 400 {object} ErrorResponse "Missing pidx"
// @Failure 404 {object} ErrorResponse "Payment not found"
// @Failure 409 {object} ErrorResponse "Paid amount does not match the order"
// @Failure 502 {object} ErrorResponse "Payment gateway unavailable"
// @Router /api/v1/payments/verify [post]
func (h *HTTPHandler) VerifyPayment(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}
	h.verify(c, req.Pidx)
}

// KhaltiCallback verifies the payment the gateway redirected back with
// @Summary Khalti return callback
// @Tags payments
// @Produce json
// @Param pidx query string true "Gateway reference"
// @Success 200 {object} SuccessResponse{data=VerifyResponse} "Verification result"
// @Failure 400 {object} ErrorResponse "Missing pidx"
// @Failure 404 {object} ErrorResponse "Payment not found"
// @Router /api/v1/payments/khalti/callback [get]
func (h *HTTPHandler) KhaltiCallback(c *gin.Context) {
	h.verify(c, c.Query("pidx"))
}

func (h *HTTPHandler) verify(c *gin.Context, pidx string) {
	out, err := h.orders.VerifyPayment(c.Request.Context(), pidx)
	if err != nil {
		c.Error(err)
		return
	}

	message := "Payment verified successfully"
	if out.State != domain.TransactionCompleted {
		message = "Payment is not completed"
	}
	respond(c, http.StatusOK, message, toVerifyResponse(out))
}
