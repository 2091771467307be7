package application

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/auth"
	"go-storefront/pkg/errors"
	"go-storefront/pkg/logger"
)

const paymentRetryHint = "payment could not be initiated, retry payment later"

// Options tunes the order use case
type Options struct {
	ShippingFee    decimal.Decimal
	GatewayTimeout time.Duration
}

// OrderUseCase handles order business logic
type OrderUseCase struct {
	store     ports.Store
	gateway   ports.PaymentGateway
	publisher ports.EventPublisher
	payments  *PaymentRecords
	log       *logger.Logger

	shippingFee    decimal.Decimal
	gatewayTimeout time.Duration
	verifyGroup    singleflight.Group
}

// NewOrderUseCase creates a new order use case. gateway and publisher may be
// nil; gateway-backed methods are then rejected and events are skipped.
func NewOrderUseCase(
	store ports.Store,
	gateway ports.PaymentGateway,
	publisher ports.EventPublisher,
	log *logger.Logger,
	opts Options,
) *OrderUseCase {
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = 15 * time.Second
	}
	return &OrderUseCase{
		store:          store,
		gateway:        gateway,
		publisher:      publisher,
		payments:       NewPaymentRecords(log),
		log:            log,
		shippingFee:    opts.ShippingFee,
		gatewayTimeout: opts.GatewayTimeout,
	}
}

// CreateOrderInput represents the input for creating an order
type CreateOrderInput struct {
	UserID        string
	Contact       string
	Address       string
	PaymentMethod string
	Items         []domain.ItemRequest
	// ClaimedTotal is the client's own total. It is compared and logged, never trusted.
	ClaimedTotal *decimal.Decimal
}

// EditOrderInput represents the input for editing a Pending order
type EditOrderInput struct {
	UserID        string
	OrderID       string
	Contact       string
	Address       string
	PaymentMethod string
	Items         []domain.ItemRequest
}

// OrderOutput is the result of a checkout or edit
type OrderOutput struct {
	Order            *domain.Order
	Payment          *domain.Payment
	PaymentURL       string
	PaymentInitiated bool
	// PaymentError is set when the order committed but the gateway could not be reached
	PaymentError string
}

// VerifyOutput is the result of a payment verification
type VerifyOutput struct {
	Payment *domain.Payment
	OrderID string
	State   domain.TransactionState
	// Settled reports whether this verification moved the payment to Paid
	Settled bool
}

// CreateOrder prices the items, reserves stock and persists the order with its
// payment in one transaction, then opens the gateway transaction if needed.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderOutput, error) {
	if input.UserID == "" {
		return nil, domain.ErrUserIDRequired
	}
	method, err := domain.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := uc.checkGateway(method); err != nil {
		return nil, err
	}
	if err := domain.ValidateContact(input.Contact, input.Address); err != nil {
		return nil, err
	}
	items, err := MergeItems(input.Items)
	if err != nil {
		return nil, err
	}

	var (
		order   *domain.Order
		payment *domain.Payment
	)
	err = uc.store.WithinTx(ctx, func(tx ports.Repositories) error {
		quote, err := QuoteItems(ctx, tx.Products(), items, uc.shippingFee)
		if err != nil {
			return err
		}
		if err := reserveStock(ctx, tx.Products(), quote.Lines, quote.Stock); err != nil {
			return err
		}

		payment, err = uc.payments.Create(ctx, tx.Payments(), method)
		if err != nil {
			return err
		}

		order, err = domain.NewOrder(input.UserID, input.Contact, input.Address, payment.ID)
		if err != nil {
			return err
		}
		if err := order.SetLines(quote.Lines, quote.ShippingFee); err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		return tx.Cart().RemoveItems(ctx, input.UserID, order.ProductIDs())
	})
	if err != nil {
		return nil, appError(err, "failed to create order")
	}

	if input.ClaimedTotal != nil && !input.ClaimedTotal.Equal(order.TotalAmount) {
		uc.log.WithContext(ctx).Warn("client total differs from server total",
			zap.String("order_id", order.ID),
			zap.String("claimed", input.ClaimedTotal.String()),
			zap.String("total", order.TotalAmount.String()),
		)
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCreated(ctx, order, method); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order created event",
				zap.Error(err),
				zap.String("order_id", order.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("total", order.TotalAmount.String()),
		zap.String("payment_method", string(method)),
	)

	out := &OrderOutput{Order: order, Payment: payment}
	if method.RequiresGateway() {
		uc.startPayment(ctx, order, payment, out)
	}
	return out, nil
}

// EditOrder replaces the contact details, items and payment method of a
// Pending order. Previously reserved stock is released before the new items
// are priced.
func (uc *OrderUseCase) EditOrder(ctx context.Context, input EditOrderInput) (*OrderOutput, error) {
	method, err := domain.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := uc.checkGateway(method); err != nil {
		return nil, err
	}
	if err := domain.ValidateContact(input.Contact, input.Address); err != nil {
		return nil, err
	}
	items, err := MergeItems(input.Items)
	if err != nil {
		return nil, err
	}
	if _, err := uc.settleOutstanding(ctx, input.UserID, input.OrderID, (*domain.Order).CanEdit); err != nil {
		return nil, err
	}

	var (
		order   *domain.Order
		payment *domain.Payment
	)
	err = uc.store.WithinTx(ctx, func(tx ports.Repositories) error {
		order, err = uc.lockOwned(ctx, tx, input.UserID, input.OrderID)
		if err != nil {
			return err
		}
		if err := order.CanEdit(); err != nil {
			return err
		}
		payment, err = tx.Payments().GetByID(ctx, order.PaymentID)
		if err != nil {
			return err
		}
		if payment.IsPaid() {
			return domain.NewPaymentSettled()
		}

		if err := releaseStock(ctx, tx.Products(), order.Lines); err != nil {
			return err
		}
		quote, err := QuoteItems(ctx, tx.Products(), items, uc.shippingFee)
		if err != nil {
			return err
		}
		if err := reserveStock(ctx, tx.Products(), quote.Lines, quote.Stock); err != nil {
			return err
		}

		order.ContactPhone = input.Contact
		order.ShippingAddress = strings.TrimSpace(input.Address)
		if err := order.SetLines(quote.Lines, quote.ShippingFee); err != nil {
			return err
		}
		if err := tx.Orders().ReplaceLines(ctx, order); err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}

		// A gateway transaction is bound to the old amount, so it is always dropped.
		if method != payment.Method || method.RequiresGateway() {
			if err := tx.Payments().SetMethod(ctx, payment.ID, method); err != nil {
				return err
			}
			payment.Method = method
			payment.ExternalRef = ""
			payment.PaymentURL = ""
		}
		return nil
	})
	if err != nil {
		return nil, appError(err, "failed to edit order")
	}

	uc.log.WithContext(ctx).Info("order edited",
		zap.String("order_id", order.ID),
		zap.String("total", order.TotalAmount.String()),
		zap.String("payment_method", string(method)),
	)

	out := &OrderOutput{Order: order, Payment: payment}
	if method.RequiresGateway() {
		uc.startPayment(ctx, order, payment, out)
	}
	return out, nil
}

// CancelOrder cancels the caller's order and returns its stock
func (uc *OrderUseCase) CancelOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	var (
		order *domain.Order
		prev  domain.OrderStatus
	)
	err := uc.store.WithinTx(ctx, func(tx ports.Repositories) error {
		var err error
		order, err = uc.lockOwned(ctx, tx, userID, orderID)
		if err != nil {
			return err
		}
		prev = order.Status
		if err := order.Cancel(); err != nil {
			return err
		}
		if err := releaseStock(ctx, tx.Products(), order.Lines); err != nil {
			return err
		}
		return tx.Orders().Update(ctx, order)
	})
	if err != nil {
		return nil, appError(err, "failed to cancel order")
	}

	uc.log.WithContext(ctx).Info("order cancelled",
		zap.String("order_id", order.ID),
		zap.String("previous_status", string(prev)),
	)
	uc.publishStatusChanged(ctx, order.ID, prev, order.Status, userID)

	return order, nil
}

// DeleteOrder removes a Pending order together with its line items and payment
func (uc *OrderUseCase) DeleteOrder(ctx context.Context, userID, orderID string) error {
	if _, err := uc.settleOutstanding(ctx, userID, orderID, (*domain.Order).CanDelete); err != nil {
		return err
	}

	err := uc.store.WithinTx(ctx, func(tx ports.Repositories) error {
		order, err := uc.lockOwned(ctx, tx, userID, orderID)
		if err != nil {
			return err
		}
		if err := order.CanDelete(); err != nil {
			return err
		}
		payment, err := tx.Payments().GetByID(ctx, order.PaymentID)
		if err != nil {
			return err
		}
		if payment.IsPaid() {
			return domain.NewPaymentSettled()
		}
		if err := releaseStock(ctx, tx.Products(), order.Lines); err != nil {
			return err
		}
		if err := tx.Orders().Delete(ctx, order.ID); err != nil {
			return err
		}
		return tx.Payments().Delete(ctx, payment.ID)
	})
	if err != nil {
		return appError(err, "failed to delete order")
	}

	uc.log.WithContext(ctx).Info("order deleted", zap.String("order_id", orderID))
	return nil
}

// SetOrderStatus is the administrative status override. Any status may be set;
// leaving the customer lifecycle is only logged. Moving into Cancelled returns
// stock and moving out of it reserves stock again.
func (uc *OrderUseCase) SetOrderStatus(ctx context.Context, actor auth.Identity, orderID, status string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	var (
		order *domain.Order
		prev  domain.OrderStatus
	)
	err = uc.store.WithinTx(ctx, func(tx ports.Repositories) error {
		var err error
		order, err = tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		prev = order.Status
		if prev == next {
			return nil
		}

		switch {
		case next == domain.OrderStatusCancelled:
			if err := releaseStock(ctx, tx.Products(), order.Lines); err != nil {
				return err
			}
		case prev == domain.OrderStatusCancelled:
			if err := uc.reserveLines(ctx, tx.Products(), order.Lines); err != nil {
				return err
			}
		}

		order.ForceStatus(next)
		return tx.Orders().Update(ctx, order)
	})
	if err != nil {
		return nil, appError(err, "failed to update order status")
	}
	if prev == next {
		return order, nil
	}

	log := uc.log.WithContext(ctx).With(
		zap.String("order_id", order.ID),
		zap.String("previous_status", string(prev)),
		zap.String("status", string(next)),
		zap.String("actor_id", actor.UserID),
	)
	if !prev.CanTransitionTo(next) {
		log.Warn("order status changed outside lifecycle")
	} else {
		log.Info("order status changed")
	}
	uc.publishStatusChanged(ctx, order.ID, prev, next, actor.UserID)

	return order, nil
}

// UpdatePaymentStatus is the administrative payment override used for manual
// settlement of COD and eSewa orders.
func (uc *OrderUseCase) UpdatePaymentStatus(ctx context.Context, actor auth.Identity, orderID, status string) (*domain.Payment, error) {
	next, err := domain.ParsePaymentStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := uc.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	payment, err := uc.store.Payments().GetByID(ctx, order.PaymentID)
	if err != nil {
		return nil, err
	}

	prev := payment.Status
	if prev == next {
		return payment, nil
	}
	if err := uc.store.Payments().SetStatus(ctx, payment.ID, next); err != nil {
		return nil, appError(err, "failed to update payment status")
	}
	payment, err = uc.store.Payments().GetByID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("payment status changed",
		zap.String("order_id", order.ID),
		zap.String("payment_id", payment.ID),
		zap.String("previous_status", string(prev)),
		zap.String("status", string(next)),
		zap.String("actor_id", actor.UserID),
	)

	if next == domain.PaymentStatusPaid && uc.publisher != nil {
		if err := uc.publisher.PublishPaymentCompleted(ctx, payment, order.ID); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish payment completed event",
				zap.Error(err),
				zap.String("payment_id", payment.ID),
			)
		}
	}

	return payment, nil
}

// RetryPayment opens a new gateway transaction for a Pending order whose
// previous initiation failed, expired or was cancelled. While the previous
// transaction is still open its payment URL is returned instead.
func (uc *OrderUseCase) RetryPayment(ctx context.Context, userID, orderID string) (*OrderOutput, error) {
	state, err := uc.settleOutstanding(ctx, userID, orderID, func(o *domain.Order) error {
		if o.Status != domain.OrderStatusPending {
			return domain.ErrPaymentNotRetryable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := uc.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.OwnedBy(userID) {
		return nil, domain.NewOrderNotFound(orderID)
	}
	if order.Status != domain.OrderStatusPending {
		return nil, domain.ErrPaymentNotRetryable
	}
	payment, err := uc.store.Payments().GetByID(ctx, order.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.IsPaid() {
		return nil, domain.NewPaymentSettled()
	}
	if !payment.Method.RequiresGateway() {
		return nil, domain.ErrPaymentNotRetryable
	}
	if err := uc.checkGateway(payment.Method); err != nil {
		return nil, err
	}

	out := &OrderOutput{Order: order, Payment: payment}
	if payment.ExternalRef != "" {
		switch state {
		case domain.TransactionExpired, domain.TransactionCancelled:
		case domain.TransactionInitiated, domain.TransactionPending:
			out.PaymentURL = payment.PaymentURL
			out.PaymentInitiated = true
			return out, nil
		default:
			return nil, domain.ErrPaymentNotRetryable
		}
	}
	if err := uc.initiate(ctx, order, payment, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResumePayment initiates the gateway transaction of a payment that never got
// one. It is a no-op for payments that already carry a reference.
func (uc *OrderUseCase) ResumePayment(ctx context.Context, paymentID string) error {
	if err := uc.checkGateway(domain.PaymentMethodKhalti); err != nil {
		return err
	}
	payment, err := uc.store.Payments().GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.IsPaid() || payment.ExternalRef != "" || !payment.Method.RequiresGateway() {
		return nil
	}
	order, err := uc.store.Orders().GetByPaymentID(ctx, paymentID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusPending {
		return nil
	}
	return uc.initiate(ctx, order, payment, &OrderOutput{Order: order, Payment: payment})
}

// VerifyPayment confirms a gateway transaction by its reference and settles
// the payment when the provider reports Completed. Concurrent calls for the
// same reference share one gateway lookup, and only the first settling call
// publishes payment.completed.
func (uc *OrderUseCase) VerifyPayment(ctx context.Context, ref string) (*VerifyOutput, error) {
	if ref == "" {
		return nil, domain.ErrPaymentRefRequired
	}

	// The lookup is shared with other callers; one of them going away must not
	// fail the rest.
	v, err, _ := uc.verifyGroup.Do(ref, func() (interface{}, error) {
		return uc.verify(context.WithoutCancel(ctx), ref)
	})
	if err != nil {
		return nil, err
	}
	out := *v.(*VerifyOutput)
	return &out, nil
}

func (uc *OrderUseCase) verify(ctx context.Context, ref string) (*VerifyOutput, error) {
	payment, err := uc.store.Payments().GetByExternalRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	order, err := uc.store.Orders().GetByPaymentID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}

	out := &VerifyOutput{Payment: payment, OrderID: order.ID}
	if payment.IsPaid() {
		out.State = domain.TransactionCompleted
		return out, nil
	}
	if err := uc.checkGateway(payment.Method); err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, uc.gatewayTimeout)
	defer cancel()

	txn, err := uc.gateway.Verify(gctx, ref)
	if err != nil {
		uc.log.WithContext(ctx).Warn("payment verification failed",
			zap.Error(err),
			zap.String("external_ref", ref),
		)
		return nil, gatewayError(err, "payment gateway unavailable")
	}
	out.State = txn.State
	if txn.State != domain.TransactionCompleted {
		uc.log.WithContext(ctx).Info("payment not completed",
			zap.String("external_ref", ref),
			zap.String("state", string(txn.State)),
		)
		return out, nil
	}

	expected := MinorUnits(order.TotalAmount)
	if txn.AmountMinor != expected {
		uc.log.WithContext(ctx).Error("paid amount does not match order total",
			zap.String("order_id", order.ID),
			zap.String("external_ref", ref),
			zap.Int64("expected", expected),
			zap.Int64("paid", txn.AmountMinor),
		)
		return nil, domain.NewAmountMismatch(expected, txn.AmountMinor)
	}

	changed, err := uc.payments.MarkPaid(ctx, uc.store.Payments(), ref, txn.TransactionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment.Status = domain.PaymentStatusPaid
	if changed {
		payment.TransactionID = txn.TransactionID
		payment.PaidAt = &now
		out.Settled = true
		if uc.publisher != nil {
			if err := uc.publisher.PublishPaymentCompleted(ctx, payment, order.ID); err != nil {
				uc.log.WithContext(ctx).Error("failed to publish payment completed event",
					zap.Error(err),
					zap.String("payment_id", payment.ID),
				)
			}
		}
	}
	return out, nil
}

// startPayment initiates the gateway transaction after the order committed.
// Failures leave the order in place and are reported on out.
func (uc *OrderUseCase) startPayment(ctx context.Context, order *domain.Order, payment *domain.Payment, out *OrderOutput) {
	if err := uc.initiate(ctx, order, payment, out); err != nil {
		out.PaymentError = paymentRetryHint
	}
}

func (uc *OrderUseCase) initiate(ctx context.Context, order *domain.Order, payment *domain.Payment, out *OrderOutput) error {
	// The order is already committed; a disconnecting client must not abort
	// storing the reference.
	ctx = context.WithoutCancel(ctx)
	gctx, cancel := context.WithTimeout(ctx, uc.gatewayTimeout)
	defer cancel()

	res, err := uc.gateway.Initiate(gctx, ports.InitiateRequest{
		OrderID:       order.ID,
		OrderName:     "Order " + shortID(order.ID),
		AmountMinor:   MinorUnits(order.TotalAmount),
		CustomerPhone: order.ContactPhone,
	})
	if err != nil {
		uc.log.WithContext(ctx).Warn("payment initiation failed",
			zap.Error(err),
			zap.String("order_id", order.ID),
			zap.String("payment_id", payment.ID),
		)
		return gatewayError(err, "payment gateway unavailable")
	}

	if err := uc.payments.AttachExternalRef(ctx, uc.store.Payments(), payment.ID, res.ExternalRef, res.RedirectURL); err != nil {
		uc.log.WithContext(ctx).Error("failed to store payment reference",
			zap.Error(err),
			zap.String("payment_id", payment.ID),
			zap.String("external_ref", res.ExternalRef),
		)
		return err
	}

	payment.ExternalRef = res.ExternalRef
	payment.PaymentURL = res.RedirectURL
	out.PaymentURL = res.RedirectURL
	out.PaymentInitiated = true
	out.PaymentError = ""

	uc.log.WithContext(ctx).Info("payment initiated",
		zap.String("order_id", order.ID),
		zap.String("payment_id", payment.ID),
		zap.String("external_ref", res.ExternalRef),
	)
	return nil
}

// settleOutstanding verifies the open gateway transaction of an order before
// it is edited, deleted or re-initiated, so a payment the customer already
// made is not lost with its reference. guard runs first and stops disallowed
// operations before the gateway is contacted. The provider state is returned,
// or "" when there was nothing to verify.
func (uc *OrderUseCase) settleOutstanding(ctx context.Context, userID, orderID string, guard func(*domain.Order) error) (domain.TransactionState, error) {
	order, err := uc.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if !order.OwnedBy(userID) {
		return "", domain.NewOrderNotFound(orderID)
	}
	if err := guard(order); err != nil {
		return "", err
	}
	payment, err := uc.store.Payments().GetByID(ctx, order.PaymentID)
	if err != nil {
		return "", err
	}
	if payment.IsPaid() || payment.ExternalRef == "" || !payment.Method.RequiresGateway() || uc.gateway == nil {
		return "", nil
	}

	out, err := uc.VerifyPayment(ctx, payment.ExternalRef)
	if err != nil {
		return "", err
	}
	return out.State, nil
}

// lockOwned loads and locks an order, hiding orders of other users
func (uc *OrderUseCase) lockOwned(ctx context.Context, tx ports.Repositories, userID, orderID string) (*domain.Order, error) {
	order, err := tx.Orders().GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.OwnedBy(userID) {
		return nil, domain.NewOrderNotFound(orderID)
	}
	return order, nil
}

// reserveLines takes stock again for the existing lines of an order
func (uc *OrderUseCase) reserveLines(ctx context.Context, products ports.ProductRepository, lines []domain.LineItem) error {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	catalog, err := products.GetForUpdate(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "failed to load products")
	}

	available := make(map[string]int, len(catalog))
	for id, p := range catalog {
		available[id] = p.Stock
	}
	for _, l := range lines {
		p, ok := catalog[l.ProductID]
		if !ok {
			return domain.NewProductNotFound(l.ProductID)
		}
		if l.Quantity > p.Stock {
			return domain.NewInsufficientStock(p.ID, p.Name, l.Quantity, p.Stock)
		}
	}
	return reserveStock(ctx, products, lines, available)
}

func (uc *OrderUseCase) checkGateway(method domain.PaymentMethod) error {
	if method.RequiresGateway() && uc.gateway == nil {
		return errors.NewValidation("payment method "+string(method)+" is not available", map[string]interface{}{"field": "payment_method"})
	}
	return nil
}

func (uc *OrderUseCase) publishStatusChanged(ctx context.Context, orderID string, prev, next domain.OrderStatus, actorID string) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishOrderStatusChanged(ctx, orderID, prev, next, actorID); err != nil {
		uc.log.WithContext(ctx).Error("failed to publish order status changed event",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
	}
}

// appError keeps application errors as they are and hides everything else
func appError(err error, message string) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	return errors.NewInternal(message, err)
}

func gatewayError(err error, message string) error {
	if errors.Is(err, errors.CodeGatewayUnavailable) {
		return err
	}
	return errors.NewGatewayUnavailable(message, err)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
