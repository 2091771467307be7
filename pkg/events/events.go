package events

import "time"

// Exchange names
const (
	ExchangeOrders   = "orders.events"
	ExchangePayments = "payments.events"
)

// Routing keys
const (
	RoutingKeyOrderCreated           = "order.created"
	RoutingKeyOrderStatusChanged     = "order.status_changed"
	RoutingKeyPaymentCompleted       = "payment.completed"
	RoutingKeyPaymentVerifyRequested = "payment.verify_requested"
)

// QueuePaymentVerification is the durable queue drained by the verification consumer
const QueuePaymentVerification = "orders.payment-verification"

const eventVersion = "1.0"

// Envelope is the common shape of every published event
type Envelope[T any] struct {
	Version   string    `json:"version"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	TraceID   string    `json:"trace_id"`
	Payload   T         `json:"payload"`
}

func newEnvelope[T any](eventType, traceID string, payload T) *Envelope[T] {
	return &Envelope[T]{
		Version:   eventVersion,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
		Payload:   payload,
	}
}

// OrderCreatedPayload contains order data
type OrderCreatedPayload struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	TotalAmount   string    `json:"total_amount"`
	PaymentMethod string    `json:"payment_method"`
	ProductIDs    []string  `json:"product_ids"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderCreatedEvent is published after checkout commits
type OrderCreatedEvent = Envelope[OrderCreatedPayload]

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(p OrderCreatedPayload, traceID string) *OrderCreatedEvent {
	return newEnvelope(RoutingKeyOrderCreated, traceID, p)
}

// OrderStatusChangedPayload records a transition and who made it
type OrderStatusChangedPayload struct {
	ID             string `json:"id"`
	PreviousStatus string `json:"previous_status"`
	CurrentStatus  string `json:"current_status"`
	ActorID        string `json:"actor_id"`
}

// OrderStatusChangedEvent is published on cancel and on administrative status changes
type OrderStatusChangedEvent = Envelope[OrderStatusChangedPayload]

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(p OrderStatusChangedPayload, traceID string) *OrderStatusChangedEvent {
	return newEnvelope(RoutingKeyOrderStatusChanged, traceID, p)
}

// PaymentCompletedPayload contains the settled payment
type PaymentCompletedPayload struct {
	PaymentID     string `json:"payment_id"`
	OrderID       string `json:"order_id"`
	ExternalRef   string `json:"external_ref"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// PaymentCompletedEvent is published the first time a payment becomes Paid
type PaymentCompletedEvent = Envelope[PaymentCompletedPayload]

// NewPaymentCompletedEvent creates a new PaymentCompletedEvent
func NewPaymentCompletedEvent(p PaymentCompletedPayload, traceID string) *PaymentCompletedEvent {
	return newEnvelope(RoutingKeyPaymentCompleted, traceID, p)
}

// PaymentVerifyRequestedPayload asks a consumer to poll the gateway for a reference
type PaymentVerifyRequestedPayload struct {
	ExternalRef string `json:"external_ref"`
}

// PaymentVerifyRequestedEvent is published by the reconciler
type PaymentVerifyRequestedEvent = Envelope[PaymentVerifyRequestedPayload]

// NewPaymentVerifyRequestedEvent creates a new PaymentVerifyRequestedEvent
func NewPaymentVerifyRequestedEvent(ref, traceID string) *PaymentVerifyRequestedEvent {
	return newEnvelope(RoutingKeyPaymentVerifyRequested, traceID, PaymentVerifyRequestedPayload{ExternalRef: ref})
}
