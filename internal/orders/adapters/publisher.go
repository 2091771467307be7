package adapters

import (
	"context"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/events"
	"go-storefront/pkg/logger"
)

// exchangePublisher is satisfied by *rabbitmq.Publisher
type exchangePublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, message interface{}) error
}

// topicPublisher is satisfied by *kafka.Producer
type topicPublisher interface {
	Publish(ctx context.Context, key, eventType string, message interface{}) error
}

func orderCreatedEvent(ctx context.Context, order *domain.Order, method domain.PaymentMethod) *events.OrderCreatedEvent {
	return events.NewOrderCreatedEvent(events.OrderCreatedPayload{
		ID:            order.ID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		PaymentMethod: string(method),
		ProductIDs:    order.ProductIDs(),
		CreatedAt:     order.CreatedAt,
	}, logger.GetTraceID(ctx))
}

func orderStatusChangedEvent(ctx context.Context, orderID string, prev, next domain.OrderStatus, actorID string) *events.OrderStatusChangedEvent {
	return events.NewOrderStatusChangedEvent(events.OrderStatusChangedPayload{
		ID:             orderID,
		PreviousStatus: string(prev),
		CurrentStatus:  string(next),
		ActorID:        actorID,
	}, logger.GetTraceID(ctx))
}

func paymentCompletedEvent(ctx context.Context, payment *domain.Payment, orderID string) *events.PaymentCompletedEvent {
	return events.NewPaymentCompletedEvent(events.PaymentCompletedPayload{
		PaymentID:     payment.ID,
		OrderID:       orderID,
		ExternalRef:   payment.ExternalRef,
		TransactionID: payment.TransactionID,
	}, logger.GetTraceID(ctx))
}

// RabbitMQPublisher implements EventPublisher using RabbitMQ topic exchanges
type RabbitMQPublisher struct {
	publisher exchangePublisher
}

// NewRabbitMQPublisher creates a new RabbitMQ event publisher
func NewRabbitMQPublisher(publisher exchangePublisher) *RabbitMQPublisher {
	return &RabbitMQPublisher{publisher: publisher}
}

// PublishOrderCreated publishes an order created event
func (p *RabbitMQPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order, method domain.PaymentMethod) error {
	return p.publisher.Publish(ctx, events.ExchangeOrders, events.RoutingKeyOrderCreated, orderCreatedEvent(ctx, order, method))
}

// PublishOrderStatusChanged publishes an order status changed event
func (p *RabbitMQPublisher) PublishOrderStatusChanged(ctx context.Context, orderID string, prev, next domain.OrderStatus, actorID string) error {
	return p.publisher.Publish(ctx, events.ExchangeOrders, events.RoutingKeyOrderStatusChanged, orderStatusChangedEvent(ctx, orderID, prev, next, actorID))
}

// PublishPaymentCompleted publishes a payment completed event
func (p *RabbitMQPublisher) PublishPaymentCompleted(ctx context.Context, payment *domain.Payment, orderID string) error {
	return p.publisher.Publish(ctx, events.ExchangePayments, events.RoutingKeyPaymentCompleted, paymentCompletedEvent(ctx, payment, orderID))
}

// PublishVerifyRequested asks the verification consumer to poll the gateway
func (p *RabbitMQPublisher) PublishVerifyRequested(ctx context.Context, ref string) error {
	return p.publisher.Publish(ctx, events.ExchangePayments, events.RoutingKeyPaymentVerifyRequested,
		events.NewPaymentVerifyRequestedEvent(ref, logger.GetTraceID(ctx)))
}

// KafkaPublisher implements EventPublisher on a single Kafka topic. Records
// are keyed by order so one order's events stay ordered.
type KafkaPublisher struct {
	producer topicPublisher
}

// NewKafkaPublisher creates a new Kafka event publisher
func NewKafkaPublisher(producer topicPublisher) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// PublishOrderCreated publishes an order created event
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order, method domain.PaymentMethod) error {
	return p.producer.Publish(ctx, order.ID, events.RoutingKeyOrderCreated, orderCreatedEvent(ctx, order, method))
}

// PublishOrderStatusChanged publishes an order status changed event
func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, orderID string, prev, next domain.OrderStatus, actorID string) error {
	return p.producer.Publish(ctx, orderID, events.RoutingKeyOrderStatusChanged, orderStatusChangedEvent(ctx, orderID, prev, next, actorID))
}

// PublishPaymentCompleted publishes a payment completed event
func (p *KafkaPublisher) PublishPaymentCompleted(ctx context.Context, payment *domain.Payment, orderID string) error {
	return p.producer.Publish(ctx, orderID, events.RoutingKeyPaymentCompleted, paymentCompletedEvent(ctx, payment, orderID))
}

// PublishVerifyRequested is not routed through Kafka since nothing consumes
// it there.
func (p *KafkaPublisher) PublishVerifyRequested(ctx context.Context, ref string) error {
	return ports.ErrVerifyNotRouted
}
