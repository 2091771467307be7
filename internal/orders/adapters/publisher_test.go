package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/internal/orders/application"
	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	apperrors "go-storefront/pkg/errors"
	"go-storefront/pkg/events"
	"go-storefront/pkg/logger"
)

type published struct {
	target  string
	key     string
	message interface{}
}

type recordingExchange struct {
	sent []published
}

func (r *recordingExchange) Publish(ctx context.Context, exchange, routingKey string, message interface{}) error {
	r.sent = append(r.sent, published{target: exchange, key: routingKey, message: message})
	return nil
}

type recordingTopic struct {
	sent []published
}

func (r *recordingTopic) Publish(ctx context.Context, key, eventType string, message interface{}) error {
	r.sent = append(r.sent, published{target: eventType, key: key, message: message})
	return nil
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:          "o1",
		UserID:      "u1",
		TotalAmount: decimal.NewFromInt(1070),
		Lines:       []domain.LineItem{{ProductID: "p1", Quantity: 2}},
		CreatedAt:   time.Now().UTC(),
	}
}

func TestRabbitMQPublisher_Routes(t *testing.T) {
	ex := &recordingExchange{}
	p := NewRabbitMQPublisher(ex)
	ctx := logger.WithTraceIDContext(context.Background(), "trace-1")

	require.NoError(t, p.PublishOrderCreated(ctx, testOrder(), domain.PaymentMethodKhalti))
	require.NoError(t, p.PublishOrderStatusChanged(ctx, "o1", domain.OrderStatusPending, domain.OrderStatusCancelled, "u1"))
	require.NoError(t, p.PublishPaymentCompleted(ctx, &domain.Payment{ID: "pay1", ExternalRef: "abc", TransactionID: "T1"}, "o1"))
	require.NoError(t, p.PublishVerifyRequested(ctx, "abc"))

	require.Len(t, ex.sent, 4)
	assert.Equal(t, events.ExchangeOrders, ex.sent[0].target)
	assert.Equal(t, events.RoutingKeyOrderCreated, ex.sent[0].key)
	assert.Equal(t, events.RoutingKeyOrderStatusChanged, ex.sent[1].key)
	assert.Equal(t, events.ExchangePayments, ex.sent[2].target)
	assert.Equal(t, events.RoutingKeyPaymentCompleted, ex.sent[2].key)
	assert.Equal(t, events.RoutingKeyPaymentVerifyRequested, ex.sent[3].key)

	created, ok := ex.sent[0].message.(*events.OrderCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "trace-1", created.TraceID)
	assert.Equal(t, "1070.00", created.Payload.TotalAmount)
	assert.Equal(t, "Khalti", created.Payload.PaymentMethod)
	assert.Equal(t, []string{"p1"}, created.Payload.ProductIDs)

	changed := ex.sent[1].message.(*events.OrderStatusChangedEvent)
	assert.Equal(t, "Pending", changed.Payload.PreviousStatus)
	assert.Equal(t, "Cancelled", changed.Payload.CurrentStatus)
}

func TestKafkaPublisher_KeysByOrder(t *testing.T) {
	topic := &recordingTopic{}
	p := NewKafkaPublisher(topic)
	ctx := context.Background()

	require.NoError(t, p.PublishOrderCreated(ctx, testOrder(), domain.PaymentMethodCOD))
	require.NoError(t, p.PublishPaymentCompleted(ctx, &domain.Payment{ID: "pay1"}, "o1"))

	require.Len(t, topic.sent, 2)
	for _, msg := range topic.sent {
		assert.Equal(t, "o1", msg.key)
	}
	assert.Equal(t, events.RoutingKeyPaymentCompleted, topic.sent[1].target)

	assert.ErrorIs(t, p.PublishVerifyRequested(ctx, "abc"), ports.ErrVerifyNotRouted)
}

type stubVerifier struct {
	refs []string
	out  *application.VerifyOutput
	err  error
}

func (s *stubVerifier) VerifyPayment(ctx context.Context, ref string) (*application.VerifyOutput, error) {
	s.refs = append(s.refs, ref)
	return s.out, s.err
}

func verifyBody(t *testing.T, ref string) []byte {
	t.Helper()
	body, err := json.Marshal(events.NewPaymentVerifyRequestedEvent(ref, ""))
	require.NoError(t, err)
	return body
}

func TestHandleVerifyRequested(t *testing.T) {
	log := logger.NewNop()
	ctx := context.Background()

	t.Run("verifies the referenced payment", func(t *testing.T) {
		v := &stubVerifier{out: &application.VerifyOutput{State: domain.TransactionCompleted, Settled: true}}
		require.NoError(t, handleVerifyRequested(ctx, v, log, verifyBody(t, "abc")))
		assert.Equal(t, []string{"abc"}, v.refs)
	})

	t.Run("drops malformed messages", func(t *testing.T) {
		v := &stubVerifier{}
		require.NoError(t, handleVerifyRequested(ctx, v, log, []byte("{")))
		assert.Empty(t, v.refs)
	})

	t.Run("drops rejected verifications", func(t *testing.T) {
		v := &stubVerifier{err: domain.NewAmountMismatch(1000, 900)}
		assert.NoError(t, handleVerifyRequested(ctx, v, log, verifyBody(t, "abc")))
	})

	t.Run("redelivers when the gateway is down", func(t *testing.T) {
		v := &stubVerifier{err: apperrors.NewGatewayUnavailable("down", errors.New("timeout"))}
		err := handleVerifyRequested(ctx, v, log, verifyBody(t, "abc"))
		assert.True(t, apperrors.Is(err, apperrors.CodeGatewayUnavailable))
	})
}
