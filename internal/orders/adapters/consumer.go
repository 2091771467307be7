package adapters

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"go-storefront/internal/orders/application"
	"go-storefront/pkg/errors"
	"go-storefront/pkg/events"
	"go-storefront/pkg/logger"
	"go-storefront/pkg/rabbitmq"
)

// paymentVerifier is satisfied by *application.OrderUseCase
type paymentVerifier interface {
	VerifyPayment(ctx context.Context, ref string) (*application.VerifyOutput, error)
}

// PaymentVerificationConsumer consumes payment.verify_requested events and
// verifies the referenced payment
type PaymentVerificationConsumer struct {
	consumer *rabbitmq.Consumer
	verifier paymentVerifier
	log      *logger.Logger
}

// NewPaymentVerificationConsumer creates a new consumer for verification requests
func NewPaymentVerificationConsumer(conn *rabbitmq.Connection, verifier paymentVerifier, prefetch int, log *logger.Logger) (*PaymentVerificationConsumer, error) {
	consumer, err := rabbitmq.NewConsumer(
		conn,
		events.QueuePaymentVerification,
		events.ExchangePayments,
		[]string{events.RoutingKeyPaymentVerifyRequested},
		prefetch,
		log,
	)
	if err != nil {
		return nil, err
	}

	return &PaymentVerificationConsumer{
		consumer: consumer,
		verifier: verifier,
		log:      log,
	}, nil
}

// Start starts consuming verification requests
func (c *PaymentVerificationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *PaymentVerificationConsumer) handleMessage(ctx context.Context, body []byte) error {
	return handleVerifyRequested(ctx, c.verifier, c.log, body)
}

// handleVerifyRequested returns an error only for failures worth a redelivery
func handleVerifyRequested(ctx context.Context, verifier paymentVerifier, log *logger.Logger, body []byte) error {
	var event events.PaymentVerifyRequestedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.WithContext(ctx).Error("failed to unmarshal PaymentVerifyRequestedEvent", zap.Error(err))
		return nil
	}
	ref := event.Payload.ExternalRef

	out, err := verifier.VerifyPayment(ctx, ref)
	if err != nil {
		if errors.Is(err, errors.CodeGatewayUnavailable) || errors.Is(err, errors.CodeInternal) {
			return err
		}
		log.WithContext(ctx).Warn("payment verification rejected",
			zap.Error(err),
			zap.String("external_ref", ref),
		)
		return nil
	}

	log.WithContext(ctx).Info("payment verification processed",
		zap.String("external_ref", ref),
		zap.String("state", string(out.State)),
		zap.Bool("settled", out.Settled),
	)
	return nil
}
