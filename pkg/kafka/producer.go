package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"go-storefront/pkg/logger"
)

// Producer publishes JSON records to a single topic
type Producer struct {
	client *kgo.Client
	topic  string
	log    *logger.Logger
}

// NewProducer creates a producer. The brokers are not contacted until the first publish.
func NewProducer(brokers []string, topic string, log *logger.Logger) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	log.Info("kafka producer created",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic),
	)

	return &Producer{client: client, topic: topic, log: log}, nil
}

// Publish writes message to the topic. key keeps events of one aggregate on one partition.
func (p *Producer) Publish(ctx context.Context, key, eventType string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	rec := &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(key),
		Value:     body,
		Timestamp: time.Now().UTC(),
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "x-trace-id", Value: []byte(logger.GetTraceID(ctx))},
		},
	}

	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish to kafka topic %s: %w", p.topic, err)
	}

	p.log.WithContext(ctx).Debug("record published",
		zap.String("topic", p.topic),
		zap.String("event_type", eventType),
	)

	return nil
}

// Close flushes and closes the client
func (p *Producer) Close() {
	p.client.Close()
}
