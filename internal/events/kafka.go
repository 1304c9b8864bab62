package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"veganbite/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to Kafka, one topic per event type.
type KafkaPublisher struct {
	writer      messageWriter
	topicPrefix string
	logger      *zap.Logger
}

// NewKafkaPublisher creates a synchronous publisher that waits for all
// in-sync replicas to acknowledge.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	return &KafkaPublisher{writer: w, topicPrefix: cfg.TopicPrefix, logger: logger}
}

// Topic returns the topic an event type is published to.
func (p *KafkaPublisher) Topic(eventType string) string {
	if p.topicPrefix == "" {
		return eventType
	}
	return p.topicPrefix + "." + eventType
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	topic := p.Topic(event.EventType)
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(event.AggregateID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "source", Value: []byte(event.Source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", topic, err)
	}

	p.logger.Debug("Event published",
		zap.String("topic", topic),
		zap.String("event_type", event.EventType),
		zap.String("aggregate_id", event.AggregateID),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Emit builds and publishes an event without failing the caller. Publishing
// happens after the change is committed, so errors are only logged.
func Emit(ctx context.Context, publisher Publisher, logger *zap.Logger, eventType, aggregateType string, aggregateID int64, data any) {
	event, err := NewEvent(eventType, aggregateType, aggregateID, data)
	if err != nil {
		logger.Error("Failed to build event", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event_type", eventType),
			zap.Int64("aggregate_id", aggregateID),
			zap.Error(err),
		)
	}
}
