// Package kafka publishes replay events to the subscriber topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/scott4ai/ukraine-fire-tracking/internal/config"
	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
)

// Event type header values consumers dispatch on.
const (
	eventTypeBatch        = "fire_batch"
	eventTypeSessionEnded = "session_ended"
)

// Publisher produces replay events to a Kafka topic. It implements the
// engine's Publisher interface.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured replay topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishBatch serializes one tick's consolidated update and writes it keyed
// by session, so a partitioned topic keeps each session's batches in order.
func (p *Publisher) PublishBatch(ctx context.Context, update domain.BatchUpdate) error {
	msg, err := serializeToMessage(update.SessionID, eventTypeBatch, update.Timestamp, update)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// PublishSessionEnded writes the terminal event for a session.
func (p *Publisher) PublishSessionEnded(ctx context.Context, ended domain.SessionEnded) error {
	msg, err := serializeToMessage(ended.SessionID, eventTypeSessionEnded, ended.EndedAt, ended)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a replay event into a Kafka message with the
// session key and dispatch headers.
func serializeToMessage(sessionID, eventType string, at time.Time, payload any) (kafkago.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s event: %w", eventType, err)
	}
	return kafkago.Message{
		Key:   []byte(sessionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "simulated_at", Value: []byte(at.UTC().Format(time.RFC3339))},
		},
	}, nil
}
