// Package kafka carries location updates between the scheduler and the
// streaming dispatcher over a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cropwatch/weather-alert-service/internal/config"
	"github.com/cropwatch/weather-alert-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes location updates to the bus topic.
// It implements scheduler.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured updates topic.
// Messages are keyed by location with a hash balancer, pinning each
// location's events to one partition so its stream is never reordered.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one location update and writes it to the topic.
func (w *Writer) Publish(ctx context.Context, update domain.LocationUpdate) error {
	msg, err := serializeToMessage(update)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish update for %q: %w", update.Location, err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a LocationUpdate into a Kafka message keyed by
// location.
func serializeToMessage(update domain.LocationUpdate) (kafkago.Message, error) {
	data, err := json.Marshal(update)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize update for %q: %w", update.Location, err)
	}
	return kafkago.Message{
		Key:   []byte(update.Location),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "location", Value: []byte(update.Location)},
			{Key: "published_at", Value: []byte(domain.Clock().Now().UTC().Format(time.RFC3339))},
		},
	}, nil
}
