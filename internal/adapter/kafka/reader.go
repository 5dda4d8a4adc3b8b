package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cropwatch/weather-alert-service/internal/config"
	"github.com/cropwatch/weather-alert-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Handler consumes one decoded location update.
type Handler func(ctx context.Context, update domain.LocationUpdate)

// Reader consumes location updates from the bus topic and hands them to a
// Handler (the dispatcher's OnEvent).
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a consumer-group reader on the updates topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{reader: r, logger: logger}
}

// Consume reads updates until the context is cancelled. Malformed messages
// are logged and dropped; transient read errors back off briefly so a broker
// outage does not spin the loop.
func (r *Reader) Consume(ctx context.Context, handle Handler) error {
	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("consumer stopping", "reason", ctx.Err())
				return nil
			}
			r.logger.Error("read update failed", "error", err)
			if !sleepWithContext(ctx, time.Second) {
				return nil
			}
			continue
		}

		update, err := mapMessageToUpdate(msg)
		if err != nil {
			r.logger.Warn("dropping malformed update",
				"error", err, "partition", msg.Partition, "offset", msg.Offset)
			continue
		}
		handle(ctx, update)
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

func mapMessageToUpdate(msg kafkago.Message) (domain.LocationUpdate, error) {
	var update domain.LocationUpdate
	if err := json.Unmarshal(msg.Value, &update); err != nil {
		return domain.LocationUpdate{}, err
	}
	return update, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
