package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/farefinder/internal/domain"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads messages until ctx is done or handler fails.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// DecodeSearchEvent unmarshals a message value produced by the search dispatcher.
func DecodeSearchEvent(msg kafka.Message) (domain.SearchEvent, error) {
	var event domain.SearchEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return domain.SearchEvent{}, fmt.Errorf("decode search event: %w", err)
	}
	return event, nil
}

// LogSearchEvents returns a handler that writes one log line per search
// event. Undecodable messages are logged and skipped so the consumer keeps
// its offset moving.
func LogSearchEvents(logger *slog.Logger) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		event, err := DecodeSearchEvent(msg)
		if err != nil {
			logger.WarnContext(ctx, "skipping search event", "offset", msg.Offset, "error", err)
			return nil
		}

		level := slog.LevelInfo
		if event.Status != 200 {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "search event",
			"id", event.ID,
			"request_id", event.RequestID,
			"endpoint", event.Endpoint,
			"origin", event.Origin,
			"destination", event.Destination,
			"status", event.Status,
			"retried", event.Retried,
			"duration_ms", event.DurationMs,
		)
		return nil
	}
}
