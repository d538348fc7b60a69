package kafka

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Domenick1991/farefinder/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSearchEvent(t *testing.T) {
	msg := kafka.Message{Value: []byte(`{"id":"e1","endpoint":"cheapest-dates","origin":"MAD","destination":"BCN","status":200,"retried":true,"duration_ms":42,"occurred_at":"2025-01-01T10:00:00Z"}`)}

	event, err := DecodeSearchEvent(msg)
	require.NoError(t, err)

	assert.Equal(t, domain.SearchEvent{
		ID:          "e1",
		Endpoint:    domain.EndpointCheapestDates,
		Origin:      "MAD",
		Destination: "BCN",
		Status:      200,
		Retried:     true,
		DurationMs:  42,
		OccurredAt:  time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
	}, event)
}

func TestDecodeSearchEvent_Invalid(t *testing.T) {
	_, err := DecodeSearchEvent(kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestNewProducer(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"})
	assert.NotNil(t, p)
	assert.NoError(t, p.Close())
}

func TestConsumer_CloseNil(t *testing.T) {
	var c *Consumer
	assert.NoError(t, c.Close())
}

func TestLogSearchEvents(t *testing.T) {
	var buf bytes.Buffer
	handler := LogSearchEvents(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := handler(context.Background(), kafka.Message{Value: []byte(`{"id":"e2","endpoint":"flight-destinations","origin":"PAR","status":502}`)})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"origin":"PAR"`)

	buf.Reset()
	err = handler(context.Background(), kafka.Message{Offset: 9, Value: []byte("garbage")})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "skipping search event")
}
