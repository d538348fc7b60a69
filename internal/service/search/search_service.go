package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Domenick1991/farefinder/internal/amadeus"
	"github.com/Domenick1991/farefinder/internal/domain"
	"github.com/Domenick1991/farefinder/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

type SearchUseCase interface {
	CheapestDates(ctx context.Context, q domain.CheapestDatesQuery) (json.RawMessage, error)
	FlightDestinations(ctx context.Context, q domain.FlightDestinationsQuery) (json.RawMessage, error)
}

// Upstream hands out clients bound to the current provider token.
type Upstream interface {
	Authorized(ctx context.Context) (*amadeus.Client, error)
	Invalidate()
}

type EventProducer interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

type SearchService struct {
	upstream    Upstream
	producer    EventProducer
	eventsTopic string
	logger      *slog.Logger
	retries     metric.Int64Counter
}

type SearchServiceOption func(*SearchService)

// WithEvents publishes a SearchEvent to topic after every dispatched search.
func WithEvents(producer EventProducer, topic string) SearchServiceOption {
	return func(s *SearchService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func WithLogger(logger *slog.Logger) SearchServiceOption {
	return func(s *SearchService) {
		s.logger = logger
	}
}

func NewSearchService(upstream Upstream, opts ...SearchServiceOption) *SearchService {
	s := &SearchService{
		upstream: upstream,
		logger:   slog.Default(),
		retries:  telemetry.Counter("github.com/Domenick1991/farefinder/internal/service/search", "amadeus.upstream.retries", "Data calls retried after a 401"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SearchService) CheapestDates(ctx context.Context, q domain.CheapestDatesQuery) (json.RawMessage, error) {
	return s.search(ctx, domain.EndpointCheapestDates, amadeus.PathFlightDates, q.Origin, q.Destination, amadeus.CheapestDatesParams(q))
}

func (s *SearchService) FlightDestinations(ctx context.Context, q domain.FlightDestinationsQuery) (json.RawMessage, error) {
	return s.search(ctx, domain.EndpointFlightDestinations, amadeus.PathFlightDestinations, q.Origin, "", amadeus.FlightDestinationsParams(q))
}

func (s *SearchService) search(ctx context.Context, endpoint, path, origin, destination string, params url.Values) (json.RawMessage, error) {
	started := time.Now()
	data, retried, err := s.dispatch(ctx, path, params)

	status := http.StatusOK
	if err != nil {
		status = amadeus.StatusOf(err)
		s.logger.Error("amadeus call failed", "endpoint", endpoint, "status", status, "retried", retried, "error", err)
	} else {
		s.logger.Info("amadeus call succeeded", "endpoint", endpoint, "retried", retried)
	}

	s.publish(ctx, domain.SearchEvent{
		ID:          uuid.NewString(),
		RequestID:   RequestIDFrom(ctx),
		Endpoint:    endpoint,
		Origin:      origin,
		Destination: destination,
		Status:      status,
		Retried:     retried,
		DurationMs:  time.Since(started).Milliseconds(),
		OccurredAt:  started.UTC(),
	})

	return data, err
}

// dispatch calls the provider once and, on a 401, invalidates the token and
// retries exactly once with a freshly fetched one.
func (s *SearchService) dispatch(ctx context.Context, path string, params url.Values) (json.RawMessage, bool, error) {
	client, err := s.upstream.Authorized(ctx)
	if err != nil {
		return nil, false, err
	}

	data, err := client.Get(ctx, path, params)
	if err == nil || !amadeus.IsUnauthorized(err) {
		return data, false, err
	}

	s.logger.Warn("amadeus rejected cached token, retrying with a new one", "path", path)
	s.retries.Add(ctx, 1)
	s.upstream.Invalidate()

	client, err = s.upstream.Authorized(ctx)
	if err != nil {
		return nil, true, err
	}
	data, err = client.Get(ctx, path, params)
	return data, true, err
}

func (s *SearchService) publish(ctx context.Context, event domain.SearchEvent) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, event.ID, event); err != nil {
		s.logger.Warn("failed to publish search event", "event_id", event.ID, "error", err)
	}
}

var _ SearchUseCase = (*SearchService)(nil)
