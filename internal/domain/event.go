package domain

import "time"

const (
	EndpointCheapestDates      = "cheapest-dates"
	EndpointFlightDestinations = "flight-destinations"
)

// SearchEvent describes one dispatched upstream search.
type SearchEvent struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id,omitempty"`
	Endpoint    string    `json:"endpoint"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination,omitempty"`
	Status      int       `json:"status"`
	Retried     bool      `json:"retried"`
	DurationMs  int64     `json:"duration_ms"`
	OccurredAt  time.Time `json:"occurred_at"`
}
