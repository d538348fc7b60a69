package api

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/farefinder/internal/domain"
)

var (
	errInvalidRequest = errors.New("origin and destination are required")
	errOriginRequired = errors.New("origin is required")
)

// tripParams holds the fields shared by both search endpoints.
type tripParams struct {
	departureDate string
	oneWay        domain.OptionalBool
	duration      string
	nonStop       domain.OptionalBool
	maxPrice      *float64
}

// ParseCheapestDates normalizes raw query parameters for the flight-dates search.
func ParseCheapestDates(values url.Values) (domain.CheapestDatesQuery, error) {
	origin := airportCode(values, "origin", "from")
	destination := airportCode(values, "destination", "to")
	if origin == "" || destination == "" {
		return domain.CheapestDatesQuery{}, errInvalidRequest
	}

	trip := parseTrip(values)
	viewBy := domain.ViewByDuration
	if trip.oneWay.IsTrue() {
		viewBy = domain.ViewByDate
	}
	viewBy = viewByOr(values, viewBy)

	return domain.CheapestDatesQuery{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: trip.departureDate,
		OneWay:        trip.oneWay,
		Duration:      trip.duration,
		NonStop:       trip.nonStop,
		MaxPrice:      trip.maxPrice,
		ViewBy:        viewBy,
	}, nil
}

// ParseFlightDestinations normalizes raw query parameters for the
// flight-destinations search.
func ParseFlightDestinations(values url.Values) (domain.FlightDestinationsQuery, error) {
	origin := airportCode(values, "origin", "from")
	if origin == "" {
		return domain.FlightDestinationsQuery{}, errOriginRequired
	}

	trip := parseTrip(values)
	viewBy := viewByOr(values, domain.ViewByDuration)

	return domain.FlightDestinationsQuery{
		Origin:        origin,
		DepartureDate: trip.departureDate,
		OneWay:        trip.oneWay,
		Duration:      trip.duration,
		NonStop:       trip.nonStop,
		MaxPrice:      trip.maxPrice,
		ViewBy:        viewBy,
	}, nil
}

func parseTrip(values url.Values) tripParams {
	departure := first(values, "departureDate", "departure")
	ret := first(values, "returnDate", "return")
	oneWay := resolveOneWay(values, ret != "")

	duration := first(values, "duration")
	if duration == "" && departure != "" && ret != "" && !oneWay.IsTrue() {
		if days, ok := DurationDays(departure, ret); ok {
			duration = strconv.Itoa(days)
		}
	}

	return tripParams{
		departureDate: departure,
		oneWay:        oneWay,
		duration:      duration,
		nonStop:       literalBool(values, "nonStop"),
		maxPrice:      number(values, "maxPrice"),
	}
}

// resolveOneWay prefers an explicit oneWay flag, then tripType, then the
// presence of a return date.
func resolveOneWay(values url.Values, hasReturn bool) domain.OptionalBool {
	if flag := literalBool(values, "oneWay"); flag.IsSet() {
		return flag
	}
	switch values.Get("tripType") {
	case "one-way":
		return domain.True
	case "round-trip":
		return domain.False
	}
	if hasReturn {
		return domain.False
	}
	return domain.Unset
}

// DurationDays returns the whole days between two ISO dates. ok is false when
// either date does not parse or the span is negative.
func DurationDays(startISO, endISO string) (int, bool) {
	start, ok := parseInstant(startISO)
	if !ok {
		return 0, false
	}
	end, ok := parseInstant(endISO)
	if !ok {
		return 0, false
	}
	diff := end.Sub(start)
	if diff < 0 {
		return 0, false
	}
	return int(diff / (24 * time.Hour)), true
}

var instantLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// viewByOr returns viewBy verbatim when the key is present, even if empty,
// and def otherwise. An empty value is omitted from the upstream query.
func viewByOr(values url.Values, def domain.ViewBy) domain.ViewBy {
	if _, ok := values["viewBy"]; ok {
		return domain.ViewBy(values.Get("viewBy"))
	}
	return def
}

// first returns the first non-empty value among keys.
func first(values url.Values, keys ...string) string {
	for _, k := range keys {
		if v := values.Get(k); v != "" {
			return v
		}
	}
	return ""
}

func airportCode(values url.Values, keys ...string) string {
	return strings.ToUpper(strings.TrimSpace(first(values, keys...)))
}

// literalBool is True only for the exact string "true"; any other present
// value is False and an absent key is Unset.
func literalBool(values url.Values, key string) domain.OptionalBool {
	if _, ok := values[key]; !ok {
		return domain.Unset
	}
	return domain.BoolOf(values.Get(key) == "true")
}

func number(values url.Values, key string) *float64 {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
