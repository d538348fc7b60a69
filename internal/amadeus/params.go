package amadeus

import (
	"math"
	"net/url"
	"strconv"

	"github.com/Domenick1991/farefinder/internal/domain"
)

// CheapestDatesParams maps q onto the flight-dates parameter set. Absent
// optional fields are omitted entirely.
func CheapestDatesParams(q domain.CheapestDatesQuery) url.Values {
	params := url.Values{}
	params.Set("origin", q.Origin)
	params.Set("destination", q.Destination)
	setOptional(params, q.DepartureDate, q.OneWay, q.Duration, q.NonStop, q.MaxPrice, q.ViewBy)
	return params
}

// FlightDestinationsParams maps q onto the flight-destinations parameter set.
func FlightDestinationsParams(q domain.FlightDestinationsQuery) url.Values {
	params := url.Values{}
	params.Set("origin", q.Origin)
	setOptional(params, q.DepartureDate, q.OneWay, q.Duration, q.NonStop, q.MaxPrice, q.ViewBy)
	return params
}

func setOptional(params url.Values, departureDate string, oneWay domain.OptionalBool, duration string, nonStop domain.OptionalBool, maxPrice *float64, viewBy domain.ViewBy) {
	if departureDate != "" {
		params.Set("departureDate", departureDate)
	}
	if oneWay.IsSet() {
		params.Set("oneWay", oneWay.String())
	}
	if duration != "" {
		params.Set("duration", duration)
	}
	if nonStop.IsSet() {
		params.Set("nonStop", nonStop.String())
	}
	if maxPrice != nil {
		params.Set("maxPrice", FormatPrice(*maxPrice))
	}
	if viewBy != "" {
		params.Set("viewBy", string(viewBy))
	}
}

// FormatPrice floors v to a non-negative integer.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(math.Max(0, math.Floor(v)), 'f', 0, 64)
}
