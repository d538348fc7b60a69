package domain

// OptionalBool is a tri-state flag parsed from an untyped query string.
type OptionalBool int

const (
	Unset OptionalBool = iota
	True
	False
)

func BoolOf(b bool) OptionalBool {
	if b {
		return True
	}
	return False
}

func (o OptionalBool) IsSet() bool { return o != Unset }

func (o OptionalBool) IsTrue() bool { return o == True }

// String returns "true", "false" or "" when unset.
func (o OptionalBool) String() string {
	switch o {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return ""
	}
}

type ViewBy string

const (
	ViewByDate     ViewBy = "DATE"
	ViewByDuration ViewBy = "DURATION"
	ViewByWeek     ViewBy = "WEEK"
	ViewByCountry  ViewBy = "COUNTRY"
)

// CheapestDatesQuery is the normalized input for the flight-dates search.
// Origin and Destination are upper-cased IATA codes.
type CheapestDatesQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	OneWay        OptionalBool
	Duration      string
	NonStop       OptionalBool
	MaxPrice      *float64
	ViewBy        ViewBy
}

// FlightDestinationsQuery is the normalized input for the flight-destinations
// search. Only Origin is required.
type FlightDestinationsQuery struct {
	Origin        string
	DepartureDate string
	OneWay        OptionalBool
	Duration      string
	NonStop       OptionalBool
	MaxPrice      *float64
	ViewBy        ViewBy
}
