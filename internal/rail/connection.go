package rail

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"

	"rail-planner/internal/calendar"
	"rail-planner/internal/timeline"
)

// ErrInvalidConnection marks connection data that fails integrity checks.
var ErrInvalidConnection = errors.New("invalid connection")

var validate = validator.New()

// FareClass selects which fare column a price is read from.
type FareClass int

const (
	SecondClass FareClass = iota
	FirstClass
)

func (c FareClass) String() string {
	if c == FirstClass {
		return "first"
	}
	return "second"
}

// ConnectionSpec is the raw, already-typed description of one scheduled leg.
type ConnectionSpec struct {
	RouteID         string         `validate:"required"`
	DepartureCity   string         `validate:"required"`
	ArrivalCity     string         `validate:"required,nefield=DepartureCity"`
	Departure       timeline.Clock `validate:"gte=0,lt=1440"`
	Arrival         timeline.Clock `validate:"gte=0,lt=1440"`
	DayOffset       int            `validate:"gte=0"`
	Category        string
	Days            string
	FirstClassFare  int `validate:"gte=0"`
	SecondClassFare int `validate:"gte=0"`
}

// Connection is an immutable scheduled leg between two cities.
type Connection struct {
	routeID         string
	departureCity   string
	arrivalCity     string
	departure       timeline.Clock
	arrival         timeline.Clock
	dayOffset       int
	category        string
	daysText        string
	days            calendar.WeekdaySet
	firstClassFare  int
	secondClassFare int
	tripMinutes     int
}

// NewConnection validates spec and returns the connection it describes.
// The operating calendar is parsed here so malformed data surfaces at load
// time rather than during a search.
func NewConnection(spec ConnectionSpec) (*Connection, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, fmt.Errorf("%w: route %q: %w", ErrInvalidConnection, spec.RouteID, err)
	}

	days, err := calendar.Parse(spec.Days)
	if err != nil {
		return nil, fmt.Errorf("%w: route %q: %w", ErrInvalidConnection, spec.RouteID, err)
	}

	trip := spec.Arrival.MinuteOfDay() + spec.DayOffset*timeline.MinutesPerDay - spec.Departure.MinuteOfDay()
	if trip < 0 {
		return nil, fmt.Errorf("%w: route %q arrives at %s before it departs at %s",
			ErrInvalidConnection, spec.RouteID, spec.Arrival, spec.Departure)
	}

	return &Connection{
		routeID:         spec.RouteID,
		departureCity:   spec.DepartureCity,
		arrivalCity:     spec.ArrivalCity,
		departure:       spec.Departure,
		arrival:         spec.Arrival,
		dayOffset:       spec.DayOffset,
		category:        spec.Category,
		daysText:        spec.Days,
		days:            days,
		firstClassFare:  spec.FirstClassFare,
		secondClassFare: spec.SecondClassFare,
		tripMinutes:     trip,
	}, nil
}

func (c *Connection) RouteID() string             { return c.routeID }
func (c *Connection) DepartureCity() string       { return c.departureCity }
func (c *Connection) ArrivalCity() string         { return c.arrivalCity }
func (c *Connection) Departure() timeline.Clock   { return c.departure }
func (c *Connection) Arrival() timeline.Clock     { return c.arrival }
func (c *Connection) DayOffset() int              { return c.dayOffset }
func (c *Connection) Category() string            { return c.category }
func (c *Connection) DaysText() string            { return c.daysText }
func (c *Connection) Days() calendar.WeekdaySet   { return c.days }
func (c *Connection) FirstClassFare() int         { return c.firstClassFare }
func (c *Connection) SecondClassFare() int        { return c.secondClassFare }
func (c *Connection) TripMinutes() int            { return c.tripMinutes }
func (c *Connection) TripDuration() time.Duration { return time.Duration(c.tripMinutes) * time.Minute }
func (c *Connection) RunsOn(d time.Weekday) bool  { return c.days.Has(d) }

// Fare returns the ticket price in the given class.
func (c *Connection) Fare(class FareClass) int {
	if class == FirstClass {
		return c.firstClassFare
	}
	return c.secondClassFare
}

func (c *Connection) String() string {
	return fmt.Sprintf("%s %s %s -> %s %s (+%dd) %s %s",
		c.routeID, c.departureCity, c.departure, c.arrivalCity, c.arrival, c.dayOffset, c.category, c.days)
}

// Categories returns the distinct train categories, sorted.
func Categories(conns []*Connection) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range conns {
		if c.category == "" {
			continue
		}
		if _, ok := seen[c.category]; ok {
			continue
		}
		seen[c.category] = struct{}{}
		out = append(out, c.category)
	}
	slices.Sort(out)
	return out
}
