package journey

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"rail-planner/internal/rail"
	"rail-planner/internal/timeline"
)

var ErrInvalidItinerary = errors.New("invalid itinerary")

// RouteSeparator joins route ids in a route key.
const RouteSeparator = "|"

// Itinerary is a simple path of one to MaxLegs connections together with its
// walked timeline. It is never modified after construction.
type Itinerary struct {
	legs     []*rail.Connection
	schedule timeline.Schedule
}

func newItinerary(legs []*rail.Connection) Itinerary {
	owned := slices.Clone(legs)
	return Itinerary{legs: owned, schedule: timeline.Walk(owned)}
}

// NewItinerary checks that legs chain city to city without revisiting a city
// and returns the itinerary they form.
func NewItinerary(legs []*rail.Connection) (Itinerary, error) {
	if len(legs) == 0 || len(legs) > MaxLegs {
		return Itinerary{}, fmt.Errorf("%w: %d legs", ErrInvalidItinerary, len(legs))
	}
	visited := map[string]bool{legs[0].DepartureCity(): true}
	for i, c := range legs {
		if i > 0 && legs[i-1].ArrivalCity() != c.DepartureCity() {
			return Itinerary{}, fmt.Errorf("%w: leg %s departs %s, previous leg arrives at %s",
				ErrInvalidItinerary, c.RouteID(), c.DepartureCity(), legs[i-1].ArrivalCity())
		}
		if visited[c.ArrivalCity()] {
			return Itinerary{}, fmt.Errorf("%w: %s visited twice", ErrInvalidItinerary, c.ArrivalCity())
		}
		visited[c.ArrivalCity()] = true
	}
	return newItinerary(legs), nil
}

// FromRouteKey rebuilds an itinerary from a key produced by RouteKey.
func FromRouteKey(g *rail.Graph, key string) (Itinerary, error) {
	var legs []*rail.Connection
	for _, id := range strings.Split(key, RouteSeparator) {
		id = strings.TrimSpace(id)
		c, ok := g.Connection(id)
		if !ok {
			return Itinerary{}, fmt.Errorf("%w: unknown route %q", ErrInvalidItinerary, id)
		}
		legs = append(legs, c)
	}
	return NewItinerary(legs)
}

// Legs returns a copy of the connections in travel order.
func (it Itinerary) Legs() []*rail.Connection {
	return slices.Clone(it.legs)
}

func (it Itinerary) Leg(i int) *rail.Connection {
	return it.legs[i]
}

func (it Itinerary) Len() int {
	return len(it.legs)
}

func (it Itinerary) Origin() string {
	if len(it.legs) == 0 {
		return ""
	}
	return it.legs[0].DepartureCity()
}

func (it Itinerary) Destination() string {
	if len(it.legs) == 0 {
		return ""
	}
	return it.legs[len(it.legs)-1].ArrivalCity()
}

// Stops is the number of intermediate cities.
func (it Itinerary) Stops() int {
	return max(len(it.legs)-1, 0)
}

// Cities lists the origin followed by every arrival city.
func (it Itinerary) Cities() []string {
	if len(it.legs) == 0 {
		return nil
	}
	out := make([]string, 0, len(it.legs)+1)
	out = append(out, it.Origin())
	for _, c := range it.legs {
		out = append(out, c.ArrivalCity())
	}
	return out
}

// TotalMinutes is the time from first departure to final arrival, including
// every wait for a leg's next daily departure.
func (it Itinerary) TotalMinutes() int {
	return it.schedule.Total()
}

func (it Itinerary) Total() time.Duration {
	return time.Duration(it.schedule.Total()) * time.Minute
}

func (it Itinerary) Schedule() timeline.Schedule {
	return it.schedule
}

// Fare sums the leg fares in the given class.
func (it Itinerary) Fare(class rail.FareClass) int {
	total := 0
	for _, c := range it.legs {
		total += c.Fare(class)
	}
	return total
}

// RouteKey joins the route ids, e.g. "R12|R40".
func (it Itinerary) RouteKey() string {
	ids := make([]string, len(it.legs))
	for i, c := range it.legs {
		ids[i] = c.RouteID()
	}
	return strings.Join(ids, RouteSeparator)
}

func (it Itinerary) String() string {
	return fmt.Sprintf("%s (%s, %d stops, %s)",
		strings.Join(it.Cities(), " -> "), it.RouteKey(), it.Stops(), it.Total())
}
