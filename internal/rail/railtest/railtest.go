// Package railtest builds connections for tests.
package railtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rail-planner/internal/rail"
	"rail-planner/internal/timeline"
)

// Conn builds a daily second-class-priced connection. Options adjust the rest.
func Conn(t testing.TB, id, from, to, dep, arr string, opts ...Option) *rail.Connection {
	t.Helper()
	spec := rail.ConnectionSpec{
		RouteID:         id,
		DepartureCity:   from,
		ArrivalCity:     to,
		Departure:       timeline.MustClock(dep),
		Arrival:         timeline.MustClock(arr),
		Category:        "RE",
		Days:            "Daily",
		FirstClassFare:  100,
		SecondClassFare: 50,
	}
	for _, o := range opts {
		o(&spec)
	}
	c, err := rail.NewConnection(spec)
	require.NoError(t, err)
	return c
}

type Option func(*rail.ConnectionSpec)

func Days(text string) Option {
	return func(s *rail.ConnectionSpec) { s.Days = text }
}

func Category(name string) Option {
	return func(s *rail.ConnectionSpec) { s.Category = name }
}

func Fares(first, second int) Option {
	return func(s *rail.ConnectionSpec) {
		s.FirstClassFare = first
		s.SecondClassFare = second
	}
}

func DayOffset(days int) Option {
	return func(s *rail.ConnectionSpec) { s.DayOffset = days }
}

// Graph builds a graph and fails the test on error.
func Graph(t testing.TB, conns ...*rail.Connection) *rail.Graph {
	t.Helper()
	g, err := rail.NewGraph(conns)
	require.NoError(t, err)
	return g
}
