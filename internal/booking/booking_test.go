package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rail-planner/internal/journey"
	"rail-planner/internal/rail"
	"rail-planner/internal/rail/railtest"
)

type fakePublisher struct {
	trips []Trip
	err   error
}

func (f *fakePublisher) PublishBooking(t Trip) error {
	f.trips = append(f.trips, t)
	return f.err
}

type countingRecorder struct{ reservations int }

func (c *countingRecorder) ObserveBooking(n int) { c.reservations += n }

var bookedAt = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func parisToMarseille(t *testing.T) journey.Itinerary {
	it, err := journey.NewItinerary([]*rail.Connection{
		railtest.Conn(t, "A", "Paris", "Lyon", "08:00", "10:00", railtest.Fares(120, 60)),
		railtest.Conn(t, "B", "Lyon", "Marseille", "10:30", "12:00", railtest.Fares(40, 20)),
	})
	require.NoError(t, err)
	return it
}

func TestParsePassenger(t *testing.T) {
	p, err := ParsePassenger("P123: Ada :Lovelace:36")
	require.NoError(t, err)
	assert.Equal(t, Passenger{ID: "P123", FirstName: "Ada", LastName: "Lovelace", Age: 36}, p)
	assert.Equal(t, "Ada Lovelace", p.FullName())

	for _, bad := range []string{"P1:Ada:Lovelace", "P1:Ada:Lovelace:old", ":Ada:Lovelace:30", "P1:Ada:Lovelace:-1", "P1:Ada:Lovelace:200"} {
		_, err := ParsePassenger(bad)
		assert.ErrorIs(t, err, ErrInvalidPassenger, bad)
	}
}

func TestBook(t *testing.T) {
	store := NewMemoryStore()
	pub := &fakePublisher{}
	rec := &countingRecorder{}
	svc := NewService(store, WithPublisher(pub), WithRecorder(rec), WithClock(func() time.Time { return bookedAt }))

	passengers := []Passenger{
		{ID: "P1", FirstName: "Ada", LastName: "Lovelace", Age: 36},
		{ID: "P2", FirstName: "Alan", LastName: "Turing", Age: 41},
	}
	trip, err := svc.Book(context.Background(), parisToMarseille(t), rail.SecondClass, passengers)
	require.NoError(t, err)

	assert.Equal(t, int64(1), trip.ID)
	assert.Equal(t, "A|B", trip.RouteKey)
	assert.Equal(t, "Paris -> Lyon -> Marseille", trip.Summary)
	assert.Equal(t, 80, trip.Fare)
	assert.Equal(t, "second", trip.Class)
	assert.Equal(t, 240, trip.TotalMinutes)
	assert.Equal(t, bookedAt, trip.BookedAt)
	require.Len(t, trip.Reservations, 2)
	assert.Equal(t, "TICKET-1", trip.Reservations[0].Ticket)
	assert.Equal(t, "TICKET-2", trip.Reservations[1].Ticket)
	assert.Equal(t, trip.ID, trip.Reservations[1].TripID)

	require.Len(t, pub.trips, 1)
	assert.Equal(t, trip.ID, pub.trips[0].ID)
	assert.Equal(t, 2, rec.reservations)
}

func TestBookRejects(t *testing.T) {
	svc := NewService(NewMemoryStore())
	it := parisToMarseille(t)
	ada := Passenger{ID: "P1", FirstName: "Ada", LastName: "Lovelace", Age: 36}

	tests := []struct {
		name       string
		it         journey.Itinerary
		passengers []Passenger
		want       error
	}{
		{"no passengers", it, nil, ErrNoPassengers},
		{"missing name", it, []Passenger{{ID: "P9", LastName: "X", Age: 3}}, ErrInvalidPassenger},
		{"duplicate", it, []Passenger{ada, ada}, ErrInvalidPassenger},
		{"empty itinerary", journey.Itinerary{}, []Passenger{ada}, journey.ErrInvalidItinerary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Book(context.Background(), tt.it, rail.FirstClass, tt.passengers)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBookSurvivesPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats down")}
	svc := NewService(NewMemoryStore(), WithPublisher(pub))

	trip, err := svc.Book(context.Background(), parisToMarseille(t), rail.FirstClass,
		[]Passenger{{ID: "P1", FirstName: "Ada", LastName: "Lovelace", Age: 36}})
	require.NoError(t, err)
	assert.Equal(t, 160, trip.Fare)
	assert.Len(t, pub.trips, 1)
}

func TestHistory(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()
	it := parisToMarseille(t)

	ada := Passenger{ID: "P1", FirstName: "Ada", LastName: "Lovelace", Age: 36}
	alan := Passenger{ID: "P2", FirstName: "Alan", LastName: "Turing", Age: 41}

	first, err := svc.Book(ctx, it, rail.SecondClass, []Passenger{ada})
	require.NoError(t, err)
	_, err = svc.Book(ctx, it, rail.SecondClass, []Passenger{alan})
	require.NoError(t, err)
	third, err := svc.Book(ctx, it, rail.FirstClass, []Passenger{alan, ada})
	require.NoError(t, err)

	p, trips, err := svc.History(ctx, "lovelace", "P1")
	require.NoError(t, err)
	assert.Equal(t, ada, p)
	require.Len(t, trips, 2)
	assert.Equal(t, first.ID, trips[0].ID)
	assert.Equal(t, third.ID, trips[1].ID)
	assert.Len(t, trips[1].Reservations, 2)

	_, _, err = svc.History(ctx, "Turing", "P1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.History(ctx, "Lovelace", "P404")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.History(ctx, "", "P1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()
	ada := Passenger{ID: "P1", FirstName: "Ada", LastName: "Lovelace", Age: 36}

	trip, err := svc.Book(ctx, parisToMarseille(t), rail.SecondClass, []Passenger{ada})
	require.NoError(t, err)
	ticket := trip.Reservations[0].Ticket
	trip.Reservations[0].Ticket = "changed"

	_, trips, err := svc.History(ctx, "Lovelace", "P1")
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, ticket, trips[0].Reservations[0].Ticket)

	trips[0].Reservations[0].Ticket = "changed again"
	_, trips, err = svc.History(ctx, "Lovelace", "P1")
	require.NoError(t, err)
	assert.Equal(t, ticket, trips[0].Reservations[0].Ticket)
}

func TestHistoryRebuildsItinerary(t *testing.T) {
	g := railtest.Graph(t,
		railtest.Conn(t, "A", "Paris", "Lyon", "08:00", "10:00"),
		railtest.Conn(t, "B", "Lyon", "Marseille", "10:30", "12:00"),
	)
	it, err := journey.FromRouteKey(g, "A|B")
	require.NoError(t, err)

	svc := NewService(NewMemoryStore())
	ctx := context.Background()
	_, err = svc.Book(ctx, it, rail.SecondClass, []Passenger{{ID: "P1", FirstName: "Ada", LastName: "Lovelace", Age: 36}})
	require.NoError(t, err)

	_, trips, err := svc.History(ctx, "Lovelace", "P1")
	require.NoError(t, err)
	require.Len(t, trips, 1)

	rebuilt, err := journey.FromRouteKey(g, trips[0].RouteKey)
	require.NoError(t, err)
	assert.Equal(t, it.TotalMinutes(), rebuilt.TotalMinutes())
}
