package booking

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryStore is a Store that keeps everything in process memory.
type MemoryStore struct {
	mu              sync.Mutex
	customers       map[string]Passenger
	trips           []Trip
	nextTrip        int64
	nextReservation int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{customers: make(map[string]Passenger)}
}

func (m *MemoryStore) CreateTrip(ctx context.Context, t NewTrip) (Trip, error) {
	if err := ctx.Err(); err != nil {
		return Trip{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextTrip++
	trip := Trip{
		ID:           m.nextTrip,
		Origin:       t.Origin,
		Destination:  t.Destination,
		RouteKey:     t.RouteKey,
		Summary:      t.Summary,
		Class:        t.Class,
		Fare:         t.Fare,
		TotalMinutes: t.TotalMinutes,
		BookedAt:     t.BookedAt,
	}
	for _, p := range t.Passengers {
		m.customers[p.ID] = p
		m.nextReservation++
		trip.Reservations = append(trip.Reservations, Reservation{
			ID:        m.nextReservation,
			TripID:    trip.ID,
			Passenger: p,
			Ticket:    TicketFor(m.nextReservation),
		})
	}
	m.trips = append(m.trips, trip)
	trip.Reservations = slices.Clone(trip.Reservations)
	return trip, nil
}

func (m *MemoryStore) TripsFor(ctx context.Context, lastName, id string) (Passenger, []Trip, error) {
	if err := ctx.Err(); err != nil {
		return Passenger{}, nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.customers[id]
	if !ok || !strings.EqualFold(p.LastName, lastName) {
		return Passenger{}, nil, ErrNotFound
	}
	var out []Trip
	for _, t := range m.trips {
		for _, r := range t.Reservations {
			if r.Passenger.ID == id {
				t.Reservations = slices.Clone(t.Reservations)
				out = append(out, t)
				break
			}
		}
	}
	return p, out, nil
}
