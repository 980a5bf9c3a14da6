package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"rail-planner/internal/journey"
	"rail-planner/internal/rail"
)

// EventPublisher announces confirmed bookings.
type EventPublisher interface {
	PublishBooking(t Trip) error
}

// Recorder receives booking measurements.
type Recorder interface {
	ObserveBooking(reservations int)
}

type Service struct {
	store  Store
	events EventPublisher
	rec    Recorder
	now    func() time.Time
}

type Option func(*Service)

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.rec = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Book reserves it for every passenger in one trip. A failure to publish the
// confirmation is logged and does not undo the booking.
func (s *Service) Book(ctx context.Context, it journey.Itinerary, class rail.FareClass, passengers []Passenger) (Trip, error) {
	if len(passengers) == 0 {
		return Trip{}, ErrNoPassengers
	}
	if it.Len() == 0 {
		return Trip{}, fmt.Errorf("book: %w", journey.ErrInvalidItinerary)
	}
	seen := make(map[string]bool, len(passengers))
	for _, p := range passengers {
		if err := p.Validate(); err != nil {
			return Trip{}, err
		}
		if seen[p.ID] {
			return Trip{}, fmt.Errorf("%w %q: listed twice", ErrInvalidPassenger, p.ID)
		}
		seen[p.ID] = true
	}

	trip, err := s.store.CreateTrip(ctx, NewTrip{
		Origin:       it.Origin(),
		Destination:  it.Destination(),
		RouteKey:     it.RouteKey(),
		Summary:      strings.Join(it.Cities(), " -> "),
		Class:        class.String(),
		Fare:         it.Fare(class),
		TotalMinutes: it.TotalMinutes(),
		BookedAt:     s.now().UTC(),
		Passengers:   passengers,
	})
	if err != nil {
		return Trip{}, fmt.Errorf("create trip: %w", err)
	}

	if s.rec != nil {
		s.rec.ObserveBooking(len(trip.Reservations))
	}
	if s.events != nil {
		if err := s.events.PublishBooking(trip); err != nil {
			log.Warn().Err(err).Int64("trip", trip.ID).Msg("Failed to publish booking")
		}
	}

	log.Info().
		Int64("trip", trip.ID).
		Str("route", trip.RouteKey).
		Int("reservations", len(trip.Reservations)).
		Msg("Booked trip")
	return trip, nil
}

// History returns a passenger's trips. Both the last name and the id must
// match.
func (s *Service) History(ctx context.Context, lastName, id string) (Passenger, []Trip, error) {
	lastName, id = strings.TrimSpace(lastName), strings.TrimSpace(id)
	if lastName == "" || id == "" {
		return Passenger{}, nil, fmt.Errorf("%w: last name and id are required", ErrNotFound)
	}
	return s.store.TripsFor(ctx, lastName, id)
}
