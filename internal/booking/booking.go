// Package booking books itineraries for passengers and looks bookings up.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidPassenger = errors.New("invalid passenger")
	ErrNoPassengers     = errors.New("no passengers")
	ErrNotFound         = errors.New("booking not found")
)

var validate = validator.New()

// Passenger is a traveller identified by a document number.
type Passenger struct {
	ID        string `json:"id" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Age       int    `json:"age" validate:"gte=0,lte=130"`
}

func (p Passenger) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidPassenger, p.ID, err)
	}
	return nil
}

func (p Passenger) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ParsePassenger parses "ID:First:Last:Age".
func ParsePassenger(s string) (Passenger, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return Passenger{}, fmt.Errorf("%w: want ID:First:Last:Age, got %q", ErrInvalidPassenger, s)
	}
	age, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return Passenger{}, fmt.Errorf("%w: invalid age %q", ErrInvalidPassenger, parts[3])
	}
	p := Passenger{
		ID:        strings.TrimSpace(parts[0]),
		FirstName: strings.TrimSpace(parts[1]),
		LastName:  strings.TrimSpace(parts[2]),
		Age:       age,
	}
	return p, p.Validate()
}

// Reservation is one passenger's seat on a trip.
type Reservation struct {
	ID        int64     `json:"id"`
	TripID    int64     `json:"tripId"`
	Passenger Passenger `json:"passenger"`
	Ticket    string    `json:"ticket"`
}

// TicketFor returns the ticket code for a reservation id.
func TicketFor(reservationID int64) string {
	return fmt.Sprintf("TICKET-%d", reservationID)
}

// Trip is a booked itinerary and its reservations.
type Trip struct {
	ID           int64         `json:"id"`
	Origin       string        `json:"origin"`
	Destination  string        `json:"destination"`
	RouteKey     string        `json:"route"`
	Summary      string        `json:"summary"`
	Class        string        `json:"class"`
	Fare         int           `json:"fare"`
	TotalMinutes int           `json:"totalMinutes"`
	BookedAt     time.Time     `json:"bookedAt"`
	Reservations []Reservation `json:"reservations"`
}

// NewTrip is what a Store persists when booking.
type NewTrip struct {
	Origin       string
	Destination  string
	RouteKey     string
	Summary      string
	Class        string
	Fare         int
	TotalMinutes int
	BookedAt     time.Time
	Passengers   []Passenger
}

// Store persists customers, trips and reservations.
type Store interface {
	// CreateTrip upserts the passengers and stores the trip with one
	// reservation per passenger, atomically.
	CreateTrip(ctx context.Context, t NewTrip) (Trip, error)
	// TripsFor returns the passenger with the given id and last name and
	// every trip they hold a reservation on. It returns ErrNotFound for an
	// unknown passenger.
	TripsFor(ctx context.Context, lastName, id string) (Passenger, []Trip, error)
}
