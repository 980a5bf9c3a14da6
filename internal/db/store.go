package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"rail-planner/internal/booking"
)

// Store implements booking.Store on Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ booking.Store = (*Store)(nil)

func (s *Store) CreateTrip(ctx context.Context, t booking.NewTrip) (trip booking.Trip, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return booking.Trip{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error().Err(rbErr).Msg("Rollback failed")
			}
		}
	}()

	trip = booking.Trip{
		Origin:       t.Origin,
		Destination:  t.Destination,
		RouteKey:     t.RouteKey,
		Summary:      t.Summary,
		Class:        t.Class,
		Fare:         t.Fare,
		TotalMinutes: t.TotalMinutes,
		BookedAt:     t.BookedAt,
	}
	q := `
INSERT INTO trip (origin, destination, route, summary, fare_class, fare, total_minutes, booked_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING trip_id`
	if err = tx.QueryRowContext(ctx, q,
		t.Origin, t.Destination, t.RouteKey, t.Summary, t.Class, t.Fare, t.TotalMinutes, t.BookedAt,
	).Scan(&trip.ID); err != nil {
		return booking.Trip{}, fmt.Errorf("insert trip: %w", err)
	}

	for _, p := range t.Passengers {
		customerID, err := upsertCustomer(ctx, tx, p)
		if err != nil {
			return booking.Trip{}, err
		}
		r := booking.Reservation{TripID: trip.ID, Passenger: p}
		if err = tx.QueryRowContext(ctx,
			`INSERT INTO reservation (trip_id, customer_id) VALUES ($1, $2) RETURNING reservation_id`,
			trip.ID, customerID,
		).Scan(&r.ID); err != nil {
			return booking.Trip{}, fmt.Errorf("insert reservation: %w", err)
		}
		r.Ticket = booking.TicketFor(r.ID)
		if _, err = tx.ExecContext(ctx,
			`UPDATE reservation SET ticket = $1 WHERE reservation_id = $2`, r.Ticket, r.ID,
		); err != nil {
			return booking.Trip{}, fmt.Errorf("set ticket: %w", err)
		}
		trip.Reservations = append(trip.Reservations, r)
	}

	if err = tx.Commit(); err != nil {
		return booking.Trip{}, fmt.Errorf("commit: %w", err)
	}
	return trip, nil
}

func upsertCustomer(ctx context.Context, tx *sql.Tx, p booking.Passenger) (int64, error) {
	q := `
INSERT INTO customer (identifier, first_name, last_name, age)
VALUES ($1, $2, $3, $4)
ON CONFLICT (identifier) DO UPDATE
SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, age = EXCLUDED.age
RETURNING customer_id`
	var id int64
	if err := tx.QueryRowContext(ctx, q, p.ID, p.FirstName, p.LastName, p.Age).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert customer %q: %w", p.ID, err)
	}
	return id, nil
}

func (s *Store) TripsFor(ctx context.Context, lastName, id string) (booking.Passenger, []booking.Trip, error) {
	var (
		customerID int64
		p          booking.Passenger
	)
	err := s.db.QueryRowContext(ctx, `
SELECT customer_id, identifier, first_name, last_name, age
FROM customer
WHERE identifier = $1 AND lower(last_name) = lower($2)`, id, lastName,
	).Scan(&customerID, &p.ID, &p.FirstName, &p.LastName, &p.Age)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Passenger{}, nil, booking.ErrNotFound
	}
	if err != nil {
		return booking.Passenger{}, nil, fmt.Errorf("query customer: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT t.trip_id, t.origin, t.destination, t.route, t.summary, t.fare_class, t.fare, t.total_minutes, t.booked_at,
       r.reservation_id, r.ticket, c.identifier, c.first_name, c.last_name, c.age
FROM trip t
JOIN reservation r ON r.trip_id = t.trip_id
JOIN customer c ON c.customer_id = r.customer_id
WHERE t.trip_id IN (SELECT trip_id FROM reservation WHERE customer_id = $1)
ORDER BY t.trip_id, r.reservation_id`, customerID)
	if err != nil {
		return booking.Passenger{}, nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	var trips []booking.Trip
	for rows.Next() {
		var (
			t booking.Trip
			r booking.Reservation
		)
		if err := rows.Scan(
			&t.ID, &t.Origin, &t.Destination, &t.RouteKey, &t.Summary, &t.Class, &t.Fare, &t.TotalMinutes, &t.BookedAt,
			&r.ID, &r.Ticket, &r.Passenger.ID, &r.Passenger.FirstName, &r.Passenger.LastName, &r.Passenger.Age,
		); err != nil {
			return booking.Passenger{}, nil, err
		}
		r.TripID = t.ID
		if n := len(trips); n == 0 || trips[n-1].ID != t.ID {
			trips = append(trips, t)
		}
		last := &trips[len(trips)-1]
		last.Reservations = append(last.Reservations, r)
	}
	if err := rows.Err(); err != nil {
		return booking.Passenger{}, nil, err
	}
	return p, trips, nil
}
