// Package db persists bookings in Postgres through the pgx database/sql
// driver.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// Connect opens the database, checks it is reachable and applies the schema.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Ping(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customer (
	customer_id BIGSERIAL PRIMARY KEY,
	identifier  TEXT NOT NULL UNIQUE,
	first_name  TEXT NOT NULL,
	last_name   TEXT NOT NULL,
	age         INT  NOT NULL CHECK (age >= 0)
)`,
	`CREATE TABLE IF NOT EXISTS trip (
	trip_id       BIGSERIAL PRIMARY KEY,
	origin        TEXT NOT NULL,
	destination   TEXT NOT NULL,
	route         TEXT NOT NULL,
	summary       TEXT NOT NULL,
	fare_class    TEXT NOT NULL,
	fare          INT  NOT NULL,
	total_minutes INT  NOT NULL,
	booked_at     TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS reservation (
	reservation_id BIGSERIAL PRIMARY KEY,
	trip_id        BIGINT NOT NULL REFERENCES trip (trip_id) ON DELETE CASCADE,
	customer_id    BIGINT NOT NULL REFERENCES customer (customer_id),
	ticket         TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS reservation_customer_idx ON reservation (customer_id)`,
}

// Migrate creates the booking tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
