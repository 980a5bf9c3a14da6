// Package publisher announces confirmed bookings on NATS.
package publisher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"rail-planner/internal/booking"
)

type NATSPublisher struct {
	nc          *nats.Conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, prefix string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("rail-planner"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Warn().Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Info().Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Debug().Msg("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, prefix: prefix, logSubjects: logSubjects, metrics: m}, nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

type PassengerMessage struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Ticket string `json:"ticket"`
}

type BookingMessage struct {
	TripID       int64              `json:"tripId"`
	Origin       string             `json:"origin"`
	Destination  string             `json:"destination"`
	Route        string             `json:"route"`
	Class        string             `json:"class"`
	Fare         int                `json:"fare"`
	TotalMinutes int                `json:"totalMinutes"`
	BookedAt     time.Time          `json:"bookedAt"`
	Passengers   []PassengerMessage `json:"passengers"`
}

// NewBookingMessage flattens a trip into its wire form.
func NewBookingMessage(t booking.Trip) BookingMessage {
	msg := BookingMessage{
		TripID:       t.ID,
		Origin:       t.Origin,
		Destination:  t.Destination,
		Route:        t.RouteKey,
		Class:        t.Class,
		Fare:         t.Fare,
		TotalMinutes: t.TotalMinutes,
		BookedAt:     t.BookedAt,
		Passengers:   make([]PassengerMessage, 0, len(t.Reservations)),
	}
	for _, r := range t.Reservations {
		msg.Passengers = append(msg.Passengers, PassengerMessage{
			ID:     r.Passenger.ID,
			Name:   r.Passenger.FullName(),
			Ticket: r.Ticket,
		})
	}
	return msg
}

// Subject returns "<prefix>.<origin>.<destination>".
func Subject(prefix, origin, destination string) string {
	return fmt.Sprintf("%s.%s.%s", strings.Trim(prefix, ". "), subjectToken(origin), subjectToken(destination))
}

// PublishBooking implements booking.EventPublisher.
func (p *NATSPublisher) PublishBooking(t booking.Trip) error {
	subject := Subject(p.prefix, t.Origin, t.Destination)
	b, err := json.Marshal(NewBookingMessage(t))
	if err != nil {
		return err
	}
	if p.logSubjects {
		log.Debug().Str("subject", subject).Msg("nats publish")
	}
	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
