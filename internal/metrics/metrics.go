package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Collector struct {
	reg *prometheus.Registry

	ConnectionsLoaded prometheus.Gauge
	CitiesLoaded      prometheus.Gauge

	Queries             *prometheus.CounterVec // kind label: plan|fastest
	ItinerariesReturned prometheus.Histogram
	EnumerationDuration prometheus.Histogram
	Filtered            *prometheus.CounterVec // filter label: common_day|days|layover

	TripsBooked        prometheus.Counter
	ReservationsBooked prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ConnectionsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "planner_connections_loaded",
			Help: "Number of connections in the loaded timetable.",
		}),
		CitiesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "planner_cities_loaded",
			Help: "Number of cities in the connection graph.",
		}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_queries_total",
			Help: "Journey queries answered.",
		}, []string{"kind"}),
		ItinerariesReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planner_itineraries_returned",
			Help:    "Itineraries returned per query.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		EnumerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planner_enumeration_seconds",
			Help:    "Time spent enumerating, filtering and ranking itineraries.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		Filtered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_filtered_total",
			Help: "Itineraries removed by each filter.",
		}, []string{"filter"}),
		TripsBooked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_trips_total",
			Help: "Trips booked.",
		}),
		ReservationsBooked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_reservations_total",
			Help: "Reservations created.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "booking_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "booking_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
	}

	reg.MustRegister(
		c.ConnectionsLoaded, c.CitiesLoaded,
		c.Queries, c.ItinerariesReturned, c.EnumerationDuration, c.Filtered,
		c.TripsBooked, c.ReservationsBooked,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
	)
	return c
}

// SetNetwork records the size of the loaded timetable.
func (c *Collector) SetNetwork(connections, cities int) {
	c.ConnectionsLoaded.Set(float64(connections))
	c.CitiesLoaded.Set(float64(cities))
}

// ObserveQuery implements planner.Recorder.
func (c *Collector) ObserveQuery(kind string, results int, elapsed time.Duration) {
	c.Queries.WithLabelValues(kind).Inc()
	c.ItinerariesReturned.Observe(float64(results))
	c.EnumerationDuration.Observe(elapsed.Seconds())
}

// ObserveFiltered implements planner.Recorder.
func (c *Collector) ObserveFiltered(filter string, removed int) {
	c.Filtered.WithLabelValues(filter).Add(float64(removed))
}

// ObserveBooking implements booking.Recorder.
func (c *Collector) ObserveBooking(reservations int) {
	c.TripsBooked.Inc()
	c.ReservationsBooked.Add(float64(reservations))
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics listening")
	return srv
}
