package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"rail-planner/internal/booking"
	"rail-planner/internal/calendar"
	"rail-planner/internal/config"
	"rail-planner/internal/db"
	"rail-planner/internal/display"
	"rail-planner/internal/ingest"
	"rail-planner/internal/journey"
	"rail-planner/internal/metrics"
	"rail-planner/internal/planner"
	"rail-planner/internal/publisher"
	"rail-planner/internal/rail"
)

// env holds what every command shares once the network is loaded.
type env struct {
	cfg     *config.Config
	mcol    *metrics.Collector
	srv     *http.Server
	planner *planner.Planner
}

func newApp(cfg *config.Config) *cli.App {
	e := &env{cfg: cfg}

	return &cli.App{
		Name:        "planner",
		Usage:       "plan and book rail journeys",
		Description: "Searches a rail timetable for journeys of up to three legs and books them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "connections",
				Value: cfg.ConnectionsCSV,
				Usage: "timetable CSV file",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Value: cfg.MetricsAddr,
				Usage: "serve Prometheus metrics on this address while the command runs",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: cfg.Workers,
				Usage: "concurrent searches for the fastest command",
			},
		},
		Before: e.load,
		After:  e.close,
		Commands: []*cli.Command{
			{
				Name:  "cities",
				Usage: "list every city in the timetable",
				Action: func(c *cli.Context) error {
					return display.Cities(os.Stdout, e.planner.Cities())
				},
			},
			{
				Name:  "categories",
				Usage: "list the train categories in the timetable",
				Action: func(c *cli.Context) error {
					for _, cat := range e.planner.Categories() {
						fmt.Println(cat)
					}
					return nil
				},
			},
			{
				Name:   "plan",
				Usage:  "find itineraries between two cities",
				Flags:  append(routeFlags(), queryFlags()...),
				Action: e.plan,
			},
			{
				Name:   "fastest",
				Usage:  "show the fastest itinerary for every pair of cities",
				Flags:  queryFlags(),
				Action: e.fastest,
			},
			{
				Name:  "book",
				Usage: "book one of the itineraries plan would list",
				Flags: append(append(routeFlags(), queryFlags()...),
					&cli.IntFlag{
						Name:  "pick",
						Value: 1,
						Usage: "position of the itinerary to book in the plan listing",
					},
					&cli.StringSliceFlag{
						Name:     "passenger",
						Required: true,
						Usage:    "passenger as ID:First:Last:Age, repeat for each traveller",
					},
					&cli.StringFlag{
						Name:  "db-name",
						Value: cfg.DatabaseName,
						Usage: "database to use on the configured server",
					},
				),
				Action: e.book,
			},
			{
				Name:  "bookings",
				Usage: "show a passenger's trips",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "last-name", Required: true},
					&cli.StringFlag{Name: "id", Required: true},
					&cli.StringFlag{
						Name:  "db-name",
						Value: cfg.DatabaseName,
						Usage: "database to use on the configured server",
					},
				},
				Action: e.bookings,
			},
		},
	}
}

func routeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Required: true, Usage: "departure city"},
		&cli.StringFlag{Name: "to", Required: true, Usage: "arrival city"},
	}
}

func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "types",
			Usage: "only use these train categories, e.g. TGV,ICE",
		},
		&cli.StringFlag{
			Name:  "days",
			Usage: `only itineraries running on one of these days, e.g. "Mon-Fri" or "Sat,Sun"`,
		},
		&cli.StringFlag{
			Name:  "filter",
			Usage: `leg filter expression, e.g. 'secondClass < 50 && departureMinute >= 420'`,
		},
		&cli.IntFlag{
			Name:  "max-layover",
			Usage: "longest acceptable layover in minutes (0 uses MAX_LAYOVER_MINUTES)",
		},
		&cli.StringFlag{
			Name:  "sort",
			Value: string(planner.SortByPrice),
			Usage: "rank by price or duration",
		},
		&cli.BoolFlag{
			Name:  "first-class",
			Usage: "price with first class fares",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "show at most this many itineraries (0 shows all)",
		},
	}
}

func (e *env) load(c *cli.Context) error {
	conns, err := ingest.LoadFile(c.String("connections"))
	if err != nil {
		return err
	}

	opts := []planner.Option{
		planner.WithWorkers(c.Int("workers")),
		planner.WithMaxLayover(e.cfg.MaxLayoverMinutes),
	}
	if addr := c.String("metrics-addr"); addr != "" {
		e.mcol = metrics.NewCollector()
		e.srv = e.mcol.Serve(addr)
		opts = append(opts, planner.WithRecorder(e.mcol))
	}

	e.planner, err = planner.New(conns, opts...)
	if err != nil {
		return err
	}
	if e.mcol != nil {
		e.mcol.SetNetwork(len(conns), len(e.planner.Cities()))
	}
	return nil
}

func (e *env) close(c *cli.Context) error {
	if e.srv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return e.srv.Shutdown(shutdownCtx)
}

func queryFrom(c *cli.Context) (planner.Query, error) {
	days, err := parseDays(c.String("days"))
	if err != nil {
		return planner.Query{}, err
	}
	sortBy, err := planner.ParseSortKey(c.String("sort"))
	if err != nil {
		return planner.Query{}, err
	}
	class := rail.SecondClass
	if c.Bool("first-class") {
		class = rail.FirstClass
	}
	return planner.Query{
		From:       strings.TrimSpace(c.String("from")),
		To:         strings.TrimSpace(c.String("to")),
		Categories: c.StringSlice("types"),
		Days:       days,
		Expression: c.String("filter"),
		MaxLayover: c.Int("max-layover"),
		SortBy:     sortBy,
		Class:      class,
	}, nil
}

// parseDays reads a --days value; empty or "all" means no restriction.
func parseDays(s string) (calendar.WeekdaySet, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return 0, nil
	}
	return calendar.Parse(s)
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func (e *env) plan(c *cli.Context) error {
	q, err := queryFrom(c)
	if err != nil {
		return err
	}
	if err := e.planner.CheckCities(q.From, q.To); err != nil {
		return err
	}
	its, err := e.planner.Plan(c.Context, q)
	if err != nil {
		return err
	}
	if len(its) == 0 {
		fmt.Printf("No itineraries from %s to %s.\n", q.From, q.To)
		return nil
	}

	fmt.Printf("%d itineraries from %s to %s, by %s:\n", len(its), q.From, q.To, q.SortBy)
	for i, it := range limit(its, c.Int("limit")) {
		fmt.Printf("\n[%d] %s\n", i+1, display.Summary(it, q.Class))
		if err := display.Itinerary(os.Stdout, it, q.Class); err != nil {
			return err
		}
	}
	return nil
}

func (e *env) fastest(c *cli.Context) error {
	q, err := queryFrom(c)
	if err != nil {
		return err
	}
	its, err := e.planner.Fastest(c.Context, q)
	if err != nil {
		return err
	}
	for _, it := range limit(its, c.Int("limit")) {
		fmt.Println(display.Summary(it, q.Class))
	}
	return nil
}

func (e *env) book(c *cli.Context) error {
	q, err := queryFrom(c)
	if err != nil {
		return err
	}
	var passengers []booking.Passenger
	for _, raw := range c.StringSlice("passenger") {
		p, err := booking.ParsePassenger(raw)
		if err != nil {
			return err
		}
		passengers = append(passengers, p)
	}

	if err := e.planner.CheckCities(q.From, q.To); err != nil {
		return err
	}
	its, err := e.planner.Plan(c.Context, q)
	if err != nil {
		return err
	}
	pick := c.Int("pick")
	if pick < 1 || pick > len(its) {
		return fmt.Errorf("no itinerary %d: %d found from %s to %s", pick, len(its), q.From, q.To)
	}
	it := its[pick-1]

	store, closeStore, err := e.openStore(c.Context, c.String("db-name"))
	if err != nil {
		return err
	}
	defer closeStore()

	var opts []booking.Option
	if e.mcol != nil {
		opts = append(opts, booking.WithRecorder(e.mcol))
	}
	if e.cfg.NATSURL != "" {
		pub, err := publisher.NewNATSPublisher(e.cfg.NATSURL, e.cfg.NATSSubjectPrefix, e.cfg.LogNATSSubjects, wrapPublisherMetrics(e.mcol))
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer pub.Close()
		opts = append(opts, booking.WithPublisher(pub))
	}

	trip, err := booking.NewService(store, opts...).Book(c.Context, it, q.Class, passengers)
	if err != nil {
		return err
	}

	fmt.Printf("Booked trip %d: %s\n", trip.ID, display.Summary(it, q.Class))
	for _, r := range trip.Reservations {
		fmt.Printf("  %s  %s (%s)\n", r.Ticket, r.Passenger.FullName(), r.Passenger.ID)
	}
	return nil
}

func (e *env) bookings(c *cli.Context) error {
	store, closeStore, err := e.openStore(c.Context, c.String("db-name"))
	if err != nil {
		return err
	}
	defer closeStore()

	p, trips, err := booking.NewService(store).History(c.Context, c.String("last-name"), c.String("id"))
	if errors.Is(err, booking.ErrNotFound) {
		fmt.Println("No bookings found.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("%d trips for %s (%s):\n", len(trips), p.FullName(), p.ID)
	for _, t := range trips {
		fmt.Printf("\nTrip %d, booked %s, %d EUR %s class\n",
			t.ID, t.BookedAt.Local().Format("2006-01-02 15:04"), t.Fare, t.Class)
		it, err := journey.FromRouteKey(e.planner.Graph(), t.RouteKey)
		if err != nil {
			// The timetable changed since booking; fall back to what was stored.
			log.Warn().Err(err).Int64("trip", t.ID).Msg("Booked route no longer in timetable")
			fmt.Printf("%s, %s\n", t.Summary, display.Duration(t.TotalMinutes))
		} else {
			class := rail.SecondClass
			if t.Class == rail.FirstClass.String() {
				class = rail.FirstClass
			}
			if err := display.Itinerary(os.Stdout, it, class); err != nil {
				return err
			}
		}
		for _, r := range t.Reservations {
			fmt.Printf("  %s  %s\n", r.Ticket, r.Passenger.FullName())
		}
	}
	return nil
}

// openStore connects to Postgres when a database is configured. Without one
// bookings live in memory and vanish when the command exits.
func (e *env) openStore(ctx context.Context, dbName string) (booking.Store, func(), error) {
	dsn := e.cfg.DatabaseURL
	if dsn == "" {
		log.Warn().Msg("No database configured, bookings are kept in memory only")
		return booking.NewMemoryStore(), func() {}, nil
	}
	if dbName != "" {
		var err error
		if dsn, err = db.WithDBName(dsn, dbName); err != nil {
			return nil, nil, fmt.Errorf("compose DSN: %w", err)
		}
	}
	conn, err := db.Connect(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return db.NewStore(conn), func() { conn.Close() }, nil
}
