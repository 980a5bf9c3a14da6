// Package planner answers journey queries by combining leg filters,
// enumeration, itinerary filters and ranking.
package planner

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"rail-planner/internal/calendar"
	"rail-planner/internal/evaluator"
	"rail-planner/internal/journey"
	"rail-planner/internal/rail"
)

var ErrUnknownCity = errors.New("unknown city")

// SortKey selects the ranking applied to results.
type SortKey string

const (
	SortByPrice    SortKey = "price"
	SortByDuration SortKey = "duration"
)

func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByPrice:
		return SortByPrice, nil
	case SortByDuration:
		return SortByDuration, nil
	}
	return "", fmt.Errorf("invalid sort key: %q", s)
}

// Recorder receives planner measurements.
type Recorder interface {
	ObserveQuery(kind string, results int, elapsed time.Duration)
	ObserveFiltered(filter string, removed int)
}

type noopRecorder struct{}

func (noopRecorder) ObserveQuery(string, int, time.Duration) {}
func (noopRecorder) ObserveFiltered(string, int)             {}

// Query describes a journey search. Zero values mean no restriction.
type Query struct {
	From       string
	To         string
	Categories []string
	Days       calendar.WeekdaySet
	// Expression is a leg filter expression, see journey.CompileLegFilter.
	Expression string
	// MaxLayover caps each layover in minutes; 0 falls back to the planner
	// default.
	MaxLayover int
	SortBy     SortKey
	Class      rail.FareClass
}

type Planner struct {
	graph      *rail.Graph
	conns      []*rail.Connection
	enum       *journey.Enumerator
	rec        Recorder
	workers    int
	maxLayover int
}

type Option func(*Planner)

func WithRecorder(r Recorder) Option {
	return func(p *Planner) {
		if r != nil {
			p.rec = r
		}
	}
}

// WithWorkers sets the all-pairs concurrency; < 1 means one per CPU.
func WithWorkers(n int) Option {
	return func(p *Planner) { p.workers = n }
}

// WithMaxLayover sets the default layover cap in minutes.
func WithMaxLayover(minutes int) Option {
	return func(p *Planner) { p.maxLayover = minutes }
}

func New(conns []*rail.Connection, opts ...Option) (*Planner, error) {
	g, err := rail.NewGraph(conns)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	p := &Planner{
		graph: g,
		conns: conns,
		enum:  journey.New(g),
		rec:   noopRecorder{},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

func (p *Planner) Graph() *rail.Graph { return p.graph }

func (p *Planner) Cities() []string { return p.graph.Cities() }

func (p *Planner) Categories() []string { return rail.Categories(p.conns) }

// CheckCities reports the first name that is not a city of the network.
// City names are case-sensitive.
func (p *Planner) CheckCities(cities ...string) error {
	for _, city := range cities {
		if !p.graph.HasCity(city) {
			return fmt.Errorf("%w: %q", ErrUnknownCity, city)
		}
	}
	return nil
}

// Plan returns the ranked itineraries from q.From to q.To. Finding nothing,
// including for a city the network does not know, is not an error.
func (p *Planner) Plan(ctx context.Context, q Query) ([]journey.Itinerary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter, err := legFilter(q)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	found := p.enum.Between(q.From, q.To, filter)
	kept := p.refine(found, q)
	p.rec.ObserveQuery("plan", len(kept), time.Since(started))

	log.Debug().
		Str("from", q.From).
		Str("to", q.To).
		Int("enumerated", len(found)).
		Int("itineraries", len(kept)).
		Dur("elapsed", time.Since(started)).
		Msg("Planned journey")
	return kept, nil
}

// Fastest returns the quickest itinerary for every ordered city pair that q's
// leg restrictions and itinerary filters allow, ordered by origin then
// destination. q.From, q.To and q.SortBy are ignored.
func (p *Planner) Fastest(ctx context.Context, q Query) ([]journey.Itinerary, error) {
	filter, err := legFilter(q)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	pairs, err := p.enum.AllPairs(ctx, filter, p.workers)
	if err != nil {
		return nil, fmt.Errorf("enumerate all pairs: %w", err)
	}
	for _, byDest := range pairs {
		for to, its := range byDest {
			byDest[to] = p.refine(its, Query{Days: q.Days, MaxLayover: q.MaxLayover, SortBy: SortByDuration})
		}
	}

	fastest := journey.FastestPerPair(pairs)
	out := make([]journey.Itinerary, 0, len(fastest))
	for _, byDest := range fastest {
		for _, it := range byDest {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b journey.Itinerary) int {
		return cmp.Or(
			strings.Compare(a.Origin(), b.Origin()),
			strings.Compare(a.Destination(), b.Destination()),
		)
	})
	p.rec.ObserveQuery("fastest", len(out), time.Since(started))

	log.Info().
		Int("cities", len(p.graph.Cities())).
		Int("enumerated", pairs.Count()).
		Int("pairs", len(out)).
		Dur("elapsed", time.Since(started)).
		Msg("Computed fastest itineraries")
	return out, nil
}

func (p *Planner) refine(its []journey.Itinerary, q Query) []journey.Itinerary {
	limit := q.MaxLayover
	if limit <= 0 {
		limit = p.maxLayover
	}

	kept := its
	for _, step := range []struct {
		name   string
		filter evaluator.Filter
	}{
		{"common_day", evaluator.CommonOperatingDay},
		{"days", evaluator.OnDays(q.Days)},
		{"layover", evaluator.WithinLayover(limit)},
	} {
		before := len(kept)
		kept = evaluator.Apply(kept, step.filter)
		if removed := before - len(kept); removed > 0 {
			p.rec.ObserveFiltered(step.name, removed)
		}
	}

	switch q.SortBy {
	case SortByDuration:
		return evaluator.Sort(kept, evaluator.ByDuration())
	default:
		return evaluator.Sort(kept, evaluator.ByFare(q.Class))
	}
}

func legFilter(q Query) (journey.LegFilter, error) {
	compiled, err := journey.CompileLegFilter(q.Expression)
	if err != nil {
		return nil, err
	}
	return journey.All(
		journey.ByCategory(q.Categories...),
		journey.RunsOnAny(q.Days),
		compiled,
	), nil
}
