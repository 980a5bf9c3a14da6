// Package journey enumerates itineraries over a connection graph.
//
// Search is a depth-first walk over simple paths, bounded to MaxLegs legs.
// Every prefix of an explored path is emitted, so a single root yields all
// itineraries of one to MaxLegs legs to every reachable city. A LegFilter is
// applied while walking and prunes whole subtrees.
package journey

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"rail-planner/internal/rail"
)

// MaxLegs bounds an itinerary to two intermediate stops.
const MaxLegs = 3

type Enumerator struct {
	graph   *rail.Graph
	maxLegs int
}

type Option func(*Enumerator)

// WithMaxLegs lowers the leg bound. Values outside [1, MaxLegs] are clamped.
func WithMaxLegs(n int) Option {
	return func(e *Enumerator) {
		e.maxLegs = min(max(n, 1), MaxLegs)
	}
}

func New(g *rail.Graph, opts ...Option) *Enumerator {
	e := &Enumerator{graph: g, maxLegs: MaxLegs}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Enumerator) MaxLegs() int {
	return e.maxLegs
}

// From returns every itinerary starting at source, in depth-first order.
// A nil filter accepts every leg.
func (e *Enumerator) From(source string, filter LegFilter) []Itinerary {
	if filter == nil {
		filter = AcceptAll
	}
	s := &search{
		graph:   e.graph,
		filter:  filter,
		visited: map[string]bool{source: true},
		stack:   make([]*rail.Connection, 0, e.maxLegs),
	}
	s.walk(source, e.maxLegs)
	return s.found
}

// Between returns the itineraries from one city to another. Asking for a
// city's itineraries to itself yields nothing since paths never revisit the
// origin.
func (e *Enumerator) Between(from, to string, filter LegFilter) []Itinerary {
	var out []Itinerary
	for _, it := range e.From(from, filter) {
		if it.Destination() == to {
			out = append(out, it)
		}
	}
	return out
}

// Pairs maps origin to destination to itineraries.
type Pairs map[string]map[string][]Itinerary

// AllPairs enumerates from every city concurrently, one task per source city.
// Each task owns its own search state and shares only the read-only graph.
// workers < 1 means one worker per CPU.
func (e *Enumerator) AllPairs(ctx context.Context, filter LegFilter, workers int) (Pairs, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	type sourceResult struct {
		source      string
		itineraries []Itinerary
	}

	p := pool.NewWithResults[sourceResult]().
		WithContext(ctx).
		WithMaxGoroutines(workers)
	for _, city := range e.graph.Cities() {
		p.Go(func(ctx context.Context) (sourceResult, error) {
			if err := ctx.Err(); err != nil {
				return sourceResult{}, err
			}
			return sourceResult{source: city, itineraries: e.From(city, filter)}, nil
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	pairs := make(Pairs, len(results))
	for _, r := range results {
		if len(r.itineraries) == 0 {
			continue
		}
		byDest := make(map[string][]Itinerary)
		for _, it := range r.itineraries {
			byDest[it.Destination()] = append(byDest[it.Destination()], it)
		}
		pairs[r.source] = byDest
	}
	return pairs, nil
}

// Count returns the total number of itineraries in p.
func (p Pairs) Count() int {
	n := 0
	for _, byDest := range p {
		for _, its := range byDest {
			n += len(its)
		}
	}
	return n
}

// FastestPerPair keeps the shortest itinerary for each origin and
// destination. Ties keep the earliest enumerated.
func FastestPerPair(p Pairs) map[string]map[string]Itinerary {
	out := make(map[string]map[string]Itinerary, len(p))
	for from, byDest := range p {
		best := make(map[string]Itinerary, len(byDest))
		for to, its := range byDest {
			if len(its) == 0 {
				continue
			}
			fastest := its[0]
			for _, it := range its[1:] {
				if it.TotalMinutes() < fastest.TotalMinutes() {
					fastest = it
				}
			}
			best[to] = fastest
		}
		out[from] = best
	}
	return out
}

type search struct {
	graph   *rail.Graph
	filter  LegFilter
	visited map[string]bool
	stack   []*rail.Connection
	found   []Itinerary
}

func (s *search) walk(city string, budget int) {
	if budget == 0 {
		return
	}
	for _, c := range s.graph.From(city) {
		next := c.ArrivalCity()
		if s.visited[next] || !s.filter(c) {
			continue
		}

		s.stack = append(s.stack, c)
		s.visited[next] = true
		s.found = append(s.found, newItinerary(s.stack))

		s.walk(next, budget-1)

		s.stack = s.stack[:len(s.stack)-1]
		delete(s.visited, next)
	}
}
