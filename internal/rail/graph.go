package rail

import (
	"errors"
	"fmt"
	"slices"
)

var ErrDuplicateRoute = errors.New("duplicate route id")

// Graph is a read-only directed multigraph of connections keyed by city.
// It is built once and is safe for concurrent readers.
type Graph struct {
	adj    map[string]map[string][]*Connection
	out    map[string][]*Connection
	routes map[string]*Connection
	cities []string
	edges  int
}

// NewGraph indexes conns. Parallel connections between the same pair of
// cities keep their input order.
func NewGraph(conns []*Connection) (*Graph, error) {
	g := &Graph{
		adj:    make(map[string]map[string][]*Connection),
		out:    make(map[string][]*Connection),
		routes: make(map[string]*Connection, len(conns)),
	}

	seen := make(map[string]struct{})
	addCity := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			g.cities = append(g.cities, name)
		}
	}

	for _, c := range conns {
		if _, dup := g.routes[c.routeID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRoute, c.routeID)
		}
		g.routes[c.routeID] = c

		to, ok := g.adj[c.departureCity]
		if !ok {
			to = make(map[string][]*Connection)
			g.adj[c.departureCity] = to
		}
		to[c.arrivalCity] = append(to[c.arrivalCity], c)
		g.out[c.departureCity] = append(g.out[c.departureCity], c)
		g.edges++

		addCity(c.departureCity)
		addCity(c.arrivalCity)
	}

	slices.Sort(g.cities)
	return g, nil
}

// Cities returns every departure and arrival city, sorted.
func (g *Graph) Cities() []string {
	return slices.Clone(g.cities)
}

func (g *Graph) HasCity(city string) bool {
	_, ok := slices.BinarySearch(g.cities, city)
	return ok
}

// Between returns the parallel connections from one city to another. The
// returned slice must not be modified.
func (g *Graph) Between(from, to string) []*Connection {
	return g.adj[from][to]
}

// From returns every outgoing connection of city in input order. The
// returned slice must not be modified.
func (g *Graph) From(city string) []*Connection {
	return g.out[city]
}

func (g *Graph) HasDirect(from, to string) bool {
	return len(g.adj[from][to]) > 0
}

func (g *Graph) EdgeCount() int {
	return g.edges
}

// Connection looks a connection up by route id.
func (g *Graph) Connection(routeID string) (*Connection, bool) {
	c, ok := g.routes[routeID]
	return c, ok
}
