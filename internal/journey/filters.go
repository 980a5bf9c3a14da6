package journey

import (
	"time"

	"rail-planner/internal/calendar"
	"rail-planner/internal/rail"
)

// LegFilter decides whether a connection may be used as a leg.
type LegFilter func(*rail.Connection) bool

func AcceptAll(*rail.Connection) bool { return true }

// All accepts a leg that every filter accepts. Nil filters are ignored.
func All(filters ...LegFilter) LegFilter {
	filters = compact(filters)
	return func(c *rail.Connection) bool {
		for _, f := range filters {
			if !f(c) {
				return false
			}
		}
		return true
	}
}

// Any accepts a leg that at least one filter accepts. With no filters it
// rejects everything.
func Any(filters ...LegFilter) LegFilter {
	filters = compact(filters)
	return func(c *rail.Connection) bool {
		for _, f := range filters {
			if f(c) {
				return true
			}
		}
		return false
	}
}

func Not(f LegFilter) LegFilter {
	return func(c *rail.Connection) bool { return !f(c) }
}

// ByCategory accepts legs of the named train categories. No categories
// means no restriction.
func ByCategory(categories ...string) LegFilter {
	if len(categories) == 0 {
		return AcceptAll
	}
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return func(c *rail.Connection) bool {
		_, ok := set[c.Category()]
		return ok
	}
}

func RunsOn(day time.Weekday) LegFilter {
	return func(c *rail.Connection) bool { return c.RunsOn(day) }
}

// RunsOnAny accepts legs operating on at least one of days. An empty set
// means no restriction.
func RunsOnAny(days calendar.WeekdaySet) LegFilter {
	if days.IsEmpty() {
		return AcceptAll
	}
	return func(c *rail.Connection) bool {
		return !c.Days().Intersect(days).IsEmpty()
	}
}

// RunsOnAll accepts legs operating on every one of days.
func RunsOnAll(days calendar.WeekdaySet) LegFilter {
	return func(c *rail.Connection) bool {
		return c.Days().Contains(days)
	}
}

func compact(filters []LegFilter) []LegFilter {
	out := make([]LegFilter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}
