// Package evaluator filters and ranks enumerated itineraries.
//
// Filters only remove itineraries; they never modify one. The common
// operating day check looks at the legs' weekly calendars only and does not
// account for later legs running on a later calendar date after overnight
// travel or layovers.
package evaluator

import (
	"cmp"
	"slices"

	"rail-planner/internal/calendar"
	"rail-planner/internal/journey"
	"rail-planner/internal/rail"
)

// Filter reports whether an itinerary should be kept.
type Filter func(journey.Itinerary) bool

// CommonDays intersects the operating calendars of every leg.
func CommonDays(it journey.Itinerary) calendar.WeekdaySet {
	if it.Len() == 0 {
		return calendar.None
	}
	days := calendar.All
	for i := range it.Len() {
		days = days.Intersect(it.Leg(i).Days())
	}
	return days
}

// CommonOperatingDay keeps itineraries whose legs share at least one
// operating weekday.
func CommonOperatingDay(it journey.Itinerary) bool {
	return !CommonDays(it).IsEmpty()
}

// OnDays keeps itineraries whose common operating days meet days. An empty
// set means no restriction.
func OnDays(days calendar.WeekdaySet) Filter {
	return func(it journey.Itinerary) bool {
		return days.IsEmpty() || !CommonDays(it).Intersect(days).IsEmpty()
	}
}

// MaxLayover returns the longest wait between two legs in minutes.
func MaxLayover(it journey.Itinerary) int {
	return it.Schedule().MaxLayover()
}

// WithinLayover keeps itineraries where no single layover exceeds limit
// minutes. A limit of zero or less means no limit.
func WithinLayover(limit int) Filter {
	return func(it journey.Itinerary) bool {
		return limit <= 0 || MaxLayover(it) <= limit
	}
}

// Apply returns the itineraries every filter keeps, in their original
// order. The input slice is not modified.
func Apply(its []journey.Itinerary, filters ...Filter) []journey.Itinerary {
	out := make([]journey.Itinerary, 0, len(its))
next:
	for _, it := range its {
		for _, f := range filters {
			if f != nil && !f(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

// Comparator orders two itineraries.
type Comparator func(a, b journey.Itinerary) int

// ByFare orders by total fare in class, then by total duration.
func ByFare(class rail.FareClass) Comparator {
	return func(a, b journey.Itinerary) int {
		return cmp.Or(
			cmp.Compare(a.Fare(class), b.Fare(class)),
			cmp.Compare(a.TotalMinutes(), b.TotalMinutes()),
		)
	}
}

func ByDuration() Comparator {
	return func(a, b journey.Itinerary) int {
		return cmp.Compare(a.TotalMinutes(), b.TotalMinutes())
	}
}

// Sort returns a stably sorted copy of its.
func Sort(its []journey.Itinerary, by Comparator) []journey.Itinerary {
	out := slices.Clone(its)
	slices.SortStableFunc(out, by)
	return out
}
