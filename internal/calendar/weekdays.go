package calendar

import (
	"strings"
	"time"
)

// WeekdaySet is a set of weekdays stored as a bitmask indexed by time.Weekday.
type WeekdaySet uint8

const (
	None WeekdaySet = 0
	All  WeekdaySet = 1<<7 - 1
)

// weekOrder lists the days Monday first, the order timetables are written in.
var weekOrder = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Of builds a set from the given days.
func Of(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

// ForDate returns the single-day set for the weekday of t.
func ForDate(t time.Time) WeekdaySet {
	return Of(t.Weekday())
}

func (s WeekdaySet) Add(d time.Weekday) WeekdaySet {
	return s | 1<<uint(d%7)
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d%7)) != 0
}

func (s WeekdaySet) Intersect(o WeekdaySet) WeekdaySet { return s & o }
func (s WeekdaySet) Union(o WeekdaySet) WeekdaySet     { return s | o }
func (s WeekdaySet) IsEmpty() bool                     { return s&All == 0 }

// Contains reports whether every day of o is also in s.
func (s WeekdaySet) Contains(o WeekdaySet) bool {
	return s&o == o
}

// Len returns the number of days in the set.
func (s WeekdaySet) Len() int {
	n := 0
	for _, d := range weekOrder {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// Days returns the members Monday first.
func (s WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for _, d := range weekOrder {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// First returns the earliest member in Monday-first order.
func (s WeekdaySet) First() (time.Weekday, bool) {
	for _, d := range weekOrder {
		if s.Has(d) {
			return d, true
		}
	}
	return time.Monday, false
}

func (s WeekdaySet) String() string {
	switch s & All {
	case All:
		return "Daily"
	case None:
		return "None"
	}
	names := make([]string, 0, 7)
	for _, d := range s.Days() {
		names = append(names, ShortName(d))
	}
	return strings.Join(names, ",")
}

// ShortName returns the three letter English abbreviation, e.g. "Mon".
func ShortName(d time.Weekday) string {
	return d.String()[:3]
}
