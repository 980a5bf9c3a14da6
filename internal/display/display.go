// Package display renders itineraries and city lists for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"rail-planner/internal/calendar"
	"rail-planner/internal/evaluator"
	"rail-planner/internal/journey"
	"rail-planner/internal/rail"
	"rail-planner/internal/timeline"
)

const lineWidth = 120

// Duration formats minutes as "4h00m".
func Duration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}

// StartDay picks the weekday a rendered itinerary starts on: the first day
// every leg operates, or failing that the first leg's first operating day.
func StartDay(it journey.Itinerary) time.Weekday {
	if d, ok := evaluator.CommonDays(it).First(); ok {
		return d
	}
	if it.Len() > 0 {
		if d, ok := it.Leg(0).Days().First(); ok {
			return d
		}
	}
	return time.Monday
}

// Summary is a one line description of it.
func Summary(it journey.Itinerary, class rail.FareClass) string {
	return fmt.Sprintf("%s | %s | %s | %d EUR %s class | %s",
		strings.Join(it.Cities(), " -> "), stopsText(it.Stops()), Duration(it.TotalMinutes()),
		it.Fare(class), class, evaluator.CommonDays(it))
}

// Itinerary writes the leg by leg breakdown of it.
func Itinerary(w io.Writer, it journey.Itinerary, class rail.FareClass) error {
	start := StartDay(it)
	sched := it.Schedule()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, seg := range sched.Segments {
		c := it.Leg(i)
		if i > 0 {
			fmt.Fprintf(tw, "\t  layover %s in %s\t\t\t\t\n", Duration(seg.Layover), c.DepartureCity())
		}
		fmt.Fprintf(tw, "%d.\t%s %s\t%s %s\t-> %s %s\t%s\t%d / %d EUR\n",
			i+1, c.RouteID(), c.Category(),
			c.DepartureCity(), stamp(seg.Depart, start),
			c.ArrivalCity(), stamp(seg.Arrive, start),
			Duration(c.TripMinutes()),
			c.FirstClassFare(), c.SecondClassFare(),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Total %s, %d EUR %s class, %s, runs %s\n",
		Duration(it.TotalMinutes()), it.Fare(class), class, stopsText(it.Stops()), evaluator.CommonDays(it))
	return err
}

// stamp renders an absolute minute as "10:00 Mon (day 1)".
func stamp(abs int, start time.Weekday) string {
	day := timeline.DayIndex(abs)
	clock := timeline.Clock(abs).String()
	name := calendar.ShortName(timeline.ShiftWeekday(start, day))
	if day == 0 {
		return fmt.Sprintf("%s %s", clock, name)
	}
	return fmt.Sprintf("%s %s (+%dd)", clock, name, day)
}

func stopsText(n int) string {
	switch n {
	case 0:
		return "direct"
	case 1:
		return "1 stop"
	}
	return fmt.Sprintf("%d stops", n)
}

// Cities writes names in column-major order across at most eight columns.
func Cities(w io.Writer, cities []string) error {
	if _, err := fmt.Fprintf(w, "Available cities (%d):\n", len(cities)); err != nil {
		return err
	}
	if len(cities) == 0 {
		return nil
	}

	width := 0
	for _, c := range cities {
		width = max(width, utf8.RuneCountInString(c))
	}
	width += 2
	cols := min(max(lineWidth/width, 1), 8)
	rows := (len(cities) + cols - 1) / cols

	var b strings.Builder
	for r := range rows {
		var line strings.Builder
		for c := range cols {
			if idx := c*rows + r; idx < len(cities) {
				fmt.Fprintf(&line, "%-*s", width, cities[idx])
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
