package journey

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"rail-planner/internal/calendar"
	"rail-planner/internal/rail"
)

// legEnv is what a leg filter expression can see, e.g.
//
//	category in ["TGV", "ICE"] && secondClass < 80 && "Sat" in days
type legEnv struct {
	Route           string   `expr:"route"`
	From            string   `expr:"from"`
	To              string   `expr:"to"`
	Category        string   `expr:"category"`
	Days            []string `expr:"days"`
	FirstClass      int      `expr:"firstClass"`
	SecondClass     int      `expr:"secondClass"`
	Departure       string   `expr:"departure"`
	Arrival         string   `expr:"arrival"`
	DepartureMinute int      `expr:"departureMinute"`
	ArrivalMinute   int      `expr:"arrivalMinute"`
	DurationMinutes int      `expr:"durationMinutes"`
	DayOffset       int      `expr:"dayOffset"`
}

func envFor(c *rail.Connection) legEnv {
	days := c.Days().Days()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = calendar.ShortName(d)
	}
	return legEnv{
		Route:           c.RouteID(),
		From:            c.DepartureCity(),
		To:              c.ArrivalCity(),
		Category:        c.Category(),
		Days:            names,
		FirstClass:      c.FirstClassFare(),
		SecondClass:     c.SecondClassFare(),
		Departure:       c.Departure().String(),
		Arrival:         c.Arrival().String(),
		DepartureMinute: c.Departure().MinuteOfDay(),
		ArrivalMinute:   c.Arrival().MinuteOfDay(),
		DurationMinutes: c.TripMinutes(),
		DayOffset:       c.DayOffset(),
	}
}

// CompileLegFilter compiles a boolean expression over a leg's fields into a
// LegFilter. An empty expression accepts every leg. A leg on which the
// expression fails at run time is rejected.
func CompileLegFilter(src string) (LegFilter, error) {
	if strings.TrimSpace(src) == "" {
		return AcceptAll, nil
	}
	program, err := expr.Compile(src, expr.Env(legEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile leg filter: %w", err)
	}
	return programFilter(program), nil
}

func programFilter(program *vm.Program) LegFilter {
	return func(c *rail.Connection) bool {
		out, err := expr.Run(program, envFor(c))
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	}
}
