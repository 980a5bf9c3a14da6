package evaluator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rail-planner/internal/calendar"
	"rail-planner/internal/evaluator"
	"rail-planner/internal/journey"
	"rail-planner/internal/rail"
	"rail-planner/internal/rail/railtest"
)

func itinerary(t *testing.T, legs ...*rail.Connection) journey.Itinerary {
	t.Helper()
	it, err := journey.NewItinerary(legs)
	require.NoError(t, err)
	return it
}

func TestCommonOperatingDay(t *testing.T) {
	tests := []struct {
		name   string
		first  string
		second string
		want   calendar.WeekdaySet
	}{
		{"both daily", "Daily", "Daily", calendar.All},
		{"overlap", "Mon,Wed,Fri", "Fri-Sun", calendar.Of(time.Friday)},
		{"disjoint", "Mon,Tue", "Sat-Sun", calendar.None},
		{"wrapping range", "Sat-Mon", "Mon,Thu-Fri", calendar.Of(time.Monday)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := itinerary(t,
				railtest.Conn(t, "A", "X", "Y", "08:00", "09:00", railtest.Days(tt.first)),
				railtest.Conn(t, "B", "Y", "Z", "10:00", "11:00", railtest.Days(tt.second)),
			)
			assert.Equal(t, tt.want, evaluator.CommonDays(it))
			assert.Equal(t, !tt.want.IsEmpty(), evaluator.CommonOperatingDay(it))
		})
	}
}

func TestOnDays(t *testing.T) {
	it := itinerary(t, railtest.Conn(t, "A", "X", "Y", "08:00", "09:00", railtest.Days("Fri-Sun")))

	assert.True(t, evaluator.OnDays(calendar.None)(it))
	assert.True(t, evaluator.OnDays(calendar.Of(time.Sunday))(it))
	assert.False(t, evaluator.OnDays(calendar.Of(time.Monday, time.Tuesday))(it))
}

func TestWithinLayover(t *testing.T) {
	short := itinerary(t,
		railtest.Conn(t, "S1", "Paris", "Lyon", "08:00", "10:00"),
		railtest.Conn(t, "S2", "Lyon", "Marseille", "11:00", "12:30"),
	)
	long := itinerary(t,
		railtest.Conn(t, "L1", "Paris", "Lyon", "08:00", "10:00"),
		railtest.Conn(t, "L2", "Lyon", "Marseille", "16:00", "17:30"),
	)
	direct := itinerary(t, railtest.Conn(t, "D", "Paris", "Marseille", "09:00", "12:15"))

	require.Equal(t, 60, evaluator.MaxLayover(short))
	require.Equal(t, 360, evaluator.MaxLayover(long))

	all := []journey.Itinerary{short, long, direct}

	kept := evaluator.Apply(all, evaluator.WithinLayover(120))
	assert.Equal(t, []string{"S1|S2", "D"}, routeKeys(kept))

	assert.Len(t, evaluator.Apply(all, evaluator.WithinLayover(0)), 3)
	assert.Len(t, evaluator.Apply(all, evaluator.WithinLayover(360)), 3)
	assert.Len(t, all, 3)
}

func TestWithinLayoverChecksEveryPair(t *testing.T) {
	it := itinerary(t,
		railtest.Conn(t, "A", "W", "X", "08:00", "09:00"),
		railtest.Conn(t, "B", "X", "Y", "09:30", "10:00"),
		railtest.Conn(t, "C", "Y", "Z", "20:00", "21:00"),
	)
	assert.Equal(t, []int{30, 600}, it.Schedule().Layovers())
	assert.False(t, evaluator.WithinLayover(120)(it))
}

func TestApplyCombinesFilters(t *testing.T) {
	a := itinerary(t,
		railtest.Conn(t, "A1", "P", "Q", "08:00", "09:00", railtest.Days("Mon")),
		railtest.Conn(t, "A2", "Q", "R", "09:30", "10:00", railtest.Days("Tue")),
	)
	b := itinerary(t,
		railtest.Conn(t, "B1", "P", "Q", "08:00", "09:00"),
		railtest.Conn(t, "B2", "Q", "R", "09:30", "10:00"),
	)

	kept := evaluator.Apply([]journey.Itinerary{a, b}, evaluator.CommonOperatingDay, nil, evaluator.WithinLayover(60))
	assert.Equal(t, []string{"B1|B2"}, routeKeys(kept))
}

func TestSortByFare(t *testing.T) {
	cheapSlow := itinerary(t, railtest.Conn(t, "CS", "P", "Q", "08:00", "14:00", railtest.Fares(80, 20)))
	cheapFast := itinerary(t, railtest.Conn(t, "CF", "P", "Q", "08:00", "10:00", railtest.Fares(90, 20)))
	pricey := itinerary(t, railtest.Conn(t, "PR", "P", "Q", "08:00", "09:00", railtest.Fares(70, 60)))

	input := []journey.Itinerary{pricey, cheapSlow, cheapFast}

	second := evaluator.Sort(input, evaluator.ByFare(rail.SecondClass))
	assert.Equal(t, []string{"CF", "CS", "PR"}, routeKeys(second))

	first := evaluator.Sort(input, evaluator.ByFare(rail.FirstClass))
	assert.Equal(t, []string{"PR", "CS", "CF"}, routeKeys(first))

	assert.Equal(t, []string{"PR", "CS", "CF"}, routeKeys(input), "input must not be reordered")
}

func TestSortIsStableAndIdempotent(t *testing.T) {
	var its []journey.Itinerary
	for _, id := range []string{"A", "B", "C", "D"} {
		its = append(its, itinerary(t, railtest.Conn(t, id, "P", "Q", "08:00", "10:00", railtest.Fares(50, 25))))
	}
	its = append(its, itinerary(t, railtest.Conn(t, "E", "P", "Q", "08:00", "09:00", railtest.Fares(10, 5))))

	once := evaluator.Sort(its, evaluator.ByFare(rail.SecondClass))
	assert.Equal(t, []string{"E", "A", "B", "C", "D"}, routeKeys(once))

	twice := evaluator.Sort(once, evaluator.ByFare(rail.SecondClass))
	assert.Equal(t, routeKeys(once), routeKeys(twice))

	byDuration := evaluator.Sort(its, evaluator.ByDuration())
	assert.Equal(t, []string{"E", "A", "B", "C", "D"}, routeKeys(byDuration))
}

func routeKeys(its []journey.Itinerary) []string {
	out := make([]string, len(its))
	for i, it := range its {
		out[i] = it.RouteKey()
	}
	return out
}
