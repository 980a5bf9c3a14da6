package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekdaySet(t *testing.T) {
	weekend := Of(time.Saturday, time.Sunday)

	assert.True(t, weekend.Has(time.Sunday))
	assert.False(t, weekend.Has(time.Monday))
	assert.Equal(t, 2, weekend.Len())
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, weekend.Days())
	assert.Equal(t, "Sat,Sun", weekend.String())

	assert.True(t, All.Contains(weekend))
	assert.False(t, weekend.Contains(All))
	assert.True(t, weekend.Intersect(Of(time.Monday)).IsEmpty())
	assert.Equal(t, Of(time.Sunday), weekend.Intersect(Of(time.Sunday, time.Monday)))

	assert.Equal(t, "Daily", All.String())
	assert.Equal(t, "None", None.String())
}

func TestWeekdaySetFirst(t *testing.T) {
	d, ok := Of(time.Sunday, time.Wednesday).First()
	assert.True(t, ok)
	assert.Equal(t, time.Wednesday, d)

	_, ok = None.First()
	assert.False(t, ok)
}

func TestForDate(t *testing.T) {
	// 2026-10-19 is a Monday
	monday := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, Of(time.Monday), ForDate(monday))
}
