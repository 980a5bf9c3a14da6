// Package timeline maps wall-clock departure and arrival times onto an
// absolute minute line so that day rollovers across several legs can be
// tracked. Minute 0 is midnight of the day the first leg departs.
package timeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const MinutesPerDay = 24 * 60

// Clock is a wall-clock time of day at minute resolution.
type Clock int

// NewClock returns the clock for hour:minute.
func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	return Clock(hour*60 + minute), nil
}

// ParseClock parses "HH:MM" (or "H:MM").
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return NewClock(h, m)
}

// MustClock is ParseClock for literals known to be valid.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockOf returns the wall-clock part of t.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// MinuteOfDay returns the clock as a minute in [0, 1440).
func (c Clock) MinuteOfDay() int {
	return mod(int(c), MinutesPerDay)
}

func (c Clock) Hour() int   { return c.MinuteOfDay() / 60 }
func (c Clock) Minute() int { return c.MinuteOfDay() % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// AlignForward returns the smallest absolute minute >= current whose minute
// of day is target: the next daily occurrence of a fixed departure time.
// It ignores weekdays entirely.
func AlignForward(current, target int) int {
	candidate := DayIndex(current)*MinutesPerDay + mod(target, MinutesPerDay)
	for candidate < current {
		candidate += MinutesPerDay
	}
	return candidate
}

// DayIndex returns the day an absolute minute falls on, day 0 being the
// first departure day.
func DayIndex(abs int) int {
	if abs < 0 {
		return -((-abs + MinutesPerDay - 1) / MinutesPerDay)
	}
	return abs / MinutesPerDay
}

// ShiftWeekday moves d forward by days.
func ShiftWeekday(d time.Weekday, days int) time.Weekday {
	return time.Weekday(mod(int(d)+days, 7))
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
