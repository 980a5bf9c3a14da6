package timeline

// Leg is anything scheduled at a fixed daily departure clock with a fixed
// running time.
type Leg interface {
	Departure() Clock
	TripMinutes() int
}

// Segment is one leg placed on the absolute minute line.
type Segment struct {
	Depart int
	Arrive int
	// Layover is the wait at the previous leg's arrival city before this
	// leg departs. Always 0 for the first leg.
	Layover int
}

// Schedule is a sequence of legs walked onto the absolute minute line.
type Schedule struct {
	Start    int
	Segments []Segment
}

// Walk places legs one after another, each departing at the next daily
// occurrence of its clock time at or after the previous arrival.
func Walk[L Leg](legs []L) Schedule {
	if len(legs) == 0 {
		return Schedule{}
	}

	start := legs[0].Departure().MinuteOfDay()
	cursor := start
	segments := make([]Segment, len(legs))
	for i, leg := range legs {
		dep := AlignForward(cursor, leg.Departure().MinuteOfDay())
		arr := dep + leg.TripMinutes()
		seg := Segment{Depart: dep, Arrive: arr}
		if i > 0 {
			seg.Layover = dep - cursor
		}
		segments[i] = seg
		cursor = arr
	}
	return Schedule{Start: start, Segments: segments}
}

// Total returns minutes from first departure to final arrival, never negative.
func (s Schedule) Total() int {
	if len(s.Segments) == 0 {
		return 0
	}
	total := s.Segments[len(s.Segments)-1].Arrive - s.Start
	if total < 0 {
		return 0
	}
	return total
}

// Layovers returns the wait before each leg after the first.
func (s Schedule) Layovers() []int {
	if len(s.Segments) < 2 {
		return nil
	}
	out := make([]int, 0, len(s.Segments)-1)
	for _, seg := range s.Segments[1:] {
		out = append(out, seg.Layover)
	}
	return out
}

// MaxLayover returns the longest single layover, 0 for direct journeys.
func (s Schedule) MaxLayover() int {
	longest := 0
	for _, l := range s.Layovers() {
		if l > longest {
			longest = l
		}
	}
	return longest
}
